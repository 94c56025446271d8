package admission

import "errors"

// Sentinel errors for the admission service layer.
var (
	ErrBanNotFound = errors.New("admission: ban not found")
)
