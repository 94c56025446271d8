package domain

import "time"

// IPBan is a durable ban on a source IP. Bans are created by the admission
// controller when an IP exceeds its request window and are never expired
// automatically; release is an administrative action.
type IPBan struct {
	IP        string    `json:"ip" db:"ip"`
	Reason    string    `json:"reason" db:"reason"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
