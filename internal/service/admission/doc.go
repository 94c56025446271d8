// Package admission implements per-source-IP admission control in front of
// token issuance.
//
// Each IP gets a fixed-window request counter held in a volatile store with a
// TTL; exceeding the threshold inside the window escalates to a durable ban.
// The asymmetry is intentional: temporary bursts self-heal when the counter
// expires, but a confirmed ban requires an administrator to lift.
package admission
