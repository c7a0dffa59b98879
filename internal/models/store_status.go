package models

import "time"

// Activity states reported by the poller.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// StoreStatus is a single point-in-time activity sample for a store.
// Samples are points, not intervals: the state between two consecutive
// samples is attributed by the reconciler's interpolation rule.
type StoreStatus struct {
	StoreID   int64     `json:"store_id"`
	Timestamp time.Time `json:"timestamp_utc"`
	Status    string    `json:"status"` // active | inactive
}

// IsActive reports whether the sample recorded the store as active.
func (s StoreStatus) IsActive() bool {
	return s.Status == StatusActive
}
