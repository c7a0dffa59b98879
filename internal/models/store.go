package models

import "time"

// DefaultTimezone is assigned to stores discovered during ingestion
// without an explicit timezone.
const DefaultTimezone = "America/Chicago"

// Store is a monitored physical location.
type Store struct {
	ID        int64     `json:"store_id"`
	Timezone  string    `json:"timezone"` // IANA zone name, e.g. "America/Denver"
	CreatedAt time.Time `json:"created_at"`
}

// Location resolves the store's IANA timezone, falling back to the
// default zone when the name is unknown or empty.
func (s Store) Location() *time.Location {
	if s.Timezone != "" {
		if loc, err := time.LoadLocation(s.Timezone); err == nil {
			return loc
		}
	}
	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
