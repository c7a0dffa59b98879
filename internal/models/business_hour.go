package models

import (
	"fmt"
	"time"
)

// Day-of-week indices are Monday-based (Monday=0 .. Sunday=6), matching
// the ingestion CSV format.
const (
	Monday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// MondayIndex converts Go's Sunday-based time.Weekday to the
// Monday-based index used throughout the schedule data.
func MondayIndex(wd time.Weekday) int {
	return (int(wd) + 6) % 7
}

// WallClock is a local time-of-day without a date or zone.
type WallClock struct {
	Hour       int
	Minute     int
	Second     int
	Nanosecond int
}

// ParseWallClock parses "HH:MM:SS" or "HH:MM".
func ParseWallClock(s string) (WallClock, error) {
	var wc WallClock
	if _, err := fmt.Sscanf(s, "%d:%d:%d", &wc.Hour, &wc.Minute, &wc.Second); err != nil {
		if _, err2 := fmt.Sscanf(s, "%d:%d", &wc.Hour, &wc.Minute); err2 != nil {
			return WallClock{}, fmt.Errorf("parse wall clock %q: %w", s, err)
		}
	}
	if wc.Hour < 0 || wc.Hour > 23 || wc.Minute < 0 || wc.Minute > 59 || wc.Second < 0 || wc.Second > 59 {
		return WallClock{}, fmt.Errorf("wall clock %q out of range", s)
	}
	return wc, nil
}

// String renders the canonical "HH:MM:SS" form stored in the database.
func (wc WallClock) String() string {
	return fmt.Sprintf("%02d:%02d:%02d", wc.Hour, wc.Minute, wc.Second)
}

// On anchors the wall-clock time to a calendar date in the given zone,
// producing an absolute instant with that date's UTC offset.
func (wc WallClock) On(year int, month time.Month, day int, loc *time.Location) time.Time {
	return time.Date(year, month, day, wc.Hour, wc.Minute, wc.Second, wc.Nanosecond, loc)
}

// Before reports whether wc is strictly earlier in the day than other.
func (wc WallClock) Before(other WallClock) bool {
	a := ((wc.Hour*60+wc.Minute)*60+wc.Second)*int(time.Second) + wc.Nanosecond
	b := ((other.Hour*60+other.Minute)*60+other.Second)*int(time.Second) + other.Nanosecond
	return a < b
}

// Full-day fallback bounds applied when a weekday has no configured entry.
var (
	OpenAllDayStart = WallClock{}
	OpenAllDayEnd   = WallClock{Hour: 23, Minute: 59, Second: 59, Nanosecond: 999_999_999}
)

// BusinessHour is one configured open interval for a store on one weekday.
// Start and End are local wall-clock times in the store's timezone; if
// End <= Start the interval crosses midnight into the next calendar day.
type BusinessHour struct {
	StoreID int64     `json:"store_id"`
	Day     int       `json:"day_of_week"` // Monday=0 .. Sunday=6
	Start   WallClock `json:"start_time_local"`
	End     WallClock `json:"end_time_local"`
}

// WeeklySchedule is a store's per-weekday open intervals. At most one
// entry per weekday; unconfigured days fall back to open-all-day.
type WeeklySchedule struct {
	entries map[int]BusinessHour
}

// NewWeeklySchedule builds a schedule from configured entries. Duplicate
// entries for the same weekday are last-wins.
func NewWeeklySchedule(hours []BusinessHour) WeeklySchedule {
	entries := make(map[int]BusinessHour, len(hours))
	for _, bh := range hours {
		entries[bh.Day] = bh
	}
	return WeeklySchedule{entries: entries}
}

// HoursFor returns the local open/close bounds for a Monday-based
// weekday index. Days without a configured entry are treated as open all
// day; this is a deliberate fallback, not missing data.
func (s WeeklySchedule) HoursFor(day int) (WallClock, WallClock) {
	if bh, ok := s.entries[day]; ok {
		return bh.Start, bh.End
	}
	return OpenAllDayStart, OpenAllDayEnd
}

// Configured reports whether the given weekday has an explicit entry.
func (s WeeklySchedule) Configured(day int) bool {
	_, ok := s.entries[day]
	return ok
}
