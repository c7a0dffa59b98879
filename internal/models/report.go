package models

import "time"

// Report run statuses. PENDING is the only non-terminal state; a run
// moves to READY on success or FAILED on any generation error and never
// transitions again.
const (
	ReportPending = "PENDING"
	ReportReady   = "READY"
	ReportFailed  = "FAILED"
)

// Report is one report run.
type Report struct {
	ID          string     `json:"report_id"`
	Status      string     `json:"status"`
	RequestedAt time.Time  `json:"requested_at"`
	GeneratedAt *time.Time `json:"generated_at,omitempty"`
}

// ReportItem is the per-store result row of a run. Uptime and downtime
// values are whole minutes for all three windows; unit conversion for
// the day/week CSV columns happens at output time.
type ReportItem struct {
	ReportID string `json:"report_id"`
	StoreID  int64  `json:"store_id"`

	UptimeLastHour int `json:"uptime_last_hour"`
	UptimeLastDay  int `json:"uptime_last_day"`
	UptimeLastWeek int `json:"uptime_last_week"`

	DowntimeLastHour int `json:"downtime_last_hour"`
	DowntimeLastDay  int `json:"downtime_last_day"`
	DowntimeLastWeek int `json:"downtime_last_week"`
}
