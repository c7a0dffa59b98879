package service

import (
	"bytes"
	"testing"

	"storewatch/internal/models"
)

func TestWriteReportCSV(t *testing.T) {
	t.Parallel()

	items := []models.ReportItem{
		{
			StoreID:          42,
			UptimeLastHour:   30,
			UptimeLastDay:    90,
			UptimeLastWeek:   3360,
			DowntimeLastHour: 30,
			DowntimeLastDay:  1350,
			DowntimeLastWeek: 6720,
		},
		{StoreID: 7},
	}

	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, items); err != nil {
		t.Fatalf("WriteReportCSV: %v", err)
	}

	want := "store_id,uptime_last_hour,uptime_last_day,uptime_last_week,downtime_last_hour,downtime_last_day,downtime_last_week\n" +
		"42,30,1.50,56.00,30,22.50,112.00\n" +
		"7,0,0.00,0.00,0,0.00,0.00\n"
	if got := buf.String(); got != want {
		t.Fatalf("csv output mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteReportCSV_NoRows(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	if err := WriteReportCSV(&buf, nil); err != nil {
		t.Fatalf("WriteReportCSV: %v", err)
	}
	want := "store_id,uptime_last_hour,uptime_last_day,uptime_last_week,downtime_last_hour,downtime_last_day,downtime_last_week\n"
	if got := buf.String(); got != want {
		t.Fatalf("got %q, want header only", got)
	}
}
