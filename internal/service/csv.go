package service

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"storewatch/internal/models"
)

// csvHeader is the wire format expected by existing report consumers.
var csvHeader = []string{
	"store_id",
	"uptime_last_hour", "uptime_last_day", "uptime_last_week",
	"downtime_last_hour", "downtime_last_day", "downtime_last_week",
}

// WriteReportCSV streams result rows as CSV. Hour columns are raw
// minutes; day and week columns are minutes divided by 60, rounded to
// two decimals. The unit asymmetry is kept deliberately for
// compatibility with existing consumers of the format.
func WriteReportCSV(w io.Writer, items []models.ReportItem) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, it := range items {
		row := []string{
			strconv.FormatInt(it.StoreID, 10),
			strconv.Itoa(it.UptimeLastHour),
			minutesToHours(it.UptimeLastDay),
			minutesToHours(it.UptimeLastWeek),
			strconv.Itoa(it.DowntimeLastHour),
			minutesToHours(it.DowntimeLastDay),
			minutesToHours(it.DowntimeLastWeek),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row for store %d: %w", it.StoreID, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func minutesToHours(minutes int) string {
	return strconv.FormatFloat(float64(minutes)/60, 'f', 2, 64)
}
