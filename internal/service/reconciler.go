package service

import (
	"time"

	"storewatch/internal/models"
)

// reconcileWindow estimates how many minutes within [windowStart,
// windowEnd) a store was open-and-active versus open-and-inactive, given
// its weekly schedule and a chronologically sorted slice of observations.
// The slice may cover more than the window; samples outside a clipped
// business-hour period are ignored.
//
// Returns (uptime, downtime, expectedOpen) in whole minutes, truncated.
func reconcileWindow(sched models.WeeklySchedule, loc *time.Location, observations []models.StoreStatus, windowStart, windowEnd time.Time) (int, int, int) {
	if !windowEnd.After(windowStart) {
		return 0, 0, 0
	}

	totalWindowMin := windowEnd.Sub(windowStart).Minutes()

	var uptime, downtime, expected float64

	// Walk every calendar date the window touches, in the store's local
	// calendar. Each date's wall-clock bounds are converted with that
	// date's own UTC offset, so DST transitions resolve per date.
	localStart := windowStart.In(loc)
	localEnd := windowEnd.In(loc)
	date := time.Date(localStart.Year(), localStart.Month(), localStart.Day(), 0, 0, 0, 0, loc)
	endDate := time.Date(localEnd.Year(), localEnd.Month(), localEnd.Day(), 0, 0, 0, 0, loc)

	for !date.After(endDate) {
		y, m, d := date.Date()
		startWC, endWC := sched.HoursFor(models.MondayIndex(date.Weekday()))

		dayOpen := startWC.On(y, m, d, loc)
		dayClose := endWC.On(y, m, d, loc)
		if !dayClose.After(dayOpen) {
			// end <= start means the interval crosses midnight and
			// spills into the next calendar day.
			dayClose = endWC.On(y, m, d+1, loc)
		}

		periodStart := maxTime(dayOpen, windowStart)
		periodEnd := minTime(dayClose, windowEnd)
		if !periodEnd.After(periodStart) {
			date = date.AddDate(0, 0, 1)
			continue
		}

		// Cap the cumulative expected-open total at the window length so
		// overlapping midnight spillovers cannot double-count.
		periodMin := periodEnd.Sub(periodStart).Minutes()
		if remaining := totalWindowMin - expected; periodMin > remaining {
			periodMin = remaining
		}
		if periodMin < 0 {
			periodMin = 0
		}
		expected += periodMin

		up, down, seen := splitPeriod(observations, periodStart, periodEnd)
		if !seen {
			// Unobserved open time is assumed inactive.
			downtime += periodMin
		} else {
			uptime += up
			downtime += down
		}

		date = date.AddDate(0, 0, 1)
	}

	return int(uptime), int(downtime), int(expected)
}

// splitPeriod attributes the minutes of [periodStart, periodEnd] to
// uptime/downtime from the samples falling inside it (boundary
// inclusive). A sample's state governs the interval preceding it: time
// since the previous known point is attributed retroactively at the
// moment the state becomes known. Before the first sample the state is
// assumed inactive. Returns seen=false when no sample falls in the
// period.
func splitPeriod(observations []models.StoreStatus, periodStart, periodEnd time.Time) (up, down float64, seen bool) {
	lastTime := periodStart
	lastActive := false

	for _, o := range observations {
		if o.Timestamp.Before(periodStart) || o.Timestamp.After(periodEnd) {
			continue
		}
		seen = true
		mins := o.Timestamp.Sub(lastTime).Minutes()
		if lastActive {
			up += mins
		} else {
			down += mins
		}
		lastTime = o.Timestamp
		lastActive = o.IsActive()
	}
	if !seen {
		return 0, 0, false
	}

	tail := periodEnd.Sub(lastTime).Minutes()
	if lastActive {
		up += tail
	} else {
		down += tail
	}
	return up, down, true
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}
