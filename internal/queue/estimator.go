// Package queue predicts when a newly submitted request will be handled.
//
// Each category is a single-server FIFO queue: every pending request consumes
// a fixed amount of staff time, and staff time only exists inside the
// business calendar. The result is advisory and is frozen on the request at
// submission.
package queue

import (
	"time"
)

// EstimateLayout is the display form of an estimate, e.g. "2025-03-04, 9:20 AM".
const EstimateLayout = "2006-01-02, 3:04 PM"

type Estimator struct {
	calendar    Calendar
	serviceTime time.Duration
}

func NewEstimator(calendar Calendar, serviceTime time.Duration) *Estimator {
	return &Estimator{calendar: calendar, serviceTime: serviceTime}
}

func (e *Estimator) Calendar() Calendar {
	return e.calendar
}

// Estimate returns the completion time for a request submitted at
// submittedAt behind backlog, the frozen estimates of the requests still
// pending in the same category.
func (e *Estimator) Estimate(submittedAt time.Time, backlog []time.Time) time.Time {
	anchor := submittedAt
	for _, b := range backlog {
		if b.After(anchor) {
			anchor = b
		}
	}

	cal := e.calendar
	clock := cal.RollForward(anchor.Truncate(time.Minute))
	remaining := e.serviceTime
	for remaining > 0 {
		if !cal.Open(clock) {
			clock = cal.RollForward(clock)
			continue
		}
		left := cal.closing(clock).Sub(clock)
		if remaining <= left {
			clock = clock.Add(remaining)
			break
		}
		remaining -= left
		clock = cal.NextDayStart(clock)
	}
	return clock
}

func Format(t time.Time) string {
	return t.Format(EstimateLayout)
}
