package queue

import (
	"fmt"
	"time"
)

// Calendar describes when staff capacity exists: a fixed set of weekdays and
// a half-open [Start, End) hour interval on each of them, in Location.
type Calendar struct {
	Location *time.Location
	Start    int
	End      int
	Days     []time.Weekday
}

func NewCalendar(loc *time.Location, start, end int, days []time.Weekday) (Calendar, error) {
	if loc == nil {
		loc = time.Local
	}
	if start < 0 || end > 24 || start >= end {
		return Calendar{}, fmt.Errorf("invalid working hours %d-%d", start, end)
	}
	if len(days) == 0 {
		return Calendar{}, fmt.Errorf("calendar needs at least one working day")
	}
	return Calendar{Location: loc, Start: start, End: end, Days: days}, nil
}

func (c Calendar) IsWorkingDay(t time.Time) bool {
	wd := t.In(c.Location).Weekday()
	for _, d := range c.Days {
		if d == wd {
			return true
		}
	}
	return false
}

// Open reports whether t lies inside working hours of a working day.
func (c Calendar) Open(t time.Time) bool {
	if !c.IsWorkingDay(t) {
		return false
	}
	h := t.In(c.Location).Hour()
	return h >= c.Start && h < c.End
}

func (c Calendar) opening(t time.Time) time.Time {
	t = t.In(c.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), c.Start, 0, 0, 0, c.Location)
}

func (c Calendar) closing(t time.Time) time.Time {
	t = t.In(c.Location)
	return time.Date(t.Year(), t.Month(), t.Day(), c.End, 0, 0, 0, c.Location)
}

// NextDayStart returns the opening time of the first working day strictly
// after the calendar day of t.
func (c Calendar) NextDayStart(t time.Time) time.Time {
	d := c.opening(t)
	for {
		d = time.Date(d.Year(), d.Month(), d.Day()+1, c.Start, 0, 0, 0, c.Location)
		if c.IsWorkingDay(d) {
			return d
		}
	}
}

// RollForward returns t unchanged inside working hours. Any other time,
// early morning included, moves to the next working day's opening and the
// rest of the day is discarded.
func (c Calendar) RollForward(t time.Time) time.Time {
	t = t.In(c.Location)
	if c.Open(t) {
		return t
	}
	return c.NextDayStart(t)
}
