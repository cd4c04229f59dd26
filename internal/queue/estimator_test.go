package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var weekdays = []time.Weekday{time.Monday, time.Tuesday, time.Wednesday, time.Thursday, time.Friday}

func newTestEstimator(t *testing.T) *Estimator {
	t.Helper()
	cal, err := NewCalendar(time.UTC, 8, 15, weekdays)
	require.NoError(t, err)
	return NewEstimator(cal, 20*time.Minute)
}

// 2025-03-03 is a Monday.
func at(day, hour, minute int) time.Time {
	return time.Date(2025, time.March, day, hour, minute, 0, 0, time.UTC)
}

func TestEstimate_EmptyBacklogSameDay(t *testing.T) {
	e := newTestEstimator(t)
	got := e.Estimate(at(3, 9, 0), nil)
	assert.Equal(t, at(3, 9, 20), got)
}

func TestEstimate_SpillsIntoNextWorkingDay(t *testing.T) {
	e := newTestEstimator(t)
	got := e.Estimate(at(3, 14, 50), nil)
	assert.Equal(t, at(4, 8, 10), got)
}

func TestEstimate_FridayAfternoonSpillsToMonday(t *testing.T) {
	e := newTestEstimator(t)
	got := e.Estimate(at(7, 14, 55), nil)
	assert.Equal(t, at(10, 8, 15), got)
}

func TestEstimate_NonWorkingDayRollsForward(t *testing.T) {
	e := newTestEstimator(t)
	// Saturday
	got := e.Estimate(at(8, 11, 0), nil)
	assert.Equal(t, at(10, 8, 20), got)
}

func TestEstimate_AfterHoursRollsToNextDay(t *testing.T) {
	e := newTestEstimator(t)
	got := e.Estimate(at(3, 15, 0), nil)
	assert.Equal(t, at(4, 8, 20), got)
}

func TestEstimate_EarlyMorningRollsToNextWorkingDay(t *testing.T) {
	e := newTestEstimator(t)
	got := e.Estimate(at(3, 6, 30), nil)
	assert.Equal(t, at(4, 8, 20), got)
	assert.Equal(t, "2025-03-04, 8:20 AM", Format(got))

	// Friday before opening skips the weekend.
	assert.Equal(t, at(10, 8, 20), e.Estimate(at(7, 7, 59), nil))
}

func TestEstimate_QueuesBehindLatestBacklog(t *testing.T) {
	e := newTestEstimator(t)
	backlog := []time.Time{at(3, 10, 0), at(3, 11, 40), at(3, 10, 20)}
	got := e.Estimate(at(3, 9, 0), backlog)
	assert.Equal(t, at(3, 12, 0), got)
}

func TestEstimate_StaleBacklogIgnored(t *testing.T) {
	e := newTestEstimator(t)
	got := e.Estimate(at(5, 9, 0), []time.Time{at(3, 10, 0)})
	assert.Equal(t, at(5, 9, 20), got)
}

func TestEstimate_ChainedSubmissionsNeverLeaveWorkingHours(t *testing.T) {
	e := newTestEstimator(t)
	var backlog []time.Time
	submitted := at(7, 13, 0)
	for i := 0; i < 40; i++ {
		est := e.Estimate(submitted, backlog)
		h := est.Hour()
		assert.True(t, e.Calendar().IsWorkingDay(est), "estimate %v on a non-working day", est)
		assert.True(t, h >= 8 && (h < 15 || (h == 15 && est.Minute() == 0)), "estimate %v outside hours", est)
		if len(backlog) > 0 {
			assert.True(t, est.After(backlog[len(backlog)-1]))
		}
		backlog = append(backlog, est)
	}
}

func TestEstimate_LongServiceTimeSpansDays(t *testing.T) {
	cal, err := NewCalendar(time.UTC, 8, 15, weekdays)
	require.NoError(t, err)
	e := NewEstimator(cal, 8*time.Hour)
	// 7h on Monday, 1h on Tuesday.
	got := e.Estimate(at(3, 8, 0), nil)
	assert.Equal(t, at(4, 9, 0), got)
}

func TestEstimate_CustomWorkingWeek(t *testing.T) {
	cal, err := NewCalendar(time.UTC, 8, 15, []time.Weekday{time.Sunday, time.Monday, time.Tuesday, time.Wednesday, time.Thursday})
	require.NoError(t, err)
	e := NewEstimator(cal, 20*time.Minute)
	// Friday 2025-03-07 rolls to Sunday 2025-03-09.
	got := e.Estimate(at(7, 10, 0), nil)
	assert.Equal(t, at(9, 8, 20), got)
}

func TestEstimate_SecondsAreDropped(t *testing.T) {
	e := newTestEstimator(t)
	got := e.Estimate(at(3, 9, 0).Add(42*time.Second), nil)
	assert.Equal(t, at(3, 9, 20), got)
}

func TestFormat(t *testing.T) {
	assert.Equal(t, "2025-03-04, 8:10 AM", Format(at(4, 8, 10)))
	assert.Equal(t, "2025-03-04, 2:05 PM", Format(at(4, 14, 5)))
	assert.Equal(t, "2025-03-04, 12:00 PM", Format(at(4, 12, 0)))
}

func TestNewCalendar_Rejects(t *testing.T) {
	_, err := NewCalendar(time.UTC, 15, 8, weekdays)
	assert.Error(t, err)
	_, err = NewCalendar(time.UTC, 8, 15, nil)
	assert.Error(t, err)
}

func TestCalendar_RollForward(t *testing.T) {
	cal, err := NewCalendar(time.UTC, 8, 15, weekdays)
	require.NoError(t, err)

	assert.Equal(t, at(3, 9, 30), cal.RollForward(at(3, 9, 30)))
	assert.Equal(t, at(4, 8, 0), cal.RollForward(at(3, 7, 59)))
	assert.Equal(t, at(4, 8, 0), cal.RollForward(at(3, 15, 0)))
	assert.Equal(t, at(10, 8, 0), cal.RollForward(at(9, 9, 0)))
}
