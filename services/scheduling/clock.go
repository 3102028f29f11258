package scheduling

import (
	"fmt"
	"time"
	_ "time/tzdata"

	"fieldservice/models"
)

// Clock projects absolute instants into the business time zone. All "today"
// decisions go through it so that the caller's zone never leaks in.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

// NewClock loads the IANA zone name (e.g., "Europe/Madrid").
func NewClock(zone string) (*Clock, error) {
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("load business timezone %q: %w", zone, err)
	}
	return &Clock{Location: loc, Now: time.Now}, nil
}

// FixedClock pins "now"; used by tests and replay tooling.
func FixedClock(loc *time.Location, now time.Time) *Clock {
	return &Clock{Location: loc, Now: func() time.Time { return now }}
}

func (c *Clock) now() time.Time {
	if c.Now == nil {
		return time.Now()
	}
	return c.Now()
}

// Today is the current civil date in the business zone.
func (c *Clock) Today() models.CalendarDate {
	return c.ToLocalCalendarDate(c.now())
}

// ToLocalCalendarDate returns the civil date an observer in the business zone sees at t.
func (c *Clock) ToLocalCalendarDate(t time.Time) models.CalendarDate {
	return models.DateOf(t.In(c.Location))
}

// ToLocalTimeSlot returns the wall-clock HH:MM reading at t, seconds dropped.
func (c *Clock) ToLocalTimeSlot(t time.Time) models.TimeSlot {
	local := t.In(c.Location)
	return models.NewTimeSlot(local.Hour(), local.Minute())
}

// At combines a civil date and wall-clock slot into an instant in the business zone.
// Wall times skipped by a DST jump are normalized forward by time.Date.
func (c *Clock) At(d models.CalendarDate, s models.TimeSlot) time.Time {
	return time.Date(d.Year, d.Month, d.Day, s.Hour(), s.Minute(), 0, 0, c.Location)
}

// DayBounds is [local midnight of d, local midnight of the next day).
func (c *Clock) DayBounds(d models.CalendarDate) (time.Time, time.Time) {
	return d.Midnight(c.Location), d.AddDays(1).Midnight(c.Location)
}

// FloorToGrid rounds t down to the previous wall-clock grid point. The offset is
// subtracted in absolute time so ambiguous fall-back wall times cannot move t forward.
func (c *Clock) FloorToGrid(t time.Time, interval int) time.Time {
	local := t.In(c.Location)
	over := (local.Hour()*60 + local.Minute()) % interval
	return t.Add(-time.Duration(over)*time.Minute -
		time.Duration(local.Second())*time.Second -
		time.Duration(local.Nanosecond())).In(c.Location)
}

// CeilToGrid rounds t up to the next wall-clock grid point; aligned instants are unchanged.
func (c *Clock) CeilToGrid(t time.Time, interval int) time.Time {
	floor := c.FloorToGrid(t, interval)
	if floor.Equal(t) {
		return floor
	}
	return floor.Add(time.Duration(interval) * time.Minute)
}
