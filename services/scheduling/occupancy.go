package scheduling

import (
	"time"

	"fieldservice/models"
)

// OccupiedSlots merges appointments and blackout windows into the set of grid labels
// that cannot be booked on date.
//
// Appointments off the grid are rounded down to the grid point they fall in. Blackouts
// are widened to [floor(start), ceil(end)) so a window that touches any part of a slot
// blocks the whole slot; End stays exclusive, so a blackout ending exactly on a grid
// point leaves that slot free. Only grid points whose local date is date contribute.
func OccupiedSlots(clock *Clock, policy Policy, date models.CalendarDate, appointments []models.Appointment, blackouts []models.BlackoutWindow) models.SlotSet {
	occupied := make(models.SlotSet)

	for _, a := range appointments {
		if a.At.IsZero() {
			continue
		}
		if !clock.ToLocalCalendarDate(a.At).Equal(date) {
			continue
		}
		occupied.Add(clock.ToLocalTimeSlot(clock.FloorToGrid(a.At, policy.Interval)))
	}

	dayStart, dayEnd := clock.DayBounds(date)
	step := time.Duration(policy.Interval) * time.Minute
	for _, b := range blackouts {
		if !b.End.After(b.Start) {
			continue
		}
		from := clock.FloorToGrid(b.Start, policy.Interval)
		to := clock.CeilToGrid(b.End, policy.Interval)
		if from.Before(dayStart) {
			from = dayStart
		}
		if to.After(dayEnd) {
			to = dayEnd
		}
		for g := from; g.Before(to); g = g.Add(step) {
			if clock.ToLocalCalendarDate(g).Equal(date) {
				occupied.Add(clock.ToLocalTimeSlot(g))
			}
		}
	}

	return occupied
}
