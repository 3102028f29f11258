package scheduling

import "fieldservice/models"

// GenerateSlots returns every bookable grid point of the policy's windows on date,
// ascending. Closed weekdays and dates before today (business zone) yield nothing.
func GenerateSlots(clock *Clock, policy Policy, date models.CalendarDate) []models.TimeSlot {
	if policy.IsClosedDay(date.Weekday()) || date.Before(clock.Today()) {
		return nil
	}

	var slots []models.TimeSlot
	for _, w := range policy.Windows {
		for s := w.Open; s < w.Close; s += models.TimeSlot(policy.Interval) {
			slots = append(slots, s)
		}
		if w.CloseInclusive {
			slots = append(slots, w.Close)
		}
	}
	return slots
}
