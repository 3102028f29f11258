package models

// AvailabilityQuery is the input of an availability lookup.
type AvailabilityQuery struct {
	Date   string `form:"date" json:"date"`
	Policy string `form:"policy" json:"policy"`
}

// AvailabilityResult is computed fresh for every query and never persisted.
type AvailabilityResult struct {
	Date             CalendarDate `json:"date"`
	Policy           string       `json:"policy"`
	IntervalMinutes  int          `json:"intervalMinutes"`
	OccupiedSlots    []TimeSlot   `json:"occupiedSlots"`
	AvailableSlots   []TimeSlot   `json:"availableSlots"`
	GeneratedCount   int          `json:"generatedCount"`
	AppointmentCount int          `json:"appointmentCount"`
	BlackoutCount    int          `json:"blackoutCount"`
}

// PolicyView describes a booking policy to clients.
type PolicyView struct {
	Name            string       `json:"name"`
	IntervalMinutes int          `json:"intervalMinutes"`
	Windows         []WindowView `json:"windows"`
	Default         bool         `json:"default"`
}

type WindowView struct {
	Open           TimeSlot `json:"open"`
	Close          TimeSlot `json:"close"`
	CloseInclusive bool     `json:"closeInclusive"`
}
