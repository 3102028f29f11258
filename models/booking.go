package models

import "time"

// Appointment is an already-booked visit, read from the service records.
type Appointment struct {
	ServiceID string    `bson:"id" json:"serviceId"`     // Service record carrying the appointment
	At        time.Time `bson:"appointmentAt" json:"at"` // Absolute instant of the visit
}

// ServiceRecord is the subset of a service (repair request) record the scheduler touches.
type ServiceRecord struct {
	ID            string     `bson:"id" json:"id"`
	Customer      string     `bson:"customer,omitempty" json:"customer,omitempty"`
	Status        string     `bson:"status,omitempty" json:"status,omitempty"`
	AppointmentAt *time.Time `bson:"appointmentAt,omitempty" json:"appointmentAt,omitempty"`
}

// BookingRequest asks for a service visit at a civil date and slot.
type BookingRequest struct {
	ServiceID string `json:"-"`
	Date      string `json:"date"`
	Slot      string `json:"slot"`
	Policy    string `json:"policy,omitempty"`
}

// BookingConfirmation is returned once an appointment has been written.
type BookingConfirmation struct {
	ServiceID   string    `json:"id"`
	Date        string    `json:"date"`
	Slot        string    `json:"slot"`
	Policy      string    `json:"policy"`
	Appointment time.Time `json:"appointment"`
}
