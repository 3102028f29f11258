// File: database/repository/records/interface.go
package recordsRepo

import (
	"context"
	"errors"
	"time"

	"fieldservice/models"
)

// ErrNotFound is returned when a referenced record does not exist in the store.
var ErrNotFound = errors.New("record not found")

// RecordStore is the external record store the scheduler reads appointments and
// blackout windows from. Implementations own persistence; callers only see models.
type RecordStore interface {
	// ListAppointments returns appointments whose instant lies in [from, to).
	ListAppointments(ctx context.Context, from, to time.Time) ([]models.Appointment, error)
	GetService(ctx context.Context, id string) (*models.ServiceRecord, error)
	SetAppointment(ctx context.Context, id string, at time.Time) error

	// ListBlackouts returns windows matching filter, newest start first.
	ListBlackouts(ctx context.Context, filter models.BlackoutFilter) ([]models.BlackoutWindow, error)
	CreateBlackout(ctx context.Context, window models.BlackoutWindow) (string, error)
	DeleteBlackout(ctx context.Context, id string) error

	Ping(ctx context.Context) error
}
