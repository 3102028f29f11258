package scheduling

import (
	"context"
	"time"

	recordsRepo "fieldservice/database/repository/records"
	"fieldservice/models"

	"go.uber.org/zap"
)

// AvailabilityService answers "which slots can still be booked on this date".
type AvailabilityService interface {
	QueryAvailability(ctx context.Context, q models.AvailabilityQuery) (*models.AvailabilityResult, error)
	ListPolicies() []models.PolicyView
}

// BlackoutService manages admin blackout windows.
type BlackoutService interface {
	CreateBlackout(ctx context.Context, in models.BlackoutInput) (*models.BlackoutWindow, error)
	ListBlackouts(ctx context.Context, filter models.BlackoutFilter) ([]models.BlackoutWindow, error)
	DeleteBlackout(ctx context.Context, id string) error
}

// BookingService commits an appointment after re-checking availability.
type BookingService interface {
	BookAppointment(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error)
	GetServiceAppointment(ctx context.Context, serviceID string) (*models.ServiceRecord, error)
}

// DefaultSchedulingService implements all three services over a RecordStore.
// It keeps no per-request state; every query reads the store afresh.
type DefaultSchedulingService struct {
	Store    recordsRepo.RecordStore
	Clock    *Clock
	Policies *PolicySet
	LeadTime time.Duration
	Locker   SlotLocker
	Logger   *zap.Logger
}

func (s *DefaultSchedulingService) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}
