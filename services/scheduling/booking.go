package scheduling

import (
	"context"
	"errors"
	"strings"
	"time"

	recordsRepo "fieldservice/database/repository/records"
	"fieldservice/models"

	"go.uber.org/zap"
)

// bookingLockTTL bounds how long a crashed commit can hold a date.
const bookingLockTTL = 15 * time.Second

// BookAppointment re-checks availability under a per-date lock and then writes the
// appointment instant onto the service record.
func (s *DefaultSchedulingService) BookAppointment(ctx context.Context, req models.BookingRequest) (*models.BookingConfirmation, error) {
	serviceID := strings.TrimSpace(req.ServiceID)
	if serviceID == "" {
		return nil, newError(KindMissingField, "service id is required", nil)
	}
	if strings.TrimSpace(req.Slot) == "" {
		return nil, newError(KindMissingField, "slot is required (HH:MM)", nil)
	}
	date, err := models.ParseCalendarDate(strings.TrimSpace(req.Date))
	if err != nil {
		return nil, newError(KindInvalidDate, "invalid date format, use YYYY-MM-DD", err)
	}
	policy, err := s.Policies.Resolve(strings.TrimSpace(req.Policy))
	if err != nil {
		return nil, err
	}
	slot, err := models.ParseTimeSlot(req.Slot)
	if err != nil {
		return nil, newError(KindInvalidSlot, "invalid slot format, use HH:MM", err)
	}
	if !policy.OnGrid(slot) {
		return nil, newError(KindInvalidSlot, "slot is outside the business hours grid", nil)
	}

	logger := s.logger().With(zap.String("serviceID", serviceID),
		zap.String("date", date.String()), zap.String("slot", slot.String()))

	release, err := s.locker().Acquire(ctx, "date:"+date.String(), bookingLockTTL)
	if err != nil {
		if errors.Is(err, ErrLockHeld) {
			return nil, newError(KindSlotUnavailable, "another booking for this date is in progress, try again", err)
		}
		logger.Error("booking: lock failed", zap.Error(err))
		return nil, newError(KindUpstreamUnavailable, "could not reserve the slot", err)
	}
	defer release()

	record, err := s.Store.GetService(ctx, serviceID)
	if err != nil {
		return nil, s.storeError(logger, "booking: get service failed", err, "service not found")
	}

	at := s.Clock.At(date, slot)
	confirmation := &models.BookingConfirmation{
		ServiceID:   serviceID,
		Date:        date.String(),
		Slot:        slot.String(),
		Policy:      policy.Name,
		Appointment: at.UTC(),
	}
	if record.AppointmentAt != nil && record.AppointmentAt.Equal(at) {
		return confirmation, nil
	}

	result, err := s.availabilityFor(ctx, policy, date)
	if err != nil {
		return nil, err
	}
	if !containsSlot(result.AvailableSlots, slot) {
		logger.Info("booking rejected: slot no longer available")
		return nil, newError(KindSlotUnavailable, "the selected slot is no longer available", nil)
	}

	if err := s.Store.SetAppointment(ctx, serviceID, at.UTC()); err != nil {
		return nil, s.storeError(logger, "booking: set appointment failed", err, "service not found")
	}

	logger.Info("appointment booked", zap.Time("at", at.UTC()))
	return confirmation, nil
}

// GetServiceAppointment returns the service record with its current appointment, if any.
func (s *DefaultSchedulingService) GetServiceAppointment(ctx context.Context, serviceID string) (*models.ServiceRecord, error) {
	serviceID = strings.TrimSpace(serviceID)
	if serviceID == "" {
		return nil, newError(KindMissingField, "service id is required", nil)
	}
	record, err := s.Store.GetService(ctx, serviceID)
	if err != nil {
		return nil, s.storeError(s.logger().With(zap.String("serviceID", serviceID)), "service: get failed", err, "service not found")
	}
	return record, nil
}

func (s *DefaultSchedulingService) storeError(logger *zap.Logger, msg string, err error, notFound string) error {
	if errors.Is(err, recordsRepo.ErrNotFound) {
		return newError(KindNotFound, notFound, err)
	}
	logger.Error(msg, zap.Error(err))
	return newError(KindUpstreamUnavailable, "record store unavailable, retry later", err)
}

var defaultLocker = NewLocalLocker()

func (s *DefaultSchedulingService) locker() SlotLocker {
	if s.Locker == nil {
		return defaultLocker
	}
	return s.Locker
}

func containsSlot(slots []models.TimeSlot, want models.TimeSlot) bool {
	for _, s := range slots {
		if s == want {
			return true
		}
	}
	return false
}
