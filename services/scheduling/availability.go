package scheduling

import (
	"context"
	"strings"

	"fieldservice/models"

	"go.uber.org/zap"
)

// QueryAvailability computes bookable slots for a date:
// generated slots minus occupied slots minus slots closer than LeadTime to now.
// A store failure is surfaced as UpstreamUnavailable, never as an empty occupied set.
func (s *DefaultSchedulingService) QueryAvailability(ctx context.Context, q models.AvailabilityQuery) (*models.AvailabilityResult, error) {
	raw := strings.TrimSpace(q.Date)
	if raw == "" {
		return nil, newError(KindInvalidDate, "date is required (YYYY-MM-DD)", nil)
	}
	date, err := models.ParseCalendarDate(raw)
	if err != nil {
		return nil, newError(KindInvalidDate, "invalid date format, use YYYY-MM-DD", err)
	}
	policy, err := s.Policies.Resolve(strings.TrimSpace(q.Policy))
	if err != nil {
		return nil, err
	}
	return s.availabilityFor(ctx, policy, date)
}

func (s *DefaultSchedulingService) availabilityFor(ctx context.Context, policy Policy, date models.CalendarDate) (*models.AvailabilityResult, error) {
	logger := s.logger().With(zap.String("date", date.String()), zap.String("policy", policy.Name))

	from, to := s.Clock.DayBounds(date)
	appointments, err := s.Store.ListAppointments(ctx, from, to)
	if err != nil {
		logger.Error("availability: failed to list appointments", zap.Error(err))
		return nil, newError(KindUpstreamUnavailable, "could not load appointments, retry before booking", err)
	}
	blackouts, err := s.Store.ListBlackouts(ctx, models.BlackoutFilter{OverlapsFrom: from, OverlapsTo: to})
	if err != nil {
		logger.Error("availability: failed to list blackouts", zap.Error(err))
		return nil, newError(KindUpstreamUnavailable, "could not load blackout windows, retry before booking", err)
	}

	generated := GenerateSlots(s.Clock, policy, date)
	occupied := OccupiedSlots(s.Clock, policy, date, appointments, blackouts)
	cutoff := s.Clock.now().Add(s.LeadTime)

	available := make([]models.TimeSlot, 0, len(generated))
	for _, slot := range generated {
		if occupied.Has(slot) {
			continue
		}
		if s.Clock.At(date, slot).Before(cutoff) {
			continue
		}
		available = append(available, slot)
	}

	logger.Debug("availability computed",
		zap.Int("generated", len(generated)),
		zap.Int("occupied", len(occupied)),
		zap.Int("available", len(available)),
		zap.Int("appointments", len(appointments)),
		zap.Int("blackouts", len(blackouts)))

	return &models.AvailabilityResult{
		Date:             date,
		Policy:           policy.Name,
		IntervalMinutes:  policy.Interval,
		OccupiedSlots:    occupied.Sorted(),
		AvailableSlots:   available,
		GeneratedCount:   len(generated),
		AppointmentCount: len(appointments),
		BlackoutCount:    len(blackouts),
	}, nil
}

// ListPolicies returns the configured booking forms.
func (s *DefaultSchedulingService) ListPolicies() []models.PolicyView {
	return s.Policies.Views()
}
