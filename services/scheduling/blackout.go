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

// CreateBlackout validates and stores a new blackout window.
func (s *DefaultSchedulingService) CreateBlackout(ctx context.Context, in models.BlackoutInput) (*models.BlackoutWindow, error) {
	startRaw := strings.TrimSpace(in.Start)
	endRaw := strings.TrimSpace(in.End)
	if startRaw == "" || endRaw == "" {
		return nil, newError(KindMissingField, "start and end are required", nil)
	}

	start, err := ParseInstant(startRaw, s.Clock.Location)
	if err != nil {
		return nil, newError(KindMissingField, "start is not a valid ISO-8601 instant", err)
	}
	end, err := ParseInstant(endRaw, s.Clock.Location)
	if err != nil {
		return nil, newError(KindMissingField, "end is not a valid ISO-8601 instant", err)
	}
	if !end.After(start) {
		return nil, newError(KindInvalidRange, "end must be after start", nil)
	}

	window := models.BlackoutWindow{
		Start:  start.UTC(),
		End:    end.UTC(),
		Reason: strings.TrimSpace(in.Reason),
	}
	id, err := s.Store.CreateBlackout(ctx, window)
	if err != nil {
		s.logger().Error("blackout: create failed",
			zap.Time("start", window.Start), zap.Time("end", window.End), zap.Error(err))
		return nil, newError(KindUpstreamUnavailable, "could not create blackout window", err)
	}
	window.ID = id

	s.logger().Info("blackout created", zap.String("id", id),
		zap.Time("start", window.Start), zap.Time("end", window.End))
	return &window, nil
}

// ListBlackouts returns windows newest-start-first.
func (s *DefaultSchedulingService) ListBlackouts(ctx context.Context, filter models.BlackoutFilter) ([]models.BlackoutWindow, error) {
	if !filter.OverlapsFrom.IsZero() && !filter.OverlapsTo.IsZero() && !filter.OverlapsTo.After(filter.OverlapsFrom) {
		return nil, newError(KindInvalidRange, "to must be after from", nil)
	}
	windows, err := s.Store.ListBlackouts(ctx, filter)
	if err != nil {
		s.logger().Error("blackout: list failed", zap.Error(err))
		return nil, newError(KindUpstreamUnavailable, "could not list blackout windows", err)
	}
	return windows, nil
}

// DeleteBlackout removes a window immediately; bookings inside it are not checked.
func (s *DefaultSchedulingService) DeleteBlackout(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return newError(KindMissingField, "id is required", nil)
	}
	if err := s.Store.DeleteBlackout(ctx, id); err != nil {
		if errors.Is(err, recordsRepo.ErrNotFound) {
			return newError(KindNotFound, "blackout window not found", err)
		}
		s.logger().Error("blackout: delete failed", zap.String("id", id), zap.Error(err))
		return newError(KindUpstreamUnavailable, "could not delete blackout window", err)
	}
	s.logger().Info("blackout deleted", zap.String("id", id))
	return nil
}

// localInstantLayouts are the zone-less forms posted by datetime-local inputs.
var localInstantLayouts = []string{"2006-01-02T15:04:05.999999999", "2006-01-02T15:04"}

// ParseInstant accepts RFC 3339 instants with or without fractional seconds. A date-time
// without an offset is read as wall-clock time in loc.
func ParseInstant(s string, loc *time.Location) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err == nil {
		return t, nil
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range localInstantLayouts {
		if local, lerr := time.ParseInLocation(layout, s, loc); lerr == nil {
			return local, nil
		}
	}
	return time.Time{}, err
}

// PurgeExpiredBlackouts deletes windows that ended more than retention ago and returns
// how many were removed. Windows deleted concurrently by an admin are not counted.
func (s *DefaultSchedulingService) PurgeExpiredBlackouts(ctx context.Context, retention time.Duration) (int, error) {
	cutoff := s.Clock.now().Add(-retention)
	expired, err := s.Store.ListBlackouts(ctx, models.BlackoutFilter{EndedBefore: cutoff})
	if err != nil {
		return 0, newError(KindUpstreamUnavailable, "could not list expired blackout windows", err)
	}

	purged := 0
	for _, w := range expired {
		if err := s.Store.DeleteBlackout(ctx, w.ID); err != nil {
			if errors.Is(err, recordsRepo.ErrNotFound) {
				continue
			}
			return purged, newError(KindUpstreamUnavailable, "could not delete expired blackout window", err)
		}
		purged++
	}
	if purged > 0 {
		s.logger().Info("expired blackouts purged", zap.Int("count", purged), zap.Time("endedBefore", cutoff))
	}
	return purged, nil
}
