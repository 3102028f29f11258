package cron

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// BlackoutPurger removes blackout windows older than a retention period.
type BlackoutPurger interface {
	PurgeExpiredBlackouts(ctx context.Context, retention time.Duration) (int, error)
}

// sweepTimeout bounds one retention run, retries included.
const sweepTimeout = 2 * time.Minute

// StartRetentionSweep schedules the blackout retention job on schedule (standard cron syntax or
// descriptors such as "@daily"). A non-positive retention disables the job and returns nil.
// Call Stop on the returned scheduler during shutdown.
func StartRetentionSweep(purger BlackoutPurger, retentionDays int, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	if retentionDays <= 0 {
		logger.Info("blackout retention sweep disabled")
		return nil, nil
	}
	retention := time.Duration(retentionDays) * 24 * time.Hour

	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger), cron.Recover(cron.DiscardLogger)))
	if _, err := c.AddFunc(schedule, func() { runSweep(purger, retention, logger) }); err != nil {
		return nil, err
	}
	c.Start()
	logger.Info("blackout retention sweep scheduled", zap.String("schedule", schedule), zap.Int("retentionDays", retentionDays))
	return c, nil
}

func runSweep(purger BlackoutPurger, retention time.Duration, logger *zap.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	purged, err := purger.PurgeExpiredBlackouts(ctx, retention)
	if err != nil {
		logger.Error("blackout retention sweep failed", zap.Int("purged", purged), zap.Error(err))
		return
	}
	logger.Debug("blackout retention sweep finished", zap.Int("purged", purged))
}
