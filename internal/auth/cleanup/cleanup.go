package cleanup

import (
	"context"

	"github.com/robfig/cron"

	"github.com/AlibekovAA/secure-blog/internal/common/logger"
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

type ExpiredDeleter interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// RunOnce purges denylist entries whose token would have expired anyway.
func RunOnce(ctx context.Context, repo ExpiredDeleter, log *logger.Logger) {
	deleted, err := repo.DeleteExpired(ctx)
	if err != nil {
		log.Errorf("revoked token cleanup failed: %v", err)
		return
	}
	if deleted > 0 {
		metrics.RevokedTokensCleanupDeleted.Add(float64(deleted))
		log.Infof("revoked token cleanup: deleted %d expired tokens", deleted)
	}
}

// StartRevokedTokenCleanup schedules RunOnce and blocks until ctx is done.
func StartRevokedTokenCleanup(ctx context.Context, schedule string, repo ExpiredDeleter, log *logger.Logger) error {
	c := cron.New()
	if err := c.AddFunc(schedule, func() { RunOnce(ctx, repo, log) }); err != nil {
		return err
	}

	c.Start()
	<-ctx.Done()
	c.Stop()
	return nil
}
