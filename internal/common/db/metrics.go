package db

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"github.com/AlibekovAA/secure-blog/internal/common/constants"
	"github.com/AlibekovAA/secure-blog/internal/observability/metrics"
)

// PoolStats is the subset of pgxpool statistics exported as gauges.
type PoolStats interface {
	AcquiredConns() int32
	IdleConns() int32
	MaxConns() int32
	TotalConns() int32
}

// StartPoolMetrics samples the pool under the given name (writer, replica)
// until ctx is cancelled. The first sample is taken immediately.
func StartPoolMetrics(ctx context.Context, name string, pool *pgxpool.Pool, interval time.Duration) {
	if interval <= 0 {
		interval = constants.DBPoolMetricsInterval
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			RecordPoolStats(name, pool.Stat())
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}
		}
	}()
}

func RecordPoolStats(name string, stats PoolStats) {
	metrics.DBPoolAcquiredConnections.WithLabelValues(name).Set(float64(stats.AcquiredConns()))
	metrics.DBPoolIdleConnections.WithLabelValues(name).Set(float64(stats.IdleConns()))
	metrics.DBPoolMaxConnections.WithLabelValues(name).Set(float64(stats.MaxConns()))
	metrics.DBPoolTotalConnections.WithLabelValues(name).Set(float64(stats.TotalConns()))
}
