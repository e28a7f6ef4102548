package service

import (
	"time"

	"go.uber.org/zap"

	"github.com/brickgo/crm-bfa-go/internal/infra/observability"
	"github.com/brickgo/crm-bfa-go/internal/port"
)

// RefreshCoordinator bridges the change feed and the caches: when a watched
// table signals, it debounces briefly (bursts of writes collapse into one
// refresh) and then runs the table's invalidation callback. Clients see
// fresh data on their next request instead of holding stale cache until TTL.
type RefreshCoordinator struct {
	feed     port.ChangeFeed
	debounce time.Duration
	metrics  *observability.Metrics
	logger   *zap.Logger

	cancels []func()
}

// NewRefreshCoordinator creates a coordinator; call Watch per table, then
// Stop on shutdown.
func NewRefreshCoordinator(
	feed port.ChangeFeed,
	debounce time.Duration,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *RefreshCoordinator {
	return &RefreshCoordinator{
		feed:     feed,
		debounce: debounce,
		metrics:  metrics,
		logger:   logger,
	}
}

// Watch subscribes to a table and runs invalidate after each debounced
// change signal.
func (rc *RefreshCoordinator) Watch(table string, invalidate func()) {
	ch, cancel := rc.feed.Subscribe(table)
	rc.cancels = append(rc.cancels, cancel)

	go func() {
		for range ch {
			rc.drain(ch)
			invalidate()
			rc.metrics.IncrRefetch(table)
			rc.logger.Debug("cache invalidated by change feed",
				zap.String("table", table),
			)
		}
	}()
}

// drain waits out the debounce window, absorbing any further signals that
// arrive inside it.
func (rc *RefreshCoordinator) drain(ch <-chan struct{}) {
	timer := time.NewTimer(rc.debounce)
	defer timer.Stop()
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-timer.C:
			return
		}
	}
}

// Stop cancels all subscriptions.
func (rc *RefreshCoordinator) Stop() {
	for _, cancel := range rc.cancels {
		cancel()
	}
}
