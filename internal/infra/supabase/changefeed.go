package supabase

import (
	"context"
	"fmt"
	"hash/fnv"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ============================================================
// PollingFeed — per-table change notifications by polling
// ============================================================

// PollingFeed implements port.ChangeFeed by polling each subscribed table's
// row fingerprint (ids + created_at) and signalling when it changes.
// Subscribers treat a signal as "refetch everything", never as a delta.
type PollingFeed struct {
	client   *Client
	interval time.Duration
	logger   *zap.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPollingFeed creates a feed polling at the given interval.
func NewPollingFeed(client *Client, interval time.Duration, logger *zap.Logger) *PollingFeed {
	ctx, cancel := context.WithCancel(context.Background())
	return &PollingFeed{
		client:   client,
		interval: interval,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Subscribe starts polling the table and returns the notification channel
// plus a cancel func. The channel is closed after cancel.
func (f *PollingFeed) Subscribe(table string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)
	subCtx, subCancel := context.WithCancel(f.ctx)

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer close(ch)
		f.poll(subCtx, table, ch)
	}()

	return ch, subCancel
}

// Close stops all subscriptions and waits for their goroutines.
func (f *PollingFeed) Close() {
	f.cancel()
	f.wg.Wait()
}

func (f *PollingFeed) poll(ctx context.Context, table string, ch chan<- struct{}) {
	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	last, err := f.fingerprint(ctx, table)
	if err != nil {
		f.logger.Warn("changefeed: baseline fingerprint failed",
			zap.String("table", table),
			zap.Error(err),
		)
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		current, err := f.fingerprint(ctx, table)
		if err != nil {
			f.logger.Warn("changefeed: fingerprint failed",
				zap.String("table", table),
				zap.Error(err),
			)
			continue
		}
		if current == last {
			continue
		}
		last = current

		f.logger.Debug("changefeed: table changed", zap.String("table", table))
		select {
		case ch <- struct{}{}:
		default: // a notification is already pending
		}
	}
}

// fingerprint hashes the table's id/created_at projection. Any insert or
// delete changes it; in-place edits are covered by the local invalidation
// the mutation paths already perform.
func (f *PollingFeed) fingerprint(ctx context.Context, table string) (uint64, error) {
	path := fmt.Sprintf("%s?select=id,created_at&order=created_at.desc", table)
	body, err := f.client.doRequest(ctx, http.MethodGet, path)
	if err != nil {
		return 0, err
	}

	h := fnv.New64a()
	h.Write(body)
	return h.Sum64(), nil
}
