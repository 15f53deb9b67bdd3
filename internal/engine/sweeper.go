package engine

import (
	"context"
	"time"

	"slidespeaker/internal/logging"
	"slidespeaker/internal/taskcache"
)

// StartSweeper launches the background eviction sweep and returns. The sweep
// stops when ctx is cancelled.
func (e *Engine) StartSweeper(ctx context.Context) {
	go func() {
		ticker := time.NewTicker(e.sweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				e.sweep()
			}
		}
	}()
}

// sweep applies the two eviction horizons: long-lived task details and
// faster-rotting list and search views.
func (e *Engine) sweep() {
	details := e.cache.Evict(e.detailTTL, func(key taskcache.Key) bool {
		return key.Kind == taskcache.KindTask
	})
	views := e.cache.Evict(e.listTTL, func(key taskcache.Key) bool {
		return key.Kind == taskcache.KindList || key.Kind == taskcache.KindSearch
	})
	if details > 0 || views > 0 {
		e.logger.Debug("cache sweep complete",
			logging.Int("details_evicted", details),
			logging.Int("views_evicted", views))
	}
}
