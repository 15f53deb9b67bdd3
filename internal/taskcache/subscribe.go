package taskcache

import (
	"context"
	"time"
)

// IntervalFunc decides the poll interval from the latest entry. Zero or
// negative means polling is paused until the cache state changes.
type IntervalFunc func(entry Entry, ok bool) time.Duration

// Subscribe polls a key until ctx is cancelled and delivers each new entry
// on the returned channel. The channel carries only the latest value: a slow
// receiver sees intermediate entries dropped, never stale ones delivered
// late. Concurrent subscriptions to one key share fetches through the
// store's in-flight de-duplication, and timer-driven polls bypass the
// staleness window so the interval is honored against the backend.
//
// While the store is hidden (SetVisible(false)) the poll timer is held; the
// initial fetch and explicit invalidations still go through. Cancelling ctx
// closes the channel; a fetch still in flight at that point completes into
// the cache but is delivered to no one.
func (s *Store) Subscribe(ctx context.Context, key Key, fn FetchFunc, interval IntervalFunc) <-chan Entry {
	updates := make(chan Entry, 1)
	go func() {
		defer close(updates)
		var lastDelivered time.Time
		refetch := false
		if _, err := s.Fetch(ctx, key, fn); err != nil && ctx.Err() != nil {
			return
		}
		for {
			wake := s.wakeChan()
			entry, ok := s.Get(key)
			if ok && entry.Stale {
				refetch = true
			}
			if refetch {
				refetch = false
				if _, err := s.Refetch(ctx, key, fn); err != nil && ctx.Err() != nil {
					return
				}
				entry, ok = s.Get(key)
			}
			if ok && entry.FetchedAt.After(lastDelivered) {
				deliver(updates, entry)
				lastDelivered = entry.FetchedAt
			}

			var timer <-chan time.Time
			if d := interval(entry, ok); d > 0 && s.Visible() {
				timer = time.After(d)
			}
			select {
			case <-ctx.Done():
				return
			case <-timer:
				refetch = true
			case <-wake:
				// Cache state changed: re-deliver, refetch if invalidated,
				// or re-evaluate the pause.
			}
		}
	}()
	return updates
}

// deliver replaces the buffered update so the channel always holds the most
// recent entry.
func deliver(updates chan Entry, entry Entry) {
	for {
		select {
		case updates <- entry:
			return
		default:
			select {
			case <-updates:
			default:
			}
		}
	}
}
