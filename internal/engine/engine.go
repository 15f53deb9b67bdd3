// Package engine wires the backend client, the reactive cache, and the
// reconciliation pipeline into the surface the CLI consumes: snapshot reads,
// polling watches, list and search views, optimistic mutations, and the
// eviction sweeper.
package engine

import (
	"log/slog"
	"time"

	"slidespeaker/internal/backend"
	"slidespeaker/internal/logging"
	"slidespeaker/internal/prefs"
	"slidespeaker/internal/taskcache"
	"slidespeaker/internal/tasks"
)

const (
	// defaultPollInterval is how often active tasks refresh.
	defaultPollInterval = 3 * time.Second
	// defaultDetailTTL and defaultListTTL are the eviction horizons. Lists
	// rotate faster and are cheap to refetch, so they get the shorter one.
	defaultDetailTTL = 60 * time.Minute
	defaultListTTL   = 30 * time.Minute
	// defaultSweepInterval is how often the eviction sweep runs.
	defaultSweepInterval = 5 * time.Minute
)

// Engine is the task console's core. One Engine serves every view in the
// process; all methods are safe for concurrent use.
type Engine struct {
	client *backend.Client
	cache  *taskcache.Store
	prefs  *prefs.Store
	logger *slog.Logger

	pollInterval  time.Duration
	detailTTL     time.Duration
	listTTL       time.Duration
	sweepInterval time.Duration
}

// Option customizes an Engine.
type Option func(*Engine)

// WithPollInterval overrides the active-task poll interval.
func WithPollInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.pollInterval = d
		}
	}
}

// WithEvictionHorizons overrides the detail and list eviction ages.
func WithEvictionHorizons(detail, list time.Duration) Option {
	return func(e *Engine) {
		if detail > 0 {
			e.detailTTL = detail
		}
		if list > 0 {
			e.listTTL = list
		}
	}
}

// WithSweepInterval overrides how often the eviction sweep runs.
func WithSweepInterval(d time.Duration) Option {
	return func(e *Engine) {
		if d > 0 {
			e.sweepInterval = d
		}
	}
}

// New builds an Engine. prefsStore may be nil; hidden-task filtering and
// run-default merging then switch off.
func New(client *backend.Client, cache *taskcache.Store, prefsStore *prefs.Store, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		client:        client,
		cache:         cache,
		prefs:         prefsStore,
		logger:        logging.NewComponentLogger(logger, "engine"),
		pollInterval:  defaultPollInterval,
		detailTTL:     defaultDetailTTL,
		listTTL:       defaultListTTL,
		sweepInterval: defaultSweepInterval,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Cache exposes the underlying store, mainly for visibility control.
func (e *Engine) Cache() *taskcache.Store { return e.cache }

// watchInterval is the conditional polling policy: active tasks (including
// failed ones awaiting a retry) poll frequently, terminal tasks not at all.
func (e *Engine) watchInterval(entry taskcache.Entry, ok bool) time.Duration {
	if !ok {
		return e.pollInterval
	}
	snapshot, isSnapshot := entry.Data.(tasks.ProgressSnapshot)
	if !isSnapshot {
		return e.pollInterval
	}
	if snapshot.Status.IsTerminal() {
		return 0
	}
	return e.pollInterval
}
