package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"slidespeaker/internal/logging"
	"slidespeaker/internal/project"
	"slidespeaker/internal/reconcile"
	"slidespeaker/internal/taskcache"
	"slidespeaker/internal/tasks"
)

// syntheticIDPrefix marks internal bookkeeping records the backend leaks
// into its list responses; they are never real tasks.
const syntheticIDPrefix = "state_"

// Snapshot returns the reconciled view of one task, from cache while fresh.
func (e *Engine) Snapshot(ctx context.Context, taskID string) (tasks.ProgressSnapshot, error) {
	value, err := e.cache.Fetch(ctx, taskcache.TaskKey(taskID), e.progressFetch(taskID))
	if err != nil {
		return tasks.ProgressSnapshot{}, err
	}
	return asSnapshot(value, taskID), nil
}

// Watch polls one task until ctx is cancelled, delivering a fresh snapshot
// after every poll. Terminal tasks stop polling; the channel stays open so a
// retry can revive it.
func (e *Engine) Watch(ctx context.Context, taskID string) <-chan tasks.ProgressSnapshot {
	entries := e.cache.Subscribe(ctx, taskcache.TaskKey(taskID), e.progressFetch(taskID), e.watchInterval)
	snapshots := make(chan tasks.ProgressSnapshot, 1)
	go func() {
		defer close(snapshots)
		for entry := range entries {
			select {
			case snapshots <- asSnapshot(entry.Data, taskID):
			case <-ctx.Done():
				return
			}
		}
	}()
	return snapshots
}

// List returns the reconciled task list, newest first, with synthetic and
// locally hidden entries filtered out.
func (e *Engine) List(ctx context.Context, limit, offset int) ([]tasks.ProgressSnapshot, error) {
	key := taskcache.ListKey(fmt.Sprintf("all:%d:%d", limit, offset))
	value, err := e.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		list, err := e.client.ListTasks(ctx, limit, offset)
		if err != nil {
			return nil, err
		}
		return e.reconcileList(ctx, list.Tasks), nil
	})
	if err != nil {
		return nil, err
	}
	snapshots, _ := value.([]tasks.ProgressSnapshot)
	return snapshots, nil
}

// Search runs a task search through the cache.
func (e *Engine) Search(ctx context.Context, query string, limit int) ([]tasks.ProgressSnapshot, error) {
	query = strings.TrimSpace(query)
	key := taskcache.SearchKey(fmt.Sprintf("%s:%d", query, limit))
	value, err := e.cache.Fetch(ctx, key, func(ctx context.Context) (any, error) {
		list, err := e.client.SearchTasks(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return e.reconcileList(ctx, list.Tasks), nil
	})
	if err != nil {
		return nil, err
	}
	snapshots, _ := value.([]tasks.ProgressSnapshot)
	return snapshots, nil
}

func (e *Engine) progressFetch(taskID string) taskcache.FetchFunc {
	return func(ctx context.Context) (any, error) {
		payload, err := e.client.GetProgress(ctx, taskID)
		if err != nil {
			return nil, err
		}
		return reconcile.Snapshot(payload), nil
	}
}

func (e *Engine) reconcileList(ctx context.Context, payloads []tasks.Raw) []tasks.ProgressSnapshot {
	hidden := e.hiddenTasks(ctx)
	snapshots := make([]tasks.ProgressSnapshot, 0, len(payloads))
	for _, payload := range payloads {
		taskID := project.TaskID(payload)
		if strings.HasPrefix(taskID, syntheticIDPrefix) {
			continue
		}
		if _, isHidden := hidden[taskID]; isHidden {
			continue
		}
		snapshots = append(snapshots, reconcile.Snapshot(payload))
	}
	sort.SliceStable(snapshots, func(i, j int) bool {
		return listSortKey(snapshots[i]) > listSortKey(snapshots[j])
	})
	return snapshots
}

// listSortKey orders newest first. Timestamps are RFC 3339 strings, so
// lexicographic comparison matches chronological order.
func listSortKey(snapshot tasks.ProgressSnapshot) string {
	if snapshot.UpdatedAt != "" {
		return snapshot.UpdatedAt
	}
	return snapshot.CreatedAt
}

func (e *Engine) hiddenTasks(ctx context.Context) map[string]struct{} {
	if e.prefs == nil {
		return nil
	}
	hidden, err := e.prefs.HiddenTasks(ctx)
	if err != nil {
		e.logger.Warn("loading hidden tasks failed, showing all", logging.Error(err))
		return nil
	}
	return hidden
}

// asSnapshot recovers a snapshot from a cache value. A cache poisoned with a
// foreign type yields a placeholder snapshot rather than a panic.
func asSnapshot(value any, taskID string) tasks.ProgressSnapshot {
	if snapshot, ok := value.(tasks.ProgressSnapshot); ok {
		return snapshot
	}
	return tasks.ProgressSnapshot{TaskID: taskID, Status: tasks.StatusUnknown}
}
