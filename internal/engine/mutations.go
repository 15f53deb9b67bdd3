package engine

import (
	"context"
	"errors"
	"fmt"

	"slidespeaker/internal/backend"
	"slidespeaker/internal/logging"
	"slidespeaker/internal/prefs"
	"slidespeaker/internal/taskcache"
	"slidespeaker/internal/tasks"
)

// ErrNoPrefs is returned by operations that need the local preferences store
// when the engine was built without one.
var ErrNoPrefs = errors.New("preferences store unavailable")

// Cancel requests cancellation of a running task. The cached views flip
// immediately; a failed request restores them.
func (e *Engine) Cancel(ctx context.Context, taskID string) (backend.MutationResult, error) {
	detail := taskcache.TaskKey(taskID)
	keys := append([]taskcache.Key{detail}, e.viewKeys()...)

	result, err := e.cache.Mutate(ctx, detail, taskcache.Mutation{
		Keys: keys,
		Update: func(key taskcache.Key, current any, present bool) (any, taskcache.UpdateOp) {
			if !present {
				return nil, taskcache.OpKeep
			}
			if key == detail {
				snapshot, ok := current.(tasks.ProgressSnapshot)
				if !ok {
					return nil, taskcache.OpKeep
				}
				snapshot.Status = tasks.StatusCancelling
				return snapshot, taskcache.OpSet
			}
			return retagInView(current, taskID, tasks.StatusCancelled)
		},
		Call: func(ctx context.Context) (any, error) {
			return e.client.CancelTask(ctx, taskID)
		},
	})
	if err != nil {
		return backend.MutationResult{}, err
	}
	e.logger.Info("task cancel requested", logging.String("task_id", taskID))
	ack, _ := result.(backend.MutationResult)
	return ack, nil
}

// Delete removes a task and its artifacts. The task vanishes from every
// cached view immediately and stays gone when the backend confirms.
func (e *Engine) Delete(ctx context.Context, taskID string) error {
	detail := taskcache.TaskKey(taskID)
	keys := append([]taskcache.Key{detail}, e.viewKeys()...)

	_, err := e.cache.Mutate(ctx, detail, taskcache.Mutation{
		Keys: keys,
		Update: func(key taskcache.Key, current any, present bool) (any, taskcache.UpdateOp) {
			if !present {
				return nil, taskcache.OpKeep
			}
			if key == detail {
				return nil, taskcache.OpRemove
			}
			return dropFromView(current, taskID)
		},
		Call: func(ctx context.Context) (any, error) {
			return nil, e.client.DeleteTask(ctx, taskID)
		},
	})
	if err != nil {
		return err
	}
	e.logger.Info("task deleted", logging.String("task_id", taskID))
	return nil
}

// Retry restarts a failed task, from the named step when step is non-empty.
// There is no optimistic state to apply; the cached views are marked stale so
// the next read sees the restarted pipeline.
func (e *Engine) Retry(ctx context.Context, taskID, step string) (backend.MutationResult, error) {
	detail := taskcache.TaskKey(taskID)
	keys := append([]taskcache.Key{detail}, e.viewKeys()...)

	result, err := e.cache.Mutate(ctx, detail, taskcache.Mutation{
		Keys: keys,
		Call: func(ctx context.Context) (any, error) {
			return e.client.RetryTask(ctx, taskID, step)
		},
	})
	if err != nil {
		return backend.MutationResult{}, err
	}
	e.logger.Info("task retry requested",
		logging.String("task_id", taskID), logging.String("step", step))
	ack, _ := result.(backend.MutationResult)
	return ack, nil
}

// Run submits a processing run for an uploaded file. Fields left empty in
// params are filled from the stored run defaults.
func (e *Engine) Run(ctx context.Context, uploadID string, params backend.RunParams) (backend.MutationResult, error) {
	params, err := e.mergeRunDefaults(ctx, params)
	if err != nil {
		return backend.MutationResult{}, fmt.Errorf("merge run defaults: %w", err)
	}
	result, err := e.client.RunFile(ctx, uploadID, params)
	if err != nil {
		return backend.MutationResult{}, err
	}
	e.cache.InvalidateMatching(func(key taskcache.Key) bool {
		return key.Kind == taskcache.KindList || key.Kind == taskcache.KindSearch
	})
	e.logger.Info("run submitted",
		logging.String("upload_id", uploadID), logging.String("task_id", result.TaskID))
	return result, nil
}

// Hide removes a task from local list views without touching the backend.
func (e *Engine) Hide(ctx context.Context, taskID string) error {
	if e.prefs == nil {
		return ErrNoPrefs
	}
	if err := e.prefs.HideTask(ctx, taskID); err != nil {
		return err
	}
	e.invalidateViews()
	return nil
}

// Unhide restores a locally hidden task to list views.
func (e *Engine) Unhide(ctx context.Context, taskID string) error {
	if e.prefs == nil {
		return ErrNoPrefs
	}
	if err := e.prefs.UnhideTask(ctx, taskID); err != nil {
		return err
	}
	e.invalidateViews()
	return nil
}

// RunDefaults returns the stored run defaults merged over the builtins.
func (e *Engine) RunDefaults(ctx context.Context) (prefs.RunDefaults, error) {
	if e.prefs == nil {
		return prefs.BuiltinDefaults(), nil
	}
	return e.prefs.RunDefaults(ctx)
}

// SaveRunDefaults persists the non-empty fields of defaults.
func (e *Engine) SaveRunDefaults(ctx context.Context, defaults prefs.RunDefaults) error {
	if e.prefs == nil {
		return ErrNoPrefs
	}
	return e.prefs.SaveRunDefaults(ctx, defaults)
}

// ResetRunDefaults restores the builtin run defaults.
func (e *Engine) ResetRunDefaults(ctx context.Context) error {
	if e.prefs == nil {
		return ErrNoPrefs
	}
	return e.prefs.ResetRunDefaults(ctx)
}

func (e *Engine) mergeRunDefaults(ctx context.Context, params backend.RunParams) (backend.RunParams, error) {
	if e.prefs == nil {
		return params, nil
	}
	defaults, err := e.prefs.RunDefaults(ctx)
	if err != nil {
		return params, err
	}
	if params.VoiceLanguage == "" {
		params.VoiceLanguage = defaults.VoiceLanguage
	}
	if params.SubtitleLanguage == "" {
		params.SubtitleLanguage = defaults.SubtitleLanguage
	}
	if params.TranscriptLanguage == "" {
		params.TranscriptLanguage = defaults.TranscriptLanguage
	}
	if params.VideoResolution == "" {
		params.VideoResolution = defaults.VideoResolution
	}
	return params, nil
}

func (e *Engine) viewKeys() []taskcache.Key {
	return e.cache.KeysMatching(func(key taskcache.Key) bool {
		return key.Kind == taskcache.KindList || key.Kind == taskcache.KindSearch
	})
}

func (e *Engine) invalidateViews() {
	e.cache.InvalidateMatching(func(key taskcache.Key) bool {
		return key.Kind == taskcache.KindList || key.Kind == taskcache.KindSearch
	})
}

// retagInView rewrites one task's status inside a cached list view.
func retagInView(current any, taskID string, status tasks.Status) (any, taskcache.UpdateOp) {
	view, ok := current.([]tasks.ProgressSnapshot)
	if !ok {
		return nil, taskcache.OpKeep
	}
	updated := make([]tasks.ProgressSnapshot, len(view))
	copy(updated, view)
	changed := false
	for i := range updated {
		if updated[i].TaskID == taskID {
			updated[i].Status = status
			changed = true
		}
	}
	if !changed {
		return nil, taskcache.OpKeep
	}
	return updated, taskcache.OpSet
}

// dropFromView filters one task out of a cached list view.
func dropFromView(current any, taskID string) (any, taskcache.UpdateOp) {
	view, ok := current.([]tasks.ProgressSnapshot)
	if !ok {
		return nil, taskcache.OpKeep
	}
	updated := make([]tasks.ProgressSnapshot, 0, len(view))
	for _, snapshot := range view {
		if snapshot.TaskID != taskID {
			updated = append(updated, snapshot)
		}
	}
	if len(updated) == len(view) {
		return nil, taskcache.OpKeep
	}
	return updated, taskcache.OpSet
}
