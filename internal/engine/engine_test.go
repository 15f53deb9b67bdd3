package engine_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"slidespeaker/internal/backend"
	"slidespeaker/internal/engine"
	"slidespeaker/internal/logging"
	"slidespeaker/internal/prefs"
	"slidespeaker/internal/taskcache"
	"slidespeaker/internal/tasks"
	"slidespeaker/internal/testsupport"
)

func newEngine(t *testing.T, handler http.Handler, store *prefs.Store, opts ...engine.Option) (*engine.Engine, *taskcache.Store) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client := backend.NewClient(backend.Config{BaseURL: srv.URL},
		backend.WithSleeper(func(time.Duration) {}))
	cache := taskcache.NewStore()
	return engine.New(client, cache, store, logging.NewNop(), opts...), cache
}

func openPrefs(t *testing.T) *prefs.Store {
	t.Helper()
	return testsupport.MustOpenPrefs(t, testsupport.NewConfig(t))
}

func writeJSON(t *testing.T, w http.ResponseWriter, payload any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		t.Errorf("encode response: %v", err)
	}
}

func TestSnapshotReconcilesAndCaches(t *testing.T) {
	var calls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tasks/t1/progress" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		calls.Add(1)
		writeJSON(t, w, map[string]any{
			"task_id":               "t1",
			"status":                "processing",
			"completion_percentage": 40,
			"current_step":          "generate_audio",
			"filename":              "deck.pptx",
			"steps": map[string]any{
				"extract_slides": map[string]any{"status": "completed"},
				"generate_audio": map[string]any{"status": "processing"},
			},
		})
	})
	eng, _ := newEngine(t, handler, nil)

	snapshot, err := eng.Snapshot(context.Background(), "t1")
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	if snapshot.TaskID != "t1" || snapshot.Status != tasks.StatusProcessing {
		t.Fatalf("unexpected snapshot: %+v", snapshot)
	}
	if snapshot.ProgressPercent != 40 {
		t.Fatalf("progress = %d, want 40", snapshot.ProgressPercent)
	}
	if snapshot.Fields.Filename != "deck.pptx" {
		t.Fatalf("filename = %q", snapshot.Fields.Filename)
	}
	if len(snapshot.Steps) != 2 || snapshot.Steps[0].Name != "extract_slides" {
		t.Fatalf("unexpected steps: %+v", snapshot.Steps)
	}

	// A second read inside the staleness window serves from cache.
	if _, err := eng.Snapshot(context.Background(), "t1"); err != nil {
		t.Fatalf("cached snapshot: %v", err)
	}
	if got := calls.Load(); got != 1 {
		t.Fatalf("backend calls = %d, want 1", got)
	}
}

func TestListFiltersAndSorts(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{
			"tasks": []any{
				map[string]any{"task_id": "t-old", "status": "completed", "updated_at": "2026-08-28T10:00:00Z"},
				map[string]any{"task_id": "state_bookkeeping", "status": "completed"},
				map[string]any{"task_id": "t-hidden", "status": "completed", "updated_at": "2026-08-28T11:00:00Z"},
				map[string]any{"task_id": "t-new", "status": "processing", "updated_at": "2026-08-28T10:30:00Z"},
			},
			"total": 4,
		})
	})
	store := openPrefs(t)
	if err := store.HideTask(context.Background(), "t-hidden"); err != nil {
		t.Fatalf("hide: %v", err)
	}
	eng, _ := newEngine(t, handler, store)

	list, err := eng.List(context.Background(), 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("list length = %d, want 2: %+v", len(list), list)
	}
	if list[0].TaskID != "t-new" || list[1].TaskID != "t-old" {
		t.Fatalf("unexpected order: %s, %s", list[0].TaskID, list[1].TaskID)
	}
}

func TestCancelAppliesOptimisticState(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/tasks/t1/cancel":
			writeJSON(t, w, map[string]any{"message": "cancellation requested"})
		default:
			writeJSON(t, w, map[string]any{"task_id": "t1", "status": "processing"})
		}
	})
	eng, cache := newEngine(t, handler, nil)

	if _, err := eng.Snapshot(context.Background(), "t1"); err != nil {
		t.Fatalf("prime: %v", err)
	}
	if _, err := eng.Cancel(context.Background(), "t1"); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	entry, ok := cache.Get(taskcache.TaskKey("t1"))
	if !ok {
		t.Fatal("detail entry missing after cancel")
	}
	snapshot := entry.Data.(tasks.ProgressSnapshot)
	if snapshot.Status != tasks.StatusCancelling {
		t.Fatalf("status = %q, want cancelling", snapshot.Status)
	}
	if !entry.Stale {
		t.Fatal("detail should be stale pending server truth")
	}
}

func TestCancelRollsBackOnRejection(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/tasks/t1/cancel":
			w.WriteHeader(http.StatusConflict)
		default:
			writeJSON(t, w, map[string]any{"task_id": "t1", "status": "completed"})
		}
	})
	eng, cache := newEngine(t, handler, nil)

	if _, err := eng.Snapshot(context.Background(), "t1"); err != nil {
		t.Fatalf("prime: %v", err)
	}
	_, err := eng.Cancel(context.Background(), "t1")
	if !errors.Is(err, backend.ErrMutationRejected) {
		t.Fatalf("err = %v, want ErrMutationRejected", err)
	}

	entry, ok := cache.Get(taskcache.TaskKey("t1"))
	if !ok {
		t.Fatal("detail entry missing after rollback")
	}
	snapshot := entry.Data.(tasks.ProgressSnapshot)
	if snapshot.Status != tasks.StatusCompleted {
		t.Fatalf("status = %q, want restored completed", snapshot.Status)
	}
	if entry.Stale {
		t.Fatal("rollback should restore the entry verbatim, not stale")
	}
}

func TestDeleteRemovesFromViews(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodDelete && r.URL.Path == "/api/tasks/t1/delete":
			w.WriteHeader(http.StatusNoContent)
		case r.URL.Path == "/api/tasks":
			writeJSON(t, w, map[string]any{"tasks": []any{
				map[string]any{"task_id": "t1", "status": "completed", "updated_at": "2026-08-28T10:00:00Z"},
				map[string]any{"task_id": "t2", "status": "completed", "updated_at": "2026-08-28T09:00:00Z"},
			}})
		default:
			writeJSON(t, w, map[string]any{"task_id": "t1", "status": "completed"})
		}
	})
	eng, cache := newEngine(t, handler, nil)
	ctx := context.Background()

	if _, err := eng.Snapshot(ctx, "t1"); err != nil {
		t.Fatalf("prime detail: %v", err)
	}
	if _, err := eng.List(ctx, 20, 0); err != nil {
		t.Fatalf("prime list: %v", err)
	}
	if err := eng.Delete(ctx, "t1"); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if _, ok := cache.Get(taskcache.TaskKey("t1")); ok {
		t.Fatal("detail entry survived delete")
	}
	listKeys := cache.KeysMatching(func(key taskcache.Key) bool { return key.Kind == taskcache.KindList })
	if len(listKeys) != 1 {
		t.Fatalf("list keys = %d, want 1", len(listKeys))
	}
	entry, _ := cache.Get(listKeys[0])
	view := entry.Data.([]tasks.ProgressSnapshot)
	if len(view) != 1 || view[0].TaskID != "t2" {
		t.Fatalf("deleted task still in view: %+v", view)
	}
}

func TestRetryMarksDetailStale(t *testing.T) {
	var progressCalls atomic.Int64
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && r.URL.Path == "/api/tasks/t1/retry":
			writeJSON(t, w, map[string]any{"message": "restarted", "step": "generate_audio"})
		default:
			progressCalls.Add(1)
			writeJSON(t, w, map[string]any{"task_id": "t1", "status": "failed"})
		}
	})
	eng, _ := newEngine(t, handler, nil)
	ctx := context.Background()

	if _, err := eng.Snapshot(ctx, "t1"); err != nil {
		t.Fatalf("prime: %v", err)
	}
	result, err := eng.Retry(ctx, "t1", "generate_audio")
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if result.Step != "generate_audio" {
		t.Fatalf("unexpected ack: %+v", result)
	}

	// The stale mark forces the next read back to the backend.
	if _, err := eng.Snapshot(ctx, "t1"); err != nil {
		t.Fatalf("refetch: %v", err)
	}
	if got := progressCalls.Load(); got != 2 {
		t.Fatalf("progress calls = %d, want 2", got)
	}
}

func TestRunMergesStoredDefaults(t *testing.T) {
	var body map[string]any
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/files/u1/run" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode body: %v", err)
		}
		writeJSON(t, w, map[string]any{"message": "queued", "task_id": "t9"})
	})
	store := openPrefs(t)
	if err := store.SaveRunDefaults(context.Background(), prefs.RunDefaults{VoiceLanguage: "japanese"}); err != nil {
		t.Fatalf("save defaults: %v", err)
	}
	eng, _ := newEngine(t, handler, store)

	result, err := eng.Run(context.Background(), "u1", backend.RunParams{})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.TaskID != "t9" {
		t.Fatalf("unexpected ack: %+v", result)
	}
	if body["voice_language"] != "japanese" {
		t.Fatalf("stored default not applied: %v", body)
	}
	if body["video_resolution"] != "hd" {
		t.Fatalf("builtin default not applied: %v", body)
	}
	ref, _ := body["client_reference"].(string)
	if len(ref) != 36 {
		t.Fatalf("client_reference = %q", ref)
	}
}

func TestWatchDeliversAndStopsOnTerminal(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{"task_id": "t1", "status": "completed", "completion_percentage": 100})
	})
	eng, _ := newEngine(t, handler, nil, engine.WithPollInterval(10*time.Millisecond))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	snapshots := eng.Watch(ctx, "t1")
	select {
	case snapshot := <-snapshots:
		if snapshot.Status != tasks.StatusCompleted || snapshot.ProgressPercent != 100 {
			t.Fatalf("unexpected snapshot: %+v", snapshot)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no snapshot delivered")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-snapshots:
			if !open {
				return
			}
			// Drain stragglers already buffered before the cancel landed.
		case <-deadline:
			t.Fatal("channel did not close after cancel")
		}
	}
}

func TestHideRequiresPrefs(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(t, w, map[string]any{})
	})
	eng, _ := newEngine(t, handler, nil)
	if err := eng.Hide(context.Background(), "t1"); !errors.Is(err, engine.ErrNoPrefs) {
		t.Fatalf("err = %v, want ErrNoPrefs", err)
	}
}
