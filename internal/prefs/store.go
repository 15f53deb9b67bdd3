package prefs

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS run_defaults (
    key   TEXT PRIMARY KEY,
    value TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS hidden_tasks (
    task_id   TEXT PRIMARY KEY,
    hidden_at TEXT NOT NULL
);
`

// ErrLocked reports that another process holds the preference database.
var ErrLocked = errors.New("locked by another process")

// RunDefaults are the task-run parameter presets. Empty strings mean "let
// the backend decide", matching an unset preset.
type RunDefaults struct {
	VoiceLanguage      string
	SubtitleLanguage   string
	TranscriptLanguage string
	VideoResolution    string
}

// BuiltinDefaults returns the presets assumed before the user saves any.
func BuiltinDefaults() RunDefaults {
	return RunDefaults{
		VoiceLanguage:   "english",
		VideoResolution: "hd",
	}
}

// Store manages preference persistence backed by SQLite.
type Store struct {
	db   *sql.DB
	path string
	lock *flock.Flock
}

// Open initializes or connects to the preference database. The directory is
// created if missing. An advisory lock next to the database keeps it to one
// process at a time; Open fails with ErrLocked rather than waiting when
// another process holds it.
func Open(path string) (*Store, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, errors.New("prefs: database path required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prefs: ensure directory: %w", err)
	}

	lock := flock.New(path + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("prefs: acquire lock: %w", err)
	}
	if !locked {
		return nil, fmt.Errorf("prefs: database %s: %w", path, ErrLocked)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		_ = lock.Unlock()
		return nil, fmt.Errorf("prefs: open sqlite db: %w", err)
	}
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			_ = lock.Unlock()
			return nil, fmt.Errorf("prefs: apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		_ = lock.Unlock()
		return nil, fmt.Errorf("prefs: ensure schema: %w", err)
	}
	return &Store{db: db, path: path, lock: lock}, nil
}

// Close releases the database and the advisory lock.
func (s *Store) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.db != nil {
		if err := s.db.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if s.lock != nil {
		if err := s.lock.Unlock(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RunDefaults loads the saved presets merged over the builtin values, so a
// preset the user never touched keeps its default.
func (s *Store) RunDefaults(ctx context.Context) (RunDefaults, error) {
	defaults := BuiltinDefaults()
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM run_defaults`)
	if err != nil {
		return defaults, fmt.Errorf("prefs: load run defaults: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return defaults, fmt.Errorf("prefs: scan run default: %w", err)
		}
		switch key {
		case "voice_language":
			defaults.VoiceLanguage = value
		case "subtitle_language":
			defaults.SubtitleLanguage = value
		case "transcript_language":
			defaults.TranscriptLanguage = value
		case "video_resolution":
			defaults.VideoResolution = value
		}
	}
	if err := rows.Err(); err != nil {
		return defaults, fmt.Errorf("prefs: iterate run defaults: %w", err)
	}
	return defaults, nil
}

// SaveRunDefaults upserts only the presets set in updates; empty members
// leave the stored value alone.
func (s *Store) SaveRunDefaults(ctx context.Context, updates RunDefaults) error {
	pairs := map[string]string{
		"voice_language":      updates.VoiceLanguage,
		"subtitle_language":   updates.SubtitleLanguage,
		"transcript_language": updates.TranscriptLanguage,
		"video_resolution":    updates.VideoResolution,
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("prefs: begin save: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()
	for key, value := range pairs {
		if strings.TrimSpace(value) == "" {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_defaults (key, value) VALUES (?, ?)
             ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
			key, value,
		); err != nil {
			return fmt.Errorf("prefs: save run default %s: %w", key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("prefs: commit save: %w", err)
	}
	return nil
}

// ResetRunDefaults clears every saved preset back to the builtin values.
func (s *Store) ResetRunDefaults(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM run_defaults`); err != nil {
		return fmt.Errorf("prefs: reset run defaults: %w", err)
	}
	return nil
}

// HideTask records a task id as locally hidden.
func (s *Store) HideTask(ctx context.Context, taskID string) error {
	taskID = strings.TrimSpace(taskID)
	if taskID == "" {
		return errors.New("prefs: task id required")
	}
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO hidden_tasks (task_id, hidden_at) VALUES (?, ?)
         ON CONFLICT(task_id) DO NOTHING`,
		taskID, time.Now().UTC().Format(time.RFC3339),
	); err != nil {
		return fmt.Errorf("prefs: hide task: %w", err)
	}
	return nil
}

// UnhideTask removes a task id from the hidden set.
func (s *Store) UnhideTask(ctx context.Context, taskID string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM hidden_tasks WHERE task_id = ?`, strings.TrimSpace(taskID),
	); err != nil {
		return fmt.Errorf("prefs: unhide task: %w", err)
	}
	return nil
}

// HiddenTasks returns the hidden task ids as a membership set.
func (s *Store) HiddenTasks(ctx context.Context) (map[string]struct{}, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT task_id FROM hidden_tasks`)
	if err != nil {
		return nil, fmt.Errorf("prefs: load hidden tasks: %w", err)
	}
	defer rows.Close()
	hidden := make(map[string]struct{})
	for rows.Next() {
		var taskID string
		if err := rows.Scan(&taskID); err != nil {
			return nil, fmt.Errorf("prefs: scan hidden task: %w", err)
		}
		hidden[taskID] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("prefs: iterate hidden tasks: %w", err)
	}
	return hidden, nil
}
