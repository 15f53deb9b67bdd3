package reconcile_test

import (
	"testing"

	"slidespeaker/internal/reconcile"
)

func TestNormalizeErrorsShapes(t *testing.T) {
	entries := []any{
		"plain failure",
		map[string]any{"step": "generate_audio", "error": "tts failed", "timestamp": "2026-08-01T10:00:00Z"},
		map[string]any{"message": "fallback message"},
		map[string]any{"step": "compose_video"},
		nil,
		42,
	}
	got := reconcile.NormalizeErrors(entries, "current_phase", "2026-08-01T09:00:00Z")
	if len(got) != 4 {
		t.Fatalf("expected 4 normalized errors, got %d: %+v", len(got), got)
	}
	if got[0].Step != "current_phase" || got[0].Error != "plain failure" || got[0].Timestamp != "2026-08-01T09:00:00Z" {
		t.Fatalf("string entry mishandled: %+v", got[0])
	}
	if got[1].Step != "generate_audio" || got[1].Timestamp != "2026-08-01T10:00:00Z" {
		t.Fatalf("object entry mishandled: %+v", got[1])
	}
	if got[2].Error != "fallback message" || got[2].Step != "current_phase" {
		t.Fatalf("message fallback mishandled: %+v", got[2])
	}
	if got[3].Error != "42" {
		t.Fatalf("scalar entry mishandled: %+v", got[3])
	}
}

func TestNormalizeErrorsFallbackStep(t *testing.T) {
	got := reconcile.NormalizeErrors([]any{"boom"}, "", "")
	if got[0].Step != "unknown_step" {
		t.Fatalf("expected unknown_step, got %q", got[0].Step)
	}
}

func TestNormalizeErrorsEmpty(t *testing.T) {
	if got := reconcile.NormalizeErrors(nil, "s", "t"); got != nil {
		t.Fatalf("expected nil, got %+v", got)
	}
	if got := reconcile.NormalizeErrors([]any{map[string]any{"step": "x"}, ""}, "s", "t"); got != nil {
		t.Fatalf("entries without messages should vanish, got %+v", got)
	}
}
