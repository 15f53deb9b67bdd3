package main

import (
	"bytes"
	"strings"
	"testing"

	"slidespeaker/internal/tasks"
)

func TestRenderProgressBar(t *testing.T) {
	cases := []struct {
		percent int
		want    string
	}{
		{0, "  0%"},
		{50, " 50%"},
		{100, "100%"},
		{150, "100%"},
		{-5, "  0%"},
	}
	for _, tc := range cases {
		got := renderProgressBar(tc.percent, false)
		if !strings.HasSuffix(got, tc.want) {
			t.Errorf("renderProgressBar(%d) = %q, want suffix %q", tc.percent, got, tc.want)
		}
		if strings.Contains(got, "\x1b") {
			t.Errorf("uncolored bar contains escape codes: %q", got)
		}
	}
	half := renderProgressBar(50, false)
	if strings.Count(half, "█") != progressBarWidth/2 {
		t.Errorf("50%% bar fill wrong: %q", half)
	}
}

func TestRenderStatusWithoutColor(t *testing.T) {
	got := renderStatus(tasks.StatusFailed, false)
	if got != "✗ failed" {
		t.Fatalf("renderStatus = %q", got)
	}
	colored := renderStatus(tasks.StatusFailed, true)
	if !strings.HasPrefix(colored, ansiRed) || !strings.HasSuffix(colored, ansiReset) {
		t.Fatalf("colored status missing codes: %q", colored)
	}
}

func TestRenderSnapshotSections(t *testing.T) {
	snapshot := tasks.ProgressSnapshot{
		TaskID:          "t1",
		Status:          tasks.StatusFailed,
		ProgressPercent: 62,
		CurrentStep:     "generate_audio",
		Fields: tasks.DetailFields{
			Filename:      "deck.pptx",
			VoiceLanguage: "japanese",
			TaskType:      "video",
		},
		Steps: []tasks.CanonicalStep{
			{Name: "extract_slides", Status: tasks.StepCompleted},
			{Name: "generate_audio", Status: tasks.StepFailed},
			{Name: "compose_video", Status: tasks.StepPending, BlockedByFailure: true},
		},
		Errors: []tasks.TaskError{
			{Step: "generate_audio", Error: "voice service unavailable"},
		},
	}

	var buf bytes.Buffer
	renderSnapshot(&buf, snapshot, false)
	out := buf.String()

	for _, want := range []string{
		"Task:     t1",
		"File:     deck.pptx",
		"✗ failed",
		"62%",
		"日本語",
		"✓ Extracting Slides",
		"✗ Generating Audio",
		"· Composing Video (blocked by earlier failure)",
		"Generating Audio: voice service unavailable",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
