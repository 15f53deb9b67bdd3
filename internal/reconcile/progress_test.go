package reconcile_test

import (
	"math"
	"testing"

	"slidespeaker/internal/reconcile"
	"slidespeaker/internal/tasks"
)

func TestProgressPercentNumericSources(t *testing.T) {
	cases := []struct {
		name    string
		payload tasks.Raw
		want    int
	}{
		{"integer percentage", tasks.Raw{"progress": 42.0}, 42},
		{"fraction", tasks.Raw{"progress": 0.5}, 50},
		{"fraction rounds", tasks.Raw{"progress": 0.666}, 67},
		{"exactly one is full", tasks.Raw{"progress": 1.0}, 100},
		{"just above one is a percentage", tasks.Raw{"progress": 1.4}, 1},
		{"over a hundred clamps", tasks.Raw{"progress": 240.0}, 100},
		{"negative clamps to zero", tasks.Raw{"progress": -3.0}, 0},
		{"completion outranks progress", tasks.Raw{"completion_percentage": 80.0, "progress": 0.1}, 80},
		{"state carries the value", tasks.Raw{"state": map[string]any{"completion_percentage": 33.0}}, 33},
		{"string number parses", tasks.Raw{"progress": "75"}, 75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := reconcile.ProgressPercent(tc.payload, nil); got != tc.want {
				t.Fatalf("progress = %d, want %d", got, tc.want)
			}
		})
	}
}

func TestProgressPercentStepFallback(t *testing.T) {
	steps := map[string]tasks.StepState{
		"extract_slides":       {Status: "completed"},
		"analyze_slide_images": {Status: "success"},
		"generate_transcripts": {Status: "completed"},
		"generate_audio":       {Status: "completed"},
		"compose_video":        {Status: "processing"},
	}
	if got := reconcile.ProgressPercent(tasks.Raw{}, steps); got != 80 {
		t.Fatalf("progress = %d, want 80", got)
	}
}

func TestProgressPercentNoInformation(t *testing.T) {
	if got := reconcile.ProgressPercent(tasks.Raw{}, nil); got != 0 {
		t.Fatalf("progress = %d, want 0", got)
	}
}

func TestProgressPercentNonFiniteIgnored(t *testing.T) {
	// NaN is not a finite candidate; the step fallback applies instead.
	payload := tasks.Raw{"progress": math.NaN()}
	steps := map[string]tasks.StepState{
		"extract_slides": {Status: "completed"},
		"compose_video":  {Status: "pending"},
	}
	if got := reconcile.ProgressPercent(payload, steps); got != 50 {
		t.Fatalf("progress = %d, want 50", got)
	}
}

func TestProgressPercentBounds(t *testing.T) {
	for _, value := range []float64{-1000, -0.5, 0, 0.001, 0.999, 1, 1.001, 50, 99.4, 100, 100.6, 1e9} {
		got := reconcile.ProgressPercent(tasks.Raw{"progress": value}, nil)
		if got < 0 || got > 100 {
			t.Fatalf("progress %v escaped bounds: %d", value, got)
		}
	}
}
