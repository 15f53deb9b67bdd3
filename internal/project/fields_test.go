package project_test

import (
	"testing"

	"slidespeaker/internal/project"
	"slidespeaker/internal/tasks"
)

func TestFieldsFromKwargs(t *testing.T) {
	payload := tasks.Raw{
		"task_id": "task-1",
		"kwargs": map[string]any{
			"voice_language":    "japanese",
			"subtitle_language": "korean",
			"voice_id":          "vx-300",
			"filename":          "deck.pptx",
			"file_ext":          ".pptx",
		},
	}
	fields := project.Fields(payload)
	if fields.VoiceLanguage != "japanese" {
		t.Fatalf("voice language = %q", fields.VoiceLanguage)
	}
	if fields.SubtitleLanguage != "korean" {
		t.Fatalf("subtitle language = %q", fields.SubtitleLanguage)
	}
	if fields.VoiceID != "vx-300" {
		t.Fatalf("voice id = %q", fields.VoiceID)
	}
	if fields.Filename != "deck.pptx" {
		t.Fatalf("filename = %q", fields.Filename)
	}
}

func TestFieldsStateOutranksTask(t *testing.T) {
	payload := tasks.Raw{
		"voice_language": "english",
		"state": map[string]any{
			"voice_language": "french",
		},
	}
	fields := project.Fields(payload)
	if fields.VoiceLanguage != "french" {
		t.Fatalf("expected state value to win, got %q", fields.VoiceLanguage)
	}
}

func TestFieldsObjectCoercion(t *testing.T) {
	payload := tasks.Raw{
		"state": map[string]any{
			"config": map[string]any{
				"voice": map[string]any{"id": "vx-77"},
			},
		},
	}
	fields := project.Fields(payload)
	if fields.VoiceID != "vx-77" {
		t.Fatalf("voice id = %q, want vx-77", fields.VoiceID)
	}
}

func TestFieldsArrayCoercion(t *testing.T) {
	payload := tasks.Raw{
		"kwargs": map[string]any{
			"voice_id": []any{nil, "vx-first", "vx-second"},
		},
	}
	fields := project.Fields(payload)
	if fields.VoiceID != "vx-first" {
		t.Fatalf("voice id = %q, want vx-first", fields.VoiceID)
	}
}

func TestFieldsBFSFallback(t *testing.T) {
	// No path table entry matches; the key search finds a renamed field two
	// levels deep.
	payload := tasks.Raw{
		"state": map[string]any{
			"audio": map[string]any{
				"synthesis": map[string]any{
					"elevenlabs_voice_id": "vx-deep",
				},
			},
		},
	}
	fields := project.Fields(payload)
	if fields.VoiceID != "vx-deep" {
		t.Fatalf("voice id = %q, want vx-deep", fields.VoiceID)
	}
}

func TestFieldsBFSDepthBound(t *testing.T) {
	nested := map[string]any{"voice_id": "vx-buried"}
	for range [8]struct{}{} {
		nested = map[string]any{"layer": nested}
	}
	fields := project.Fields(tasks.Raw{"state": map[string]any{"deep": nested}})
	if fields.VoiceID != "" {
		t.Fatalf("expected unresolved past depth bound, got %q", fields.VoiceID)
	}
}

func TestFieldsCyclicPayloadTerminates(t *testing.T) {
	state := map[string]any{}
	state["self"] = state
	fields := project.Fields(tasks.Raw{"state": state})
	if fields.VoiceID != "" {
		t.Fatalf("expected empty field, got %q", fields.VoiceID)
	}
}

func TestFieldsUnresolvedStaysEmpty(t *testing.T) {
	fields := project.Fields(tasks.Raw{"task_id": "t-9"})
	if fields.VoiceLanguage != "" || fields.VoiceID != "" || fields.TaskType != "" {
		t.Fatalf("expected empty fields, got %+v", fields)
	}
}

func TestFilenameChain(t *testing.T) {
	cases := []struct {
		name    string
		payload tasks.Raw
		want    string
	}{
		{
			name:    "explicit filename",
			payload: tasks.Raw{"filename": "report.pdf", "upload_id": "u1"},
			want:    "report.pdf",
		},
		{
			name: "file path basename",
			payload: tasks.Raw{
				"state": map[string]any{"file_path": "/data/uploads/talk.key"},
			},
			want: "talk.key",
		},
		{
			name:    "upload id with extension",
			payload: tasks.Raw{"upload_id": "u-42", "file_ext": "pdf"},
			want:    "u-42.pdf",
		},
		{
			name:    "task id with extension",
			payload: tasks.Raw{"task_id": "t-42", "file_ext": ".pptx"},
			want:    "t-42.pptx",
		},
		{
			name:    "bare upload id",
			payload: tasks.Raw{"upload_id": "u-99"},
			want:    "u-99",
		},
		{
			name:    "bare task id",
			payload: tasks.Raw{"task_id": "t-99"},
			want:    "t-99",
		},
		{
			name:    "placeholder",
			payload: tasks.Raw{},
			want:    project.FilenamePlaceholder,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			fields := project.Fields(tc.payload)
			if fields.Filename != tc.want {
				t.Fatalf("filename = %q, want %q", fields.Filename, tc.want)
			}
		})
	}
}

func TestProgressCandidatesOrder(t *testing.T) {
	payload := tasks.Raw{
		"progress": 0.4,
		"state": map[string]any{
			"completion_percentage": 55,
			"progress":              0.6,
		},
	}
	got := project.ProgressCandidates(payload)
	want := []float64{55, 0.4, 0.6}
	if len(got) != len(want) {
		t.Fatalf("candidates = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("candidates = %v, want %v", got, want)
		}
	}
}

func TestStepStatesFallbackKeys(t *testing.T) {
	payload := tasks.Raw{
		"detailed_state": map[string]any{
			"pipeline_steps": map[string]any{
				"extract_slides": map[string]any{"status": "completed"},
				"generate_audio": "processing",
			},
		},
	}
	steps := project.StepStates(payload)
	if len(steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(steps))
	}
	if steps["extract_slides"].Status != "completed" {
		t.Fatalf("extract_slides status = %q", steps["extract_slides"].Status)
	}
	if steps["generate_audio"].Status != "processing" {
		t.Fatalf("generate_audio status = %q", steps["generate_audio"].Status)
	}
}

func TestStepStatesAbsent(t *testing.T) {
	if steps := project.StepStates(tasks.Raw{"state": map[string]any{}}); steps != nil {
		t.Fatalf("expected nil, got %v", steps)
	}
}

func TestFlagsDefaults(t *testing.T) {
	flags := project.Flags(tasks.Raw{})
	if !flags.GenerateVideo || !flags.GenerateSubtitles {
		t.Fatalf("video/subtitles should default on: %+v", flags)
	}
	if flags.GeneratePodcast || flags.GenerateAvatar {
		t.Fatalf("podcast/avatar should default off: %+v", flags)
	}
}

func TestFlagsExplicitBoolBeatsString(t *testing.T) {
	payload := tasks.Raw{
		"generate_video": false,
		"kwargs": map[string]any{
			"generate_video": "true",
		},
	}
	if flags := project.Flags(payload); flags.GenerateVideo {
		t.Fatal("explicit false should win over string \"true\" in kwargs")
	}
}

func TestFlagsStringBooleans(t *testing.T) {
	payload := tasks.Raw{
		"kwargs": map[string]any{
			"generate_podcast":  "TRUE",
			"generate_video":    "false",
			"generate_subtitle": "maybe",
		},
	}
	flags := project.Flags(payload)
	if !flags.GeneratePodcast {
		t.Fatal("string TRUE should parse")
	}
	if flags.GenerateVideo {
		t.Fatal("string false should parse")
	}
	if !flags.GenerateSubtitles {
		t.Fatal("unparseable string should keep the default")
	}
}

func TestFlagsSource(t *testing.T) {
	payload := tasks.Raw{
		"file_ext": ".pdf",
		"state":    map[string]any{"source_type": "pdf"},
	}
	flags := project.Flags(payload)
	if !flags.IsPDF() {
		t.Fatalf("expected PDF source, got %q", flags.SourceType)
	}
}

func TestRawErrors(t *testing.T) {
	payload := tasks.Raw{
		"state": map[string]any{
			"errors": []any{"boom", map[string]any{"step": "generate_audio", "error": "tts failed"}},
		},
	}
	entries := project.RawErrors(payload)
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if project.RawErrors(tasks.Raw{}) != nil {
		t.Fatal("expected nil for payload without errors")
	}
}
