// Package language resolves and displays task languages: display strings for
// the languages the service ships voices for, plus the voice → subtitle →
// transcript fallback chain.
package language

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"slidespeaker/internal/tasks"
)

// Baseline is the language that needs no translation pass.
const Baseline = "english"

var displayNames = map[string]string{
	"english":             "English",
	"simplified_chinese":  "简体中文",
	"traditional_chinese": "繁體中文",
	"japanese":            "日本語",
	"korean":              "한국어",
	"thai":                "ไทย",
}

var titleCaser = cases.Title(language.English)

// DisplayName returns the display string for a language code. Codes outside
// the shipped set fall back to title-casing the underscore-separated code;
// empty input reads "Unknown".
func DisplayName(code string) string {
	normalized := strings.ToLower(strings.TrimSpace(code))
	if normalized == "" {
		return "Unknown"
	}
	if name, ok := displayNames[normalized]; ok {
		return name
	}
	return titleCaser.String(strings.ReplaceAll(normalized, "_", " "))
}

// Equal compares two language codes after normalization.
func Equal(a, b string) bool {
	return strings.ToLower(strings.TrimSpace(a)) == strings.ToLower(strings.TrimSpace(b))
}

// Resolved is the language set a task actually runs with.
type Resolved struct {
	Voice      string
	Subtitle   string
	Transcript string
}

// Resolve applies the fallback chain to projected fields: voice defaults to
// the baseline, subtitles default to the voice language, and the transcript
// language only differs for podcast tasks carrying an explicit override.
func Resolve(fields tasks.DetailFields) Resolved {
	voice := strings.ToLower(strings.TrimSpace(fields.VoiceLanguage))
	if voice == "" {
		voice = Baseline
	}
	subtitle := strings.ToLower(strings.TrimSpace(fields.SubtitleLanguage))
	if subtitle == "" {
		subtitle = voice
	}

	transcript := subtitle
	taskType := strings.ToLower(strings.TrimSpace(fields.TaskType))
	if taskType == "podcast" || taskType == "both" {
		if override := strings.ToLower(strings.TrimSpace(fields.TranscriptLanguage)); override != "" {
			transcript = override
		}
	}
	return Resolved{Voice: voice, Subtitle: subtitle, Transcript: transcript}
}
