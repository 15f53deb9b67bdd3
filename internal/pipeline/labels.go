package pipeline

import "strings"

var stepLabels = map[string]string{
	"extract_slides":                 "Extracting Slides",
	"convert_slides_to_images":       "Converting Slides",
	"analyze_slide_images":           "Analyzing Content",
	"segment_pdf_content":            "Segmenting Content",
	"generate_transcripts":           "Generating Transcripts",
	"revise_transcripts":             "Revising Transcripts",
	"revise_pdf_transcripts":         "Revising Transcripts",
	"generate_subtitle_transcripts":  "Generating Subtitle Transcripts",
	"generate_podcast_script":        "Generating Podcast Script",
	"translate_voice_transcripts":    "Translating Voice Transcripts",
	"translate_subtitle_transcripts": "Translating Subtitle Transcripts",
	"translate_podcast_script":       "Translating Podcast Script",
	"generate_pdf_chapter_images":    "Creating Video Frames",
	"generate_audio":                 "Generating Audio",
	"generate_pdf_audio":             "Generating Audio",
	"generate_podcast_audio":         "Generating Podcast Audio",
	"generate_podcast_subtitles":     "Creating Podcast Subtitles",
	"generate_avatar_videos":         "Creating Avatar",
	"generate_subtitles":             "Creating Subtitles",
	"generate_pdf_subtitles":         "Creating Subtitles",
	"compose_video":                  "Composing Video",
	"compose_podcast":                "Composing Podcast",
	StepUnknown:                      "Initializing",
}

// StepLabel returns a human-readable name for a step. Unlisted steps fall
// back to title-casing the underscore-separated name.
func StepLabel(name string) string {
	if label, ok := stepLabels[name]; ok {
		return label
	}
	return titleCaseStep(name)
}

func titleCaseStep(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
