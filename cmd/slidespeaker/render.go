package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"slidespeaker/internal/language"
	"slidespeaker/internal/pipeline"
	"slidespeaker/internal/tasks"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
	ansiDim    = "\x1b[2m"
)

func statusIcon(status tasks.Status) string {
	switch status {
	case tasks.StatusCompleted:
		return "✓"
	case tasks.StatusFailed:
		return "✗"
	case tasks.StatusProcessing:
		return "▸"
	case tasks.StatusCancelled, tasks.StatusCancelling:
		return "⊘"
	case tasks.StatusSkipped:
		return "–"
	default:
		return "·"
	}
}

func statusColor(status tasks.Status) string {
	switch status {
	case tasks.StatusCompleted:
		return ansiGreen
	case tasks.StatusFailed:
		return ansiRed
	case tasks.StatusProcessing:
		return ansiBlue
	case tasks.StatusCancelled, tasks.StatusCancelling:
		return ansiYellow
	default:
		return ansiDim
	}
}

func renderStatus(status tasks.Status, colorize bool) string {
	label := fmt.Sprintf("%s %s", statusIcon(status), status)
	if colorize {
		if color := statusColor(status); color != "" {
			return color + label + ansiReset
		}
	}
	return label
}

const progressBarWidth = 24

func renderProgressBar(percent int, colorize bool) string {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	filled := percent * progressBarWidth / 100
	bar := strings.Repeat("█", filled) + strings.Repeat("░", progressBarWidth-filled)
	if colorize {
		bar = ansiBlue + bar + ansiReset
	}
	return fmt.Sprintf("%s %3d%%", bar, percent)
}

// renderSnapshot writes the detailed task view: header fields, progress,
// steps, and errors.
func renderSnapshot(out io.Writer, snapshot tasks.ProgressSnapshot, colorize bool) {
	fmt.Fprintf(out, "Task:     %s\n", snapshot.TaskID)
	fmt.Fprintf(out, "File:     %s\n", snapshot.Fields.Filename)
	if taskType := strings.TrimSpace(snapshot.Fields.TaskType); taskType != "" {
		fmt.Fprintf(out, "Type:     %s\n", taskType)
	}
	fmt.Fprintf(out, "Status:   %s\n", renderStatus(snapshot.Status, colorize))
	fmt.Fprintf(out, "Progress: %s\n", renderProgressBar(snapshot.ProgressPercent, colorize))
	if step := strings.TrimSpace(snapshot.CurrentStep); step != "" {
		fmt.Fprintf(out, "Step:     %s\n", pipeline.StepLabel(step))
	}

	resolved := language.Resolve(snapshot.Fields)
	fmt.Fprintf(out, "Voice:    %s", language.DisplayName(resolved.Voice))
	if !language.Equal(resolved.Subtitle, resolved.Voice) {
		fmt.Fprintf(out, " (subtitles %s)", language.DisplayName(resolved.Subtitle))
	}
	fmt.Fprintln(out)

	if len(snapshot.Steps) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Steps:")
		for _, step := range snapshot.Steps {
			line := fmt.Sprintf("  %s %s", stepStatusIcon(step), pipeline.StepLabel(step.Name))
			if step.BlockedByFailure {
				line += " (blocked by earlier failure)"
			}
			if colorize {
				if color := stepStatusColor(step.Status); color != "" {
					line = color + line + ansiReset
				}
			}
			fmt.Fprintln(out, line)
		}
	}

	if len(snapshot.Errors) > 0 {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Errors:")
		for _, taskErr := range snapshot.Errors {
			line := fmt.Sprintf("  %s: %s", pipeline.StepLabel(taskErr.Step), taskErr.Error)
			if colorize {
				line = ansiRed + line + ansiReset
			}
			fmt.Fprintln(out, line)
		}
	}
}

func stepStatusIcon(step tasks.CanonicalStep) string {
	switch step.Status {
	case tasks.StepCompleted:
		return "✓"
	case tasks.StepFailed:
		return "✗"
	case tasks.StepProcessing:
		return "▸"
	case tasks.StepCancelled:
		return "⊘"
	case tasks.StepSkipped:
		return "–"
	default:
		return "·"
	}
}

func stepStatusColor(status tasks.StepStatus) string {
	switch status {
	case tasks.StepCompleted:
		return ansiGreen
	case tasks.StepFailed:
		return ansiRed
	case tasks.StepProcessing:
		return ansiBlue
	case tasks.StepCancelled:
		return ansiYellow
	default:
		return ansiDim
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
