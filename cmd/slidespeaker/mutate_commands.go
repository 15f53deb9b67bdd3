package main

import (
	"bufio"
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"slidespeaker/internal/backend"
	"slidespeaker/internal/engine"
)

func newCancelCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <task-id>",
		Short: "Cancel a running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				result, err := eng.Cancel(cmdCtx, args[0])
				if err != nil {
					return fmt.Errorf("cancel task: %w", err)
				}
				message := strings.TrimSpace(result.Message)
				if message == "" {
					message = "cancellation requested"
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s: %s\n", args[0], message)
				return nil
			})
		},
	}
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	var step string

	cmd := &cobra.Command{
		Use:   "retry <task-id>",
		Short: "Restart a failed task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				result, err := eng.Retry(cmdCtx, args[0], step)
				if err != nil {
					return fmt.Errorf("retry task: %w", err)
				}
				out := cmd.OutOrStdout()
				if result.Step != "" {
					fmt.Fprintf(out, "Task %s restarted from step %s\n", args[0], result.Step)
				} else {
					fmt.Fprintf(out, "Task %s restarted\n", args[0])
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&step, "step", "", "Restart from this step instead of the failed one")
	return cmd
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <task-id>",
		Short: "Delete a task and its artifacts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				if !confirm(cmd, fmt.Sprintf("Delete task %s and its artifacts?", args[0])) {
					fmt.Fprintln(cmd.OutOrStdout(), "Aborted")
					return nil
				}
			}
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				if err := eng.Delete(cmdCtx, args[0]); err != nil {
					return fmt.Errorf("delete task: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s deleted\n", args[0])
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newRunCommand(ctx *commandContext) *cobra.Command {
	var params backend.RunParams
	var video, podcast, subtitles bool

	cmd := &cobra.Command{
		Use:   "run <upload-id>",
		Short: "Submit a processing run for an uploaded file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Only flags the user actually set are sent; the backend keeps
			// its own defaults for the rest.
			if cmd.Flags().Changed("video") {
				params.GenerateVideo = &video
			}
			if cmd.Flags().Changed("podcast") {
				params.GeneratePodcast = &podcast
			}
			if cmd.Flags().Changed("subtitles") {
				params.GenerateSubtitles = &subtitles
			}
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				result, err := eng.Run(cmdCtx, args[0], params)
				if err != nil {
					return fmt.Errorf("submit run: %w", err)
				}
				out := cmd.OutOrStdout()
				if result.TaskID != "" {
					fmt.Fprintf(out, "Run submitted, task %s\n", result.TaskID)
				} else {
					fmt.Fprintln(out, "Run submitted")
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&params.VoiceLanguage, "voice-language", "", "Narration language")
	cmd.Flags().StringVar(&params.SubtitleLanguage, "subtitle-language", "", "Subtitle language")
	cmd.Flags().StringVar(&params.TranscriptLanguage, "transcript-language", "", "Podcast transcript language")
	cmd.Flags().StringVar(&params.VoiceID, "voice", "", "Voice id override")
	cmd.Flags().StringVar(&params.VideoResolution, "resolution", "", "Video resolution preset (sd, hd, fullhd)")
	cmd.Flags().BoolVar(&video, "video", true, "Generate a narrated video")
	cmd.Flags().BoolVar(&podcast, "podcast", false, "Generate a conversational podcast")
	cmd.Flags().BoolVar(&subtitles, "subtitles", true, "Generate subtitles")
	return cmd
}

func newHideCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "hide <task-id>",
		Short: "Hide a task from local list views",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				if err := eng.Hide(cmdCtx, args[0]); err != nil {
					return fmt.Errorf("hide task: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s hidden\n", args[0])
				return nil
			})
		},
	}
}

func newUnhideCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unhide <task-id>",
		Short: "Restore a hidden task to list views",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				if err := eng.Unhide(cmdCtx, args[0]); err != nil {
					return fmt.Errorf("unhide task: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Task %s restored\n", args[0])
				return nil
			})
		},
	}
}

func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
