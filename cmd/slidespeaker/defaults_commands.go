package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"slidespeaker/internal/engine"
	"slidespeaker/internal/language"
	"slidespeaker/internal/prefs"
)

func newDefaultsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "defaults",
		Short: "Manage stored run defaults",
	}

	cmd.AddCommand(newDefaultsGetCommand(ctx))
	cmd.AddCommand(newDefaultsSetCommand(ctx))
	cmd.AddCommand(newDefaultsResetCommand(ctx))
	return cmd
}

func newDefaultsGetCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "get",
		Short: "Show the current run defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				defaults, err := eng.RunDefaults(cmdCtx)
				if err != nil {
					return fmt.Errorf("load run defaults: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd, defaults)
				}
				rows := [][]string{
					{"voice_language", displayOrUnset(defaults.VoiceLanguage)},
					{"subtitle_language", displayOrUnset(defaults.SubtitleLanguage)},
					{"transcript_language", displayOrUnset(defaults.TranscriptLanguage)},
					{"video_resolution", valueOrUnset(defaults.VideoResolution)},
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]column{{header: "SETTING"}, {header: "VALUE"}},
					rows,
				))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newDefaultsSetCommand(ctx *commandContext) *cobra.Command {
	var defaults prefs.RunDefaults

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update run defaults (only the given flags change)",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("voice-language") &&
				!cmd.Flags().Changed("subtitle-language") &&
				!cmd.Flags().Changed("transcript-language") &&
				!cmd.Flags().Changed("resolution") {
				return fmt.Errorf("nothing to set; pass at least one flag")
			}
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				if err := eng.SaveRunDefaults(cmdCtx, defaults); err != nil {
					return fmt.Errorf("save run defaults: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Run defaults updated")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&defaults.VoiceLanguage, "voice-language", "", "Default narration language")
	cmd.Flags().StringVar(&defaults.SubtitleLanguage, "subtitle-language", "", "Default subtitle language")
	cmd.Flags().StringVar(&defaults.TranscriptLanguage, "transcript-language", "", "Default transcript language")
	cmd.Flags().StringVar(&defaults.VideoResolution, "resolution", "", "Default video resolution preset")
	return cmd
}

func newDefaultsResetCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the builtin run defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				if err := eng.ResetRunDefaults(cmdCtx); err != nil {
					return fmt.Errorf("reset run defaults: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Run defaults reset")
				return nil
			})
		},
	}
}

func displayOrUnset(code string) string {
	if code == "" {
		return "(unset)"
	}
	return fmt.Sprintf("%s (%s)", code, language.DisplayName(code))
}

func valueOrUnset(value string) string {
	if value == "" {
		return "(unset)"
	}
	return value
}
