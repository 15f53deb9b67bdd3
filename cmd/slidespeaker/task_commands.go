package main

import (
	"context"
	"fmt"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"slidespeaker/internal/engine"
	"slidespeaker/internal/pipeline"
	"slidespeaker/internal/tasks"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var offset int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				snapshots, err := eng.List(cmdCtx, limit, offset)
				if err != nil {
					return fmt.Errorf("list tasks: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd, snapshots)
				}
				printTaskTable(cmd, snapshots)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of tasks to show")
	cmd.Flags().IntVar(&offset, "offset", 0, "Number of tasks to skip")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newSearchCommand(ctx *commandContext) *cobra.Command {
	var limit int
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search tasks by filename or id",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := strings.TrimSpace(args[0])
			if query == "" {
				return fmt.Errorf("search query must not be empty")
			}
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				snapshots, err := eng.Search(cmdCtx, query, limit)
				if err != nil {
					return fmt.Errorf("search tasks: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd, snapshots)
				}
				if len(snapshots) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No tasks matched")
					return nil
				}
				printTaskTable(cmd, snapshots)
				return nil
			})
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of results")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	var jsonOut bool

	cmd := &cobra.Command{
		Use:   "show <task-id>",
		Short: "Show one task in detail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				snapshot, err := eng.Snapshot(cmdCtx, args[0])
				if err != nil {
					return fmt.Errorf("fetch task: %w", err)
				}
				if jsonOut {
					return writeJSON(cmd, snapshot)
				}
				renderSnapshot(cmd.OutOrStdout(), snapshot, shouldColorize(cmd.OutOrStdout()))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOut, "json", false, "Emit JSON instead of the detail view")
	return cmd
}

func newWatchCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <task-id>",
		Short: "Watch a task until it finishes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withEngine(cmd, func(cmdCtx context.Context, eng *engine.Engine) error {
				watchCtx, stop := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
				defer stop()

				out := cmd.OutOrStdout()
				colorize := shouldColorize(out)
				for snapshot := range eng.Watch(watchCtx, args[0]) {
					step := strings.TrimSpace(snapshot.CurrentStep)
					if step != "" {
						step = pipeline.StepLabel(step)
					}
					fmt.Fprintf(out, "%s %s %s\n",
						renderProgressBar(snapshot.ProgressPercent, colorize),
						renderStatus(snapshot.Status, colorize),
						step)
					if snapshot.Status.IsTerminal() || snapshot.Status == tasks.StatusFailed {
						fmt.Fprintln(out)
						renderSnapshot(out, snapshot, colorize)
						return nil
					}
				}
				return watchCtx.Err()
			})
		},
	}
	return cmd
}

func printTaskTable(cmd *cobra.Command, snapshots []tasks.ProgressSnapshot) {
	if len(snapshots) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No tasks")
		return
	}
	colorize := shouldColorize(cmd.OutOrStdout())
	rows := make([][]string, 0, len(snapshots))
	for _, snapshot := range snapshots {
		step := strings.TrimSpace(snapshot.CurrentStep)
		if step != "" {
			step = pipeline.StepLabel(step)
		}
		rows = append(rows, []string{
			snapshot.TaskID,
			snapshot.Fields.Filename,
			renderStatus(snapshot.Status, colorize),
			fmt.Sprintf("%d%%", snapshot.ProgressPercent),
			step,
			snapshot.UpdatedAt,
		})
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(
		[]column{
			{header: "ID"},
			{header: "FILE"},
			{header: "STATUS"},
			{header: "PROGRESS", numeric: true},
			{header: "STEP"},
			{header: "UPDATED"},
		},
		rows,
	))
}
