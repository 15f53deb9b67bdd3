package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"slidespeaker/internal/backend"
)

func newHealthCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check that the backend answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			client := backend.NewClient(backend.Config{
				BaseURL:        cfg.Backend.BaseURL,
				APIToken:       cfg.Backend.APIToken,
				TimeoutSeconds: cfg.Backend.TimeoutSeconds,
			})
			start := time.Now()
			if err := client.Health(cmd.Context()); err != nil {
				return fmt.Errorf("backend %s unreachable: %w", cfg.Backend.BaseURL, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Backend %s healthy (%s)\n",
				cfg.Backend.BaseURL, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}
}
