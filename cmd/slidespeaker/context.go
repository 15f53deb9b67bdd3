package main

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"slidespeaker/internal/backend"
	"slidespeaker/internal/config"
	"slidespeaker/internal/engine"
	"slidespeaker/internal/logging"
	"slidespeaker/internal/prefs"
	"slidespeaker/internal/taskcache"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// withEngine builds the full stack for one command invocation: backend
// client, cache, preferences store, and engine. The preferences database is
// closed when fn returns.
func (c *commandContext) withEngine(cmd *cobra.Command, fn func(ctx context.Context, eng *engine.Engine) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}

	client := backend.NewClient(backend.Config{
		BaseURL:        cfg.Backend.BaseURL,
		APIToken:       cfg.Backend.APIToken,
		TimeoutSeconds: cfg.Backend.TimeoutSeconds,
	})
	cache := taskcache.NewStore(
		taskcache.WithStaleTime(time.Duration(cfg.Cache.StaleSeconds)*time.Second),
		taskcache.WithLogger(logger),
	)

	prefsStore, err := prefs.Open(cfg.Prefs.DBPath)
	if err != nil {
		// The console still works without local preferences; run defaults
		// and hidden tasks are just unavailable.
		logger.Warn("preferences store unavailable", logging.Error(err))
		prefsStore = nil
	} else {
		defer prefsStore.Close()
	}

	eng := engine.New(client, cache, prefsStore, logger,
		engine.WithPollInterval(time.Duration(cfg.Cache.PollSeconds)*time.Second),
		engine.WithEvictionHorizons(
			time.Duration(cfg.Cache.DetailTTLMinutes)*time.Minute,
			time.Duration(cfg.Cache.ListTTLMinutes)*time.Minute,
		),
		engine.WithSweepInterval(time.Duration(cfg.Cache.SweepMinutes)*time.Minute),
	)
	ctx := cmd.Context()
	// Mostly relevant to long-lived commands like watch; short ones exit
	// before the first sweep fires.
	eng.StartSweeper(ctx)
	return fn(ctx, eng)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
