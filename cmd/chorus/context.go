package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"sync"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"chorus/internal/clips"
	"chorus/internal/config"
	"chorus/internal/logging"
	"chorus/internal/resultcache"
)

// skipConfigLoad marks commands that must run without a loadable config.
const skipConfigLoad = "skipConfigLoad"

type commandContext struct {
	configFlag *string
	verbose    *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string, verbose *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		verbose:    verbose,
	}
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

// cliLogger builds the configured logger, capped at WARN unless --verbose is set.
func (c *commandContext) cliLogger() (*slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := logging.NewFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if c.verbose != nil && *c.verbose {
		return logger, nil
	}
	return logging.WithMinimumLevel(logger, slog.LevelWarn), nil
}

// openCache opens the result cache, returning nil when it is disabled.
func (c *commandContext) openCache() (*resultcache.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	if !cfg.ResultCache.Enabled {
		return nil, nil
	}
	store, err := resultcache.OpenFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open result cache: %w", err)
	}
	return store, nil
}

// openClips opens the clip settings store.
func (c *commandContext) openClips() (*clips.Store, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	store, err := clips.OpenFromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("open clip store: %w", err)
	}
	return store, nil
}

// loadDotEnv loads ./.env so CHORUS_* overrides can live next to the project.
func loadDotEnv(cmd *cobra.Command) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to read .env: %v\n", err)
	}
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations[skipConfigLoad] == "true" {
			return true
		}
	}
	return false
}
