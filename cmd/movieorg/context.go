package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"movieorg/internal/backend"
	"movieorg/internal/config"
	"movieorg/internal/logging"
	"movieorg/internal/queue"
	"movieorg/internal/services"
	"movieorg/internal/session"
)

type globalFlags struct {
	config     string
	folder     string
	backendURL string
	logLevel   string
	json       bool
}

type commandContext struct {
	flags *globalFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(flags *globalFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = services.Wrap(services.ErrConfiguration, "config", "load", "", err)
			return
		}
		if url := strings.TrimSpace(c.flags.backendURL); url != "" {
			cfg.Backend.URL = strings.TrimRight(url, "/")
			if err := cfg.Validate(); err != nil {
				c.configErr = services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
				return
			}
		}
		if level := strings.TrimSpace(c.flags.logLevel); level != "" {
			cfg.Logging.Level = level
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() (*slog.Logger, error) {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.loggerErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg)
		if err != nil {
			c.loggerErr = services.Wrap(services.ErrConfiguration, "cli", "logging", "create logger", err)
			return
		}
		c.logger = logger
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

func (c *commandContext) backendClient() (*backend.Client, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	return backend.NewFromConfig(cfg, logger), nil
}

func (c *commandContext) withStore(fn func(*queue.Store) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	store, err := queue.Open(cfg)
	if err != nil {
		return fmt.Errorf("open state store: %w", err)
	}
	defer store.Close()
	return fn(store)
}

// withSession loads the selected folder's page and runs fn against it.
func (c *commandContext) withSession(cmd *cobra.Command, fn func(*session.Session) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return err
	}
	client, err := c.backendClient()
	if err != nil {
		return err
	}
	return c.withStore(func(store *queue.Store) error {
		sess, err := session.Open(cmd.Context(), session.Options{
			Config:   cfg,
			Backend:  client,
			Store:    store,
			Alerter:  newTerminalAlerter(cmd.ErrOrStderr(), shouldColorize(cfg, cmd.ErrOrStderr())),
			Prompter: newLinePrompter(cmd.InOrStdin(), cmd.ErrOrStderr()),
			Logger:   logger,
		}, c.flags.folder)
		if err != nil {
			return err
		}
		defer sess.Close()
		return fn(sess)
	})
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
