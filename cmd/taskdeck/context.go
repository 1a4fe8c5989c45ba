package main

import (
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"taskdeck/internal/config"
	"taskdeck/internal/launcher"
	"taskdeck/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
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
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) ensureLogger() *slog.Logger {
	c.loggerOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.logger = logging.NewNop()
			return
		}
		logger, err := logging.New(logging.Options{
			Level:    cfg.Logging.Level,
			Format:   cfg.Logging.Format,
			FilePath: cfg.Logging.File,
		})
		if err != nil {
			logger = logging.NewNop()
		}
		c.logger = logger
	})
	return c.logger
}

// withApp runs fn with a fully wired launcher App, including the detached
// background refresher.
func (c *commandContext) withApp(fn func(*launcher.App) error) error {
	cfg, err := c.ensureConfig()
	if err != nil {
		return err
	}
	app, err := launcher.New(cfg, c.ensureLogger())
	if err != nil {
		return err
	}
	defer app.Close()
	app.SpawnRefresh = c.spawnRefresh
	return fn(app)
}

// spawnRefresh re-executes this binary as a detached background refresher so
// the current invocation can return stale results immediately.
func (c *commandContext) spawnRefresh(key, requestID string) error {
	exe, err := os.Executable()
	if err != nil {
		return err
	}
	args := []string{"refresh", "tasks", "--key", key, "--request-id", requestID}
	if c.configFlag != nil && strings.TrimSpace(*c.configFlag) != "" {
		args = append(args, "--config", strings.TrimSpace(*c.configFlag))
	}
	cmd := exec.Command(exe, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil
	if err := cmd.Start(); err != nil {
		return err
	}
	return cmd.Process.Release()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
