package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"sitephoto/internal/config"
	"sitephoto/internal/logging"
	"sitephoto/internal/photostore"
	"sitephoto/internal/preflight"
)

type commandContext struct {
	configFlag   *string
	logLevelFlag *string
	timingsFlag  *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	loggerErr  error
}

func newCommandContext(configFlag, logLevelFlag *string, timingsFlag *bool) *commandContext {
	return &commandContext{
		configFlag:   configFlag,
		logLevelFlag: logLevelFlag,
		timingsFlag:  timingsFlag,
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
		if c.logLevelFlag != nil && strings.TrimSpace(*c.logLevelFlag) != "" {
			cfg.Logging.Level = strings.ToLower(strings.TrimSpace(*c.logLevelFlag))
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
		c.logger, c.loggerErr = logging.NewFromConfig(cfg)
	})
	return c.logger, c.loggerErr
}

func (c *commandContext) timings() bool {
	return c.timingsFlag != nil && *c.timingsFlag
}

// folderSession bundles what a command needs to work on one folder.
type folderSession struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
	folder string
	store  *photostore.Store
	lock   *photostore.FolderLock
	timer  *phaseTimer
}

// openFolder checks the folder, takes the lock when mutating, and opens the
// database. Callers must Close the session.
func (c *commandContext) openFolder(cmd *cobra.Command, folder string, mutating bool) (*folderSession, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	logger, err := c.ensureLogger()
	if err != nil {
		return nil, err
	}
	folder, err = config.ExpandPath(strings.TrimSpace(folder))
	if err != nil {
		return nil, fmt.Errorf("resolve folder: %w", err)
	}
	checks := []preflight.Result{
		preflight.CheckDirectoryAccess("Photo folder", folder),
		preflight.CheckStateDir(cfg, folder),
	}
	if failed, ok := preflight.FirstFailure(checks); ok {
		return nil, fmt.Errorf("%s: %s", strings.ToLower(failed.Name), failed.Detail)
	}

	session := &folderSession{
		ctx:    logging.WithFolder(commandCtx(cmd), folder),
		cfg:    cfg,
		logger: logger,
		folder: folder,
		timer:  newPhaseTimer(c.timings()),
	}
	if mutating {
		lock, err := photostore.Lock(cfg, folder)
		if err != nil {
			return nil, err
		}
		session.lock = lock
	}
	store, err := photostore.Open(cfg, folder)
	if err != nil {
		_ = session.lock.Unlock()
		return nil, err
	}
	session.store = store
	session.timer.mark("open")
	return session, nil
}

// withRun tags the session context and logger with a run ID.
func (s *folderSession) withRun(runID string) {
	s.ctx = logging.WithRunID(s.ctx, runID)
	s.logger = logging.WithContext(s.ctx, s.logger)
}

func (s *folderSession) Close(cmd *cobra.Command) error {
	var errs []error
	if s.store != nil {
		errs = append(errs, s.store.Close())
	}
	errs = append(errs, s.lock.Unlock())
	s.timer.log(s.logger)
	s.timer.render(cmd.ErrOrStderr())
	return errors.Join(errs...)
}

func commandCtx(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
