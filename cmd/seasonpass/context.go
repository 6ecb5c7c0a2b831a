package main

import (
	"context"
	"fmt"
	"errors"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"seasonpass/internal/clock"
	"seasonpass/internal/config"
	"seasonpass/internal/content"
	"seasonpass/internal/experience"
	"seasonpass/internal/logging"
	"seasonpass/internal/store"
	"seasonpass/internal/unlock"
)

type commandContext struct {
	configFlag *string

	configOnce   sync.Once
	config       *config.Config
	configPath   string
	configExists bool
	configErr    error
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
		cfg, resolved, exists, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.configPath = resolved
		c.configExists = exists
	})
	return c.config, c.configErr
}

// newLogger builds the file logger for one CLI run, stamped with a fresh
// session ID.
func (c *commandContext) newLogger() (*slog.Logger, string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, "", err
	}
	sessionID := uuid.NewString()
	logger, err := logging.NewFromConfig(cfg, sessionID)
	if err != nil {
		return nil, "", fmt.Errorf("init logger: %w", err)
	}
	return logger, sessionID, nil
}

// openExperience opens storage and builds an experience on clk.
func (c *commandContext) openExperience(ctx context.Context, clk clock.Clock, opts ...experience.Option) (*experience.Experience, *slog.Logger, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, nil, err
	}
	logger, _, err := c.newLogger()
	if err != nil {
		return nil, nil, err
	}
	exp, err := experience.Open(ctx, cfg, clk, logger, opts...)
	if err != nil {
		return nil, nil, err
	}
	return exp, logger, nil
}

// acquirePlayerLock takes the state directory's writer lock. Only one process
// may rewrite progress at a time.
func acquirePlayerLock(cfg *config.Config) (*flock.Flock, error) {
	lock := flock.New(filepath.Join(cfg.Paths.StateDir, "player.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire player lock: %w", err)
	}
	if !ok {
		return nil, errors.New("another seasonpass player is already running")
	}
	return lock, nil
}

// progressionState is the stored state plus what is needed to interpret it,
// for commands that read or rewrite documents without running the player.
type progressionState struct {
	catalog *content.Catalog
	policy  *unlock.Policy
	store   *store.Store
	medium  store.Medium
	logger  *slog.Logger
	lock    *flock.Flock
}

// openState loads the catalog and storage. Commands that rewrite documents
// pass writable so the player lock is held until Close.
func (c *commandContext) openState(writable bool) (ps *progressionState, err error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return nil, err
	}
	var lock *flock.Flock
	if writable {
		if lock, err = acquirePlayerLock(cfg); err != nil {
			return nil, err
		}
		defer func() {
			if err != nil {
				_ = lock.Unlock()
			}
		}()
	}
	logger, _, err := c.newLogger()
	if err != nil {
		return nil, err
	}
	catalog, err := content.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	policy, err := unlock.FromConfig(cfg)
	if err != nil {
		return nil, fmt.Errorf("unlock config: %w", err)
	}
	medium, err := store.OpenMedium(cfg)
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}
	st := store.New(medium, store.Options{
		KeyPrefix:     cfg.Storage.KeyPrefix,
		SchemaVersion: cfg.Storage.SchemaVersion,
		Units:         catalog.Units(),
		GatedUnits:    policy.GatedUnits(),
	}, logger)
	return &progressionState{catalog: catalog, policy: policy, store: st, medium: medium, logger: logger, lock: lock}, nil
}

func (p *progressionState) Close() error {
	err := store.CloseMedium(p.medium)
	if p.lock != nil {
		if unlockErr := p.lock.Unlock(); unlockErr != nil && err == nil {
			err = fmt.Errorf("release player lock: %w", unlockErr)
		}
	}
	return err
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
