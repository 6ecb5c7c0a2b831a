package config

import (
	"fmt"
	"os"
	"sort"
	"strings"
)

func (c *Config) normalize() error {
	c.applyEnv()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeStorage()
	c.normalizeUnlock()
	c.normalizeLogging()
	return nil
}

func (c *Config) applyEnv() {
	if value, ok := os.LookupEnv("SEASONPASS_STATE_DIR"); ok && strings.TrimSpace(value) != "" {
		c.Paths.StateDir = value
	}
	if value, ok := os.LookupEnv("SEASONPASS_LOG_LEVEL"); ok && strings.TrimSpace(value) != "" {
		c.Logging.Level = value
	}
	if value, ok := os.LookupEnv("SEASONPASS_STORAGE_BACKEND"); ok && strings.TrimSpace(value) != "" {
		c.Storage.Backend = value
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.ContentPath) != "" {
		if c.Paths.ContentPath, err = expandPath(c.Paths.ContentPath); err != nil {
			return fmt.Errorf("paths.content_path: %w", err)
		}
	}
	return nil
}

func (c *Config) normalizeStorage() {
	c.Storage.Backend = strings.ToLower(strings.TrimSpace(c.Storage.Backend))
	if c.Storage.Backend == "" {
		c.Storage.Backend = defaultStorageBackend
	}
	c.Storage.KeyPrefix = strings.TrimSpace(c.Storage.KeyPrefix)
	if c.Storage.KeyPrefix == "" {
		c.Storage.KeyPrefix = defaultKeyPrefix
	}
	c.Storage.SchemaVersion = strings.TrimSpace(c.Storage.SchemaVersion)
	if c.Storage.SchemaVersion == "" {
		c.Storage.SchemaVersion = defaultSchemaVersion
	}
}

func (c *Config) normalizeUnlock() {
	c.Unlock.Mode = strings.ToLower(strings.TrimSpace(c.Unlock.Mode))
	if c.Unlock.Mode == "" {
		c.Unlock.Mode = defaultUnlockMode
	}
	if len(c.Unlock.Gates) == 0 {
		c.Unlock.Gates = DefaultGates()
	}
	for i := range c.Unlock.Gates {
		gate := &c.Unlock.Gates[i]
		gate.Code = strings.TrimSpace(gate.Code)
		gate.CodeBcrypt = strings.TrimSpace(gate.CodeBcrypt)
		gate.Hint = strings.TrimSpace(gate.Hint)
		if gate.Hint == "" {
			gate.Hint = defaultGateHint
		}
	}
	sort.SliceStable(c.Unlock.Gates, func(i, j int) bool {
		return c.Unlock.Gates[i].Unit < c.Unlock.Gates[j].Unit
	})
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
