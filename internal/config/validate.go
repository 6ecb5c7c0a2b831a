package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateUnlock(); err != nil {
		return err
	}
	if err := c.validateQuiz(); err != nil {
		return err
	}
	if err := c.validatePlayback(); err != nil {
		return err
	}
	if err := c.validateFlow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case "sqlite", "file", "memory":
		return nil
	default:
		return fmt.Errorf("storage.backend: unsupported value %q (want sqlite, file, or memory)", c.Storage.Backend)
	}
}

func (c *Config) validateUnlock() error {
	switch c.Unlock.Mode {
	case "timed", "prerequisite":
	default:
		return fmt.Errorf("unlock.mode: unsupported value %q (want timed or prerequisite)", c.Unlock.Mode)
	}
	seen := make(map[int]struct{}, len(c.Unlock.Gates))
	for _, gate := range c.Unlock.Gates {
		if gate.Unit < 2 {
			return fmt.Errorf("unlock.gates: unit %d cannot be gated (season 1 is always open)", gate.Unit)
		}
		if _, dup := seen[gate.Unit]; dup {
			return fmt.Errorf("unlock.gates: unit %d configured more than once", gate.Unit)
		}
		seen[gate.Unit] = struct{}{}
		if gate.WaitSeconds < 0 {
			return fmt.Errorf("unlock.gates: unit %d wait_seconds must be >= 0", gate.Unit)
		}
		if gate.Code == "" && gate.CodeBcrypt == "" {
			return fmt.Errorf("unlock.gates: unit %d needs code or code_bcrypt", gate.Unit)
		}
	}
	return nil
}

func (c *Config) validateQuiz() error {
	if c.Quiz.PassScore < 0 {
		return errors.New("quiz.pass_score must be >= 0")
	}
	if c.Quiz.AutoAdvanceMS < 0 {
		return errors.New("quiz.auto_advance_ms must be >= 0")
	}
	return nil
}

func (c *Config) validatePlayback() error {
	if c.Playback.GraceSeconds < 0 {
		return errors.New("playback.grace_seconds must be >= 0")
	}
	if c.Playback.CompletionEpsilon < 0 || c.Playback.CompletionEpsilon > 1 {
		return errors.New("playback.completion_epsilon must be between 0 and 1")
	}
	if c.Playback.CompletionDelayMS < 0 {
		return errors.New("playback.completion_delay_ms must be >= 0")
	}
	if c.Playback.SkipSeconds <= 0 {
		return errors.New("playback.skip_seconds must be positive")
	}
	if c.Playback.TickMS <= 0 {
		return errors.New("playback.tick_ms must be positive")
	}
	return nil
}

func (c *Config) validateFlow() error {
	if c.Flow.IntroDurationMS < 0 || c.Flow.PrologueFadeMS < 0 {
		return errors.New("flow durations must be >= 0")
	}
	if c.Flow.PrologueSkipAfterSeconds < 0 {
		return errors.New("flow.prologue_skip_after_seconds must be >= 0")
	}
	if c.Flow.MenuPollMS <= 0 {
		return errors.New("flow.menu_poll_ms must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level: unsupported value %q", c.Logging.Level)
	}
	return nil
}
