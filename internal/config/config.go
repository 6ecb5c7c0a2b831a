package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StateDir    string `toml:"state_dir"`
	LogDir      string `toml:"log_dir"`
	ContentPath string `toml:"content_path"`
}

// Storage selects the persistence medium for progress documents.
type Storage struct {
	Backend       string `toml:"backend"`
	KeyPrefix     string `toml:"key_prefix"`
	SchemaVersion string `toml:"schema_version"`
}

// Gate configures one gated season. Either Code or CodeBcrypt must be set.
type Gate struct {
	Unit        int    `toml:"unit"`
	WaitSeconds int    `toml:"wait_seconds"`
	Code        string `toml:"code"`
	CodeBcrypt  string `toml:"code_bcrypt"`
	Hint        string `toml:"hint"`
}

// Wait returns the gate's wait duration.
func (g Gate) Wait() time.Duration {
	return time.Duration(g.WaitSeconds) * time.Second
}

// Unlock contains the unlock policy mode and per-season gates.
type Unlock struct {
	// Mode is "timed" (prerequisite + wait timer + override code) or
	// "prerequisite" (previous season completion only).
	Mode  string `toml:"mode"`
	Gates []Gate `toml:"gates"`
}

// Quiz contains quiz gate tuning.
type Quiz struct {
	PassScore     int `toml:"pass_score"`
	AutoAdvanceMS int `toml:"auto_advance_ms"`
}

// Playback contains synchronized playback timing.
type Playback struct {
	GraceSeconds      float64 `toml:"grace_seconds"`
	CompletionEpsilon float64 `toml:"completion_epsilon"`
	CompletionDelayMS int     `toml:"completion_delay_ms"`
	SkipSeconds       float64 `toml:"skip_seconds"`
	TickMS            int     `toml:"tick_ms"`
}

// Flow contains stage sequencing timing.
type Flow struct {
	IntroDurationMS          int     `toml:"intro_duration_ms"`
	PrologueSkipAfterSeconds float64 `toml:"prologue_skip_after_seconds"`
	PrologueFadeMS           int     `toml:"prologue_fade_ms"`
	OfferMenuShortcut        bool    `toml:"offer_menu_shortcut"`
	MenuPollMS               int     `toml:"menu_poll_ms"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for seasonpass.
//
// Configuration sections by subsystem:
//   - Paths: state, log, and optional content catalog locations
//   - Storage: persistence medium and document key naming
//   - Unlock: gate mode, wait durations, override codes, hints
//   - Quiz: pass threshold and auto-advance delay
//   - Playback: completion fallback, epsilon, delays, skip size
//   - Flow: intro/prologue timing and the menu shortcut branch
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Storage  Storage  `toml:"storage"`
	Unlock   Unlock   `toml:"unlock"`
	Quiz     Quiz     `toml:"quiz"`
	Playback Playback `toml:"playback"`
	Flow     Flow     `toml:"flow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/seasonpass/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	loadDotEnv()
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

// loadDotEnv reads .env from the working directory when present. Variables
// already set in the environment win.
func loadDotEnv() {
	if _, err := os.Stat(".env"); err != nil {
		return
	}
	_ = godotenv.Load(".env")
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("seasonpass.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// GateFor returns the configured gate for unit, if any.
func (c *Config) GateFor(unit int) (Gate, bool) {
	for _, gate := range c.Unlock.Gates {
		if gate.Unit == unit {
			return gate, true
		}
	}
	return Gate{}, false
}

// QuizAutoAdvance returns the delay between an answer and the next question.
func (c *Config) QuizAutoAdvance() time.Duration {
	return time.Duration(c.Quiz.AutoAdvanceMS) * time.Millisecond
}

// CompletionDelay returns the pause between a season completing and the stage change.
func (c *Config) CompletionDelay() time.Duration {
	return time.Duration(c.Playback.CompletionDelayMS) * time.Millisecond
}

// PlaybackTick returns the media position update interval.
func (c *Config) PlaybackTick() time.Duration {
	return time.Duration(c.Playback.TickMS) * time.Millisecond
}

// IntroDuration returns how long the intro runs before signalling its end.
func (c *Config) IntroDuration() time.Duration {
	return time.Duration(c.Flow.IntroDurationMS) * time.Millisecond
}

// PrologueFade returns the fade delay between prologue end and the intro.
func (c *Config) PrologueFade() time.Duration {
	return time.Duration(c.Flow.PrologueFadeMS) * time.Millisecond
}

// PrologueSkipAfter returns how long the prologue must run before it can be skipped.
func (c *Config) PrologueSkipAfter() time.Duration {
	return time.Duration(c.Flow.PrologueSkipAfterSeconds * float64(time.Second))
}

// MenuPoll returns the countdown refresh interval on the season menu.
func (c *Config) MenuPoll() time.Duration {
	return time.Duration(c.Flow.MenuPollMS) * time.Millisecond
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
