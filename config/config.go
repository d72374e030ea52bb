package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap/zapcore"

	"github.com/inkwell-editor/inkwell/history"
	"github.com/inkwell-editor/inkwell/rules"
)

// Config carries every engine setting.
type Config struct {
	History HistoryConfig `toml:"history"`
	Rules   RulesConfig   `toml:"rules"`
	Editor  EditorConfig  `toml:"editor"`
}

// HistoryConfig tunes undo batching.
type HistoryConfig struct {
	// CoalesceMS is the window in milliseconds inside which contiguous
	// edits merge into one undo step. Zero disables merging.
	CoalesceMS int `toml:"coalesce_ms"`

	// MaxEntries caps the undo stack.
	MaxEntries int `toml:"max_entries"`
}

// Coalescing returns the merge window as a duration.
func (h HistoryConfig) Coalescing() time.Duration {
	return time.Duration(h.CoalesceMS) * time.Millisecond
}

// RulesConfig toggles optional editing policies.
type RulesConfig struct {
	// AutoLink turns a URL followed by a space into a link.
	AutoLink bool `toml:"auto_link"`

	// AutoExitBlock leaves a list, quote, or code block when Enter is
	// pressed on its empty last line.
	AutoExitBlock bool `toml:"auto_exit_block"`

	// Scripts are paths to Lua rule scripts loaded at startup.
	Scripts []string `toml:"scripts"`
}

// EditorConfig carries host-level settings.
type EditorConfig struct {
	// LogLevel is one of debug, info, warn, error.
	LogLevel string `toml:"log_level"`
}

// ZapLevel parses LogLevel.
func (e EditorConfig) ZapLevel() (zapcore.Level, error) {
	return zapcore.ParseLevel(e.LogLevel)
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		History: HistoryConfig{
			CoalesceMS: 500,
			MaxEntries: 100,
		},
		Rules: RulesConfig{
			AutoLink:      true,
			AutoExitBlock: true,
		},
		Editor: EditorConfig{
			LogLevel: "info",
		},
	}
}

// Load reads path over the defaults and applies the environment
// overlay. A missing file is not an error; a file that fails to parse
// or validate is.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, os.ErrNotExist):
		// Defaults plus environment.
	case err != nil:
		return Config{}, fmt.Errorf("read config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Parse reads a TOML document over the defaults. The environment is
// not consulted.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	if c.History.CoalesceMS < 0 {
		return fmt.Errorf("history.coalesce_ms = %d: must not be negative", c.History.CoalesceMS)
	}
	if c.History.MaxEntries <= 0 {
		return fmt.Errorf("history.max_entries = %d: must be positive", c.History.MaxEntries)
	}
	if _, err := c.Editor.ZapLevel(); err != nil {
		return fmt.Errorf("editor.log_level = %q: %w", c.Editor.LogLevel, err)
	}
	return nil
}

// HistoryOptions converts the history section into history.New
// options.
func (c Config) HistoryOptions() []history.Option {
	return []history.Option{
		history.WithCoalescing(c.History.Coalescing()),
		history.WithMaxEntries(c.History.MaxEntries),
	}
}

// RulesOptions converts the rules section into rules.NewEngine
// options.
func (c Config) RulesOptions() []rules.Option {
	return []rules.Option{
		rules.WithAutoLink(c.Rules.AutoLink),
		rules.WithAutoExitBlock(c.Rules.AutoExitBlock),
	}
}

// Environment overlay. Every key follows INKWELL_<SECTION>_<FIELD>.
const (
	envCoalesceMS    = "INKWELL_HISTORY_COALESCE_MS"
	envMaxEntries    = "INKWELL_HISTORY_MAX_ENTRIES"
	envAutoLink      = "INKWELL_RULES_AUTO_LINK"
	envAutoExitBlock = "INKWELL_RULES_AUTO_EXIT_BLOCK"
	envLogLevel      = "INKWELL_EDITOR_LOG_LEVEL"
)

func (c *Config) applyEnv() error {
	if err := envInt(envCoalesceMS, &c.History.CoalesceMS); err != nil {
		return err
	}
	if err := envInt(envMaxEntries, &c.History.MaxEntries); err != nil {
		return err
	}
	if err := envBool(envAutoLink, &c.Rules.AutoLink); err != nil {
		return err
	}
	if err := envBool(envAutoExitBlock, &c.Rules.AutoExitBlock); err != nil {
		return err
	}
	if v, ok := os.LookupEnv(envLogLevel); ok {
		c.Editor.LogLevel = v
	}
	return nil
}

func envInt(key string, dst *int) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func envBool(key string, dst *bool) error {
	v, ok := os.LookupEnv(key)
	if !ok {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("%s=%q: %w", key, v, err)
	}
	*dst = b
	return nil
}
