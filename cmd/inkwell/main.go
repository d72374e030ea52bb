// Package main is the entry point for the inkwell terminal editor.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/term"

	"github.com/inkwell-editor/inkwell/config"
	"github.com/inkwell-editor/inkwell/delta"
	"github.com/inkwell-editor/inkwell/editor"
	"github.com/inkwell-editor/inkwell/history"
	"github.com/inkwell-editor/inkwell/rules"
	rulelua "github.com/inkwell-editor/inkwell/rules/lua"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

type options struct {
	ConfigPath string
	LogPath    string
	File       string
}

func main() {
	os.Exit(run())
}

func run() int {
	opts := parseFlags()

	if !term.IsTerminal(int(os.Stdin.Fd())) {
		fmt.Fprintln(os.Stderr, "Error: inkwell needs an interactive terminal")
		return 1
	}

	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	logger, level, err := buildLogger(opts.LogPath, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer logger.Sync() //nolint:errcheck // best effort on exit

	engine := rules.NewEngine(append(cfg.RulesOptions(), rules.WithLogger(logger))...)
	scripts, err := rulelua.Install(engine, cfg.Rules.Scripts, rulelua.WithLogger(logger))
	if err != nil {
		logger.Warn("rule scripts skipped", zap.Error(err))
	}
	defer func() {
		for _, s := range scripts {
			s.Close()
		}
	}()

	ed, err := openEditor(opts.File, engine, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	// A rewritten config file retunes log verbosity while running.
	if watcher, err := config.Watch(opts.ConfigPath, func(c config.Config) {
		if lvl, err := c.Editor.ZapLevel(); err == nil {
			level.SetLevel(lvl)
		}
	}, config.WithWatchLogger(logger)); err == nil {
		defer watcher.Close()
	}

	app, err := newApp(ed, opts.File, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return app.Run()
}

func openEditor(path string, engine *rules.Engine, cfg config.Config, logger *zap.Logger) (*editor.Editor, error) {
	opts := []editor.Option{
		editor.WithLogger(logger),
		editor.WithRules(engine),
		editor.WithHistory(history.New(cfg.HistoryOptions()...)),
	}
	if path == "" {
		return editor.New(opts...), nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return editor.New(opts...), nil
	}
	if err != nil {
		return nil, err
	}
	d, err := delta.FromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return editor.FromDelta(d, opts...)
}

// buildLogger writes to the given file, or nowhere. The terminal
// belongs to the screen, so stderr is never an option while running.
func buildLogger(path string, cfg config.Config) (*zap.Logger, zap.AtomicLevel, error) {
	lvl, err := cfg.Editor.ZapLevel()
	if err != nil {
		return nil, zap.AtomicLevel{}, err
	}
	level := zap.NewAtomicLevelAt(lvl)
	if path == "" {
		return zap.NewNop(), level, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, zap.AtomicLevel{}, fmt.Errorf("open log file: %w", err)
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.Lock(f),
		level,
	)
	return zap.New(core), level, nil
}

func parseFlags() options {
	var opts options
	var showVersion bool

	flag.StringVar(&opts.ConfigPath, "config", "inkwell.toml", "Path to configuration file")
	flag.StringVar(&opts.ConfigPath, "c", "inkwell.toml", "Path to configuration file (shorthand)")
	flag.StringVar(&opts.LogPath, "log", "", "Write logs to this file (default: discard)")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Inkwell - rich text editing in the terminal\n\n")
		fmt.Fprintf(os.Stderr, "Usage: inkwell [options] [document.json]\n\n")
		fmt.Fprintf(os.Stderr, "The document is a Quill delta JSON file. A missing file is\n")
		fmt.Fprintf(os.Stderr, "created on the first save.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}

	flag.Parse()

	if showVersion {
		fmt.Printf("inkwell %s (%s)\n", version, commit)
		os.Exit(0)
	}

	if args := flag.Args(); len(args) > 0 {
		opts.File = args[0]
	}
	return opts
}
