// Package main implements inkdelta, a command line toolbox for
// inspecting and combining delta documents.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Version information (set via ldflags during build).
var version = "dev"

var (
	verbose bool
	compact bool
)

var rootCmd = &cobra.Command{
	Use:   "inkdelta",
	Short: "Inspect and combine rich text deltas",
	Long: `Inkdelta works with Quill delta JSON files: whole documents
(insert only, newline terminated) and changes (retain, insert,
delete). Results print as JSON on stdout, prettified when stdout is
a terminal. Pass - to read a delta from stdin.`,
	Version:      version,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log processing details to stderr")
	rootCmd.PersistentFlags().BoolVar(&compact, "compact", false, "always print compact JSON")
	rootCmd.AddCommand(catCmd, fmtCmd, composeCmd, diffCmd, transformCmd, invertCmd, lintCmd)
}

func logger() *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	log, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return log
}
