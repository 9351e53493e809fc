// Rulecore runs a D&D 5e rules table from Lua content.
//
// Usage:
//
//	rulecore play [--plain] [--script <file>] [--trace] <content_dir>
//	rulecore roll <notation>
//	rulecore validate <content_dir>
//	rulecore replay --journal <path> <content_dir>
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nathoo/rulecore/config"
	"github.com/nathoo/rulecore/logging"
)

// Set via -ldflags at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           "rulecore",
	Short:         "A deterministic D&D 5e rules engine",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version and build metadata",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "rulecore %s (commit %s, built %s) %s/%s\n",
			version, commit, date, runtime.GOOS, runtime.GOARCH)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", "", "load settings from this .env file instead of ./.env")
	rootCmd.AddCommand(versionCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

// runtimeEnv is the configuration and logger shared by every command.
type runtimeEnv struct {
	cfg     config.Config
	log     *slog.Logger
	closers []io.Closer
}

// setup loads configuration and installs the default logger. Logs go to
// stderr unless RULECORE_LOG_FILE names a file, which keeps the TUI clean.
func setup() (*runtimeEnv, error) {
	var files []string
	if envFile != "" {
		files = append(files, envFile)
	}
	cfg, err := config.Load(files...)
	if err != nil {
		return nil, err
	}

	rt := &runtimeEnv{cfg: cfg}
	var w io.Writer = os.Stderr
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("opening log file: %w", err)
		}
		rt.closers = append(rt.closers, f)
		w = f
	}
	rt.log = logging.New(w, cfg.LogFormat, cfg.LogLevel)
	slog.SetDefault(rt.log)
	return rt, nil
}

func (rt *runtimeEnv) close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		if err := rt.closers[i].Close(); err != nil {
			rt.log.Warn("close failed", "err", err)
		}
	}
}

// isTerminal returns true if stdout is a terminal (not piped/redirected).
func isTerminal() bool {
	fi, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&os.ModeCharDevice != 0
}
