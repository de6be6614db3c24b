// Package cmd contains the lexilens CLI commands.
package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/lexilens/internal/adapter/daemon"
	"github.com/heartmarshall/lexilens/internal/app"
	"github.com/heartmarshall/lexilens/internal/config"
)

var (
	cfgFile     string
	profileFile string
	daemonURL   string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "lexilens",
	Short: "Explain selected words with a layered, streaming analysis",
	Long: `lexilens talks to the lexilensd daemon and to the analysis service.

Pages report selections to the daemon; "lexilens watch" is a display
surface that renders every accepted selection as it streams in and saves
finished explanations to the wordbook.`,
	SilenceUsage: true,
}

// Execute runs the root command with a context cancelled on SIGINT/SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $CONFIG_PATH or ./config.yaml)")
	rootCmd.PersistentFlags().StringVar(&profileFile, "profile", "", "learner profile YAML, overrides profile.file")
	rootCmd.PersistentFlags().StringVar(&daemonURL, "daemon", "", "daemon base URL (default from server.host and server.port)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log at debug level")
}

// loadConfig reads the configuration and applies the persistent flags.
func loadConfig() (*config.Config, *slog.Logger, error) {
	if cfgFile != "" {
		if err := os.Setenv("CONFIG_PATH", cfgFile); err != nil {
			return nil, nil, err
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	if profileFile != "" {
		cfg.Profile.File = profileFile
	}

	logCfg := config.LogConfig{Level: "warn", Format: "text"}
	if verbose {
		logCfg.Level = "debug"
	}
	return cfg, app.NewLogger(logCfg), nil
}

func daemonClient(cfg *config.Config, logger *slog.Logger) *daemon.Client {
	return daemon.NewClient(daemon.Config{BaseURL: baseURL(cfg)}, logger)
}

func baseURL(cfg *config.Config) string {
	if daemonURL != "" {
		return strings.TrimRight(daemonURL, "/")
	}
	return "http://" + cfg.Server.Addr()
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
