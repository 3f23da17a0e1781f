// Package main provides the entry point for the Tender Intelligence dashboard
// server and its payload tools.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/tender-intel/internal/config"
	"github.com/jonathan/tender-intel/internal/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "tender_agent",
	Short: "Tender Intelligence dashboard server",
	Long: "Tender Intelligence classifies public tenders for TES and Phakathi, recommends bid decisions " +
		"and serves the dashboard API over the daily tender payload.",
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a YAML or JSON config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: json or console (overrides config)")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfig reads the config file and environment, then applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if logLevel != "" {
		cfg.Logging.Level = logLevel
	}
	if logFormat != "" {
		cfg.Logging.Format = logFormat
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}
	return log, nil
}
