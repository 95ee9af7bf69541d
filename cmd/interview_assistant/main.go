// Package main provides the interview assistant command line: the HTTP API
// server and the resume, database and setup utilities around it.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/interview-assistant/internal/config"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	// appConfig is loaded before every command runs
	appConfig *config.Config
)

var rootCmd = &cobra.Command{
	Use:           "interview_assistant",
	Short:         "AI mock interview backend",
	Long:          "Interview Assistant analyzes PDF resumes, generates interview questions with Gemini, records answers and scores completed interviews.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}

		logger, err := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, logFormat)
		if err != nil {
			return err
		}
		setDefaultLogger(logger)

		appConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file (environment variables override it)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error (overrides LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
