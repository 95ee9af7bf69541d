package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-assistant/internal/config"
	"github.com/jonathan/interview-assistant/internal/db"
	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/skills"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the skill catalog, configuration and database",
	Args:  cobra.NoArgs,
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	cfg := appConfig

	stats := skills.Catalog()
	fmt.Fprintln(out, "Skill catalog")
	fmt.Fprintf(out, "  categories:         %d\n", stats.Categories)
	fmt.Fprintf(out, "  technical keywords: %d\n", stats.TechnicalKeywords)
	fmt.Fprintf(out, "  soft skills:        %d\n", stats.SoftSkills)

	fmt.Fprintln(out, "Configuration")
	printSetting(out, "GEMINI_API_KEY", config.Mask(cfg.GeminiAPIKey))
	printSetting(out, "GOOGLE_OAUTH_CLIENT_ID", config.Mask(cfg.GoogleClientID))
	printSetting(out, "GOOGLE_OAUTH_CLIENT_SECRET", config.Mask(cfg.GoogleClientSecret))
	printSetting(out, "SESSION_SECRET", config.Mask(cfg.SessionSecret))
	printSetting(out, "FRONTEND_URL", cfg.FrontendURL)
	printSetting(out, "UPLOAD_DIR", cfg.UploadDir)
	printSetting(out, "FEEDBACK_ON_AI_UNAVAILABLE", string(cfg.FeedbackPolicy()))

	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "  invalid: %v\n", err)
		return err
	}
	if _, err := cfg.JWT(); err != nil {
		fmt.Fprintf(out, "  warning: %v (required by serve)\n", err)
	}

	fmt.Fprintf(out, "Database (%s)\n", db.Dialect(cfg.DatabaseURL))
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()

	store, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		fmt.Fprintln(out, "  connection: FAILED")
		return err
	}
	defer store.Close()

	if err := store.Ping(ctx); err != nil {
		fmt.Fprintln(out, "  connection: FAILED")
		return err
	}
	fmt.Fprintln(out, "  connection: OK")

	if err := store.CheckSchema(ctx); err != nil {
		fmt.Fprintln(out, "  session columns: FAILED")
		return err
	}
	fmt.Fprintln(out, "  session columns: OK")

	return verifyLLM(ctx, out, cfg)
}

// newLLMClient is replaced in tests.
var newLLMClient = llm.NewClient

func verifyLLM(ctx context.Context, out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "AI client")
	client, err := newLLMClient(ctx, cfg.LLM(), cfg.GeminiAPIKey)
	if errors.Is(err, llm.ErrNotConfigured) {
		fmt.Fprintln(out, "  skipped: GEMINI_API_KEY is not set")
		return nil
	}
	if err != nil {
		fmt.Fprintln(out, "  client: FAILED")
		return err
	}
	defer client.Close()

	fmt.Fprintf(out, "  standard model: %s\n", client.GetModel(llm.TierStandard))
	model, err := llm.Ping(ctx, client)
	if err != nil {
		fmt.Fprintf(out, "  ping %s: FAILED\n", model)
		return err
	}
	fmt.Fprintf(out, "  ping %s: OK\n", model)
	return nil
}

func printSetting(w io.Writer, key, value string) {
	if value == "" {
		value = "(not set)"
	}
	fmt.Fprintf(w, "  %-27s %s\n", key+":", value)
}
