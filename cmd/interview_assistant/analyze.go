package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/interview-assistant/internal/analysis"
	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/types"
)

var analyzeNoLLM bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <resume.pdf>",
	Short: "Analyze a PDF resume and print the result as JSON",
	Long:  "Extract the text of a PDF resume, detect skills and projects, and print the full analysis with its keyword list.",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeNoLLM, "no-llm", false, "Use keyword matching only, even when GEMINI_API_KEY is set")
	rootCmd.AddCommand(analyzeCmd)
}

type analyzeOutput struct {
	File     string                `json:"file"`
	Analysis *types.ResumeAnalysis `json:"analysis"`
	Keywords []string              `json:"keywords"`
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("cannot read resume: %w", err)
	}

	ctx := cmd.Context()
	var client llm.Client
	if !analyzeNoLLM {
		c, err := llm.NewClient(ctx, appConfig.LLM(), appConfig.GeminiAPIKey)
		switch {
		case errors.Is(err, llm.ErrNotConfigured):
			slog.Info("GEMINI_API_KEY is not set; using keyword matching only")
		case err != nil:
			return err
		default:
			client = c
			defer c.Close()
		}
	}

	analyzer := analysis.NewAnalyzer(analysis.NewExtractor(client, appConfig.RetryPolicy()))
	result, err := analyzer.AnalyzeFile(ctx, path)
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(analyzeOutput{
		File:     path,
		Analysis: result,
		Keywords: analysis.Keywords(result),
	})
}
