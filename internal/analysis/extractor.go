// Package analysis turns resume text into a merged ResumeAnalysis using
// keyword matching, heuristic project segmentation and, when configured,
// LLM-assisted extraction.
package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/prompts"
	"github.com/jonathan/interview-assistant/internal/skills"
	"github.com/jonathan/interview-assistant/internal/types"
	"golang.org/x/sync/errgroup"
)

const (
	// llmTextBudget caps how much resume text is sent to the model
	llmTextBudget         = 4000
	extractionTemperature = 0.3
)

// Extractor produces a ResumeAnalysis from resume plain text
type Extractor interface {
	Extract(ctx context.Context, text string) (*types.ResumeAnalysis, error)
}

// NewExtractor returns an LLMExtractor when client is configured, otherwise a
// HeuristicExtractor.
func NewExtractor(client llm.Client, policy llm.RetryPolicy) Extractor {
	if client == nil {
		return HeuristicExtractor{}
	}
	return NewLLMExtractor(client, policy)
}

// HeuristicExtractor uses only the keyword tables and the project segmenter
type HeuristicExtractor struct{}

// Extract runs pattern matching and segmentation over text
func (HeuristicExtractor) Extract(_ context.Context, text string) (*types.ResumeAnalysis, error) {
	return finalize(matchPatterns(text), nil), nil
}

// matchPatterns collects keyword-matched skills and heuristic projects.
func matchPatterns(text string) *types.ResumeAnalysis {
	return &types.ResumeAnalysis{
		TechnicalSkills: skills.MatchTechnical(text),
		SoftSkills:      skills.MatchSoft(text),
		Projects:        SegmentProjects(text),
	}
}

// LLMExtractor augments the heuristic result with a model extraction.
// A failed model call degrades to the heuristic result.
type LLMExtractor struct {
	client llm.Client
	policy llm.RetryPolicy
}

// NewLLMExtractor creates an extractor backed by client
func NewLLMExtractor(client llm.Client, policy llm.RetryPolicy) *LLMExtractor {
	return &LLMExtractor{client: client, policy: policy}
}

// Extract runs the pattern branch and the model branch concurrently and merges them
func (e *LLMExtractor) Extract(ctx context.Context, text string) (*types.ResumeAnalysis, error) {
	var pattern, model *types.ResumeAnalysis

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		pattern = matchPatterns(text)
		return nil
	})
	g.Go(func() error {
		model = e.extractWithModel(gctx, text)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Info("Resume extraction complete",
		"pattern_skills", len(pattern.TechnicalSkills),
		"pattern_soft_skills", len(pattern.SoftSkills),
		"pattern_projects", len(pattern.Projects),
		"llm_available", model != nil)

	return finalize(pattern, model), nil
}

// llmResumeDetails is the JSON contract requested from the model
type llmResumeDetails struct {
	TechnicalSkills []types.TechnicalSkill `json:"technical_skills"`
	SoftSkills      []types.SoftSkill      `json:"soft_skills"`
	Projects        []types.Project        `json:"projects"`
	Summary         string                 `json:"summary"`
	ExperienceLevel string                 `json:"experience_level"`
}

// extractWithModel returns nil when the model cannot be used.
func (e *LLMExtractor) extractWithModel(ctx context.Context, text string) *types.ResumeAnalysis {
	prompt, err := prompts.Render(prompts.ResumeFile, "extract-resume-details", map[string]string{
		"ResumeText": llm.TruncateRunes(text, llmTextBudget),
	})
	if err != nil {
		slog.Error("Failed to build extraction prompt", "error", err)
		return nil
	}

	details, err := llm.Retry(ctx, e.policy, llm.IsOverloaded, func(ctx context.Context) (*llmResumeDetails, error) {
		raw, err := e.client.GenerateJSON(ctx, prompt, llm.TierStandard, llm.WithTemperature(extractionTemperature))
		if err != nil {
			return nil, err
		}
		var d llmResumeDetails
		if err := json.Unmarshal([]byte(raw), &d); err != nil {
			return nil, &llm.ParseError{Message: "resume details are not valid JSON", Cause: err}
		}
		return &d, nil
	})
	if err != nil {
		slog.Warn("LLM resume extraction unavailable, using pattern matching only", "error", err)
		return nil
	}

	out := &types.ResumeAnalysis{
		TechnicalSkills: details.TechnicalSkills,
		SoftSkills:      details.SoftSkills,
		Projects:        details.Projects,
		Summary:         details.Summary,
	}
	if level, ok := types.ParseExperienceLevel(details.ExperienceLevel); ok {
		out.ExperienceLevel = level
	}
	return out
}

// Limits applied to the merged analysis
const (
	maxTechnicalSkills = 20
	maxSoftSkills      = 10
)

// finalize merges the model result into the pattern result, derives the
// experience level and summary, then truncates.
func finalize(pattern, model *types.ResumeAnalysis) *types.ResumeAnalysis {
	merged := Merge(pattern, model)

	if model != nil && model.ExperienceLevel != "" {
		merged.ExperienceLevel = model.ExperienceLevel
	} else {
		merged.ExperienceLevel = EstimateExperienceLevel(len(merged.Projects), len(merged.TechnicalSkills))
	}

	if model != nil && model.Summary != "" {
		merged.Summary = model.Summary
	} else {
		merged.Summary = fmt.Sprintf("Candidate with %d technical skills and %d projects",
			len(merged.TechnicalSkills), len(merged.Projects))
	}

	merged.TechnicalSkills = truncate(merged.TechnicalSkills, maxTechnicalSkills)
	merged.SoftSkills = truncate(merged.SoftSkills, maxSoftSkills)
	merged.Projects = truncate(merged.Projects, maxProjects)
	return merged
}

func truncate[T any](items []T, n int) []T {
	if len(items) > n {
		return items[:n]
	}
	return items
}
