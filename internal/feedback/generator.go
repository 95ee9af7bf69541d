// Package feedback scores a completed interview session.
package feedback

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/prompts"
	"github.com/jonathan/interview-assistant/internal/schemas"
	"github.com/jonathan/interview-assistant/internal/types"
)

// UnavailableMessage is the client-facing message when feedback cannot be produced
const UnavailableMessage = "Unable to generate interview feedback at this time."

// Policy decides what happens once model feedback is unavailable
type Policy string

const (
	// PolicyHeuristic scores the transcript locally
	PolicyHeuristic Policy = "heuristic"
	// PolicyError fails the completion request
	PolicyError Policy = "error"
)

// ParsePolicy validates a configured policy name. Empty means PolicyHeuristic.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyHeuristic:
		return PolicyHeuristic, nil
	case PolicyError:
		return PolicyError, nil
	default:
		return "", fmt.Errorf("unknown feedback policy %q (want %q or %q)", s, PolicyHeuristic, PolicyError)
	}
}

// Request carries the session data needed to score an interview
type Request struct {
	Mode       types.Mode
	Difficulty types.Difficulty
	Role       string
	Questions  types.QuestionSet
	Answers    types.Answers
}

// Generator produces Feedback with the model, falling back per Policy
type Generator struct {
	client        llm.Client
	retry         llm.RetryPolicy
	onUnavailable Policy
}

// NewGenerator creates a Generator. A nil client is treated as the model
// being unavailable on every call.
func NewGenerator(client llm.Client, retry llm.RetryPolicy, onUnavailable Policy) *Generator {
	if onUnavailable == "" {
		onUnavailable = PolicyHeuristic
	}
	return &Generator{client: client, retry: retry, onUnavailable: onUnavailable}
}

// Generate scores req. With PolicyError a model failure returns an
// *llm.GenerationError; with PolicyHeuristic it returns the local score.
func (g *Generator) Generate(ctx context.Context, req Request) (*types.Feedback, error) {
	items := BuildTranscript(req.Questions, req.Answers)

	if g.client == nil {
		return g.unavailable(items, llm.ErrNotConfigured)
	}

	prompt, err := renderPrompt(req, items)
	if err != nil {
		return nil, err
	}

	fb, err := llm.Retry(ctx, g.retry, nil, func(ctx context.Context) (*types.Feedback, error) {
		raw, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard)
		if err != nil {
			return nil, err
		}
		return parseFeedback(raw)
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return g.unavailable(items, err)
	}
	return fb, nil
}

func (g *Generator) unavailable(items []Item, cause error) (*types.Feedback, error) {
	if g.onUnavailable == PolicyError {
		slog.Error("Feedback generation failed", "error", cause)
		return nil, llm.NewGenerationError(UnavailableMessage, "All retry attempts exhausted", cause)
	}
	slog.Warn("Feedback generation unavailable, using local scoring", "error", cause, "questions", len(items))
	return Heuristic(items), nil
}

func renderPrompt(req Request, items []Item) (string, error) {
	role := req.Role
	if role == "" {
		role = "General"
	}
	transcript, err := json.MarshalIndent(items, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode interview transcript: %w", err)
	}
	return prompts.Render(prompts.InterviewFile, "interview-feedback", map[string]string{
		"Mode":          string(req.Mode),
		"Difficulty":    string(req.Difficulty),
		"Role":          role,
		"InterviewData": string(transcript),
	})
}

func parseFeedback(raw string) (*types.Feedback, error) {
	object, ok := llm.ExtractJSONObject(raw)
	if !ok {
		return nil, &llm.ParseError{Message: "no JSON object in feedback response"}
	}
	if err := schemas.Validate(schemas.Feedback, []byte(object)); err != nil {
		return nil, &llm.ParseError{Message: "feedback does not match the required shape", Cause: err}
	}
	var fb types.Feedback
	if err := json.Unmarshal([]byte(object), &fb); err != nil {
		return nil, &llm.ParseError{Message: "feedback is not valid JSON", Cause: err}
	}
	return &fb, nil
}
