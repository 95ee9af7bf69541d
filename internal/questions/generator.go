// Package questions generates interview question sets with the LLM.
//
// Resume mode makes three independent calls (technical, HR, project), each
// of which must return a JSON array of at least a minimum size. Role mode makes
// one call for a JSON object with three fixed-size categories. Both modes use
// the shared retry policy and never fall back to canned questions.
package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/prompts"
	"github.com/jonathan/interview-assistant/internal/types"
)

const (
	generationTemperature = 0.7

	maxPromptSkills       = 10
	maxPromptSoftSkills   = 8
	maxPromptProjects     = 5
	maxPromptTechnologies = 5
	maxPromptDescription  = 200
)

// Request describes the question set to generate
type Request struct {
	Mode       types.Mode
	Difficulty types.Difficulty
	Role       string
	Analysis   *types.ResumeAnalysis
}

// Generator produces question sets from an LLM client
type Generator struct {
	client llm.Client
	policy llm.RetryPolicy
}

// NewGenerator creates a Generator. A nil client makes every call fail with
// a GenerationError wrapping llm.ErrNotConfigured.
func NewGenerator(client llm.Client, policy llm.RetryPolicy) *Generator {
	return &Generator{client: client, policy: policy}
}

// Generate dispatches on the request mode.
func (g *Generator) Generate(ctx context.Context, req Request) (types.QuestionSet, error) {
	switch req.Mode {
	case types.ModeResume:
		return g.GenerateResumeQuestions(ctx, req.Analysis, req.Difficulty)
	case types.ModeRole:
		return g.GenerateRoleQuestions(ctx, req.Role, req.Difficulty)
	default:
		return nil, fmt.Errorf("unknown interview mode %q", req.Mode)
	}
}

// UnavailableMessage is the client-facing message for any generation failure
const UnavailableMessage = "Unable to generate interview questions at this time."

// category describes one resume-mode sub-call.
type category struct {
	name      string
	promptKey string
	minimum   int
	count     int
}

var (
	technicalCategory = category{name: "technical", promptKey: "technical", minimum: types.ResumeTechnicalMin, count: types.ResumeTechnicalCount}
	hrCategory        = category{name: "HR", promptKey: "hr", minimum: types.ResumeHRMin, count: types.ResumeHRCount}
	projectCategory   = category{name: "project", promptKey: "project", minimum: types.ResumeProjectMin, count: types.ResumeProjectCount}
)

// GenerateResumeQuestions makes the technical, HR and project calls in order.
// The first category to fail aborts generation.
func (g *Generator) GenerateResumeQuestions(ctx context.Context, analysis *types.ResumeAnalysis, difficulty types.Difficulty) (*types.ResumeQuestionSet, error) {
	if g.client == nil {
		return nil, notConfigured()
	}
	if analysis == nil {
		analysis = types.NewResumeAnalysis()
	}

	skillNames := analysis.TechnicalSkillNames(maxPromptSkills)
	technicalPrompt, err := categoryPrompt(technicalCategory, difficulty, len(skillNames) > 0, map[string]string{
		"Skills": strings.Join(skillNames, ", "),
	})
	if err != nil {
		return nil, err
	}
	technical, err := g.generateCategory(ctx, technicalCategory, technicalPrompt)
	if err != nil {
		return nil, err
	}

	softNames := analysis.SoftSkillNames(maxPromptSoftSkills)
	hrPrompt, err := categoryPrompt(hrCategory, difficulty, len(softNames) > 0, map[string]string{
		"Skills": strings.Join(softNames, ", "),
	})
	if err != nil {
		return nil, err
	}
	hr, err := g.generateCategory(ctx, hrCategory, hrPrompt)
	if err != nil {
		return nil, err
	}

	summaries := summarizeProjects(analysis.Projects)
	projectsJSON, err := json.MarshalIndent(summaries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode project summaries: %w", err)
	}
	projectPrompt, err := categoryPrompt(projectCategory, difficulty, len(summaries) > 0, map[string]string{
		"Projects": string(projectsJSON),
	})
	if err != nil {
		return nil, err
	}
	project, err := g.generateCategory(ctx, projectCategory, projectPrompt)
	if err != nil {
		return nil, err
	}

	return types.NewResumeQuestionSet(technical, hr, project)
}

// categoryPrompt renders the question prompt for c, choosing the specific or
// the generic context and focus lines.
func categoryPrompt(c category, difficulty types.Difficulty, specific bool, data map[string]string) (string, error) {
	suffix := ""
	if !specific {
		suffix = "-empty"
	}
	contextLine, err := prompts.Render(prompts.InterviewFile, c.promptKey+"-context"+suffix, data)
	if err != nil {
		return "", err
	}
	focusLine, err := prompts.Render(prompts.InterviewFile, c.promptKey+"-focus"+suffix, data)
	if err != nil {
		return "", err
	}
	return prompts.Render(prompts.InterviewFile, c.promptKey+"-questions", map[string]string{
		"Difficulty": string(difficulty),
		"Context":    contextLine,
		"Focus":      focusLine,
	})
}

// projectSummary is the trimmed project form embedded in the project prompt
type projectSummary struct {
	Title        string   `json:"title"`
	Technologies []string `json:"technologies"`
	Description  string   `json:"description"`
}

func summarizeProjects(projects []types.Project) []projectSummary {
	out := []projectSummary{}
	for _, p := range projects {
		if len(out) == maxPromptProjects {
			break
		}
		title := p.Title
		if title == "" {
			title = "Unnamed Project"
		}
		techs := p.Technologies
		if len(techs) > maxPromptTechnologies {
			techs = techs[:maxPromptTechnologies]
		}
		if techs == nil {
			techs = []string{}
		}
		out = append(out, projectSummary{
			Title:        title,
			Technologies: techs,
			Description:  llm.TruncateRunes(p.Description, maxPromptDescription),
		})
	}
	return out
}

// generateCategory runs one JSON-array call under the retry policy.
func (g *Generator) generateCategory(ctx context.Context, c category, prompt string) ([]string, error) {
	questions, err := llm.Retry(ctx, g.policy, nil, func(ctx context.Context) ([]string, error) {
		raw, err := g.client.GenerateJSON(ctx, prompt, llm.TierStandard, llm.WithTemperature(generationTemperature))
		if err != nil {
			return nil, err
		}
		items, err := llm.DecodeStringArray(raw)
		if err != nil {
			return nil, err
		}
		if len(items) < c.minimum {
			return nil, &llm.ParseError{Message: fmt.Sprintf("expected at least %d %s questions, got %d", c.minimum, c.name, len(items))}
		}
		return head(items, c.count), nil
	})
	if err != nil {
		slog.Error("Question generation failed", "category", c.name, "error", err)
		return nil, llm.NewGenerationError(UnavailableMessage, fmt.Sprintf("Failed to generate %s questions after retries", c.name), err)
	}
	return questions, nil
}

// GenerateRoleQuestions makes a single free-text call and parses the first
// JSON object in the response.
func (g *Generator) GenerateRoleQuestions(ctx context.Context, role string, difficulty types.Difficulty) (*types.RoleQuestionSet, error) {
	if g.client == nil {
		return nil, notConfigured()
	}

	prompt, err := prompts.Render(prompts.InterviewFile, "role-questions", map[string]string{
		"Role":       role,
		"Difficulty": string(difficulty),
	})
	if err != nil {
		return nil, err
	}

	set, err := llm.Retry(ctx, g.policy, nil, func(ctx context.Context) (*types.RoleQuestionSet, error) {
		raw, err := g.client.GenerateContent(ctx, prompt, llm.TierStandard, llm.WithTemperature(generationTemperature))
		if err != nil {
			return nil, err
		}
		return parseRoleQuestions(raw)
	})
	if err != nil {
		slog.Error("Role question generation failed", "role", role, "error", err)
		return nil, llm.NewGenerationError(UnavailableMessage, "All retry attempts exhausted", err)
	}
	return set, nil
}

// roleQuestionsWire accepts any category length so extra questions can be trimmed.
type roleQuestionsWire struct {
	HR        []string `json:"hr_questions"`
	Technical []string `json:"technical_questions"`
	Cultural  []string `json:"cultural_questions"`
}

func parseRoleQuestions(raw string) (*types.RoleQuestionSet, error) {
	object, ok := llm.ExtractJSONObject(raw)
	if !ok {
		return nil, &llm.ParseError{Message: "no JSON object in role question response"}
	}

	var wire roleQuestionsWire
	if err := json.Unmarshal([]byte(object), &wire); err != nil {
		return nil, &llm.ParseError{Message: "role questions are not valid JSON", Cause: err}
	}

	trimmed, err := json.Marshal(roleQuestionsWire{
		HR:        head(wire.HR, types.RoleHRCount),
		Technical: head(wire.Technical, types.RoleTechnicalCount),
		Cultural:  head(wire.Cultural, types.RoleCulturalCount),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode role questions: %w", err)
	}

	set, err := types.DecodeQuestionSet(types.ModeRole, trimmed)
	if err != nil {
		return nil, &llm.ParseError{Message: "role questions do not match the required shape", Cause: err}
	}
	return set.(*types.RoleQuestionSet), nil
}

func head(items []string, n int) []string {
	if items == nil {
		return []string{}
	}
	if len(items) > n {
		return items[:n]
	}
	return items
}

func notConfigured() error {
	return llm.NewGenerationError(UnavailableMessage, "AI question generation is not configured", llm.ErrNotConfigured)
}
