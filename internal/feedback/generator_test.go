package feedback

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/llm/llmtest"
	"github.com/jonathan/interview-assistant/internal/types"
)

const modelFeedback = `Here is my assessment:
{
  "overall_score": 82.6,
  "category_scores": {"hr_performance": 80, "technical_performance": 77.2, "cultural_fit": 104},
  "strengths": ["Clear structure"],
  "improvements": ["More metrics"],
  "detailed_feedback": "Solid interview."
}`

func request(t *testing.T) Request {
	var answers types.Answers
	require.NoError(t, answers.Set(0, "I would add an index."))
	return Request{
		Mode:       types.ModeResume,
		Difficulty: types.DifficultyIntermediate,
		Questions:  resumeSet(t),
		Answers:    answers,
	}
}

func TestParsePolicy(t *testing.T) {
	p, err := ParsePolicy("")
	require.NoError(t, err)
	assert.Equal(t, PolicyHeuristic, p)

	p, err = ParsePolicy("error")
	require.NoError(t, err)
	assert.Equal(t, PolicyError, p)

	_, err = ParsePolicy("silent")
	assert.Error(t, err)
}

func TestGenerate_ModelFeedback(t *testing.T) {
	mock := &llmtest.MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return modelFeedback, nil
		},
	}
	gen := NewGenerator(mock, llmtest.NoDelayPolicy(3), PolicyError)

	fb, err := gen.Generate(context.Background(), request(t))
	require.NoError(t, err)

	assert.Equal(t, 83, fb.OverallScore)
	assert.Equal(t, types.CategoryScores{HRPerformance: 80, TechnicalPerformance: 77, CulturalFit: 100}, fb.CategoryScores)
	assert.Equal(t, []string{"Clear structure"}, fb.Strengths)
	assert.Equal(t, "Solid interview.", fb.DetailedFeedback)

	calls := mock.Calls()
	require.Len(t, calls, 1)
	prompt := calls[0].Prompt
	assert.Contains(t, prompt, "Interview Mode: resume")
	assert.Contains(t, prompt, "Difficulty Level: intermediate")
	assert.Contains(t, prompt, "Role: General")
	assert.Contains(t, prompt, `"answer": "I would add an index."`)
	assert.Contains(t, prompt, `"answer": "No answer provided"`)
	assert.Contains(t, prompt, `"category": "Technical Questions"`)
}

func TestGenerate_RolePassedThrough(t *testing.T) {
	mock := &llmtest.MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return modelFeedback, nil
		},
	}
	gen := NewGenerator(mock, llmtest.NoDelayPolicy(1), PolicyHeuristic)

	req := request(t)
	req.Mode = types.ModeRole
	req.Role = "Platform Engineer"
	_, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Contains(t, mock.Calls()[0].Prompt, "Role: Platform Engineer")
}

func TestGenerate_RetriesInvalidShape(t *testing.T) {
	responses := []string{
		"no json here",
		`{"overall_score": 50, "strengths": [], "improvements": []}`,
		modelFeedback,
	}
	i := 0
	mock := &llmtest.MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			r := responses[i]
			i++
			return r, nil
		},
	}
	gen := NewGenerator(mock, llmtest.NoDelayPolicy(3), PolicyError)

	fb, err := gen.Generate(context.Background(), request(t))
	require.NoError(t, err)
	assert.Equal(t, 83, fb.OverallScore)
	assert.Len(t, mock.Calls(), 3)
}

func TestGenerate_ExhaustedFallsBackToHeuristic(t *testing.T) {
	mock := &llmtest.MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("503 Service Unavailable")
		},
	}
	gen := NewGenerator(mock, llmtest.NoDelayPolicy(3), PolicyHeuristic)

	req := request(t)
	fb, err := gen.Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, Heuristic(BuildTranscript(req.Questions, req.Answers)), fb)
	assert.Len(t, mock.Calls(), 3)
}

func TestGenerate_ExhaustedErrorPolicy(t *testing.T) {
	mock := &llmtest.MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("model is overloaded")
		},
	}
	gen := NewGenerator(mock, llmtest.NoDelayPolicy(2), PolicyError)

	fb, err := gen.Generate(context.Background(), request(t))
	require.Error(t, err)
	assert.Nil(t, fb)

	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.Equal(t, UnavailableMessage, genErr.Message)
	assert.True(t, genErr.Overloaded)
	assert.Len(t, mock.Calls(), 2)
}

func TestGenerate_NonRetryableErrorPolicy(t *testing.T) {
	mock := &llmtest.MockLLMClient{
		GenerateContentFunc: func(context.Context, string, llm.ModelTier) (string, error) {
			return "", errors.New("invalid api key")
		},
	}
	gen := NewGenerator(mock, llmtest.NoDelayPolicy(3), PolicyError)

	_, err := gen.Generate(context.Background(), request(t))
	var genErr *llm.GenerationError
	require.ErrorAs(t, err, &genErr)
	assert.False(t, genErr.Overloaded)
	assert.Len(t, mock.Calls(), 1)
}

func TestGenerate_NoClient(t *testing.T) {
	req := request(t)

	fb, err := NewGenerator(nil, llm.DefaultRetryPolicy, PolicyHeuristic).Generate(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 12, len(BuildTranscript(req.Questions, req.Answers)))
	assert.Contains(t, fb.DetailedFeedback, "You completed 1 out of 12 questions")

	_, err = NewGenerator(nil, llm.DefaultRetryPolicy, PolicyError).Generate(context.Background(), req)
	assert.ErrorIs(t, err, llm.ErrNotConfigured)
}

func TestGenerate_CancelledContext(t *testing.T) {
	mock := &llmtest.MockLLMClient{}
	gen := NewGenerator(mock, llmtest.NoDelayPolicy(3), PolicyHeuristic)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gen.Generate(ctx, request(t))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, mock.Calls())
}
