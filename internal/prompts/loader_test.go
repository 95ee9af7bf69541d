package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_ValidPrompt(t *testing.T) {
	ClearCache()

	prompt, err := Get(ResumeFile, "extract-resume-details")
	require.NoError(t, err)
	assert.NotEmpty(t, prompt)
	assert.Contains(t, prompt, "expert resume analyzer")
}

func TestGet_InvalidFile(t *testing.T) {
	ClearCache()

	_, err := Get("nonexistent.json", "some-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read prompt file")
}

func TestGet_InvalidKey(t *testing.T) {
	ClearCache()

	_, err := Get(InterviewFile, "nonexistent-key")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMustGet_Panics(t *testing.T) {
	ClearCache()

	assert.Panics(t, func() {
		MustGet("nonexistent.json", "some-key")
	})
}

func TestInterviewPrompts_Present(t *testing.T) {
	ClearCache()

	required := []string{
		"technical-questions", "technical-context", "technical-context-empty", "technical-focus", "technical-focus-empty",
		"hr-questions", "hr-context", "hr-context-empty", "hr-focus", "hr-focus-empty",
		"project-questions", "project-context", "project-context-empty", "project-focus", "project-focus-empty",
		"role-questions", "interview-feedback",
	}

	keys, err := List(InterviewFile)
	require.NoError(t, err)
	for _, key := range required {
		assert.Contains(t, keys, key)
	}
}

func TestFormat(t *testing.T) {
	template := "Hello {{.Name}}, welcome to {{.Company}}!"
	data := map[string]string{
		"Name":    "Alice",
		"Company": "Acme Corp",
	}

	result := Format(template, data)
	assert.Equal(t, "Hello Alice, welcome to Acme Corp!", result)
}

func TestFormat_EmptyData(t *testing.T) {
	template := "Hello {{.Name}}"

	result := Format(template, map[string]string{})
	assert.Equal(t, template, result) // Placeholder remains
}

func TestFormat_ValuesAreNotReexpanded(t *testing.T) {
	template := "Resume: {{.ResumeText}} / {{.Role}}"
	data := map[string]string{
		"ResumeText": "contains {{.Role}} literally",
		"Role":       "SRE",
	}

	result := Format(template, data)
	assert.Equal(t, "Resume: contains {{.Role}} literally / SRE", result)
}

func TestRender_RoleQuestions(t *testing.T) {
	ClearCache()

	prompt, err := Render(InterviewFile, "role-questions", map[string]string{
		"Role":       "Data Engineer",
		"Difficulty": "advanced",
	})
	require.NoError(t, err)

	assert.Contains(t, prompt, "advanced level interview for a Data Engineer position")
	assert.NotContains(t, prompt, "{{.")
	assert.Equal(t, 7, strings.Count(prompt, "Data Engineer"))
}

func TestCaching(t *testing.T) {
	ClearCache()

	prompt1, err := Get(InterviewFile, "interview-feedback")
	require.NoError(t, err)

	prompt2, err := Get(InterviewFile, "interview-feedback")
	require.NoError(t, err)

	assert.Equal(t, prompt1, prompt2)
}
