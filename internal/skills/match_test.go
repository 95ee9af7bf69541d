package skills

import (
	"strings"
	"testing"

	"github.com/jonathan/interview-assistant/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func names(found []types.TechnicalSkill) []string {
	out := make([]string, len(found))
	for i, s := range found {
		out[i] = s.Name
	}
	return out
}

func TestMatchTechnical_PythonOnceRegardlessOfRepetition(t *testing.T) {
	text := "Python developer. PYTHON scripts, python tooling and more python."

	found := MatchTechnical(text)

	count := 0
	for _, s := range found {
		if s.Name == "python" {
			count++
			assert.Equal(t, "Programming Languages", s.Category)
			assert.Equal(t, types.ProficiencyMentioned, s.Proficiency)
		}
	}
	assert.Equal(t, 1, count)
}

func TestMatchTechnical_WholeWordsOnly(t *testing.T) {
	found := names(MatchTechnical("Wrote JavaScript for a good mysql dashboard"))

	assert.Contains(t, found, "javascript")
	assert.Contains(t, found, "mysql")
	assert.NotContains(t, found, "java")
	assert.NotContains(t, found, "go")
	assert.NotContains(t, found, "sql")
}

func TestMatchTechnical_PunctuatedKeywords(t *testing.T) {
	found := names(MatchTechnical("Skills: C++, C#, Node.js, CI/CD pipelines, UI/UX."))

	assert.Contains(t, found, "c++")
	assert.Contains(t, found, "c#")
	assert.Contains(t, found, "node.js")
	assert.Contains(t, found, "ci/cd")
	assert.Contains(t, found, "ui/ux")
}

func TestMatchTechnical_TableOrder(t *testing.T) {
	found := MatchTechnical("Docker, React and Go")

	require.Len(t, found, 3)
	assert.Equal(t, []string{"go", "react", "docker"}, names(found))
	assert.Equal(t, "Web Frameworks", found[1].Category)
	assert.Equal(t, "Cloud Devops", found[2].Category)
}

func TestMatchTechnical_Empty(t *testing.T) {
	found := MatchTechnical("")
	assert.NotNil(t, found)
	assert.Empty(t, found)
}

func TestMatchSoft_FirstOccurrenceWithContext(t *testing.T) {
	text := "Known for strong Leadership across teams. Leadership again later. Excellent communication."

	found := MatchSoft(text)

	require.Len(t, found, 2)
	assert.Equal(t, "Leadership", found[0].Skill)
	assert.True(t, strings.HasPrefix(found[0].Context, "Known for strong Leadership"))
	assert.Equal(t, "Communication", found[1].Skill)
}

func TestMatchSoft_ContextWindow(t *testing.T) {
	prefix := strings.Repeat("a", 80)
	suffix := strings.Repeat("b", 80)
	text := prefix + " teamwork " + suffix

	found := MatchSoft(text)

	require.Len(t, found, 1)
	assert.Equal(t, "Teamwork", found[0].Skill)
	// 50 chars each side of the match, trimmed
	assert.Equal(t, strings.Repeat("a", 49)+" teamwork "+strings.Repeat("b", 49), found[0].Context)
}

func TestMatchKeywords_Limit(t *testing.T) {
	text := "python java go rust react docker aws"

	assert.Equal(t, []string{"python", "java", "go"}, MatchKeywords(text, 3))
	assert.Len(t, MatchKeywords(text, 0), 7)
}

func TestCatalog(t *testing.T) {
	stats := Catalog()

	assert.Equal(t, 8, stats.Categories)
	assert.Equal(t, 22, stats.SoftSkills)
	assert.Greater(t, stats.TechnicalKeywords, 100)
}

func TestCategories_ReturnsCopy(t *testing.T) {
	cats := Categories()
	cats[0].Keywords[0] = "mutated"

	assert.Equal(t, "python", Categories()[0].Keywords[0])
}
