package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanText_PreserveBulletLists(t *testing.T) {
	input := "- Item 1\n- Item 2\n• Item 3"
	result := CleanText(input)

	assert.Equal(t, "- Item 1\n- Item 2\n• Item 3", result)
}

func TestCleanText_NormalizeWhitespace(t *testing.T) {
	input := "Line    with \t multiple    spaces   "
	result := CleanText(input)

	assert.Equal(t, "Line with multiple spaces", result)
}

func TestCleanText_RemoveExcessiveBlankLines(t *testing.T) {
	input := "Line 1\n\n\n\n\nLine 2"
	result := CleanText(input)

	assert.Equal(t, "Line 1\n\nLine 2", result)
}

func TestCleanText_NormalizeLineEndings(t *testing.T) {
	input := "Line 1\r\nLine 2\rLine 3\nLine 4"
	result := CleanText(input)

	assert.NotContains(t, result, "\r")
	assert.Equal(t, "Line 1\nLine 2\nLine 3\nLine 4", result)
}

func TestCleanText_EmptyInput(t *testing.T) {
	assert.Empty(t, CleanText(""))
	assert.Empty(t, CleanText("   \n  \n  "))
}

func TestCleanText_SpecialCharacters(t *testing.T) {
	input := "Test with émojis 🚀 and spéciàl chàracters"
	result := CleanText(input)

	assert.Equal(t, input, result)
}

func TestCleanText_StripsNulBytes(t *testing.T) {
	assert.Equal(t, "Go developer", CleanText("Go\x00 developer"))
}

func TestIsBulletLine(t *testing.T) {
	assert.True(t, IsBulletLine("  - Built a dashboard"))
	assert.True(t, IsBulletLine("• Led a team"))
	assert.False(t, IsBulletLine("Projects"))
}
