// Package ingestion turns uploaded resume files into normalized plain text.
package ingestion

import (
	"regexp"
	"strings"
)

var (
	inlineSpace    = regexp.MustCompile(`[ \t\f\v\x{00a0}]+`)
	excessiveBlank = regexp.MustCompile(`\n{3,}`)
)

// CleanText normalizes extracted text while keeping its line structure:
// line endings become \n, runs of spaces collapse, trailing whitespace goes,
// and at most one blank line separates paragraphs.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = strings.ReplaceAll(content, "\x00", "")

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = cleanLine(line)
	}

	result := strings.Join(lines, "\n")
	result = excessiveBlank.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine collapses whitespace within a line. Bullet markers are kept so the
// project segmenter still sees list structure.
func cleanLine(line string) string {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return ""
	}
	return inlineSpace.ReplaceAllString(trimmed, " ")
}

// IsBulletLine reports whether a line starts with a list marker
func IsBulletLine(line string) bool {
	trimmed := strings.TrimLeft(line, " \t")
	for _, marker := range []string{"- ", "* ", "• ", "· ", "▪ ", "– "} {
		if strings.HasPrefix(trimmed, marker) {
			return true
		}
	}
	return false
}
