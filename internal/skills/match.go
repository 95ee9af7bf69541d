package skills

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/jonathan/interview-assistant/internal/types"
)

// contextRadius is how many characters of surrounding text a soft-skill match keeps.
const contextRadius = 50

var softSkillPatterns = compileSoftSkills()

func compileSoftSkills() []*regexp.Regexp {
	patterns := make([]*regexp.Regexp, len(softSkills))
	for i, skill := range softSkills {
		patterns[i] = regexp.MustCompile(`(?i)\b` + regexp.QuoteMeta(skill) + `\b`)
	}
	return patterns
}

// MatchTechnical returns every technical keyword that appears as a whole word
// in text, case-insensitively, in table order and without duplicates.
func MatchTechnical(text string) []types.TechnicalSkill {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	found := []types.TechnicalSkill{}

	for _, c := range technicalCategories {
		label := c.Label()
		for _, kw := range c.Keywords {
			if seen[kw] || !containsKeyword(lower, kw) {
				continue
			}
			seen[kw] = true
			found = append(found, types.TechnicalSkill{
				Name:        kw,
				Category:    label,
				Proficiency: types.ProficiencyMentioned,
			})
		}
	}
	return found
}

// MatchKeywords returns up to limit technical keyword names found in text.
// A limit <= 0 means no limit.
func MatchKeywords(text string, limit int) []string {
	lower := strings.ToLower(text)
	seen := make(map[string]bool)
	var names []string

	for _, c := range technicalCategories {
		for _, kw := range c.Keywords {
			if limit > 0 && len(names) == limit {
				return names
			}
			if seen[kw] || !containsKeyword(lower, kw) {
				continue
			}
			seen[kw] = true
			names = append(names, kw)
		}
	}
	return names
}

// MatchSoft returns the first mention of each soft skill with the surrounding
// text as context.
func MatchSoft(text string) []types.SoftSkill {
	found := []types.SoftSkill{}

	for i, re := range softSkillPatterns {
		loc := re.FindStringIndex(text)
		if loc == nil {
			continue
		}
		found = append(found, types.SoftSkill{
			Skill:   types.TitleCase(softSkills[i]),
			Context: surrounding(text, loc[0], loc[1], contextRadius),
		})
	}
	return found
}

// containsKeyword reports whether kw occurs in text bounded on both sides by a
// non-word character or the edge of the text. Both arguments are lower case.
func containsKeyword(text, kw string) bool {
	offset := 0
	for {
		idx := strings.Index(text[offset:], kw)
		if idx < 0 {
			return false
		}
		start := offset + idx
		end := start + len(kw)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			return true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// surrounding returns text[start-radius:end+radius] in runes, trimmed.
func surrounding(text string, start, end, radius int) string {
	from := start
	for n := 0; n < radius && from > 0; n++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}
	to := end
	for n := 0; n < radius && to < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}
	return strings.TrimSpace(text[from:to])
}
