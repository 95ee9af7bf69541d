package analysis

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/jonathan/interview-assistant/internal/skills"
	"github.com/jonathan/interview-assistant/internal/types"
)

const (
	maxProjects            = 5
	maxProjectTechnologies = 5
	maxSectionHeaderLength = 50
	minProjectTitleLength  = 10
	maxProjectTitleLength  = 100
)

var (
	projectHeader   = regexp.MustCompile(`\bprojects?\b`)
	competingHeader = regexp.MustCompile(`\b(education|experience|skills|certifications?|awards?)\b`)
	projectTriggers = []string{"developed", "built", "created", "project:"}
)

// SegmentProjects partitions resume text into project entries with a line
// scan. It is a best-effort fallback: false positives and negatives are expected.
func SegmentProjects(text string) []types.Project {
	var (
		projects  []types.Project
		current   *types.Project
		inSection bool
	)

	flush := func() {
		if current != nil {
			projects = append(projects, *current)
			current = nil
		}
	}

	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		lower := strings.ToLower(trimmed)
		length := utf8.RuneCountInString(trimmed)

		if projectHeader.MatchString(lower) && length < maxSectionHeaderLength {
			inSection = true
			continue
		}

		if inSection && competingHeader.MatchString(lower) {
			break
		}

		if !inSection && !hasTrigger(lower) {
			continue
		}

		if length > minProjectTitleLength && length < maxProjectTitleLength {
			flush()
			current = &types.Project{
				Title:           trimmed,
				Technologies:    []string{},
				KeyAchievements: []string{},
			}
		} else if current != nil && trimmed != "" {
			current.Description = strings.TrimSpace(current.Description + " " + trimmed)
		}
	}
	flush()

	for i := range projects {
		techs := skills.MatchKeywords(projects[i].Description, maxProjectTechnologies)
		if techs != nil {
			projects[i].Technologies = techs
		}
	}

	if len(projects) > maxProjects {
		projects = projects[:maxProjects]
	}
	if projects == nil {
		projects = []types.Project{}
	}
	return projects
}

func hasTrigger(lower string) bool {
	for _, t := range projectTriggers {
		if strings.Contains(lower, t) {
			return true
		}
	}
	return false
}
