package types

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/interview-assistant/internal/schemas"
)

// Mode is the interview variant
type Mode string

// Interview modes
const (
	ModeResume Mode = "resume"
	ModeRole   Mode = "role"
)

// Difficulty is passed through to prompt construction
type Difficulty string

// Difficulty levels
const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// SessionStatus is the two-state session lifecycle flag
type SessionStatus string

// Session statuses
const (
	StatusActive    SessionStatus = "active"
	StatusCompleted SessionStatus = "completed"
)

// Category JSON keys shared by both question set variants
const (
	CategoryHR        = "hr_questions"
	CategoryTechnical = "technical_questions"
	CategoryCultural  = "cultural_questions"
	CategoryProject   = "project_questions"
)

// Category sizes. Role categories are fixed; resume categories hold between
// the minimum and the count.
const (
	RoleHRCount        = 3
	RoleTechnicalCount = 4
	RoleCulturalCount  = 3

	ResumeTechnicalCount = 5
	ResumeHRCount        = 4
	ResumeProjectCount   = 3

	ResumeTechnicalMin = 4
	ResumeHRMin        = 3
	ResumeProjectMin   = 2
)

// Category is one named group of questions
type Category struct {
	Key       string
	Questions []string
}

// Label is the human-readable category name, e.g. "Technical Questions".
func (c Category) Label() string {
	return TitleCase(strings.ReplaceAll(c.Key, "_", " "))
}

// QuestionSet is the bounded-arity categorized collection of questions for a session.
// It is implemented only by RoleQuestionSet and ResumeQuestionSet.
type QuestionSet interface {
	// Mode returns the interview mode the set belongs to
	Mode() Mode
	// Categories returns the categories in answer-index order
	Categories() []Category
	// Len returns the total number of questions
	Len() int

	questionSet()
}

// RoleQuestionSet holds questions for a role-based interview
type RoleQuestionSet struct {
	HR        [RoleHRCount]string        `json:"hr_questions"`
	Technical [RoleTechnicalCount]string `json:"technical_questions"`
	Cultural  [RoleCulturalCount]string  `json:"cultural_questions"`
}

func (*RoleQuestionSet) questionSet() {}

// Mode returns ModeRole
func (*RoleQuestionSet) Mode() Mode { return ModeRole }

// Len returns the total number of questions
func (*RoleQuestionSet) Len() int { return RoleHRCount + RoleTechnicalCount + RoleCulturalCount }

// Categories returns HR, technical, then cultural questions
func (s *RoleQuestionSet) Categories() []Category {
	return []Category{
		{Key: CategoryHR, Questions: s.HR[:]},
		{Key: CategoryTechnical, Questions: s.Technical[:]},
		{Key: CategoryCultural, Questions: s.Cultural[:]},
	}
}

// ResumeQuestionSet holds questions for a resume-based interview
type ResumeQuestionSet struct {
	Technical []string `json:"technical_questions"`
	HR        []string `json:"hr_questions"`
	Project   []string `json:"project_questions"`
}

func (*ResumeQuestionSet) questionSet() {}

// Mode returns ModeResume
func (*ResumeQuestionSet) Mode() Mode { return ModeResume }

// Len returns the total number of questions
func (s *ResumeQuestionSet) Len() int {
	return len(s.Technical) + len(s.HR) + len(s.Project)
}

// Categories returns technical, HR, then project questions
func (s *ResumeQuestionSet) Categories() []Category {
	return []Category{
		{Key: CategoryTechnical, Questions: s.Technical},
		{Key: CategoryHR, Questions: s.HR},
		{Key: CategoryProject, Questions: s.Project},
	}
}

// NewResumeQuestionSet builds a resume set. Each category must hold between
// its minimum and its count of questions.
func NewResumeQuestionSet(technical, hr, project []string) (*ResumeQuestionSet, error) {
	if err := checkSize(technical, CategoryTechnical, ResumeTechnicalMin, ResumeTechnicalCount); err != nil {
		return nil, err
	}
	if err := checkSize(hr, CategoryHR, ResumeHRMin, ResumeHRCount); err != nil {
		return nil, err
	}
	if err := checkSize(project, CategoryProject, ResumeProjectMin, ResumeProjectCount); err != nil {
		return nil, err
	}
	return &ResumeQuestionSet{
		Technical: append([]string(nil), technical...),
		HR:        append([]string(nil), hr...),
		Project:   append([]string(nil), project...),
	}, nil
}

func checkSize(questions []string, key string, minimum, maximum int) error {
	if len(questions) < minimum || len(questions) > maximum {
		return fmt.Errorf("%s: expected %d to %d questions, got %d", key, minimum, maximum, len(questions))
	}
	return nil
}

// DecodeQuestionSet validates data against the mode's schema and decodes it.
// A category outside its allowed size is an error.
func DecodeQuestionSet(mode Mode, data []byte) (QuestionSet, error) {
	switch mode {
	case ModeRole:
		if err := schemas.Validate(schemas.RoleQuestions, data); err != nil {
			return nil, err
		}
		var set RoleQuestionSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to decode role question set: %w", err)
		}
		return &set, nil
	case ModeResume:
		if err := schemas.Validate(schemas.ResumeQuestions, data); err != nil {
			return nil, err
		}
		var set ResumeQuestionSet
		if err := json.Unmarshal(data, &set); err != nil {
			return nil, fmt.Errorf("failed to decode resume question set: %w", err)
		}
		return &set, nil
	default:
		return nil, fmt.Errorf("unknown interview mode %q", mode)
	}
}

// FlatQuestion is one question in answer-index order
type FlatQuestion struct {
	Index    int
	Category Category
	Text     string
}

// Flatten lists every question of set in answer-index order.
func Flatten(set QuestionSet) []FlatQuestion {
	out := make([]FlatQuestion, 0, set.Len())
	for _, c := range set.Categories() {
		for _, q := range c.Questions {
			out = append(out, FlatQuestion{Index: len(out), Category: c, Text: q})
		}
	}
	return out
}

// Answers is the sparse list of answers indexed by question position.
// Unset slots are explicit nulls.
type Answers []*string

// Set stores answer at index, extending the list with nil slots as needed.
func (a *Answers) Set(index int, answer string) error {
	if index < 0 {
		return fmt.Errorf("answer index %d is negative", index)
	}
	for len(*a) <= index {
		*a = append(*a, nil)
	}
	value := answer
	(*a)[index] = &value
	return nil
}

// Get returns the answer at index, or "" when it is unset or out of range.
func (a Answers) Get(index int) string {
	if index < 0 || index >= len(a) || a[index] == nil {
		return ""
	}
	return *a[index]
}
