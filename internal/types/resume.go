// Package types provides type definitions for structured data used throughout the interview assistant.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "strings"

// Proficiency is how strongly a resume evidences a technical skill
type Proficiency string

// Proficiency levels
const (
	ProficiencyMentioned  Proficiency = "mentioned"
	ProficiencyFamiliar   Proficiency = "familiar"
	ProficiencyProficient Proficiency = "proficient"
	ProficiencyExpert     Proficiency = "expert"
)

// NormalizeProficiency maps free-form model output onto a known level.
// Unknown or empty values become ProficiencyMentioned.
func NormalizeProficiency(s string) Proficiency {
	switch p := Proficiency(strings.ToLower(strings.TrimSpace(s))); p {
	case ProficiencyMentioned, ProficiencyFamiliar, ProficiencyProficient, ProficiencyExpert:
		return p
	default:
		return ProficiencyMentioned
	}
}

// ExperienceLevel is the overall seniority estimate for a candidate
type ExperienceLevel string

// Experience levels
const (
	ExperienceEntry  ExperienceLevel = "entry"
	ExperienceMid    ExperienceLevel = "mid"
	ExperienceSenior ExperienceLevel = "senior"
)

// ParseExperienceLevel returns the level named by s and whether it is valid.
func ParseExperienceLevel(s string) (ExperienceLevel, bool) {
	switch l := ExperienceLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case ExperienceEntry, ExperienceMid, ExperienceSenior:
		return l, true
	default:
		return "", false
	}
}

// TechnicalSkill is a technical keyword found in a resume
type TechnicalSkill struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Proficiency Proficiency `json:"proficiency"`
}

// SoftSkill is a soft skill with the resume text surrounding its mention
type SoftSkill struct {
	Skill   string `json:"skill"`
	Context string `json:"context"`
}

// Project is a project block extracted from a resume
type Project struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Technologies    []string `json:"technologies"`
	Role            string   `json:"role"`
	KeyAchievements []string `json:"key_achievements"`
}

// ResumeAnalysis is the merged structured extraction produced from a resume
type ResumeAnalysis struct {
	TechnicalSkills []TechnicalSkill `json:"technical_skills"`
	SoftSkills      []SoftSkill      `json:"soft_skills"`
	Projects        []Project        `json:"projects"`
	Summary         string           `json:"summary"`
	ExperienceLevel ExperienceLevel  `json:"experience_level"`
}

// NewResumeAnalysis returns an empty analysis with non-nil lists and entry level.
func NewResumeAnalysis() *ResumeAnalysis {
	return &ResumeAnalysis{
		TechnicalSkills: []TechnicalSkill{},
		SoftSkills:      []SoftSkill{},
		Projects:        []Project{},
		ExperienceLevel: ExperienceEntry,
	}
}

// TechnicalSkillNames returns up to limit skill names in order. A limit <= 0 means all.
func (a *ResumeAnalysis) TechnicalSkillNames(limit int) []string {
	names := make([]string, 0, len(a.TechnicalSkills))
	for _, s := range a.TechnicalSkills {
		if limit > 0 && len(names) == limit {
			break
		}
		names = append(names, s.Name)
	}
	return names
}

// SoftSkillNames returns up to limit soft-skill names in order. A limit <= 0 means all.
func (a *ResumeAnalysis) SoftSkillNames(limit int) []string {
	names := make([]string, 0, len(a.SoftSkills))
	for _, s := range a.SoftSkills {
		if limit > 0 && len(names) == limit {
			break
		}
		names = append(names, s.Skill)
	}
	return names
}
