package analysis

import (
	"strings"

	"github.com/jonathan/interview-assistant/internal/types"
)

// Merge combines a pattern-matched analysis with a model analysis.
//
// Technical and soft skills are unioned by lower-case name with pattern
// entries first. Projects are not merged: a non-empty model project list
// replaces the pattern projects wholesale. Summary and experience level are
// left for the caller.
func Merge(pattern, model *types.ResumeAnalysis) *types.ResumeAnalysis {
	if pattern == nil {
		pattern = types.NewResumeAnalysis()
	}
	out := &types.ResumeAnalysis{
		TechnicalSkills: append([]types.TechnicalSkill{}, pattern.TechnicalSkills...),
		SoftSkills:      append([]types.SoftSkill{}, pattern.SoftSkills...),
		Projects:        append([]types.Project{}, pattern.Projects...),
	}
	if model == nil {
		return out
	}

	seenTech := make(map[string]bool, len(out.TechnicalSkills))
	for _, s := range out.TechnicalSkills {
		seenTech[strings.ToLower(s.Name)] = true
	}
	for _, s := range model.TechnicalSkills {
		key := strings.ToLower(strings.TrimSpace(s.Name))
		if key == "" || seenTech[key] {
			continue
		}
		seenTech[key] = true
		s.Name = strings.TrimSpace(s.Name)
		s.Proficiency = types.NormalizeProficiency(string(s.Proficiency))
		out.TechnicalSkills = append(out.TechnicalSkills, s)
	}

	seenSoft := make(map[string]bool, len(out.SoftSkills))
	for _, s := range out.SoftSkills {
		seenSoft[strings.ToLower(s.Skill)] = true
	}
	for _, s := range model.SoftSkills {
		key := strings.ToLower(strings.TrimSpace(s.Skill))
		if key == "" || seenSoft[key] {
			continue
		}
		seenSoft[key] = true
		s.Skill = strings.TrimSpace(s.Skill)
		out.SoftSkills = append(out.SoftSkills, s)
	}

	if len(model.Projects) > 0 {
		out.Projects = make([]types.Project, 0, len(model.Projects))
		for _, p := range model.Projects {
			out.Projects = append(out.Projects, normalizeProject(p))
		}
	}
	return out
}

// normalizeProject fills nil lists and caps technologies.
func normalizeProject(p types.Project) types.Project {
	if p.Technologies == nil {
		p.Technologies = []string{}
	}
	if len(p.Technologies) > maxProjectTechnologies {
		p.Technologies = p.Technologies[:maxProjectTechnologies]
	}
	if p.KeyAchievements == nil {
		p.KeyAchievements = []string{}
	}
	return p
}

// EstimateExperienceLevel is the fallback seniority heuristic.
func EstimateExperienceLevel(projects, technicalSkills int) types.ExperienceLevel {
	switch {
	case projects >= 4 || technicalSkills >= 15:
		return types.ExperienceSenior
	case projects >= 2 || technicalSkills >= 8:
		return types.ExperienceMid
	default:
		return types.ExperienceEntry
	}
}

// Normalize applies the extraction invariants to an analysis that did not come
// from an Extractor: skills are deduplicated case-insensitively, proficiency
// and experience level are restricted to known values, and lists are capped.
func Normalize(a *types.ResumeAnalysis) *types.ResumeAnalysis {
	if a == nil {
		return types.NewResumeAnalysis()
	}
	in := *a
	in.ExperienceLevel = ""
	if level, ok := types.ParseExperienceLevel(string(a.ExperienceLevel)); ok {
		in.ExperienceLevel = level
	}
	return finalize(nil, &in)
}
