package analysis

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jonathan/interview-assistant/internal/ingestion"
	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/types"
)

// Analyzer reads resume files and runs an Extractor over their text
type Analyzer struct {
	extractor Extractor
}

// NewAnalyzer creates an Analyzer using extractor
func NewAnalyzer(extractor Extractor) *Analyzer {
	if extractor == nil {
		extractor = HeuristicExtractor{}
	}
	return &Analyzer{extractor: extractor}
}

// AnalyzeFile extracts the text of the PDF at path and analyzes it. A file
// with no extractable text yields an empty entry-level analysis.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*types.ResumeAnalysis, error) {
	slog.Info("Analyzing resume", "path", path)

	text := ingestion.ExtractPDFText(path)
	if text == "" {
		return types.NewResumeAnalysis(), nil
	}
	slog.Debug("Extracted resume text", "path", path, "chars", len(text))

	return a.AnalyzeText(ctx, text)
}

// AnalyzeText analyzes already-extracted resume text.
func (a *Analyzer) AnalyzeText(ctx context.Context, text string) (*types.ResumeAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return types.NewResumeAnalysis(), nil
	}
	result, err := a.extractor.Extract(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze resume: %w", err)
	}

	slog.Info("Final resume analysis",
		"technical_skills", len(result.TechnicalSkills),
		"soft_skills", len(result.SoftSkills),
		"projects", len(result.Projects),
		"experience_level", result.ExperienceLevel)
	return result, nil
}

// Keyword list limits
const (
	keywordTechnical    = 10
	keywordProjects     = 3
	keywordTitleRunes   = 30
	keywordSoftSkills   = 5
	previewTechnical    = 10
	previewSoftSkills   = 8
	previewProjectLimit = 5
)

// Keywords flattens an analysis into a short keyword list: top technical
// skills, shortened project titles, then top soft skills.
func Keywords(a *types.ResumeAnalysis) []string {
	keywords := []string{}
	if a == nil {
		return keywords
	}
	keywords = append(keywords, a.TechnicalSkillNames(keywordTechnical)...)
	for _, p := range truncate(a.Projects, keywordProjects) {
		keywords = append(keywords, llm.TruncateRunes(p.Title, keywordTitleRunes))
	}
	keywords = append(keywords, a.SoftSkillNames(keywordSoftSkills)...)
	return keywords
}

// Preview is the trimmed analysis returned to the client after upload.
func Preview(a *types.ResumeAnalysis) *types.ResumeAnalysis {
	if a == nil {
		return types.NewResumeAnalysis()
	}
	return &types.ResumeAnalysis{
		TechnicalSkills: truncate(a.TechnicalSkills, previewTechnical),
		SoftSkills:      truncate(a.SoftSkills, previewSoftSkills),
		Projects:        truncate(a.Projects, previewProjectLimit),
		Summary:         a.Summary,
		ExperienceLevel: a.ExperienceLevel,
	}
}

// FromKeywords builds an analysis whose technical skills are the given keywords.
// It is the last-resort input for resume-mode question generation.
func FromKeywords(keywords []string) *types.ResumeAnalysis {
	a := types.NewResumeAnalysis()
	seen := make(map[string]bool)
	for _, kw := range keywords {
		name := strings.TrimSpace(kw)
		key := strings.ToLower(name)
		if name == "" || seen[key] {
			continue
		}
		seen[key] = true
		a.TechnicalSkills = append(a.TechnicalSkills, types.TechnicalSkill{
			Name:        name,
			Proficiency: types.ProficiencyMentioned,
		})
	}
	a.TechnicalSkills = truncate(a.TechnicalSkills, maxTechnicalSkills)
	a.ExperienceLevel = EstimateExperienceLevel(0, len(a.TechnicalSkills))
	a.Summary = fmt.Sprintf("Candidate with %d technical skills and 0 projects", len(a.TechnicalSkills))
	return a
}
