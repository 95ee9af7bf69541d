package types

import (
	"encoding/json"
	"math"
)

// CategoryScores are the per-category scores of a Feedback, each 0-100
type CategoryScores struct {
	HRPerformance        int `json:"hr_performance"`
	TechnicalPerformance int `json:"technical_performance"`
	CulturalFit          int `json:"cultural_fit"`
}

// Feedback is the scored critique produced after interview completion
type Feedback struct {
	OverallScore     int            `json:"overall_score"`
	CategoryScores   CategoryScores `json:"category_scores"`
	Strengths        []string       `json:"strengths"`
	Improvements     []string       `json:"improvements"`
	DetailedFeedback string         `json:"detailed_feedback"`
}

// feedbackWire accepts fractional scores as models sometimes emit them.
type feedbackWire struct {
	OverallScore   float64 `json:"overall_score"`
	CategoryScores struct {
		HRPerformance        float64 `json:"hr_performance"`
		TechnicalPerformance float64 `json:"technical_performance"`
		CulturalFit          float64 `json:"cultural_fit"`
	} `json:"category_scores"`
	Strengths        []string `json:"strengths"`
	Improvements     []string `json:"improvements"`
	DetailedFeedback string   `json:"detailed_feedback"`
}

// UnmarshalJSON rounds and clamps every score into 0-100.
func (f *Feedback) UnmarshalJSON(data []byte) error {
	var w feedbackWire
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	*f = Feedback{
		OverallScore: NormalizeScore(w.OverallScore),
		CategoryScores: CategoryScores{
			HRPerformance:        NormalizeScore(w.CategoryScores.HRPerformance),
			TechnicalPerformance: NormalizeScore(w.CategoryScores.TechnicalPerformance),
			CulturalFit:          NormalizeScore(w.CategoryScores.CulturalFit),
		},
		Strengths:        nonNil(w.Strengths),
		Improvements:     nonNil(w.Improvements),
		DetailedFeedback: w.DetailedFeedback,
	}
	return nil
}

// NormalizeScore rounds v to the nearest integer within 0-100.
func NormalizeScore(v float64) int {
	if math.IsNaN(v) {
		return 0
	}
	return ClampScore(int(math.Round(v)), 0, 100)
}

// ClampScore bounds v to [lo, hi].
func ClampScore(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
