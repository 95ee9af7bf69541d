package feedback

import (
	"fmt"
	"unicode/utf8"

	"github.com/jonathan/interview-assistant/internal/types"
)

// Heuristic scores a transcript locally from answer completeness and length.
// It is used when the model cannot produce feedback.
func Heuristic(items []Item) *types.Feedback {
	total := len(items)
	answered := 0
	totalLength := 0
	for _, item := range items {
		if !item.Answered() {
			continue
		}
		answered++
		totalLength += utf8.RuneCountInString(item.Answer)
	}

	var completeness, avgLength float64
	if total > 0 {
		completeness = float64(answered) / float64(total) * 100
	}
	if answered > 0 {
		avgLength = float64(totalLength) / float64(answered)
	}
	detail := min(100, avgLength/50*100)
	overall := int((completeness + detail) / 2)

	hrAdjust := -10
	if avgLength > 30 {
		hrAdjust = 10
	}

	var strengths, improvements []string
	if float64(answered) > float64(total)*0.8 {
		strengths = append(strengths, "Provided comprehensive answers to most questions")
	}
	if avgLength > 40 {
		strengths = append(strengths, "Gave detailed and thoughtful responses")
	}
	if float64(answered) < float64(total)*0.7 {
		improvements = append(improvements, "Try to answer all questions completely")
	}
	if avgLength < 30 {
		improvements = append(improvements, "Provide more detailed explanations and examples")
	}
	if len(strengths) == 0 {
		strengths = []string{"Participated in the interview process", "Showed willingness to answer questions"}
	}
	if len(improvements) == 0 {
		improvements = []string{"Continue practicing interview skills", "Consider preparing more specific examples"}
	}

	return &types.Feedback{
		OverallScore: overall,
		CategoryScores: types.CategoryScores{
			HRPerformance:        types.ClampScore(overall+hrAdjust, 60, 100),
			TechnicalPerformance: types.ClampScore(overall-5, 50, 100),
			CulturalFit:          types.ClampScore(overall+5, 65, 100),
		},
		Strengths:    strengths,
		Improvements: improvements,
		DetailedFeedback: fmt.Sprintf(
			"You completed %d out of %d questions with an average response length of %d characters. "+
				"Focus on providing more comprehensive answers and specific examples to improve your interview performance.",
			answered, total, int(avgLength)),
	}
}
