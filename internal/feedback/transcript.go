package feedback

import (
	"strings"

	"github.com/jonathan/interview-assistant/internal/types"
)

// NoAnswer stands in for unanswered questions in the transcript
const NoAnswer = "No answer provided"

// Item is one question of the transcript sent for scoring
type Item struct {
	Category string `json:"category"`
	Question string `json:"question"`
	Answer   string `json:"answer"`

	answered bool
}

// Answered reports whether the candidate gave a non-blank answer.
func (i Item) Answered() bool {
	return i.answered
}

// BuildTranscript pairs every question with its answer in answer-index order.
// Missing, null and blank answers become NoAnswer.
func BuildTranscript(set types.QuestionSet, answers types.Answers) []Item {
	if set == nil {
		return []Item{}
	}
	flat := types.Flatten(set)
	items := make([]Item, 0, len(flat))
	for _, q := range flat {
		answer := strings.TrimSpace(answers.Get(q.Index))
		item := Item{
			Category: q.Category.Label(),
			Question: q.Text,
			Answer:   NoAnswer,
		}
		if answer != "" {
			item.Answer = answer
			item.answered = true
		}
		items = append(items, item)
	}
	return items
}
