package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-assistant/internal/types"
)

// sessionRecord is an interview session in column form, with JSON columns as raw bytes.
type sessionRecord struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	Mode            string
	Difficulty      string
	Role            string
	ResumeFilename  string
	TechnicalSkills []byte
	SoftSkills      []byte
	Projects        []byte
	ExperienceLevel string
	ResumeSummary   string
	Questions       []byte
	Answers         []byte
	Feedback        []byte
	Status          string
	CreatedAt       time.Time
	CompletedAt     *time.Time
}

func encodeSession(s *types.InterviewSession) (*sessionRecord, error) {
	if s.Questions == nil {
		return nil, fmt.Errorf("session has no questions")
	}

	r := &sessionRecord{
		ID:              s.ID,
		UserID:          s.UserID,
		Mode:            string(s.Mode),
		Difficulty:      string(s.Difficulty),
		Role:            s.Role,
		ResumeFilename:  s.ResumeFilename,
		ExperienceLevel: string(s.ExperienceLevel),
		ResumeSummary:   s.ResumeSummary,
		Status:          string(s.Status),
		CreatedAt:       s.CreatedAt,
		CompletedAt:     s.CompletedAt,
	}

	var err error
	if r.TechnicalSkills, err = marshalList(s.TechnicalSkills); err != nil {
		return nil, err
	}
	if r.SoftSkills, err = marshalList(s.SoftSkills); err != nil {
		return nil, err
	}
	if r.Projects, err = marshalList(s.Projects); err != nil {
		return nil, err
	}
	if r.Questions, err = json.Marshal(s.Questions); err != nil {
		return nil, fmt.Errorf("failed to marshal questions: %w", err)
	}
	if r.Answers, err = marshalList(s.Answers); err != nil {
		return nil, err
	}
	if s.Feedback != nil {
		if r.Feedback, err = json.Marshal(s.Feedback); err != nil {
			return nil, fmt.Errorf("failed to marshal feedback: %w", err)
		}
	}
	return r, nil
}

// marshalList encodes a slice, writing nil as [].
func marshalList[T any](items []T) ([]byte, error) {
	if items == nil {
		return []byte("[]"), nil
	}
	data, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal %T: %w", items, err)
	}
	return data, nil
}

func (r *sessionRecord) decode() (*types.InterviewSession, error) {
	mode := types.Mode(r.Mode)
	questions, err := types.DecodeQuestionSet(mode, r.Questions)
	if err != nil {
		return nil, fmt.Errorf("session %s has invalid questions: %w", r.ID, err)
	}

	s := &types.InterviewSession{
		ID:              r.ID,
		UserID:          r.UserID,
		Mode:            mode,
		Difficulty:      types.Difficulty(r.Difficulty),
		Role:            r.Role,
		ResumeFilename:  r.ResumeFilename,
		ExperienceLevel: types.ExperienceLevel(r.ExperienceLevel),
		ResumeSummary:   r.ResumeSummary,
		Questions:       questions,
		Status:          types.SessionStatus(r.Status),
		CreatedAt:       r.CreatedAt,
		CompletedAt:     r.CompletedAt,
	}

	if err := unmarshalColumn("technical_skills", r.TechnicalSkills, &s.TechnicalSkills); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("soft_skills", r.SoftSkills, &s.SoftSkills); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("projects", r.Projects, &s.Projects); err != nil {
		return nil, err
	}
	if err := unmarshalColumn("answers", r.Answers, &s.Answers); err != nil {
		return nil, err
	}
	if len(r.Feedback) > 0 {
		var fb types.Feedback
		if err := unmarshalColumn("feedback", r.Feedback, &fb); err != nil {
			return nil, err
		}
		s.Feedback = &fb
	}
	return s, nil
}

func unmarshalColumn(column string, data []byte, dst any) error {
	if len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("failed to unmarshal %s: %w", column, err)
	}
	return nil
}

// applyAnswer decodes the stored questions and answers, validates index and
// returns the re-encoded answers column.
func applyAnswer(mode string, questions, answers []byte, index int, answer string) ([]byte, error) {
	set, err := types.DecodeQuestionSet(types.Mode(mode), questions)
	if err != nil {
		return nil, fmt.Errorf("stored questions are invalid: %w", err)
	}
	if index < 0 || index >= set.Len() {
		return nil, fmt.Errorf("%w: %d (session has %d questions)", ErrInvalidQuestionIndex, index, set.Len())
	}

	var current types.Answers
	if err := unmarshalColumn("answers", answers, &current); err != nil {
		return nil, err
	}
	if err := current.Set(index, answer); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidQuestionIndex, err)
	}
	return json.Marshal(current)
}

// prepareSession fills the defaults CreateSession assigns.
func prepareSession(s *types.InterviewSession) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	if s.Status == "" {
		s.Status = types.StatusActive
	}
}

func summaries(sessions []*types.InterviewSession) []types.SessionSummary {
	out := make([]types.SessionSummary, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.Summary())
	}
	return out
}

func marshalFeedback(fb *types.Feedback) ([]byte, error) {
	if fb == nil {
		return nil, fmt.Errorf("feedback is required to complete a session")
	}
	data, err := json.Marshal(fb)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal feedback: %w", err)
	}
	return data, nil
}
