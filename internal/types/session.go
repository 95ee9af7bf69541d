package types

import (
	"encoding/json"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// InterviewSession is one interview attempt with its resume snapshot, questions,
// answers and feedback.
type InterviewSession struct {
	ID              uuid.UUID        `json:"id"`
	UserID          uuid.UUID        `json:"user_id"`
	Mode            Mode             `json:"mode"`
	Difficulty      Difficulty       `json:"difficulty"`
	Role            string           `json:"role,omitempty"`
	ResumeFilename  string           `json:"resume_filename,omitempty"`
	TechnicalSkills []TechnicalSkill `json:"technical_skills"`
	SoftSkills      []SoftSkill      `json:"soft_skills"`
	Projects        []Project        `json:"projects"`
	ExperienceLevel ExperienceLevel  `json:"experience_level,omitempty"`
	ResumeSummary   string           `json:"resume_summary,omitempty"`
	Questions       QuestionSet      `json:"questions"`
	Answers         Answers          `json:"answers"`
	Feedback        *Feedback        `json:"feedback,omitempty"`
	Status          SessionStatus    `json:"status"`
	CreatedAt       time.Time        `json:"created_at"`
	CompletedAt     *time.Time       `json:"completed_at,omitempty"`
}

// ApplyAnalysis copies the resume snapshot fields from an analysis.
func (s *InterviewSession) ApplyAnalysis(a *ResumeAnalysis) {
	if a == nil {
		return
	}
	s.TechnicalSkills = a.TechnicalSkills
	s.SoftSkills = a.SoftSkills
	s.Projects = a.Projects
	s.ExperienceLevel = a.ExperienceLevel
	s.ResumeSummary = a.Summary
}

// SessionSummary is a list-view row for GET /api/sessions.
type SessionSummary struct {
	ID            uuid.UUID     `json:"id"`
	Mode          Mode          `json:"mode"`
	Difficulty    Difficulty    `json:"difficulty"`
	Role          string        `json:"role,omitempty"`
	Status        SessionStatus `json:"status"`
	QuestionCount int           `json:"question_count"`
	AnswerCount   int           `json:"answer_count"`
	OverallScore  *int          `json:"overall_score,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	CompletedAt   *time.Time    `json:"completed_at,omitempty"`
}

// Summary returns the list-view form of s.
func (s *InterviewSession) Summary() SessionSummary {
	out := SessionSummary{
		ID:          s.ID,
		Mode:        s.Mode,
		Difficulty:  s.Difficulty,
		Role:        s.Role,
		Status:      s.Status,
		CreatedAt:   s.CreatedAt,
		CompletedAt: s.CompletedAt,
	}
	if s.Questions != nil {
		out.QuestionCount = s.Questions.Len()
	}
	for _, a := range s.Answers {
		if a != nil {
			out.AnswerCount++
		}
	}
	if s.Feedback != nil {
		score := s.Feedback.OverallScore
		out.OverallScore = &score
	}
	return out
}

// GenerateQuestionsRequest is the POST /api/generate-questions body.
type GenerateQuestionsRequest struct {
	Mode       Mode            `json:"mode" validate:"required,oneof=resume role"`
	Difficulty Difficulty      `json:"difficulty" validate:"required,oneof=beginner intermediate advanced"`
	Role       string          `json:"role" validate:"required_if=Mode role,max=100"`
	Keywords   []string        `json:"keywords,omitempty" validate:"omitempty,max=50,dive,max=100"`
	Filename   string          `json:"filename,omitempty" validate:"omitempty,max=255"`
	Analysis   *ResumeAnalysis `json:"analysis,omitempty"`
}

// GenerateQuestionsResponse is the successful POST /api/generate-questions body.
type GenerateQuestionsResponse struct {
	SessionID uuid.UUID   `json:"session_id"`
	Questions QuestionSet `json:"questions"`
}

// SubmitAnswerRequest is the POST /api/submit-answer body.
type SubmitAnswerRequest struct {
	SessionID     uuid.UUID `json:"session_id" validate:"required"`
	QuestionIndex *int      `json:"question_index" validate:"required,min=0"`
	Answer        string    `json:"answer" validate:"max=20000"`
}

// CompleteInterviewRequest is the POST /api/complete-interview body.
type CompleteInterviewRequest struct {
	SessionID uuid.UUID `json:"session_id" validate:"required"`
}

// CompleteInterviewResponse is the successful POST /api/complete-interview body.
type CompleteInterviewResponse struct {
	Message  string    `json:"message"`
	Feedback *Feedback `json:"feedback"`
}

// UploadResumeResponse is the successful POST /api/upload-resume body.
type UploadResumeResponse struct {
	Message  string          `json:"message"`
	Filename string          `json:"filename"`
	Analysis *ResumeAnalysis `json:"analysis"`
	Keywords []string        `json:"keywords"`
}

// Validate validates the GenerateQuestionsRequest using the validator.
func (r *GenerateQuestionsRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the SubmitAnswerRequest using the validator.
func (r *SubmitAnswerRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// Validate validates the CompleteInterviewRequest using the validator.
func (r *CompleteInterviewRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}

// MarshalJSON keeps nil list fields as [] on the wire.
func (s InterviewSession) MarshalJSON() ([]byte, error) {
	type alias InterviewSession
	out := alias(s)
	if out.TechnicalSkills == nil {
		out.TechnicalSkills = []TechnicalSkill{}
	}
	if out.SoftSkills == nil {
		out.SoftSkills = []SoftSkill{}
	}
	if out.Projects == nil {
		out.Projects = []Project{}
	}
	if out.Answers == nil {
		out.Answers = Answers{}
	}
	return json.Marshal(out)
}
