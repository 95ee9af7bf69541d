package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/jonathan/interview-assistant/internal/analysis"
	"github.com/jonathan/interview-assistant/internal/db"
	"github.com/jonathan/interview-assistant/internal/feedback"
	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/types"
)

const (
	maxJSONBody = 1 << 20
	// multipartMemory is how much of an upload is buffered before spilling to disk
	multipartMemory = 8 << 20
	// multipartOverhead allows for boundaries and headers on top of the file itself
	multipartOverhead = 64 << 10

	defaultSessionLimit = 20
	maxSessionLimit     = 100
)

// decodeJSON reads a bounded JSON body into dst, writing 400 on failure.
func (s *Server) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errorResponse(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

// handleUploadResume stores a PDF resume and returns its analysis preview.
func (s *Server) handleUploadResume(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	limit := s.opts.MaxUploadBytes + multipartOverhead
	if r.ContentLength > limit {
		s.fail(w, &ErrUploadTooLarge{Limit: s.opts.MaxUploadBytes})
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, limit)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.fail(w, &ErrUploadTooLarge{Limit: s.opts.MaxUploadBytes})
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "No resume file provided")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, header, err := r.FormFile("resume")
	if err != nil {
		// A part sent with an empty filename is parsed as a plain form value.
		if _, present := r.MultipartForm.Value["resume"]; present {
			s.errorResponse(w, http.StatusBadRequest, "No file selected")
			return
		}
		s.errorResponse(w, http.StatusBadRequest, "No resume file provided")
		return
	}
	defer file.Close()

	if header.Size > s.opts.MaxUploadBytes {
		s.fail(w, &ErrUploadTooLarge{Limit: s.opts.MaxUploadBytes})
		return
	}

	name := sanitizeFilename(header.Filename)
	if name == "" {
		s.errorResponse(w, http.StatusBadRequest, "No file selected")
		return
	}
	if !strings.EqualFold(filepath.Ext(name), ".pdf") {
		s.errorResponse(w, http.StatusBadRequest, "Invalid file format. Please upload a PDF.")
		return
	}

	path := s.uploadPath(userID, name)
	if err := saveUpload(path, file); err != nil {
		s.fail(w, err)
		return
	}

	result, err := s.analyzer.AnalyzeFile(r.Context(), path)
	if err != nil {
		slog.Error("Resume analysis failed", "path", path, "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Failed to analyze resume")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UploadResumeResponse{
		Message:  "Resume uploaded successfully",
		Filename: name,
		Analysis: analysis.Preview(result),
		Keywords: analysis.Keywords(result),
	})
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// sanitizeFilename reduces a client-supplied name to a safe base name.
func sanitizeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(strings.TrimSpace(name))
	name = unsafeFilenameChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, "._")
	// ".pdf" alone trims down to a bare extension
	if name == "" || name == "pdf" {
		return ""
	}
	return name
}

// uploadPath keeps each user's uploads in their own directory.
func (s *Server) uploadPath(userID uuid.UUID, name string) string {
	return filepath.Join(s.opts.UploadDir, userID.String(), name)
}

func saveUpload(path string, src io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".upload-*")
	if err != nil {
		return fmt.Errorf("failed to create upload file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write upload: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write upload: %w", err)
	}
	return os.Rename(tmp.Name(), path)
}

// handleGenerateQuestions creates a session with a freshly generated question set.
func (s *Server) handleGenerateQuestions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req types.GenerateQuestionsRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	req.Role = strings.TrimSpace(req.Role)
	if err := req.Validate(); err != nil {
		s.fail(w, validationError(err))
		return
	}

	var source *types.ResumeAnalysis
	if req.Mode == types.ModeResume {
		source = s.resolveAnalysis(r, userID, &req)
	}

	set, err := s.questions.Generate(r.Context(), questions.Request{
		Mode:       req.Mode,
		Difficulty: req.Difficulty,
		Role:       req.Role,
		Analysis:   source,
	})
	if err != nil {
		var genErr *llm.GenerationError
		if errors.As(err, &genErr) {
			slog.Error("Question generation failed", "mode", req.Mode, "error", err)
			s.jsonResponse(w, http.StatusInternalServerError, errorDetails{Error: genErr.Message, Details: genErr.Details})
			return
		}
		s.fail(w, err)
		return
	}

	session := &types.InterviewSession{
		UserID:     userID,
		Mode:       req.Mode,
		Difficulty: req.Difficulty,
		Questions:  set,
	}
	if req.Mode == types.ModeRole {
		session.Role = req.Role
	} else {
		session.ResumeFilename = sanitizeFilename(req.Filename)
		session.ApplyAnalysis(source)
	}

	if err := s.store.CreateSession(r.Context(), session); err != nil {
		s.fail(w, err)
		return
	}

	slog.Info("Interview session created", "session_id", session.ID, "mode", session.Mode, "questions", set.Len())
	s.jsonResponse(w, http.StatusOK, types.GenerateQuestionsResponse{
		SessionID: session.ID,
		Questions: set,
	})
}

// resolveAnalysis picks the resume input: the analysis in the body, then a
// re-analysis of the uploaded file, then the keyword list, then nothing.
func (s *Server) resolveAnalysis(r *http.Request, userID uuid.UUID, req *types.GenerateQuestionsRequest) *types.ResumeAnalysis {
	if req.Analysis != nil {
		return analysis.Normalize(req.Analysis)
	}

	if name := sanitizeFilename(req.Filename); name != "" {
		path := s.uploadPath(userID, name)
		if _, err := os.Stat(path); err == nil {
			result, err := s.analyzer.AnalyzeFile(r.Context(), path)
			if err == nil {
				return result
			}
			slog.Warn("Re-analysis of uploaded resume failed", "path", path, "error", err)
		}
	}

	if len(req.Keywords) > 0 {
		return analysis.FromKeywords(req.Keywords)
	}
	return types.NewResumeAnalysis()
}

// handleSubmitAnswer records one answer by question index.
func (s *Server) handleSubmitAnswer(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req types.SubmitAnswerRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, validationError(err))
		return
	}

	if err := s.store.SaveAnswer(r.Context(), userID, req.SessionID, *req.QuestionIndex, req.Answer); err != nil {
		s.fail(w, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, map[string]string{"message": "Answer submitted successfully"})
}

// handleCompleteInterview generates feedback and closes the session.
func (s *Server) handleCompleteInterview(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	var req types.CompleteInterviewRequest
	if !s.decodeJSON(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		s.fail(w, validationError(err))
		return
	}

	session, err := s.store.GetSession(r.Context(), userID, req.SessionID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if session == nil {
		s.fail(w, db.ErrSessionNotFound)
		return
	}
	if session.Status == types.StatusCompleted {
		s.fail(w, db.ErrSessionCompleted)
		return
	}

	fb, err := s.feedback.Generate(r.Context(), feedback.Request{
		Mode:       session.Mode,
		Difficulty: session.Difficulty,
		Role:       session.Role,
		Questions:  session.Questions,
		Answers:    session.Answers,
	})
	if err != nil {
		s.fail(w, err)
		return
	}

	if err := s.store.CompleteSession(r.Context(), userID, session.ID, fb); err != nil {
		s.fail(w, err)
		return
	}

	slog.Info("Interview completed", "session_id", session.ID, "overall_score", fb.OverallScore)
	s.jsonResponse(w, http.StatusOK, types.CompleteInterviewResponse{
		Message:  "Interview completed successfully",
		Feedback: fb,
	})
}

// handleUserInfo returns the logged-in user's profile.
func (s *Server) handleUserInfo(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	user, err := s.store.GetUser(r.Context(), userID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if user == nil {
		s.errorResponse(w, http.StatusNotFound, "User not found")
		return
	}

	s.jsonResponse(w, http.StatusOK, types.UserInfo{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
	})
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	limit := defaultSessionLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxSessionLimit {
			s.fail(w, &ErrValidation{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", maxSessionLimit)})
			return
		}
		limit = n
	}

	sessions, err := s.store.ListSessions(r.Context(), userID, limit)
	if err != nil {
		s.fail(w, err)
		return
	}
	if sessions == nil {
		sessions = []types.SessionSummary{}
	}

	s.jsonResponse(w, http.StatusOK, map[string]any{"sessions": sessions})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	userID, ok := s.userID(w, r)
	if !ok {
		return
	}

	sessionID, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		s.fail(w, &ErrValidation{Field: "id", Message: "invalid session ID"})
		return
	}

	session, err := s.store.GetSession(r.Context(), userID, sessionID)
	if err != nil {
		s.fail(w, err)
		return
	}
	if session == nil {
		s.fail(w, db.ErrSessionNotFound)
		return
	}

	s.jsonResponse(w, http.StatusOK, session)
}
