package server

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-assistant/internal/feedback"
	"github.com/jonathan/interview-assistant/internal/llm"
	"github.com/jonathan/interview-assistant/internal/questions"
	"github.com/jonathan/interview-assistant/internal/types"
)

const roleQuestionsJSON = `{
  "hr_questions": ["hr 1", "hr 2", "hr 3"],
  "technical_questions": ["tech 1", "tech 2", "tech 3", "tech 4"],
  "cultural_questions": ["culture 1", "culture 2", "culture 3"]
}`

const modelFeedbackJSON = `Here is the evaluation:
{
  "overall_score": 81.6,
  "category_scores": {"hr_performance": 75, "technical_performance": 88, "cultural_fit": 79},
  "strengths": ["Clear structure"],
  "improvements": ["Quantify impact"],
  "detailed_feedback": "Solid answers overall."
}`

// uploadRequest builds a multipart upload with one file part.
func (ts *testServer) uploadRequest(t *testing.T, field, filename string, content []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		part, err := mw.CreateFormFile(field, filename)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/upload-resume", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+ts.token)
	return req
}

func (ts *testServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	ts.Handler().ServeHTTP(w, req)
	return w
}

// createRoleSession stores an active role-mode session for the test user.
func (ts *testServer) createRoleSession(t *testing.T, userID uuid.UUID) *types.InterviewSession {
	t.Helper()
	set, err := types.DecodeQuestionSet(types.ModeRole, []byte(roleQuestionsJSON))
	require.NoError(t, err)

	session := &types.InterviewSession{
		UserID:     userID,
		Mode:       types.ModeRole,
		Difficulty: types.DifficultyIntermediate,
		Role:       "Backend Engineer",
		Questions:  set,
	}
	require.NoError(t, ts.store.CreateSession(context.Background(), session))
	return session
}

func errorBody(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var resp map[string]string
	decodeBody(t, w, &resp)
	return resp
}

func TestUploadResume_Success(t *testing.T) {
	ts := newTestServer(t)

	w := ts.serve(ts.uploadRequest(t, "resume", "My Resume (final).pdf", []byte("not really a pdf")))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.UploadResumeResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "Resume uploaded successfully", resp.Message)
	assert.Equal(t, "My_Resume_final_.pdf", resp.Filename)
	require.NotNil(t, resp.Analysis)
	assert.Equal(t, types.ExperienceEntry, resp.Analysis.ExperienceLevel)
	assert.NotNil(t, resp.Keywords)

	_, err := os.Stat(filepath.Join(ts.uploadDir, ts.user.ID.String(), resp.Filename))
	assert.NoError(t, err)
}

func TestUploadResume_Rejections(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name     string
		field    string
		filename string
		content  []byte
		status   int
		message  string
	}{
		{"missing part", "", "", nil, http.StatusBadRequest, "No resume file provided"},
		{"wrong field", "cv", "resume.pdf", []byte("x"), http.StatusBadRequest, "No resume file provided"},
		{"empty filename", "resume", "", []byte("x"), http.StatusBadRequest, "No file selected"},
		{"not a pdf", "resume", "resume.docx", []byte("x"), http.StatusBadRequest, "Invalid file format. Please upload a PDF."},
		{"too large", "resume", "resume.pdf", bytes.Repeat([]byte("a"), 2<<20), http.StatusRequestEntityTooLarge, "File too large"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.serve(ts.uploadRequest(t, tt.field, tt.filename, tt.content))
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, errorBody(t, w)["error"], tt.message)
		})
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"resume.pdf":           "resume.pdf",
		"../../etc/passwd.pdf": "passwd.pdf",
		`C:\Users\me\cv.pdf`:   "cv.pdf",
		"  spaced name.pdf ":   "spaced_name.pdf",
		".hidden.pdf":          "hidden.pdf",
		".pdf":                 "",
		"":                     "",
		"résumé 2024.PDF":      "r_sum_2024.PDF",
	}
	for in, want := range tests {
		assert.Equal(t, want, sanitizeFilename(in), "input %q", in)
	}
}

func TestGenerateQuestions_RoleMode(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.GenerateContentFunc = func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
		assert.Contains(t, prompt, "Site Reliability Engineer")
		return "```json\n" + roleQuestionsJSON + "\n```", nil
	}

	w := ts.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"mode":       "role",
		"difficulty": "advanced",
		"role":       "  Site Reliability Engineer ",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID uuid.UUID           `json:"session_id"`
		Questions map[string][]string `json:"questions"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Questions["hr_questions"], 3)
	assert.Len(t, resp.Questions["technical_questions"], 4)
	assert.Len(t, resp.Questions["cultural_questions"], 3)

	session, err := ts.store.GetSession(context.Background(), ts.user.ID, resp.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "Site Reliability Engineer", session.Role)
	assert.Equal(t, types.StatusActive, session.Status)
	assert.Equal(t, 10, session.Questions.Len())
}

func TestGenerateQuestions_ResumeModeFromKeywords(t *testing.T) {
	ts := newTestServer(t)
	var prompts []string
	ts.llm.GenerateJSONFunc = func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
		prompts = append(prompts, prompt)
		return `["q1", "q2", "q3", "q4", "q5", "q6"]`, nil
	}

	w := ts.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"mode":       "resume",
		"difficulty": "beginner",
		"keywords":   []string{"Kubernetes", "Go"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID uuid.UUID           `json:"session_id"`
		Questions map[string][]string `json:"questions"`
	}
	decodeBody(t, w, &resp)
	assert.Len(t, resp.Questions["technical_questions"], types.ResumeTechnicalCount)
	assert.Len(t, resp.Questions["hr_questions"], types.ResumeHRCount)
	assert.Len(t, resp.Questions["project_questions"], types.ResumeProjectCount)

	require.NotEmpty(t, prompts)
	assert.Contains(t, prompts[0], "Kubernetes")

	session, err := ts.store.GetSession(context.Background(), ts.user.ID, resp.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, types.ModeResume, session.Mode)
	assert.NotEmpty(t, session.TechnicalSkills)
}

func TestGenerateQuestions_ResumeModeNormalizesClientAnalysis(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.GenerateJSONFunc = func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
		return `["q1", "q2", "q3", "q4", "q5"]`, nil
	}

	skills := []map[string]string{{"name": "Skill0", "proficiency": "godlike"}}
	for i := 0; i < 40; i++ {
		skills = append(skills, map[string]string{"name": fmt.Sprintf("skill%d", i), "proficiency": "godlike"})
	}

	w := ts.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"mode":       "resume",
		"difficulty": "advanced",
		"analysis": map[string]any{
			"technical_skills": skills,
			"experience_level": "wizard",
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID uuid.UUID `json:"session_id"`
	}
	decodeBody(t, w, &resp)

	session, err := ts.store.GetSession(context.Background(), ts.user.ID, resp.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	require.Len(t, session.TechnicalSkills, 20)
	assert.Equal(t, "Skill0", session.TechnicalSkills[0].Name)
	assert.Equal(t, "skill1", session.TechnicalSkills[1].Name)
	for _, skill := range session.TechnicalSkills {
		assert.Equal(t, types.ProficiencyMentioned, skill.Proficiency)
	}
	assert.Equal(t, types.ExperienceSenior, session.ExperienceLevel)
}

func TestGenerateQuestions_ResumeModeUsesUploadedFile(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.GenerateJSONFunc = func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
		return `["q1", "q2", "q3", "q4", "q5"]`, nil
	}

	upload := ts.serve(ts.uploadRequest(t, "resume", "cv.pdf", []byte("%PDF-garbage")))
	require.Equal(t, http.StatusOK, upload.Code)

	w := ts.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"mode":       "resume",
		"difficulty": "intermediate",
		"filename":   "cv.pdf",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		SessionID uuid.UUID `json:"session_id"`
	}
	decodeBody(t, w, &resp)

	session, err := ts.store.GetSession(context.Background(), ts.user.ID, resp.SessionID)
	require.NoError(t, err)
	require.NotNil(t, session)
	assert.Equal(t, "cv.pdf", session.ResumeFilename)
}

func TestGenerateQuestions_Validation(t *testing.T) {
	ts := newTestServer(t)

	tests := []struct {
		name string
		body any
	}{
		{"unknown mode", map[string]any{"mode": "panel", "difficulty": "beginner"}},
		{"unknown difficulty", map[string]any{"mode": "role", "difficulty": "expert", "role": "SRE"}},
		{"role mode without role", map[string]any{"mode": "role", "difficulty": "beginner", "role": "   "}},
		{"malformed body", "not an object"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/generate-questions", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
	assert.Empty(t, ts.llm.Calls())
}

func TestGenerateQuestions_RoleExhausted(t *testing.T) {
	ts := newTestServer(t)
	ts.llm.GenerateContentFunc = func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
		return "", &llm.APICallError{Message: "failed to generate content", Cause: errors.New("503 model overloaded")}
	}

	w := ts.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"mode": "role", "difficulty": "beginner", "role": "Designer",
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	resp := errorBody(t, w)
	assert.Equal(t, "Unable to generate interview questions at this time.", resp["error"])
	assert.Equal(t, "All retry attempts exhausted", resp["details"])
	assert.Len(t, ts.llm.Calls(), 3)

	sessions, err := ts.store.ListSessions(context.Background(), ts.user.ID, 10)
	require.NoError(t, err)
	assert.Empty(t, sessions)
}

func TestGenerateQuestions_NoLLM(t *testing.T) {
	ts := newTestServer(t, withoutLLM())

	w := ts.do(t, http.MethodPost, "/api/generate-questions", map[string]any{
		"mode": "resume", "difficulty": "beginner",
	})

	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, questions.UnavailableMessage, errorBody(t, w)["error"])
}

func TestSubmitAnswer(t *testing.T) {
	ts := newTestServer(t)
	session := ts.createRoleSession(t, ts.user.ID)

	w := ts.do(t, http.MethodPost, "/api/submit-answer", map[string]any{
		"session_id": session.ID, "question_index": 4, "answer": "I used Go channels.",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Answer submitted successfully", errorBody(t, w)["message"])

	stored, err := ts.store.GetSession(context.Background(), ts.user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, "I used Go channels.", stored.Answers.Get(4))
	assert.Equal(t, "", stored.Answers.Get(0))
}

func TestSubmitAnswer_Errors(t *testing.T) {
	ts := newTestServer(t)
	session := ts.createRoleSession(t, ts.user.ID)

	other, err := ts.store.UpsertUserByEmail(context.Background(), "grace@example.com", "Grace")
	require.NoError(t, err)
	foreign := ts.createRoleSession(t, other.ID)

	tests := []struct {
		name    string
		body    map[string]any
		status  int
		message string
	}{
		{"unknown session", map[string]any{"session_id": uuid.New(), "question_index": 0, "answer": "a"}, http.StatusNotFound, "Interview session not found"},
		{"other user's session", map[string]any{"session_id": foreign.ID, "question_index": 0, "answer": "a"}, http.StatusNotFound, "Interview session not found"},
		{"index out of range", map[string]any{"session_id": session.ID, "question_index": 10, "answer": "a"}, http.StatusBadRequest, "Invalid question index"},
		{"negative index", map[string]any{"session_id": session.ID, "question_index": -1, "answer": "a"}, http.StatusBadRequest, "validation error"},
		{"missing index", map[string]any{"session_id": session.ID, "answer": "a"}, http.StatusBadRequest, "validation error"},
		{"missing session", map[string]any{"question_index": 0, "answer": "a"}, http.StatusBadRequest, "validation error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := ts.do(t, http.MethodPost, "/api/submit-answer", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, errorBody(t, w)["error"], tt.message)
		})
	}
}

func TestCompleteInterview_ModelFeedback(t *testing.T) {
	ts := newTestServer(t)
	session := ts.createRoleSession(t, ts.user.ID)
	ts.do(t, http.MethodPost, "/api/submit-answer", map[string]any{
		"session_id": session.ID, "question_index": 0, "answer": "I enjoy mentoring.",
	})

	ts.llm.GenerateContentFunc = func(_ context.Context, prompt string, _ llm.ModelTier) (string, error) {
		assert.Contains(t, prompt, "I enjoy mentoring.")
		assert.Contains(t, prompt, feedback.NoAnswer)
		return modelFeedbackJSON, nil
	}

	w := ts.do(t, http.MethodPost, "/api/complete-interview", map[string]any{"session_id": session.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.CompleteInterviewResponse
	decodeBody(t, w, &resp)
	assert.Equal(t, "Interview completed successfully", resp.Message)
	require.NotNil(t, resp.Feedback)
	assert.Equal(t, 82, resp.Feedback.OverallScore)
	assert.Equal(t, 88, resp.Feedback.CategoryScores.TechnicalPerformance)

	stored, err := ts.store.GetSession(context.Background(), ts.user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, stored.Status)
	require.NotNil(t, stored.Feedback)
	assert.NotNil(t, stored.CompletedAt)

	again := ts.do(t, http.MethodPost, "/api/complete-interview", map[string]any{"session_id": session.ID})
	assert.Equal(t, http.StatusConflict, again.Code)

	late := ts.do(t, http.MethodPost, "/api/submit-answer", map[string]any{
		"session_id": session.ID, "question_index": 1, "answer": "late",
	})
	assert.Equal(t, http.StatusConflict, late.Code)
}

func TestCompleteInterview_HeuristicFallback(t *testing.T) {
	ts := newTestServer(t)
	session := ts.createRoleSession(t, ts.user.ID)
	ts.llm.GenerateContentFunc = func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
		return "I cannot score this interview.", nil
	}

	w := ts.do(t, http.MethodPost, "/api/complete-interview", map[string]any{"session_id": session.ID})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp types.CompleteInterviewResponse
	decodeBody(t, w, &resp)
	require.NotNil(t, resp.Feedback)
	assert.Contains(t, resp.Feedback.DetailedFeedback, "You completed 0 out of 10 questions")
	assert.Len(t, ts.llm.Calls(), 3)
}

func TestCompleteInterview_ErrorPolicyOverloaded(t *testing.T) {
	ts := newTestServer(t, withFeedbackPolicy(feedback.PolicyError))
	session := ts.createRoleSession(t, ts.user.ID)
	ts.llm.GenerateContentFunc = func(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
		return "", fmt.Errorf("googleapi: Error 503: The model is overloaded")
	}

	w := ts.do(t, http.MethodPost, "/api/complete-interview", map[string]any{"session_id": session.ID})
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	resp := errorBody(t, w)
	assert.Equal(t, feedback.UnavailableMessage, resp["error"])
	assert.Equal(t, "All retry attempts exhausted", resp["details"])

	stored, err := ts.store.GetSession(context.Background(), ts.user.ID, session.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusActive, stored.Status)
}

func TestCompleteInterview_NotFound(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/complete-interview", map[string]any{"session_id": uuid.New()})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Interview session not found", errorBody(t, w)["error"])
}

func TestUserInfo(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/api/user-info", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var info types.UserInfo
	decodeBody(t, w, &info)
	assert.Equal(t, ts.user.ID, info.ID)
	assert.Equal(t, "Ada", info.Username)
	assert.Equal(t, "ada@example.com", info.Email)
}

func TestUserInfo_DeletedUser(t *testing.T) {
	ts := newTestServer(t)
	token, err := ts.jwt.GenerateToken(uuid.New())
	require.NoError(t, err)
	ts.token = token

	w := ts.do(t, http.MethodGet, "/api/user-info", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSessionsHistory(t *testing.T) {
	ts := newTestServer(t)
	first := ts.createRoleSession(t, ts.user.ID)
	ts.createRoleSession(t, ts.user.ID)

	other, err := ts.store.UpsertUserByEmail(context.Background(), "grace@example.com", "Grace")
	require.NoError(t, err)
	foreign := ts.createRoleSession(t, other.ID)

	w := ts.do(t, http.MethodGet, "/api/sessions", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Sessions []types.SessionSummary `json:"sessions"`
	}
	decodeBody(t, w, &list)
	assert.Len(t, list.Sessions, 2)

	w = ts.do(t, http.MethodGet, "/api/sessions?limit=1", nil)
	decodeBody(t, w, &list)
	assert.Len(t, list.Sessions, 1)

	w = ts.do(t, http.MethodGet, "/api/sessions?limit=0", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sessions/"+first.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), `"hr_questions"`))

	w = ts.do(t, http.MethodGet, "/api/sessions/"+foreign.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(t, http.MethodGet, "/api/sessions/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
