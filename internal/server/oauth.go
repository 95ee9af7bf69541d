package server

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/jonathan/interview-assistant/internal/server/middleware"
	"github.com/jonathan/interview-assistant/internal/types"
)

const (
	googleUserInfoURL = "https://openidconnect.googleapis.com/v1/userinfo"
	stateCookie       = "oauth_state"
	stateLifetime     = 10 * time.Minute
)

// GoogleAuth runs the OAuth authorization-code flow against Google
type GoogleAuth struct {
	config      *oauth2.Config
	userInfoURL string
}

// NewGoogleAuth creates a GoogleAuth requesting the openid, email and profile scopes
func NewGoogleAuth(clientID, clientSecret, redirectURL string) *GoogleAuth {
	return &GoogleAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     google.Endpoint,
			Scopes:       []string{"openid", "email", "profile"},
		},
		userInfoURL: googleUserInfoURL,
	}
}

// AuthCodeURL is the consent page URL carrying state.
func (g *GoogleAuth) AuthCodeURL(state string) string {
	return g.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "select_account consent"))
}

// FetchUser exchanges code for a token and reads the userinfo document.
func (g *GoogleAuth) FetchUser(ctx context.Context, code string) (*types.GoogleUserInfo, error) {
	token, err := g.config.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := g.config.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("user info request returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var info types.GoogleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("failed to decode user info: %w", err)
	}
	return &info, nil
}

func newState() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// handleGoogleLogin redirects to the Google consent page with a fresh state cookie.
func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Google login is not configured")
		return
	}

	state, err := newState()
	if err != nil {
		slog.Error("Failed to generate OAuth state", "error", err)
		s.errorResponse(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    state,
		Path:     "/auth",
		MaxAge:   int(stateLifetime.Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.oauth.AuthCodeURL(state), http.StatusFound)
}

// handleGoogleCallback finishes the login: it verifies state, resolves the
// Google account to a local user and sets the session cookie.
func (s *Server) handleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	if s.oauth == nil {
		s.errorResponse(w, http.StatusServiceUnavailable, "Google login is not configured")
		return
	}

	query := r.URL.Query()
	if denied := query.Get("error"); denied != "" {
		slog.Warn("Google login was not completed", "error", denied)
		s.errorResponse(w, http.StatusUnauthorized, "Google login was cancelled")
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" ||
		subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(query.Get("state"))) != 1 {
		s.errorResponse(w, http.StatusBadRequest, "Invalid OAuth state")
		return
	}
	http.SetCookie(w, &http.Cookie{Name: stateCookie, Value: "", Path: "/auth", MaxAge: -1, HttpOnly: true})

	code := query.Get("code")
	if code == "" {
		s.errorResponse(w, http.StatusBadRequest, "Missing authorization code")
		return
	}

	info, err := s.oauth.FetchUser(r.Context(), code)
	if err != nil {
		slog.Error("Google login failed", "error", err)
		s.errorResponse(w, http.StatusBadGateway, "Failed to fetch user info from Google")
		return
	}
	if info.Email == "" || !info.EmailVerified {
		s.errorResponse(w, http.StatusForbidden, "Google account email is not verified")
		return
	}

	user, err := s.store.UpsertUserByEmail(r.Context(), strings.ToLower(info.Email), info.DisplayName())
	if err != nil {
		s.fail(w, err)
		return
	}

	token, err := s.jwtService.GenerateToken(user.ID)
	if err != nil {
		s.fail(w, err)
		return
	}

	slog.Info("User logged in", "user_id", user.ID)
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.jwtService.Lifetime().Seconds()),
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.redirectTarget(), http.StatusFound)
}

// handleLogout clears the session cookie and returns to the frontend.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, s.redirectTarget(), http.StatusFound)
}

func (s *Server) redirectTarget() string {
	if s.opts.FrontendURL == "" {
		return "/"
	}
	return s.opts.FrontendURL
}
