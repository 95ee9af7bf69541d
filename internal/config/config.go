// Package config loads server and CLI configuration. Values come from
// built-in defaults, then an optional JSON file, then the environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jonathan/interview-assistant/internal/feedback"
	"github.com/jonathan/interview-assistant/internal/llm"
)

// Config represents the application configuration.
// All fields are optional in the JSON file; missing values use defaults.
type Config struct {
	// Server
	Port        int    `json:"port,omitempty"`
	FrontendURL string `json:"frontend_url,omitempty"` // CORS origin and post-login redirect
	UploadDir   string `json:"upload_dir,omitempty"`
	MaxUploadMB int    `json:"max_upload_mb,omitempty"`
	LogLevel    string `json:"log_level,omitempty"`

	// Storage
	DatabaseURL string `json:"database_url,omitempty"` // postgres:// or sqlite:// URL

	// AI
	GeminiAPIKey            string   `json:"gemini_api_key,omitempty"` // empty disables LLM features
	GeminiModel             string   `json:"gemini_model,omitempty"`   // overrides the standard-tier model
	FeedbackOnAIUnavailable string   `json:"feedback_on_ai_unavailable,omitempty"`
	LLMMaxAttempts          int      `json:"llm_max_attempts,omitempty"`
	LLMInitialBackoff       Duration `json:"llm_initial_backoff,omitempty"`
	LLMMaxBackoff           Duration `json:"llm_max_backoff,omitempty"`

	// Auth
	GoogleClientID     string `json:"google_oauth_client_id,omitempty"`
	GoogleClientSecret string `json:"google_oauth_client_secret,omitempty"`
	GoogleRedirectURI  string `json:"google_redirect_uri,omitempty"`
	SessionSecret      string `json:"session_secret,omitempty"` // JWT signing secret
	JWTExpirationHours int    `json:"jwt_expiration_hours,omitempty"`
}

// Duration is a time.Duration written as a Go duration string in JSON ("1s", "500ms").
type Duration time.Duration

// UnmarshalJSON accepts a duration string or a number of seconds.
func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return fmt.Errorf("invalid duration %q: %w", s, err)
		}
		*d = Duration(parsed)
		return nil
	}
	var seconds float64
	if err := json.Unmarshal(data, &seconds); err != nil {
		return fmt.Errorf("invalid duration %s", string(data))
	}
	*d = Duration(seconds * float64(time.Second))
	return nil
}

// MarshalJSON writes the duration string form.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// Defaults returns the built-in configuration.
func Defaults() Config {
	return Config{
		Port:                    8080,
		FrontendURL:             "http://localhost:3000",
		UploadDir:               "uploads",
		MaxUploadMB:             10,
		LogLevel:                "info",
		DatabaseURL:             "sqlite://interview_assistant.db",
		FeedbackOnAIUnavailable: string(feedback.PolicyHeuristic),
		LLMMaxAttempts:          llm.DefaultRetryPolicy.MaxAttempts,
		LLMInitialBackoff:       Duration(llm.DefaultRetryPolicy.InitialDelay),
		LLMMaxBackoff:           Duration(llm.DefaultRetryPolicy.MaxDelay),
		GoogleRedirectURI:       "http://localhost:8080/auth/google/callback",
		JWTExpirationHours:      24,
	}
}

// Load builds the effective configuration: defaults, overlaid by the JSON file
// at path (if any), overlaid by environment variables.
func Load(path string) (*Config, error) {
	var fromFile Config
	if path != "" {
		loaded, err := LoadConfig(path)
		if err != nil {
			return nil, err
		}
		fromFile = *loaded
	}

	cfg := fromFile.MergeWithDefaults(Defaults())
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// MergeWithDefaults returns a new Config with zero fields filled from defaults.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	mergeString(&result.FrontendURL, defaults.FrontendURL)
	mergeString(&result.UploadDir, defaults.UploadDir)
	mergeString(&result.LogLevel, defaults.LogLevel)
	mergeString(&result.DatabaseURL, defaults.DatabaseURL)
	mergeString(&result.GeminiAPIKey, defaults.GeminiAPIKey)
	mergeString(&result.GeminiModel, defaults.GeminiModel)
	mergeString(&result.FeedbackOnAIUnavailable, defaults.FeedbackOnAIUnavailable)
	mergeString(&result.GoogleClientID, defaults.GoogleClientID)
	mergeString(&result.GoogleClientSecret, defaults.GoogleClientSecret)
	mergeString(&result.GoogleRedirectURI, defaults.GoogleRedirectURI)
	mergeString(&result.SessionSecret, defaults.SessionSecret)

	// Int fields: use default if zero
	mergeInt(&result.Port, defaults.Port)
	mergeInt(&result.MaxUploadMB, defaults.MaxUploadMB)
	mergeInt(&result.LLMMaxAttempts, defaults.LLMMaxAttempts)
	mergeInt(&result.JWTExpirationHours, defaults.JWTExpirationHours)

	if result.LLMInitialBackoff == 0 {
		result.LLMInitialBackoff = defaults.LLMInitialBackoff
	}
	if result.LLMMaxBackoff == 0 {
		result.LLMMaxBackoff = defaults.LLMMaxBackoff
	}

	return result
}

func mergeString(dst *string, fallback string) {
	if *dst == "" {
		*dst = fallback
	}
}

func mergeInt(dst *int, fallback int) {
	if *dst == 0 {
		*dst = fallback
	}
}

// ApplyEnv overrides fields with any environment variables that are set.
func (c *Config) ApplyEnv() error {
	envString("FRONTEND_URL", &c.FrontendURL)
	envString("UPLOAD_DIR", &c.UploadDir)
	envString("LOG_LEVEL", &c.LogLevel)
	envString("DATABASE_URL", &c.DatabaseURL)
	envString("GEMINI_API_KEY", &c.GeminiAPIKey)
	envString("GEMINI_MODEL", &c.GeminiModel)
	envString("FEEDBACK_ON_AI_UNAVAILABLE", &c.FeedbackOnAIUnavailable)
	envString("GOOGLE_OAUTH_CLIENT_ID", &c.GoogleClientID)
	envString("GOOGLE_OAUTH_CLIENT_SECRET", &c.GoogleClientSecret)
	envString("GOOGLE_REDIRECT_URI", &c.GoogleRedirectURI)
	envString("SESSION_SECRET", &c.SessionSecret)

	for key, dst := range map[string]*int{
		"PORT":                 &c.Port,
		"MAX_UPLOAD_MB":        &c.MaxUploadMB,
		"LLM_MAX_ATTEMPTS":     &c.LLMMaxAttempts,
		"JWT_EXPIRATION_HOURS": &c.JWTExpirationHours,
	} {
		if err := envInt(key, dst); err != nil {
			return err
		}
	}
	if err := envDuration("LLM_INITIAL_BACKOFF", &c.LLMInitialBackoff); err != nil {
		return err
	}
	return envDuration("LLM_MAX_BACKOFF", &c.LLMMaxBackoff)
}

func envString(key string, dst *string) {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		*dst = value
	}
}

func envInt(key string, dst *int) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = n
	return nil
}

func envDuration(key string, dst *Duration) error {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s: %v", key, err)
	}
	*dst = Duration(d)
	return nil
}

// Validate checks that the configuration has valid values.
// Secrets needed only by the server are checked by ValidateServe.
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("config error: 'port' must be between 1 and 65535, got %d", c.Port)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("config error: 'max_upload_mb' must be positive")
	}
	if c.LLMMaxAttempts <= 0 {
		return fmt.Errorf("config error: 'llm_max_attempts' must be positive")
	}
	if c.LLMInitialBackoff <= 0 || c.LLMMaxBackoff <= 0 {
		return fmt.Errorf("config error: LLM backoff durations must be positive")
	}
	if c.LLMMaxBackoff < c.LLMInitialBackoff {
		return fmt.Errorf("config error: 'llm_max_backoff' must not be less than 'llm_initial_backoff'")
	}
	if c.JWTExpirationHours < 1 {
		return fmt.Errorf("config error: 'jwt_expiration_hours' must be at least 1, got %d", c.JWTExpirationHours)
	}
	if _, err := feedback.ParsePolicy(c.FeedbackOnAIUnavailable); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if !supportedDatabaseURL(c.DatabaseURL) {
		return fmt.Errorf("config error: unsupported database URL %q (use postgres://, sqlite:// or a .db path)", c.DatabaseURL)
	}
	return nil
}

// ValidateServe checks Validate plus the settings the HTTP server requires.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, err := c.JWT(); err != nil {
		return err
	}
	return nil
}

func supportedDatabaseURL(url string) bool {
	for _, prefix := range []string{"postgres://", "postgresql://", "sqlite://"} {
		if strings.HasPrefix(url, prefix) {
			return len(url) > len(prefix)
		}
	}
	if strings.Contains(url, "://") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(url))
	return ext == ".db" || ext == ".sqlite" || ext == ".sqlite3"
}

// RetryPolicy returns the retry policy shared by every LLM call site.
func (c *Config) RetryPolicy() llm.RetryPolicy {
	return llm.RetryPolicy{
		MaxAttempts:  c.LLMMaxAttempts,
		InitialDelay: time.Duration(c.LLMInitialBackoff),
		MaxDelay:     time.Duration(c.LLMMaxBackoff),
		Multiplier:   llm.DefaultRetryPolicy.Multiplier,
	}
}

// LLM returns the model configuration, with GeminiModel applied to the
// standard tier when set.
func (c *Config) LLM() *llm.Config {
	models := llm.DefaultConfig()
	if c.GeminiModel != "" {
		return models.WithModel(llm.TierStandard, c.GeminiModel)
	}
	return models
}

// FeedbackPolicy returns the parsed fallback policy, defaulting to heuristic.
func (c *Config) FeedbackPolicy() feedback.Policy {
	policy, err := feedback.ParsePolicy(c.FeedbackOnAIUnavailable)
	if err != nil {
		return feedback.PolicyHeuristic
	}
	return policy
}

// MaxUploadBytes is the upload size limit in bytes.
func (c *Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}

// OAuthConfigured reports whether Google login credentials are present.
func (c *Config) OAuthConfigured() bool {
	return c.GoogleClientID != "" && c.GoogleClientSecret != ""
}

// Mask hides all but the first four characters of a secret.
func Mask(secret string) string {
	if secret == "" {
		return "(not set)"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + strings.Repeat("*", 8)
}
