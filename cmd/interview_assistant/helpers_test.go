package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var configEnvKeys = []string{
	"PORT", "FRONTEND_URL", "UPLOAD_DIR", "MAX_UPLOAD_MB", "LOG_LEVEL", "DATABASE_URL",
	"GEMINI_API_KEY", "GEMINI_MODEL", "FEEDBACK_ON_AI_UNAVAILABLE", "LLM_MAX_ATTEMPTS", "LLM_INITIAL_BACKOFF",
	"LLM_MAX_BACKOFF", "GOOGLE_OAUTH_CLIENT_ID", "GOOGLE_OAUTH_CLIENT_SECRET",
	"GOOGLE_REDIRECT_URI", "SESSION_SECRET", "JWT_EXPIRATION_HOURS",
}

// isolateEnv blanks every configuration variable so a local .env cannot leak into a test.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnvKeys {
		t.Setenv(key, "")
	}
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, child := range cmd.Commands() {
		resetFlags(child)
	}
}

// executeCommand runs the root command in-process and returns stdout and stderr.
func executeCommand(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)
	appConfig = nil

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return stdout.String(), stderr.String(), err
}
