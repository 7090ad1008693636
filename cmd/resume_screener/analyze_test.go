package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/jonathan/resume-screener/internal/extract/extracttest"
	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/llm/llmtest"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAnalysis = "**Skills:** Python, Go\n\nStrong match for the role."

// useFakeModel swaps the model client factory for the duration of the test.
func useFakeModel(t *testing.T, fake *llmtest.Client) *[]string {
	t.Helper()
	var keys []string
	original := newClientFactory
	newClientFactory = func(model string) func(ctx context.Context, apiKey string) (llm.Client, error) {
		return func(_ context.Context, apiKey string) (llm.Client, error) {
			keys = append(keys, apiKey)
			return fake, nil
		}
	}
	t.Cleanup(func() { newClientFactory = original })
	return &keys
}

// resetFlags restores every flag to its default so runs do not leak into each other.
func resetFlags(cmds ...*cobra.Command) {
	for _, c := range cmds {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			_ = f.Value.Set(f.DefValue)
			f.Changed = false
		})
	}
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"GEMINI_API_KEY", "DATABASE_URL", "GEMINI_MODEL", "ANALYSIS_TIMEOUT", "PORT", "SESSION_TTL", "MAX_UPLOAD_BYTES"} {
		t.Setenv(key, "")
	}
}

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd, analyzeCmd, serveCmd)

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

func writeInputs(t *testing.T, pdf []byte) (jobPath, resumePath string) {
	t.Helper()
	dir := t.TempDir()
	jobPath = filepath.Join(dir, "job.txt")
	require.NoError(t, os.WriteFile(jobPath, []byte("Senior engineer, 5+ yrs Python"), 0644))
	resumePath = filepath.Join(dir, "jane_doe.pdf")
	require.NoError(t, os.WriteFile(resumePath, pdf, 0644))
	return jobPath, resumePath
}

func TestAnalyzeCommand(t *testing.T) {
	clearEnv(t)
	fake := &llmtest.Client{Response: testAnalysis}
	keys := useFakeModel(t, fake)
	jobPath, resumePath := writeInputs(t, extracttest.PDF("Jane Doe, 6 years Python"))

	stdout, stderr, err := runCLI(t, "analyze", "--job", jobPath, "--api-key", "k-123", resumePath)
	require.NoError(t, err)

	assert.Equal(t, []string{"k-123"}, *keys)
	assert.Contains(t, stderr, "→ extracting...")
	assert.Contains(t, stderr, "→ analyzing...")
	assert.Contains(t, stderr, "→ storing...")

	assert.Contains(t, stdout, "USER")
	assert.Contains(t, stdout, "Jane Doe, 6 years Python")
	assert.Contains(t, stdout, "ASSISTANT")
	assert.Contains(t, stdout, "Strong match for the role.")
	assert.Contains(t, stdout, "jane_doe.pdf")
	assert.Contains(t, stdout, "New record")
	assert.Contains(t, stdout, "Resume has been analyzed and stored!")

	require.Len(t, fake.Prompts(), 1)
	assert.Contains(t, fake.Prompts()[0], "Senior engineer, 5+ yrs Python")
	assert.Contains(t, fake.Prompts()[0], "Jane Doe, 6 years Python")
}

func TestAnalyzeCommand_KeyFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "env-key")
	keys := useFakeModel(t, &llmtest.Client{Response: testAnalysis})
	jobPath, resumePath := writeInputs(t, extracttest.PDF("Jane Doe"))

	_, _, err := runCLI(t, "analyze", "--job", jobPath, resumePath)
	require.NoError(t, err)
	assert.Equal(t, []string{"env-key"}, *keys)
}

func TestAnalyzeCommand_Errors(t *testing.T) {
	jobPath, resumePath := writeInputs(t, extracttest.PDF("Jane Doe"))
	notPDF := filepath.Join(t.TempDir(), "notes.pdf")
	require.NoError(t, os.WriteFile(notPDF, []byte("plain text, not a pdf"), 0644))

	tests := []struct {
		name    string
		args    []string
		apiErr  error
		wantErr string
	}{
		{
			name:    "missing api key",
			args:    []string{"analyze", "--job", jobPath, resumePath},
			wantErr: "API key is required",
		},
		{
			name:    "missing job flag",
			args:    []string{"analyze", "--api-key", "k", resumePath},
			wantErr: `required flag(s) "job" not set`,
		},
		{
			name:    "missing resume argument",
			args:    []string{"analyze", "--api-key", "k", "--job", jobPath},
			wantErr: "accepts 1 arg(s)",
		},
		{
			name:    "job file not found",
			args:    []string{"analyze", "--api-key", "k", "--job", "/nonexistent/job.txt", resumePath},
			wantErr: "failed to read job description",
		},
		{
			name:    "resume not found",
			args:    []string{"analyze", "--api-key", "k", "--job", jobPath, "/nonexistent/cv.pdf"},
			wantErr: "failed to read resume",
		},
		{
			name:    "not a pdf",
			args:    []string{"analyze", "--api-key", "k", "--job", jobPath, notPDF},
			wantErr: "invalid document",
		},
		{
			name:    "model failure",
			args:    []string{"analyze", "--api-key", "k", "--job", jobPath, resumePath},
			apiErr:  &llm.RemoteServiceError{Model: "fake-model", Cause: errors.New("quota exceeded")},
			wantErr: "quota exceeded",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			fake := &llmtest.Client{Response: testAnalysis, Err: tt.apiErr}
			useFakeModel(t, fake)

			stdout, _, err := runCLI(t, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NotContains(t, stdout, "Resume has been analyzed and stored!")
		})
	}
}

func TestServeCommand_InvalidConfig(t *testing.T) {
	clearEnv(t)

	_, _, err := runCLI(t, "serve", "--config", "/nonexistent/config.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}

func TestServeCommand_InvalidPort(t *testing.T) {
	clearEnv(t)

	_, _, err := runCLI(t, "serve", "--port", "70000")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port")
}
