package screening

import (
	"context"
	"testing"

	"github.com/jonathan/resume-screener/internal/llm/llmtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPrompt(t *testing.T) {
	prompt := BuildPrompt("Senior engineer, 5+ yrs Python", "Jane Doe, 6 years Python")

	want := "You are an HR Assistant.\n" +
		"Analyze the following resume and:\n" +
		"1. Summarize the Skills, Experience, and Education.\n" +
		"2. Compare it to the following job requirement: Senior engineer, 5+ yrs Python\n" +
		"3. Provide a critique with strengths and suggestions for improvement.\n" +
		"\n" +
		"Resume:\n" +
		"Jane Doe, 6 years Python\n"
	assert.Equal(t, want, prompt)
}

func TestBuildPrompt_Deterministic(t *testing.T) {
	first := BuildPrompt("job", "resume")

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, BuildPrompt("job", "resume"))
	}
}

func TestBuildPrompt_PlaceholderInInput(t *testing.T) {
	prompt := BuildPrompt("needs {{.ResumeText}}", "plain resume")

	assert.Contains(t, prompt, "job requirement: needs {{.ResumeText}}\n")
	assert.Contains(t, prompt, "Resume:\nplain resume\n")
}

func TestBuildPrompt_KeepsSurroundingWhitespace(t *testing.T) {
	prompt := BuildPrompt("  Senior engineer\n", "    Jane Doe  ")

	assert.Contains(t, prompt, "job requirement:   Senior engineer\n\n3.")
	assert.Contains(t, prompt, "Resume:\n    Jane Doe  \n")
}

func TestAnalyze(t *testing.T) {
	client := &llmtest.Client{Response: "Good fit."}

	analysis, err := Analyze(context.Background(), client, "job", "resume")
	require.NoError(t, err)
	assert.Equal(t, "Good fit.", analysis)

	require.Len(t, client.Prompts(), 1)
	assert.Equal(t, BuildPrompt("job", "resume"), client.Prompts()[0])
}
