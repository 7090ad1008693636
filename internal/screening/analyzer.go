// Package screening runs one upload/analyze/store cycle for a session.
package screening

import (
	"context"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/jonathan/resume-screener/internal/prompts"
)

var analyzeTemplate = prompts.MustLoad("screening.json", "analyze-resume")

// BuildPrompt renders the HR-assistant prompt. Both inputs are inserted verbatim.
func BuildPrompt(jobDescription, resumeText string) string {
	return analyzeTemplate.Render(map[string]string{
		"JobDescription": jobDescription,
		"ResumeText":     resumeText,
	})
}

// Analyze sends a single analysis request and returns the model's text unchanged.
func Analyze(ctx context.Context, client llm.Client, jobDescription, resumeText string) (string, error) {
	return client.GenerateContent(ctx, BuildPrompt(jobDescription, resumeText))
}
