// Package main provides the entry point for the Resume Screener.
package main

import (
	"fmt"
	"os"

	"github.com/jonathan/resume-screener/internal/llm"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// newClientFactory builds model clients; replaced in tests.
var newClientFactory = llm.NewFactory

var rootCmd = &cobra.Command{
	Use:   "resume_screener",
	Short: "AI Resume Screener",
	Long: "Resume Screener helps HR teams analyze resumes by summarizing content, checking for qualification " +
		"matches, and providing critiques. It uses Google Gemini to evaluate resumes and stores them by filename.",
	SilenceUsage: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
