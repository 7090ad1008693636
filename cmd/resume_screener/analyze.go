package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jonathan/resume-screener/internal/collection"
	"github.com/jonathan/resume-screener/internal/config"
	"github.com/jonathan/resume-screener/internal/observability"
	"github.com/jonathan/resume-screener/internal/screening"
	"github.com/jonathan/resume-screener/internal/session"
	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] resume.pdf",
	Short: "Analyze one resume against a job description",
	Long: "Extract the text of a resume PDF, analyze it against a job description with Gemini, " +
		"store the result under the resume's filename and print the conversation.",
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var (
	analyzeJobFile     string
	analyzeAPIKey      string
	analyzeDatabaseURL string
	analyzeConfig      string
)

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeJobFile, "job", "j", "", "Path to a text file with the job description (required)")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	analyzeCmd.Flags().StringVar(&analyzeDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL; in-memory when empty)")
	analyzeCmd.Flags().StringVar(&analyzeConfig, "config", "", "Path to a JSON config file")
	_ = analyzeCmd.MarkFlagRequired("job")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	apiKey := analyzeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if strings.TrimSpace(apiKey) == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	cfg, err := config.Load(analyzeConfig)
	if err != nil {
		return err
	}
	databaseURL := cfg.DatabaseURL
	if analyzeDatabaseURL != "" {
		databaseURL = analyzeDatabaseURL
	}

	job, err := os.ReadFile(analyzeJobFile)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	resumePath := args[0]
	data, err := os.ReadFile(resumePath)
	if err != nil {
		return fmt.Errorf("failed to read resume: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	coll, err := collection.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to open collection: %w", err)
	}
	defer coll.Close()

	sess := session.New()
	defer sess.Close()
	sess.SetCredential(apiKey)

	printer := observability.NewPrinter(cmd.OutOrStdout())
	progress := observability.NewPrinter(cmd.ErrOrStderr())

	screener := screening.New(coll, newClientFactory(cfg.Model),
		screening.WithTimeout(time.Duration(cfg.AnalysisTimeout)))

	result, err := screener.Screen(ctx, sess, screening.Request{
		JobDescription: string(job),
		Resume: screening.Upload{
			Filename: filepath.Base(resumePath),
			Data:     data,
		},
	}, func(stage screening.Stage) {
		progress.PrintStage(string(stage))
	})
	if err != nil {
		return err
	}

	printer.PrintTranscript(result.Messages)

	rec, err := coll.Get(ctx, result.RecordID)
	if err != nil {
		return fmt.Errorf("failed to read back record: %w", err)
	}
	printer.PrintRecord(rec, result.Replaced)

	fmt.Fprintln(cmd.OutOrStdout(), screening.SuccessMessage)
	return nil
}
