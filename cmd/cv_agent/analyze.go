package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/dddTech2/CV-CREATOR/internal/analysis"
	"github.com/dddTech2/CV-CREATOR/internal/fetch"
	"github.com/dddTech2/CV-CREATOR/internal/llm"
	"github.com/dddTech2/CV-CREATOR/internal/observability"
	"github.com/dddTech2/CV-CREATOR/internal/parsing"
	"github.com/dddTech2/CV-CREATOR/internal/types"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Extract requirements and profile, then report the gap analysis",
	Long:  "Analyze compares a CV against a job posting and prints the match score, matched skills, and identified gaps without starting an interview.",
	RunE:  runAnalyze,
}

var (
	analyzeCV         string
	analyzeJob        string
	analyzeJobURL     string
	analyzeAPIKey     string
	analyzeOutputFile string
)

func init() {
	analyzeCmd.Flags().StringVar(&analyzeCV, "cv", "", "Path to CV text file (required)")
	analyzeCmd.Flags().StringVar(&analyzeJob, "job", "", "Path to job posting text file")
	analyzeCmd.Flags().StringVar(&analyzeJobURL, "job-url", "", "URL to fetch the job posting from")
	analyzeCmd.Flags().StringVar(&analyzeAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	analyzeCmd.Flags().StringVarP(&analyzeOutputFile, "out", "o", "", "Path to write the analysis JSON")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(_ *cobra.Command, _ []string) error {
	if analyzeCV == "" {
		return fmt.Errorf("--cv is required")
	}
	if analyzeJob == "" && analyzeJobURL == "" {
		return fmt.Errorf("one of --job or --job-url is required")
	}

	apiKey := analyzeAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return fmt.Errorf("API key is required (set GEMINI_API_KEY environment variable or use --api-key flag)")
	}

	ctx := context.Background()

	cvBytes, err := os.ReadFile(analyzeCV)
	if err != nil {
		return fmt.Errorf("failed to read CV file: %w", err)
	}

	var jobText string
	if analyzeJobURL != "" {
		posting, err := fetch.JobPosting(ctx, analyzeJobURL, nil)
		if err != nil {
			return fmt.Errorf("failed to fetch job posting: %w", err)
		}
		jobText = posting.Text
	} else {
		jobBytes, err := os.ReadFile(analyzeJob)
		if err != nil {
			return fmt.Errorf("failed to read job posting file: %w", err)
		}
		jobText = string(jobBytes)
	}

	client, err := llm.NewClient(ctx, llm.DefaultConfig(), apiKey)
	if err != nil {
		return fmt.Errorf("failed to create LLM client: %w", err)
	}
	defer func() { _ = client.Close() }()

	var reqs *types.JobRequirements
	var profile *types.CandidateProfile

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		reqs, err = parsing.ExtractJobRequirements(gCtx, client, jobText)
		return err
	})
	g.Go(func() error {
		var err error
		profile, err = parsing.ExtractCandidateProfile(gCtx, client, string(cvBytes))
		return err
	})
	if err := g.Wait(); err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	result, err := analysis.Analyze(profile, reqs)
	if err != nil {
		return fmt.Errorf("gap analysis failed: %w", err)
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintRequirements(reqs)
	printer.PrintGapAnalysis(result)

	if analyzeOutputFile != "" {
		jsonBytes, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal analysis: %w", err)
		}
		if err := os.WriteFile(analyzeOutputFile, jsonBytes, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Analysis written to %s\n", analyzeOutputFile)
	}

	return nil
}
