package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dddTech2/CV-CREATOR/internal/config"
	"github.com/dddTech2/CV-CREATOR/internal/interview"
	"github.com/dddTech2/CV-CREATOR/internal/pipeline"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the full pipeline: analyze, interview, and assemble the document",
	Long:  "Run extracts the job requirements and candidate profile, analyzes the gaps, conducts an interactive interview (up to 3 rounds), and assembles the tailored document.",
	RunE:  runRun,
}

var (
	runCV          string
	runJob         string
	runJobURL      string
	runUserID      string
	runLanguage    string
	runAPIKey      string
	runConfigPath  string
	runOutputFile  string
	runDatabaseURL string
	runVerbose     bool
	runYes         bool
)

func init() {
	runCmd.Flags().StringVar(&runCV, "cv", "", "Path to CV text file (required)")
	runCmd.Flags().StringVar(&runJob, "job", "", "Path to job posting text file")
	runCmd.Flags().StringVar(&runJobURL, "job-url", "", "URL to fetch the job posting from")
	runCmd.Flags().StringVar(&runUserID, "user", "", "User ID for skill memory and budget tracking")
	runCmd.Flags().StringVar(&runLanguage, "language", "", "Interview language: en or es (default en)")
	runCmd.Flags().StringVar(&runAPIKey, "api-key", "", "Gemini API key (overrides GEMINI_API_KEY env var)")
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "", "Path to JSON config file")
	runCmd.Flags().StringVarP(&runOutputFile, "out", "o", "", "Path to write the document JSON (default stdout)")
	runCmd.Flags().StringVar(&runDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	runCmd.Flags().BoolVarP(&runVerbose, "verbose", "v", false, "Print detailed progress")
	runCmd.Flags().BoolVar(&runYes, "non-interactive", false, "Skip the interview instead of prompting")

	rootCmd.AddCommand(runCmd)
}

// resolveConfig merges a config file (when given) under the CLI flags
func resolveConfig() (config.Config, error) {
	flags := config.Config{
		CV:          runCV,
		Job:         runJob,
		JobURL:      runJobURL,
		UserID:      runUserID,
		Language:    runLanguage,
		APIKey:      runAPIKey,
		DatabaseURL: runDatabaseURL,
		Output:      runOutputFile,
		Verbose:     runVerbose,
	}

	if runConfigPath != "" {
		fileCfg, err := config.LoadConfig(runConfigPath)
		if err != nil {
			return config.Config{}, err
		}
		flags = flags.MergeWithDefaults(*fileCfg)
	}

	if flags.APIKey == "" {
		flags.APIKey = os.Getenv("GEMINI_API_KEY")
	}
	if flags.DatabaseURL == "" {
		flags.DatabaseURL = os.Getenv("DATABASE_URL")
	}

	if err := flags.Validate(); err != nil {
		return config.Config{}, err
	}
	return flags, nil
}

func runRun(_ *cobra.Command, _ []string) error {
	cfg, err := resolveConfig()
	if err != nil {
		return err
	}
	if cfg.CV == "" {
		return fmt.Errorf("--cv is required")
	}
	if cfg.Job == "" && cfg.JobURL == "" {
		return fmt.Errorf("one of --job or --job-url is required")
	}

	var answers pipeline.AnswerFunc
	if !runYes {
		answers = promptAnswers(os.Stdin, os.Stdout)
	}

	result, err := pipeline.Run(context.Background(), pipeline.RunOptions{
		CVPath:      cfg.CV,
		JobPath:     cfg.Job,
		JobURL:      cfg.JobURL,
		UserID:      cfg.UserID,
		Language:    cfg.Language,
		APIKey:      cfg.APIKey,
		Verbose:     cfg.Verbose,
		DatabaseURL: cfg.DatabaseURL,
		Answers:     answers,
	})
	if err != nil {
		return err
	}

	jsonBytes, err := json.MarshalIndent(result.Document, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal document: %w", err)
	}

	if cfg.Output != "" {
		if err := os.WriteFile(cfg.Output, jsonBytes, 0644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		fmt.Printf("Document written to %s\n", cfg.Output)
		return nil
	}

	fmt.Println(string(jsonBytes))
	return nil
}

// promptAnswers reads interview answers from the terminal. An empty line
// confirms the remembered answer when one is shown, otherwise it skips.
func promptAnswers(in *os.File, out *os.File) pipeline.AnswerFunc {
	reader := bufio.NewReader(in)
	return func(_ context.Context, round int, questions []interview.Question) ([]pipeline.Response, error) {
		fmt.Fprintf(out, "\n--- Interview round %d (%d questions, type \"skip\" to skip) ---\n", round, len(questions))

		responses := make([]pipeline.Response, 0, len(questions))
		for i, q := range questions {
			fmt.Fprintf(out, "\n%d. %s\n", i+1, q.Text)
			if q.PreFill != "" {
				fmt.Fprintf(out, "   Previously: %q (press Enter to confirm)\n", q.PreFill)
			}
			fmt.Fprintf(out, "> ")

			line, err := reader.ReadString('\n')
			if err != nil {
				return nil, fmt.Errorf("failed to read answer: %w", err)
			}
			line = strings.TrimSpace(line)

			switch {
			case strings.EqualFold(line, "skip"):
				responses = append(responses, pipeline.Response{QuestionID: q.ID, Skip: true})
			case line == "" && q.PreFill != "":
				responses = append(responses, pipeline.Response{QuestionID: q.ID, Answer: q.PreFill})
			case line == "":
				responses = append(responses, pipeline.Response{QuestionID: q.ID, Skip: true})
			default:
				responses = append(responses, pipeline.Response{QuestionID: q.ID, Answer: line})
			}
		}
		return responses, nil
	}
}
