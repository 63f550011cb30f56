package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/dddTech2/CV-CREATOR/internal/db"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List a user's past sessions and their documents",
	RunE:  runHistory,
}

var (
	historyUserID      string
	historyDatabaseURL string
	historyLimit       int
	historyDocumentID  string
)

func init() {
	historyCmd.Flags().StringVar(&historyUserID, "user", "", "User ID (required)")
	historyCmd.Flags().StringVar(&historyDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of sessions to list")
	historyCmd.Flags().StringVar(&historyDocumentID, "document", "", "Print one stored document as JSON instead of listing")

	rootCmd.AddCommand(historyCmd)
}

func connectDatabase(ctx context.Context, databaseURL string) (*db.DB, error) {
	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if databaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required (set the env var or use --db-url)")
	}
	return db.Connect(ctx, databaseURL)
}

func runHistory(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	database, err := connectDatabase(ctx, historyDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if historyDocumentID != "" {
		docID, err := uuid.Parse(historyDocumentID)
		if err != nil {
			return fmt.Errorf("invalid document id: %w", err)
		}
		record, err := database.GetDocument(ctx, docID)
		if err != nil {
			return err
		}
		if record == nil {
			return fmt.Errorf("document not found: %s", docID)
		}
		jsonBytes, err := json.MarshalIndent(record.Document, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal document: %w", err)
		}
		fmt.Println(string(jsonBytes))
		return nil
	}

	if historyUserID == "" {
		return fmt.Errorf("--user is required")
	}

	sessions, err := database.ListSessions(ctx, historyUserID, historyLimit)
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Printf("No sessions found for user %s.\n", historyUserID)
		return nil
	}

	fmt.Printf("Sessions for %s:\n", historyUserID)
	for _, s := range sessions {
		score := "-"
		if s.MatchScore != nil {
			score = fmt.Sprintf("%.0f", *s.MatchScore)
		}
		fmt.Printf("  %s  %-22s %-24s state=%-15s round=%d score=%s  %s\n",
			s.ID, s.Company, s.RoleTitle, s.State, s.Round, score, s.CreatedAt.Format("2006-01-02 15:04"))
	}

	documents, err := database.ListDocuments(ctx, historyUserID, historyLimit)
	if err != nil {
		return err
	}
	if len(documents) > 0 {
		fmt.Printf("\nDocuments:\n")
		for _, d := range documents {
			fmt.Printf("  %s  session=%s  %s\n", d.ID, d.SessionID, d.CreatedAt.Format("2006-01-02 15:04"))
		}
	}
	return nil
}
