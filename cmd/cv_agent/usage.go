package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dddTech2/CV-CREATOR/internal/budget"
)

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Show token usage and cost per user, or reset a user's spend",
	RunE:  runUsage,
}

var (
	usageUserID      string
	usageDatabaseURL string
	usageReset       bool
)

func init() {
	usageCmd.Flags().StringVar(&usageUserID, "user", "", "Limit to one user")
	usageCmd.Flags().StringVar(&usageDatabaseURL, "db-url", "", "Database URL (overrides DATABASE_URL env var)")
	usageCmd.Flags().BoolVar(&usageReset, "reset", false, "Reset the user's accumulated usage (requires --user)")

	rootCmd.AddCommand(usageCmd)
}

func runUsage(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	database, err := connectDatabase(ctx, usageDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	pricing := budget.DefaultPricing()
	tracker := budget.NewPGTracker(database.Pool(), pricing)
	if err := tracker.EnsureSchema(ctx); err != nil {
		return err
	}

	if usageReset {
		if usageUserID == "" {
			return fmt.Errorf("--reset requires --user")
		}
		if err := tracker.Reset(ctx, usageUserID); err != nil {
			return err
		}
		if err := tracker.LogAction(ctx, usageUserID, "usage_reset", "usage reset via CLI"); err != nil {
			return err
		}
		fmt.Printf("Usage reset for user %s.\n", usageUserID)
		return nil
	}

	if usageUserID != "" {
		cost, err := tracker.TotalCost(ctx, usageUserID)
		if err != nil {
			return err
		}
		fmt.Printf("User %s: %.2f of %.2f spent\n", usageUserID, cost, pricing.CeilingLocal)
		if cost >= pricing.CeilingLocal {
			fmt.Printf("Budget exhausted; LLM calls are blocked for this user.\n")
		}
		return nil
	}

	summaries, err := tracker.AllUsersUsage(ctx)
	if err != nil {
		return err
	}
	if len(summaries) == 0 {
		fmt.Println("No recorded usage.")
		return nil
	}

	fmt.Printf("%-20s %12s %13s %10s  %s\n", "USER", "INPUT TOKENS", "OUTPUT TOKENS", "COST", "LAST USED")
	for _, s := range summaries {
		fmt.Printf("%-20s %12d %13d %10.2f  %s\n",
			s.UserID, s.InputTokens, s.OutputTokens, s.CostLocal, s.LastUsedAt.Format("2006-01-02 15:04"))
	}
	return nil
}
