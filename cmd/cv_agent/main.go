// Package main provides the entry point for the CV agent CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "cv_agent",
	Short: "Gap analysis and CV synthesis agent",
	Long:  "cv_agent compares a CV against a job posting, interviews the candidate about the gaps, and assembles a schema-validated CV document tailored to the role.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
