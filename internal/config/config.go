// Package config provides configuration loading and validation for the CLI.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
)

// Config represents the CLI configuration that can be loaded from a JSON file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Inputs
	CV     string `json:"cv,omitempty"`      // Path to CV text file
	Job    string `json:"job,omitempty"`     // Path to job posting text file
	JobURL string `json:"job_url,omitempty" validate:"omitempty,url"` // URL to fetch job posting from

	// Session
	UserID   string `json:"user_id,omitempty"`
	Language string `json:"language,omitempty" validate:"omitempty,oneof=en es"` // Interview and output language

	// Behavior
	APIKey        string  `json:"api_key,omitempty"`        // Gemini API key
	Verbose       bool    `json:"verbose,omitempty"`        // Print detailed debug information
	BudgetCeiling float64 `json:"budget_ceiling,omitempty" validate:"gte=0"` // Monthly cost ceiling per user, local currency
	DatabaseURL   string  `json:"database_url,omitempty"`   // PostgreSQL connection URL
	Output        string  `json:"output,omitempty"`         // Path to write the assembled document JSON
}

// LoadConfig loads configuration from a JSON file.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		return nil, fmt.Errorf("config path is empty")
	}

	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	return &cfg, nil
}

// Validate checks that the configuration has valid values.
// Required-field checks happen after CLI flag merging, not here.
func (c *Config) Validate() error {
	if c.Job != "" && c.JobURL != "" {
		return fmt.Errorf("config error: 'job' and 'job_url' are mutually exclusive")
	}

	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("config error: %w", err)
	}

	for name, path := range map[string]string{"cv": c.CV, "job": c.Job} {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return fmt.Errorf("config error: %s file not found: %s", name, path)
		}
	}

	return nil
}

// MergeWithDefaults returns a new Config with empty fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.CV == "" {
		result.CV = defaults.CV
	}
	if result.Job == "" {
		result.Job = defaults.Job
	}
	if result.JobURL == "" {
		result.JobURL = defaults.JobURL
	}
	if result.UserID == "" {
		result.UserID = defaults.UserID
	}
	if result.Language == "" {
		result.Language = defaults.Language
	}
	if result.APIKey == "" {
		result.APIKey = defaults.APIKey
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.Output == "" {
		result.Output = defaults.Output
	}
	if result.BudgetCeiling == 0 {
		result.BudgetCeiling = defaults.BudgetCeiling
	}
	if !result.Verbose {
		result.Verbose = defaults.Verbose
	}

	return result
}
