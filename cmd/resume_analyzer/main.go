// Package main provides the entry point for the resume analyzer front end and CLI.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "resume_analyzer",
	Short: "Resume to job description matching front end",
	Long: `Resume Analyzer serves a web form that uploads a PDF CV and a job description
to an analysis backend and renders the match score, the explanation, and a
learning plan. The same backend can be queried from the command line.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to a JSON config file")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
