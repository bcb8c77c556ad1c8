package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/jonathan/resume-analyzer/internal/backend"
	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/jonathan/resume-analyzer/internal/upload"
	"github.com/jonathan/resume-analyzer/internal/web"
	"github.com/spf13/cobra"
)

var (
	analyzeBackendURL string
	analyzeTimeout    time.Duration
	analyzeJSON       bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <cv.pdf> <job-description-file|->",
	Short: "Analyze a CV against a job description",
	Long: `Send a PDF CV and a job description straight to the analysis backend and
print the match score, the explanation, and the learning plan.

Pass "-" as the second argument to read the job description from stdin.`,
	Args: cobra.ExactArgs(2),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeBackendURL, "backend-url", "", "Analysis backend base URL (overrides BACKEND_URL)")
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 0, "Backend timeout (overrides BACKEND_TIMEOUT)")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "Print the raw backend result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

// resolveBackend picks the backend URL and timeout from the flag values or
// the resolved config.
func resolveBackend(urlFlag string, timeoutFlag time.Duration) (string, time.Duration, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return "", 0, err
	}
	if urlFlag != "" {
		cfg.BackendURL = strings.TrimRight(urlFlag, "/")
		if err := cfg.Validate(); err != nil {
			return "", 0, err
		}
	}
	timeout := cfg.Timeout()
	if timeoutFlag > 0 {
		timeout = timeoutFlag
	}
	return cfg.BackendURL, timeout, nil
}

// readJobDescription reads the description from a file, or from in when
// source is "-".
func readJobDescription(source string, in io.Reader) (string, error) {
	var (
		data []byte
		err  error
	)
	if source == "-" {
		data, err = io.ReadAll(in)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read job description: %w", err)
	}
	return string(data), nil
}

// cliError turns an analysis failure into the message the web form would show.
func cliError(err error, backendURL string) error {
	return errors.New(web.FriendlyError(server.ErrorBody(err, backendURL).Error))
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	backendURL, timeout, err := resolveBackend(analyzeBackendURL, analyzeTimeout)
	if err != nil {
		return err
	}

	jobDescription, err := readJobDescription(args[1], cmd.InOrStdin())
	if err != nil {
		return err
	}

	sub, err := upload.ReadSubmission(args[0], jobDescription)
	if err != nil {
		return cliError(err, backendURL)
	}

	out := cmd.OutOrStdout()
	printer := observability.NewPrinter(out)
	if !analyzeJSON {
		pages := 0
		if info, err := upload.Inspect(sub.Content); err == nil {
			pages = info.Pages
		}
		printer.PrintSubmission(sub, pages)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := backend.New(backendURL, &backend.Options{Timeout: timeout})
	result, err := client.Analyze(ctx, sub)
	if err != nil {
		return cliError(err, backendURL)
	}

	if analyzeJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	printer.PrintAnalysis(result)
	return nil
}
