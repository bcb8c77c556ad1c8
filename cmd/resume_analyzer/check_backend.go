package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/jonathan/resume-analyzer/internal/backend"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/spf13/cobra"
)

var checkBackendURL string

var checkBackendCmd = &cobra.Command{
	Use:   "check-backend",
	Short: "Check connectivity to the analysis backend",
	Long: `Call the backend health route, then probe the analyze route with a tiny PDF.
Any answer other than 404 or 405 means the analyze route exists.`,
	Args: cobra.NoArgs,
	RunE: runCheckBackend,
}

func init() {
	checkBackendCmd.Flags().StringVar(&checkBackendURL, "backend-url", "", "Analysis backend base URL (overrides BACKEND_URL)")
	rootCmd.AddCommand(checkBackendCmd)
}

// troubleshootingHints is printed when any check fails.
func troubleshootingHints(backendURL string) []string {
	return []string{
		"Is the backend running? Start it with: uvicorn api.index:app --reload",
		fmt.Sprintf("Is the URL correct? BACKEND_URL is %s", backendURL),
		"Are CORS settings configured? The backend must accept requests from this host.",
	}
}

// checkBackend runs the health and route checks against client.
func checkBackend(ctx context.Context, client *backend.Client) []observability.CheckStep {
	health := observability.CheckStep{Name: "Health endpoint (GET " + backend.HealthPath + ")"}
	if info, err := client.Health(ctx); err != nil {
		health.Detail = server.ErrorBody(err, client.BaseURL()).Error
	} else {
		health.OK = true
		if msg, ok := info["message"].(string); ok {
			health.Detail = msg
		}
	}

	route := observability.CheckStep{Name: "Analyze endpoint (POST " + backend.AnalyzePath + ")"}
	status, err := client.Probe(ctx)
	switch {
	case err != nil:
		route.Detail = server.ErrorBody(err, client.BaseURL()).Error
	case status == http.StatusNotFound, status == http.StatusMethodNotAllowed:
		route.Detail = fmt.Sprintf("status %d: route not found", status)
	case status == http.StatusBadRequest:
		route.OK = true
		route.Detail = "status 400: endpoint exists and rejected the probe PDF"
	default:
		route.OK = true
		route.Detail = fmt.Sprintf("status %d", status)
	}

	return []observability.CheckStep{health, route}
}

func runCheckBackend(cmd *cobra.Command, _ []string) error {
	backendURL, _, err := resolveBackend(checkBackendURL, 0)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	client := backend.New(backendURL, nil)
	steps := checkBackend(ctx, client)

	var hints []string
	failed := 0
	for _, step := range steps {
		if !step.OK {
			failed++
		}
	}
	if failed > 0 {
		hints = troubleshootingHints(backendURL)
	}

	observability.NewPrinter(cmd.OutOrStdout()).PrintCheck(backendURL, steps, hints)

	if failed > 0 {
		return fmt.Errorf("%d of %d backend checks failed", failed, len(steps))
	}
	return nil
}
