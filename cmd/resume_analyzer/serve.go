package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jonathan/resume-analyzer/internal/config"
	"github.com/jonathan/resume-analyzer/internal/observability"
	"github.com/jonathan/resume-analyzer/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort       int
	serveBackendURL string
	serveTimeout    time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web front end",
	Long: `Start an HTTP server that serves the upload form and proxies submissions to
{BACKEND_URL}/api/analyze. Configuration comes from defaults, an optional
--config file, the environment, and finally these flags.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", config.DefaultPort, "Port to listen on")
	serveCmd.Flags().StringVar(&serveBackendURL, "backend-url", "", "Analysis backend base URL (overrides BACKEND_URL)")
	serveCmd.Flags().DurationVar(&serveTimeout, "timeout", 0, "Backend timeout per analysis (overrides BACKEND_TIMEOUT)")
	rootCmd.AddCommand(serveCmd)
}

// resolveServeConfig layers flags that were set explicitly over the resolved config.
func resolveServeConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Resolve(configPath)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("port") {
		cfg.Port = servePort
	}
	if flags.Changed("backend-url") {
		cfg.BackendURL = serveBackendURL
	}
	if flags.Changed("timeout") {
		cfg.BackendTimeout = config.Duration(serveTimeout)
	}

	merged := cfg.MergeWithDefaults(config.Default())
	if err := merged.Validate(); err != nil {
		return nil, err
	}
	return &merged, nil
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := resolveServeConfig(cmd)
	if err != nil {
		return err
	}

	logger := observability.NewLogger(os.Stderr, cfg.LogLevel, cfg.LogFormat)

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		BackendURL:     cfg.BackendURL,
		BackendTimeout: cfg.Timeout(),
		MaxUploadBytes: cfg.MaxUploadBytes,
		DatabaseURL:    cfg.DatabaseURL,
		Logger:         logger,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
