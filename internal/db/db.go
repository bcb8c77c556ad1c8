// Package db provides PostgreSQL storage for analysis history.
package db

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonathan/resume-analyzer/internal/types"
)

//go:embed schema.sql
var schemaSQL string

// Paging limits for ListAnalyses.
const (
	DefaultListLimit = 20
	MaxListLimit     = 100
)

// DB wraps a PostgreSQL connection pool
type DB struct {
	pool *pgxpool.Pool
}

// Connect establishes a connection pool to the database
func Connect(ctx context.Context, databaseURL string) (*DB, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Verify connection
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DB{pool: pool}, nil
}

// Close closes the connection pool
func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
}

// Migrate creates the analyses table if it does not exist. Safe to run on every start.
func (db *DB) Migrate(ctx context.Context) error {
	if _, err := db.pool.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// SaveAnalysis stores a completed analysis and returns its ID
func (db *DB) SaveAnalysis(ctx context.Context, fileName, jobDescription string, result *types.AnalysisResponse) (uuid.UUID, error) {
	if result == nil {
		return uuid.Nil, errors.New("failed to save analysis: result is nil")
	}

	resultJSON, err := json.Marshal(result)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to marshal analysis: %w", err)
	}

	id := uuid.New()
	_, err = db.pool.Exec(ctx,
		`INSERT INTO analyses (id, file_name, job_description, match_score, result)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, fileName, jobDescription, result.MatchScore, resultJSON,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to save analysis: %w", err)
	}
	return id, nil
}

// GetAnalysis retrieves an analysis by ID. Returns nil, nil when it does not exist.
func (db *DB) GetAnalysis(ctx context.Context, id uuid.UUID) (*Analysis, error) {
	var a Analysis
	var resultJSON []byte
	err := db.pool.QueryRow(ctx,
		`SELECT id, file_name, job_description, match_score, result, created_at
		 FROM analyses WHERE id = $1`,
		id,
	).Scan(&a.ID, &a.FileName, &a.JobDescription, &a.MatchScore, &resultJSON, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}

	if err := json.Unmarshal(resultJSON, &a.Result); err != nil {
		return nil, fmt.Errorf("failed to decode analysis %s: %w", id, err)
	}
	return &a, nil
}

// ListAnalyses retrieves analysis summaries, newest first
func (db *DB) ListAnalyses(ctx context.Context, limit, offset int) ([]AnalysisSummary, error) {
	limit, offset = NormalizePage(limit, offset)

	rows, err := db.pool.Query(ctx,
		`SELECT id, file_name, match_score, created_at
		 FROM analyses ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	defer rows.Close()

	summaries := []AnalysisSummary{}
	for rows.Next() {
		var s AnalysisSummary
		if err := rows.Scan(&s.ID, &s.FileName, &s.MatchScore, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan analysis: %w", err)
		}
		summaries = append(summaries, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}
	return summaries, nil
}

// NormalizePage clamps a limit and offset to the supported range.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
