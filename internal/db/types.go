package db

import (
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/resume-analyzer/internal/types"
)

// Analysis represents a stored analysis record
type Analysis struct {
	ID             uuid.UUID              `json:"id"`
	FileName       string                 `json:"file_name"`
	JobDescription string                 `json:"job_description"`
	MatchScore     int                    `json:"match_score"`
	Result         types.AnalysisResponse `json:"result"`
	CreatedAt      time.Time              `json:"created_at"`
}

// AnalysisSummary is a lightweight view of an analysis for listing
type AnalysisSummary struct {
	ID         uuid.UUID `json:"id"`
	FileName   string    `json:"file_name"`
	MatchScore int       `json:"match_score"`
	CreatedAt  time.Time `json:"created_at"`
}
