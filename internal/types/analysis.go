// Package types provides type definitions for the data exchanged between the
// browser, the proxy, and the analysis backend.
//
//nolint:revive // types is a standard Go package name pattern
package types

import "fmt"

// Score band thresholds, inclusive lower bounds.
const (
	HighScoreThreshold   = 80
	MediumScoreThreshold = 60
)

// Score bands used to color the match score.
const (
	BandHigh   = "high"
	BandMedium = "medium"
	BandLow    = "low"
)

// AnalysisResponse is the result produced by the analysis backend.
type AnalysisResponse struct {
	MatchScore   int                `json:"match_score"`
	Reason       string             `json:"reason"`
	LearningPlan []LearningResource `json:"learning_plan"`
}

// LearningResource is one entry of the learning plan, typically a video.
type LearningResource struct {
	Title     string `json:"title"`
	Video     string `json:"video"`
	Thumbnail string `json:"thumbnail"`
}

// ErrorResponse is the JSON body returned for every failed request.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ScoreBand classifies a match score as high, medium or low.
func ScoreBand(score int) string {
	switch {
	case score >= HighScoreThreshold:
		return BandHigh
	case score >= MediumScoreThreshold:
		return BandMedium
	default:
		return BandLow
	}
}

// Band returns the score band of the response.
func (r *AnalysisResponse) Band() string {
	return ScoreBand(r.MatchScore)
}

// HasLearningPlan reports whether there is anything to show in the learning plan.
func (r *AnalysisResponse) HasLearningPlan() bool {
	return r != nil && len(r.LearningPlan) > 0
}

// DisplayTitle returns the resource title, falling back to "Video N" where N
// is the 1-based position in the plan.
func (lr LearningResource) DisplayTitle(index int) string {
	if lr.Title != "" {
		return lr.Title
	}
	return fmt.Sprintf("Video %d", index+1)
}
