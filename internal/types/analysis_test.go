//nolint:revive // types is a standard Go package name pattern
package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score int
		want  string
	}{
		{100, BandHigh},
		{80, BandHigh},
		{79, BandMedium},
		{60, BandMedium},
		{59, BandLow},
		{0, BandLow},
		{-5, BandLow},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ScoreBand(tt.score), "score %d", tt.score)
	}
}

func TestAnalysisResponse_DecodesBackendPayload(t *testing.T) {
	payload := `{
		"match_score": 72,
		"reason": "Strong Go background.\nMissing Kubernetes.",
		"learning_plan": [
			{"title": "Kubernetes in 100 seconds", "video": "https://www.youtube.com/watch?v=abc", "thumbnail": "https://i.ytimg.com/vi/abc/hq.jpg"},
			{"title": "", "video": "https://www.youtube.com/watch?v=def", "thumbnail": ""}
		]
	}`

	var resp AnalysisResponse
	require.NoError(t, json.Unmarshal([]byte(payload), &resp))

	assert.Equal(t, 72, resp.MatchScore)
	assert.Equal(t, BandMedium, resp.Band())
	assert.Contains(t, resp.Reason, "\n")
	require.Len(t, resp.LearningPlan, 2)
	assert.True(t, resp.HasLearningPlan())
	assert.Equal(t, "Kubernetes in 100 seconds", resp.LearningPlan[0].DisplayTitle(0))
	assert.Equal(t, "Video 2", resp.LearningPlan[1].DisplayTitle(1))
}

func TestHasLearningPlan_Empty(t *testing.T) {
	var nilResp *AnalysisResponse
	assert.False(t, nilResp.HasLearningPlan())
	assert.False(t, (&AnalysisResponse{}).HasLearningPlan())
	assert.False(t, (&AnalysisResponse{LearningPlan: []LearningResource{}}).HasLearningPlan())
}

func TestErrorResponse_OmitsEmptyDetails(t *testing.T) {
	data, err := json.Marshal(ErrorResponse{Error: "CV file is required"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"CV file is required"}`, string(data))

	data, err = json.Marshal(ErrorResponse{Error: "boom", Details: "dial tcp: refused"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":"boom","details":"dial tcp: refused"}`, string(data))
}
