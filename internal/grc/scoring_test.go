package grc_test

import (
	"testing"

	"github.com/hugh/go-grc/internal/database/models"
	"github.com/hugh/go-grc/internal/grc"
	"github.com/stretchr/testify/assert"
)

func TestRiskScore_AllCombinations(t *testing.T) {
	for i, likelihood := range models.Levels {
		for j, impact := range models.Levels {
			want := (i + 1) * (j + 1)
			assert.Equal(t, want, grc.RiskScore(likelihood, impact), "%s x %s", likelihood, impact)
		}
	}
}

func TestRiskScore_Examples(t *testing.T) {
	tests := []struct {
		likelihood models.Level
		impact     models.Level
		want       int
	}{
		{models.LevelMedium, models.LevelMedium, 9},
		{models.LevelVeryHigh, models.LevelVeryHigh, 25},
		{models.LevelVeryLow, models.LevelVeryHigh, 5},
		{models.LevelVeryLow, models.LevelVeryLow, 1},
		{models.LevelHigh, models.LevelLow, 8},
	}

	for _, tt := range tests {
		t.Run(string(tt.likelihood)+"_"+string(tt.impact), func(t *testing.T) {
			assert.Equal(t, tt.want, grc.RiskScore(tt.likelihood, tt.impact))
		})
	}
}

func TestRiskScore_InvalidLevel(t *testing.T) {
	assert.Equal(t, 0, grc.RiskScore("extreme", models.LevelHigh))
	assert.Equal(t, 0, grc.LevelRank(""))
}

func TestScoreBand(t *testing.T) {
	tests := []struct {
		score int
		want  grc.Band
	}{
		{1, grc.BandLow},
		{8, grc.BandLow},
		{9, grc.BandMedium},
		{14, grc.BandMedium},
		{15, grc.BandHigh},
		{25, grc.BandHigh},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, grc.ScoreBand(tt.score), "score %d", tt.score)
	}
}
