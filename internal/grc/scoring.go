package grc

import "github.com/hugh/go-grc/internal/database/models"

var levelRank = map[models.Level]int{
	models.LevelVeryLow:  1,
	models.LevelLow:      2,
	models.LevelMedium:   3,
	models.LevelHigh:     4,
	models.LevelVeryHigh: 5,
}

// LevelRank returns 1-5 for a valid level and 0 otherwise.
func LevelRank(l models.Level) int {
	return levelRank[l]
}

// RiskScore is likelihood rank times impact rank, 1 to 25.
func RiskScore(likelihood, impact models.Level) int {
	return LevelRank(likelihood) * LevelRank(impact)
}

type Band string

const (
	BandHigh   Band = "high"
	BandMedium Band = "medium"
	BandLow    Band = "low"
)

func ScoreBand(score int) Band {
	switch {
	case score >= 15:
		return BandHigh
	case score >= 9:
		return BandMedium
	default:
		return BandLow
	}
}
