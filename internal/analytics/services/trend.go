package services

import (
	"github.com/jgirmay/inquizzitive/internal/analytics/models"
)

const (
	trendWindow          = 5
	minImprovementSample = 10
)

// EstimateTrend compares the five newest scores with the five before them.
// points must be most-recent-first.
func EstimateTrend(points []models.ScorePoint) string {
	if len(points) < trendWindow {
		return models.TrendInsufficientData
	}

	recent := trendScores(points[:trendWindow])
	end := trendWindow * 2
	if end > len(points) {
		end = len(points)
	}
	earlier := trendScores(points[trendWindow:end])
	if len(earlier) < trendWindow {
		return models.TrendInsufficientData
	}

	return TrendForDelta(mean(recent) - mean(earlier))
}

// TrendForDelta labels a recent-minus-earlier average difference.
// Boundaries are exclusive on the upper side.
func TrendForDelta(delta float64) string {
	switch {
	case delta > 10:
		return models.TrendImprovingFast
	case delta > 5:
		return models.TrendImproving
	case delta > -5:
		return models.TrendStable
	case delta > -10:
		return models.TrendDeclining
	default:
		return models.TrendDecliningFast
	}
}

// OverallImprovementRate splits oldest-first scores into halves and returns
// (secondAvg - firstAvg) / len(firstHalf) * 100 rounded to one decimal, or
// nil with fewer than ten scores.
func OverallImprovementRate(scoresOldestFirst []float64) *float64 {
	if len(scoresOldestFirst) < minImprovementSample {
		return nil
	}

	half := len(scoresOldestFirst) / 2
	first := scoresOldestFirst[:half]
	second := scoresOldestFirst[half:]

	rate := round1((mean(second) - mean(first)) / float64(len(first)) * 100)
	return &rate
}

// IsDeclining reports whether a trend label calls for recovery
func IsDeclining(trend string) bool {
	return trend == models.TrendDeclining || trend == models.TrendDecliningFast
}
