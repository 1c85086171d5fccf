package services

import (
	"fmt"
	"sort"
	"time"

	"github.com/jgirmay/inquizzitive/internal/analytics/models"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
)

const (
	day = 24 * time.Hour

	slowPace = 60.0
	fastPace = 20.0
)

// Pacing suggestions
const (
	SuggestSpeedUp  = "Try to speed up: you spend over a minute per question"
	SuggestReadSlow = "You're fast, read carefully: you answer in under 20 seconds per question"
	SuggestGoodPace = "Good pace: keep it up"
)

// ActivityDates returns the distinct calendar dates with at least one
// attempt, most-recent-first.
func ActivityDates(attempts []quizmodels.QuizAttempt) []time.Time {
	seen := map[string]bool{}
	dates := []time.Time{}
	for _, a := range attempts {
		key := DateKey(a.CreatedAt)
		if seen[key] {
			continue
		}
		seen[key] = true
		dates = append(dates, startOfDay(a.CreatedAt))
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}

// LongestStreak is the longest run of consecutive calendar dates.
// dates must be distinct and most-recent-first.
func LongestStreak(dates []time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	longest, running := 1, 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) == day {
			running++
		} else {
			running = 1
		}
		if running > longest {
			longest = running
		}
	}
	return longest
}

// CurrentStreak counts the run ending at the latest activity, but only when
// that activity was today or yesterday relative to now.
func CurrentStreak(dates []time.Time, now time.Time) int {
	if len(dates) == 0 {
		return 0
	}
	if startOfDay(now).Sub(dates[0]) > day {
		return 0
	}
	streak := 1
	for i := 1; i < len(dates); i++ {
		if dates[i-1].Sub(dates[i]) != day {
			break
		}
		streak++
	}
	return streak
}

// AnalyzeTime returns the question-weighted seconds per question over timed
// attempts, or nil when no attempt recorded a duration.
func AnalyzeTime(attempts []quizmodels.QuizAttempt) *models.TimeAnalysis {
	seconds, questions, timed := 0, 0, 0
	for _, a := range attempts {
		if a.TimeTaken == nil || a.TotalQuestions == 0 {
			continue
		}
		seconds += *a.TimeTaken
		questions += a.TotalQuestions
		timed++
	}
	if timed == 0 {
		return nil
	}

	perQuestion := float64(seconds) / float64(questions)
	return &models.TimeAnalysis{
		AverageSecondsPerQuestion: round1(perQuestion),
		AttemptsTimed:             timed,
		Suggestion:                paceSuggestion(perQuestion),
	}
}

func paceSuggestion(secondsPerQuestion float64) string {
	switch {
	case secondsPerQuestion > slowPace:
		return SuggestSpeedUp
	case secondsPerQuestion < fastPace:
		return SuggestReadSlow
	default:
		return SuggestGoodPace
	}
}

// BuildInsights assembles most-improved, streak and pacing insights
func BuildInsights(agg *Aggregation, attempts []quizmodels.QuizAttempt, now time.Time) []models.Insight {
	insights := []models.Insight{}

	best, bestRate := "", 0.0
	for _, category := range agg.Categories {
		if rate := agg.CategoryStats[category].ImprovementRate; rate > bestRate {
			best, bestRate = category, rate
		}
	}
	if best != "" {
		insights = append(insights, models.Insight{
			Type:        models.InsightMostImproved,
			Title:       "Most improved category",
			Description: fmt.Sprintf("%s is up %.1f points across your recent attempts", best, bestRate),
			Value:       map[string]interface{}{"category": best, "improvementRate": round1(bestRate)},
		})
	}

	dates := ActivityDates(attempts)
	if longest := LongestStreak(dates); longest > 0 {
		current := CurrentStreak(dates, now)
		insights = append(insights, models.Insight{
			Type:        models.InsightStreak,
			Title:       "Practice streak",
			Description: fmt.Sprintf("Longest streak: %d day(s). Current streak: %d day(s).", longest, current),
			Value:       map[string]int{"longest": longest, "current": current},
		})
	}

	if t := AnalyzeTime(attempts); t != nil {
		insights = append(insights, models.Insight{
			Type:        models.InsightTime,
			Title:       "Time per question",
			Description: fmt.Sprintf("%.1fs per question. %s", t.AverageSecondsPerQuestion, t.Suggestion),
			Value:       t,
		})
	}

	return insights
}

func startOfDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}
