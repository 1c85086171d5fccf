package services

import (
	"sort"
	"time"

	"github.com/jgirmay/inquizzitive/internal/analytics/models"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
)

const dateLayout = "2006-01-02"

// DateKey is the calendar date of a stored timestamp. Every component
// that groups by day uses this.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

type dayBucket struct {
	scores    []float64
	questions int
	correct   int
}

// BuildChartData buckets attempts by calendar date and by category.
// Series come out ascending by date.
func BuildChartData(attempts []quizmodels.QuizAttempt, days int) *models.ChartData {
	daily := map[string]*dayBucket{}
	byCategory := map[string]map[string][]float64{}

	for _, a := range attempts {
		key := DateKey(a.CreatedAt)

		b, ok := daily[key]
		if !ok {
			b = &dayBucket{}
			daily[key] = b
		}
		b.scores = append(b.scores, a.ScorePercentage)
		b.questions += a.TotalQuestions
		b.correct += a.CorrectAnswers

		if byCategory[a.Category] == nil {
			byCategory[a.Category] = map[string][]float64{}
		}
		byCategory[a.Category][key] = append(byCategory[a.Category][key], a.ScorePercentage)
	}

	out := &models.ChartData{
		Days:           days,
		Daily:          make([]models.DailyPoint, 0, len(daily)),
		CategoryTrends: make(map[string][]models.CategoryPoint, len(byCategory)),
	}

	for _, key := range sortedKeys(daily) {
		b := daily[key]
		out.Daily = append(out.Daily, models.DailyPoint{
			Date:         key,
			AverageScore: round1(mean(b.scores)),
			Accuracy:     round1(accuracy(b.correct, b.questions)),
			QuizCount:    len(b.scores),
		})
	}

	for category, dates := range byCategory {
		points := make([]models.CategoryPoint, 0, len(dates))
		for _, key := range sortedKeys(dates) {
			points = append(points, models.CategoryPoint{
				Date:         key,
				AverageScore: round1(mean(dates[key])),
				QuizCount:    len(dates[key]),
			})
		}
		out.CategoryTrends[category] = points
	}

	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
