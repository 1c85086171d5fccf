package services

import (
	"math"

	"github.com/jgirmay/inquizzitive/internal/analytics/models"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
)

const (
	improvementWindow   = 3
	minConsistencyCount = 3
)

// Aggregation is the per-user statistics built from one history read.
type Aggregation struct {
	// Categories lists category names in first-seen order of the input.
	Categories      []string
	CategoryStats   map[string]*models.CategoryStat
	DifficultyStats map[string]*models.DifficultyStat
	// Points holds every attempt's (date, score) in input order.
	Points         []models.ScorePoint
	TotalAttempts  int
	TotalScore     float64
	TotalQuestions int
	TotalCorrect   int
}

// AverageScore is the mean score over all attempts, 0 when empty
func (a *Aggregation) AverageScore() float64 {
	if a.TotalAttempts == 0 {
		return 0
	}
	return a.TotalScore / float64(a.TotalAttempts)
}

// Accuracy is correct/questions as a percentage, 0 when no questions
func (a *Aggregation) Accuracy() float64 {
	return accuracy(a.TotalCorrect, a.TotalQuestions)
}

// Aggregate folds attempts, expected most-recent-first, into category and
// difficulty statistics in a single pass.
func Aggregate(attempts []quizmodels.QuizAttempt) *Aggregation {
	agg := &Aggregation{
		Categories:      []string{},
		CategoryStats:   make(map[string]*models.CategoryStat),
		DifficultyStats: make(map[string]*models.DifficultyStat),
		Points:          make([]models.ScorePoint, 0, len(attempts)),
	}

	for _, a := range attempts {
		score := a.ScorePercentage
		point := models.ScorePoint{Date: a.CreatedAt.UTC(), Score: score}

		agg.TotalAttempts++
		agg.TotalScore += score
		agg.TotalQuestions += a.TotalQuestions
		agg.TotalCorrect += a.CorrectAnswers
		agg.Points = append(agg.Points, point)

		stat, ok := agg.CategoryStats[a.Category]
		if !ok {
			stat = &models.CategoryStat{
				Trend:      []models.ScorePoint{},
				LastScore:  score,
				BestScore:  score,
				WorstScore: score,
			}
			agg.CategoryStats[a.Category] = stat
			agg.Categories = append(agg.Categories, a.Category)
		}
		stat.TotalAttempts++
		stat.TotalScore += score
		stat.TotalQuestions += a.TotalQuestions
		stat.TotalCorrect += a.CorrectAnswers
		stat.Trend = append(stat.Trend, point)
		stat.BestScore = math.Max(stat.BestScore, score)
		stat.WorstScore = math.Min(stat.WorstScore, score)

		diff, ok := agg.DifficultyStats[a.Difficulty]
		if !ok {
			diff = &models.DifficultyStat{}
			agg.DifficultyStats[a.Difficulty] = diff
		}
		diff.Count++
		diff.TotalScore += score
	}

	for _, stat := range agg.CategoryStats {
		scores := trendScores(stat.Trend)
		stat.AverageScore = stat.TotalScore / float64(stat.TotalAttempts)
		stat.Accuracy = accuracy(stat.TotalCorrect, stat.TotalQuestions)
		stat.ImprovementRate = improvementRate(scores)
		stat.Consistency = consistency(scores)
	}
	for _, diff := range agg.DifficultyStats {
		diff.AverageScore = diff.TotalScore / float64(diff.Count)
	}

	return agg
}

// improvementRate compares the newest three scores with the oldest three.
// scores must be most-recent-first.
func improvementRate(scores []float64) float64 {
	if len(scores) < improvementWindow {
		return 0
	}
	recent := mean(scores[:improvementWindow])
	oldest := mean(scores[len(scores)-improvementWindow:])
	return recent - oldest
}

// consistency maps score spread into [0,1]; fewer than three samples count as perfectly consistent.
func consistency(scores []float64) float64 {
	if len(scores) < minConsistencyCount {
		return 1.0
	}
	return math.Max(0, 1-stdDev(scores)/100)
}

func trendScores(points []models.ScorePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Score
	}
	return out
}

func accuracy(correct, questions int) float64 {
	if questions == 0 {
		return 0
	}
	return float64(correct) / float64(questions) * 100
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation
func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := mean(values)
	sum := 0.0
	for _, v := range values {
		sum += (v - m) * (v - m)
	}
	return math.Sqrt(sum / float64(len(values)))
}

// round1 rounds to one decimal place for display fields
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
