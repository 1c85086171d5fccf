package services

import (
	"fmt"
	"sort"

	"github.com/jgirmay/inquizzitive/internal/analytics/models"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
)

const (
	maxWeakRecommendations = 3
	practiceTarget         = 20
)

var priorityRank = map[string]int{
	models.PriorityHigh:   0,
	models.PriorityMedium: 1,
	models.PriorityLow:    2,
}

// RecommendationInput is everything the rule list reads
type RecommendationInput struct {
	Aggregation *Aggregation
	WeakAreas   []models.WeakArea
	Strengths   []models.Strength
	Trend       string
}

// GenerateRecommendations applies the rule list in order, then stable-sorts
// by priority so equal priorities keep rule order.
func GenerateRecommendations(in RecommendationInput) []models.Recommendation {
	recs := []models.Recommendation{}
	agg := in.Aggregation

	for i, w := range in.WeakAreas {
		if i >= maxWeakRecommendations {
			break
		}
		avg := agg.CategoryStats[w.Category].AverageScore
		switch {
		case avg < 50:
			recs = append(recs, models.Recommendation{
				Type:                 models.RecUrgent,
				Priority:             models.PriorityHigh,
				Category:             w.Category,
				Title:                fmt.Sprintf("Build fundamentals in %s", w.Category),
				Description:          fmt.Sprintf("Your average in %s is %.1f%%. Start again from the basics before moving on.", w.Category, w.AverageScore),
				Action:               fmt.Sprintf("Take three Easy %s quizzes and review every explanation", w.Category),
				Icon:                 "🚨",
				EstimatedImprovement: "+20-30%",
			})
		case avg < 65:
			recs = append(recs, models.Recommendation{
				Type:                 models.RecImprovement,
				Priority:             models.PriorityMedium,
				Category:             w.Category,
				Title:                fmt.Sprintf("Strengthen your %s knowledge", w.Category),
				Description:          fmt.Sprintf("You are averaging %.1f%% in %s. Targeted practice will close the gap.", w.AverageScore, w.Category),
				Action:               fmt.Sprintf("Practice %s at your current difficulty until you pass 70%%", w.Category),
				Icon:                 "📚",
				EstimatedImprovement: "+10-15%",
			})
		}
	}

	if agg.TotalAttempts < practiceTarget {
		recs = append(recs, models.Recommendation{
			Type:                 models.RecPractice,
			Priority:             models.PriorityMedium,
			Title:                "Increase practice frequency",
			Description:          fmt.Sprintf("You have completed %d quizzes. More practice gives more reliable insights.", agg.TotalAttempts),
			Action:               "Aim for at least one quiz a day",
			Icon:                 "⏰",
			EstimatedImprovement: "+5-10%",
		})
	}

	easy, hasEasy := agg.DifficultyStats[quizmodels.DifficultyEasy]
	medium, hasMedium := agg.DifficultyStats[quizmodels.DifficultyMedium]
	if hasEasy && hasMedium && easy.AverageScore > 80 && medium.AverageScore < 60 {
		recs = append(recs, models.Recommendation{
			Type:                 models.RecProgression,
			Priority:             models.PriorityMedium,
			Title:                "Level up your difficulty",
			Description:          fmt.Sprintf("You score %.1f%% on Easy but %.1f%% on Medium. Bridge the gap with steady Medium practice.", round1(easy.AverageScore), round1(medium.AverageScore)),
			Action:               "Mix Medium quizzes into every session",
			Icon:                 "📈",
			EstimatedImprovement: "+10-20%",
		})
	}

	if IsDeclining(in.Trend) {
		recs = append(recs, models.Recommendation{
			Type:                 models.RecRecovery,
			Priority:             models.PriorityHigh,
			Title:                "Reverse the decline",
			Description:          "Your recent scores are lower than before. Revisit topics you used to do well in.",
			Action:               "Review your last five quizzes and retake the weakest one",
			Icon:                 "📉",
			EstimatedImprovement: "+10-15%",
		})
	}

	for _, category := range agg.Categories {
		stat := agg.CategoryStats[category]
		if stat.Consistency < inconsistentBelow {
			recs = append(recs, models.Recommendation{
				Type:                 models.RecConsistency,
				Priority:             models.PriorityMedium,
				Category:             category,
				Title:                fmt.Sprintf("Improve consistency in %s", category),
				Description:          fmt.Sprintf("Your %s scores swing a lot between attempts.", category),
				Action:               "Practice at the same difficulty until your scores settle",
				Icon:                 "🎯",
				EstimatedImprovement: "+5-15%",
			})
			break
		}
	}

	if len(in.Strengths) > 0 {
		top := in.Strengths[0]
		recs = append(recs, models.Recommendation{
			Type:                 models.RecMaintenance,
			Priority:             models.PriorityLow,
			Category:             top.Category,
			Title:                fmt.Sprintf("Maintain excellence in %s", top.Category),
			Description:          fmt.Sprintf("You average %.1f%% in %s. Keep it sharp.", top.AverageScore, top.Category),
			Action:               fmt.Sprintf("Try a Hard %s quiz each week", top.Category),
			Icon:                 "🏆",
			EstimatedImprovement: "Maintain 80%+",
		})
	}

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank[recs[i].Priority] < priorityRank[recs[j].Priority]
	})
	return recs
}
