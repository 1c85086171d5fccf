package services

import (
	"math"
	"sort"

	"github.com/jgirmay/inquizzitive/internal/analytics/models"
)

const (
	weakThreshold   = 70.0
	strongThreshold = 80.0

	inconsistentBelow = 0.7
)

// Issue labels attached to weak areas
const (
	IssueVeryLowAccuracy  = "Very low accuracy"
	IssueBelowAverage     = "Below average performance"
	IssueNeedsImprovement = "Needs improvement"
	IssueDeclining        = "Declining performance"
	IssueStagnant         = "Stagnant progress"
	IssueInsufficient     = "Insufficient practice"
	IssueInconsistent     = "Inconsistent performance"
)

// Classify splits categories into weak (<70) and strong (>=80) buckets.
// Weak areas are ordered by descending priority, strengths by descending
// average. Categories in [70,80) land in neither.
func Classify(agg *Aggregation) ([]models.WeakArea, []models.Strength) {
	weak := []models.WeakArea{}
	strong := []models.Strength{}
	weakPriority := map[string]float64{}
	strongAvg := map[string]float64{}

	for _, category := range agg.Categories {
		stat := agg.CategoryStats[category]
		avg := stat.AverageScore

		switch {
		case avg < weakThreshold:
			p := weakPriorityScore(stat)
			weakPriority[category] = p
			weak = append(weak, models.WeakArea{
				Category:        category,
				AverageScore:    round1(avg),
				TotalAttempts:   stat.TotalAttempts,
				ImprovementRate: round1(stat.ImprovementRate),
				Priority:        round1(p),
				Issues:          weakIssues(stat),
			})
		case avg >= strongThreshold:
			strongAvg[category] = avg
			strong = append(strong, models.Strength{
				Category:        category,
				AverageScore:    round1(avg),
				TotalAttempts:   stat.TotalAttempts,
				ImprovementRate: round1(stat.ImprovementRate),
				Consistency:     stat.Consistency,
			})
		}
	}

	sort.SliceStable(weak, func(i, j int) bool {
		return weakPriority[weak[i].Category] > weakPriority[weak[j].Category]
	})
	sort.SliceStable(strong, func(i, j int) bool {
		return strongAvg[strong[i].Category] > strongAvg[strong[j].Category]
	})

	return weak, strong
}

func weakPriorityScore(stat *models.CategoryStat) float64 {
	p := (weakThreshold-stat.AverageScore)*2 + math.Min(float64(stat.TotalAttempts*5), 25)
	if stat.ImprovementRate < 0 {
		p += 20
	}
	return p
}

func weakIssues(stat *models.CategoryStat) []string {
	issues := []string{}

	switch {
	case stat.AverageScore < 50:
		issues = append(issues, IssueVeryLowAccuracy)
	case stat.AverageScore < 60:
		issues = append(issues, IssueBelowAverage)
	default:
		issues = append(issues, IssueNeedsImprovement)
	}

	switch {
	case stat.ImprovementRate < -5:
		issues = append(issues, IssueDeclining)
	case stat.ImprovementRate < 0:
		issues = append(issues, IssueStagnant)
	}

	if stat.TotalAttempts < 3 {
		issues = append(issues, IssueInsufficient)
	}
	if stat.Consistency < inconsistentBelow {
		issues = append(issues, IssueInconsistent)
	}
	return issues
}
