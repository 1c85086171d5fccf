package models

import "time"

// Trend labels
const (
	TrendNoData           = "no-data"
	TrendInsufficientData = "insufficient-data"
	TrendImprovingFast    = "improving-fast"
	TrendImproving        = "improving"
	TrendStable           = "stable"
	TrendDeclining        = "declining"
	TrendDecliningFast    = "declining-fast"
)

// Recommendation types
const (
	RecUrgent      = "urgent"
	RecImprovement = "improvement"
	RecPractice    = "practice"
	RecProgression = "progression"
	RecRecovery    = "recovery"
	RecConsistency = "consistency"
	RecMaintenance = "maintenance"
)

// Recommendation priorities
const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// Insight types
const (
	InsightMostImproved = "most-improved"
	InsightStreak       = "streak"
	InsightTime         = "time-per-question"
)

// ScorePoint is one (date, score) sample of a category trend
type ScorePoint struct {
	Date  time.Time `json:"date"`
	Score float64   `json:"score"`
}

// CategoryStat aggregates one user's attempts in a single category.
// Trend is most-recent-first.
type CategoryStat struct {
	TotalAttempts   int          `json:"totalAttempts"`
	TotalScore      float64      `json:"totalScore"`
	TotalQuestions  int          `json:"totalQuestions"`
	TotalCorrect    int          `json:"totalCorrect"`
	AverageScore    float64      `json:"averageScore"`
	Accuracy        float64      `json:"accuracy"`
	Trend           []ScorePoint `json:"trend"`
	LastScore       float64      `json:"lastScore"`
	BestScore       float64      `json:"bestScore"`
	WorstScore      float64      `json:"worstScore"`
	ImprovementRate float64      `json:"improvementRate"`
	Consistency     float64      `json:"consistency"`
}

type DifficultyStat struct {
	Count        int     `json:"count"`
	TotalScore   float64 `json:"totalScore"`
	AverageScore float64 `json:"averageScore"`
}

// WeakArea and Strength carry display values rounded to one decimal.
type WeakArea struct {
	Category        string   `json:"category"`
	AverageScore    float64  `json:"averageScore"`
	TotalAttempts   int      `json:"totalAttempts"`
	ImprovementRate float64  `json:"improvementRate"`
	Priority        float64  `json:"priority"`
	Issues          []string `json:"issues"`
}

type Strength struct {
	Category        string  `json:"category"`
	AverageScore    float64 `json:"averageScore"`
	TotalAttempts   int     `json:"totalAttempts"`
	ImprovementRate float64 `json:"improvementRate"`
	Consistency     float64 `json:"consistency"`
}

type Recommendation struct {
	Type                 string `json:"type"`
	Priority             string `json:"priority"`
	Category             string `json:"category,omitempty"`
	Title                string `json:"title"`
	Description          string `json:"description"`
	Action               string `json:"action"`
	Icon                 string `json:"icon"`
	EstimatedImprovement string `json:"estimatedImprovement"`
}

type OverallProgress struct {
	TotalQuizzes    int      `json:"totalQuizzes"`
	AverageScore    float64  `json:"averageScore"`
	Trend           string   `json:"trend"`
	ImprovementRate *float64 `json:"improvementRate"`
}

type Insight struct {
	Type        string      `json:"type"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	Value       interface{} `json:"value,omitempty"`
}

// TimeAnalysis summarizes pacing over attempts with a recorded duration
type TimeAnalysis struct {
	AverageSecondsPerQuestion float64 `json:"averageSecondsPerQuestion"`
	AttemptsTimed             int     `json:"attemptsTimed"`
	Suggestion                string  `json:"suggestion"`
}

// AnalysisResult is the full per-user analysis bundle
type AnalysisResult struct {
	WeakAreas       []WeakArea                 `json:"weakAreas"`
	Strengths       []Strength                 `json:"strengths"`
	Recommendations []Recommendation           `json:"recommendations"`
	OverallProgress *OverallProgress           `json:"overallProgress"`
	CategoryStats   map[string]*CategoryStat   `json:"categoryStats"`
	DifficultyStats map[string]*DifficultyStat `json:"difficultyStats"`
	Insights        []Insight                  `json:"insights"`
	Trend           string                     `json:"trend"`
	Message         string                     `json:"message,omitempty"`
	GeneratedAt     time.Time                  `json:"generatedAt"`
}

type DailyPoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"averageScore"`
	Accuracy     float64 `json:"accuracy"`
	QuizCount    int     `json:"quizCount"`
}

type CategoryPoint struct {
	Date         string  `json:"date"`
	AverageScore float64 `json:"averageScore"`
	QuizCount    int     `json:"quizCount"`
}

// ChartData holds the time series for dashboard charts
type ChartData struct {
	Days           int                        `json:"days"`
	Daily          []DailyPoint               `json:"daily"`
	CategoryTrends map[string][]CategoryPoint `json:"categoryTrends"`
}

// Summary is the compact dashboard header
type Summary struct {
	TotalQuizzes     int     `json:"totalQuizzes"`
	TotalQuestions   int     `json:"totalQuestions"`
	TotalCorrect     int     `json:"totalCorrect"`
	AverageScore     float64 `json:"averageScore"`
	Accuracy         float64 `json:"accuracy"`
	BestCategory     string  `json:"bestCategory,omitempty"`
	CategoriesPlayed int     `json:"categoriesPlayed"`
	CurrentStreak    int     `json:"currentStreak"`
	LongestStreak    int     `json:"longestStreak"`
	Trend            string  `json:"trend"`
}

// CachedAnalysis is the decoded user_analytics row
type CachedAnalysis struct {
	AnalysisDate    string           `json:"analysisDate"`
	WeakAreas       []WeakArea       `json:"weakAreas"`
	Strengths       []Strength       `json:"strengths"`
	Recommendations []Recommendation `json:"recommendations"`
	OverallProgress *OverallProgress `json:"overallProgress"`
	UpdatedAt       time.Time        `json:"updatedAt"`
}
