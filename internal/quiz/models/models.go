package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

const (
	DifficultyEasy   = "Easy"
	DifficultyMedium = "Medium"
	DifficultyHard   = "Hard"
)

// Difficulties lists the accepted difficulty levels
var Difficulties = []string{DifficultyEasy, DifficultyMedium, DifficultyHard}

// QuizAttempt is one completed quiz session. Rows are written once and never updated.
type QuizAttempt struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;index:idx_quiz_history_user_created,priority:1" json:"user_id"`
	Category        string         `gorm:"size:100;not null;index" json:"category"`
	Difficulty      string         `gorm:"size:10;not null" json:"difficulty"`
	TotalQuestions  int            `gorm:"not null" json:"total_questions"`
	CorrectAnswers  int            `gorm:"not null" json:"correct_answers"`
	ScorePercentage float64        `gorm:"not null" json:"score_percentage"`
	TimeTaken       *int           `json:"time_taken,omitempty"`
	Questions       datatypes.JSON `json:"questions,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index:idx_quiz_history_user_created,priority:2" json:"created_at"`
}

func (QuizAttempt) TableName() string {
	return "quiz_history"
}

// UserAnalytics caches the latest analysis per user and day.
type UserAnalytics struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID          uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_user_analytics_user_date,priority:1" json:"user_id"`
	AnalysisDate    string         `gorm:"size:10;not null;uniqueIndex:idx_user_analytics_user_date,priority:2" json:"analysis_date"`
	WeakAreas       datatypes.JSON `json:"weak_areas"`
	Strengths       datatypes.JSON `json:"strengths"`
	Recommendations datatypes.JSON `json:"recommendations"`
	OverallProgress datatypes.JSON `json:"overall_progress"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

func (UserAnalytics) TableName() string {
	return "user_analytics"
}

// Question is one generated multiple-choice item
type Question struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation"`
}

// SubmitQuizRequest records a finished quiz
type SubmitQuizRequest struct {
	Category       string         `json:"category" validate:"required,max=100"`
	Difficulty     string         `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	TotalQuestions int            `json:"total_questions" validate:"required,min=1,max=100"`
	CorrectAnswers int            `json:"correct_answers" validate:"min=0"`
	TimeTaken      *int           `json:"time_taken,omitempty" validate:"omitempty,min=0"`
	Questions      datatypes.JSON `json:"questions,omitempty"`
}

type GenerateQuestionsRequest struct {
	Category   string `json:"category" validate:"required,max=100"`
	Difficulty string `json:"difficulty" validate:"required,oneof=Easy Medium Hard"`
	Count      int    `json:"count" validate:"required,min=1,max=50"`
}

type GenerateQuestionsResponse struct {
	Questions []Question `json:"questions"`
}

// HistoryPage is one page of a user's attempts, newest first
type HistoryPage struct {
	Attempts   []QuizAttempt `json:"attempts"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	PageSize   int           `json:"page_size"`
	TotalPages int64         `json:"total_pages"`
}

// Models lists the tables owned by this package for migration
func Models() []interface{} {
	return []interface{}{&QuizAttempt{}, &UserAnalytics{}}
}
