package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/analytics/models"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/metrics"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
	"github.com/jgirmay/inquizzitive/internal/quiz/repository"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

const noDataMessage = "No quiz history yet. Complete a quiz to see your analytics."

// AttemptReader is the read side of the Record Store
type AttemptReader interface {
	List(ctx context.Context, userID uuid.UUID, opts repository.ListOptions) ([]quizmodels.QuizAttempt, error)
}

// CacheStore persists analysis snapshots
type CacheStore interface {
	Upsert(ctx context.Context, row *quizmodels.UserAnalytics) error
	Latest(ctx context.Context, userID uuid.UUID) (*quizmodels.UserAnalytics, error)
}

// AnalyticsService runs the analysis pipeline over a user's history.
// It holds no per-user state; every call reads the Record Store afresh.
type AnalyticsService struct {
	attempts  AttemptReader
	cache     CacheStore
	metrics   *metrics.Metrics
	log       *zap.Logger
	chartDays int
	now       func() time.Time
}

func NewAnalyticsService(attempts AttemptReader, cache CacheStore, m *metrics.Metrics, log *zap.Logger, chartDays int) *AnalyticsService {
	if log == nil {
		log = zap.NewNop()
	}
	if chartDays < 1 {
		chartDays = 30
	}
	return &AnalyticsService{
		attempts:  attempts,
		cache:     cache,
		metrics:   m,
		log:       log,
		chartDays: chartDays,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source, for tests and backfills
func (s *AnalyticsService) WithClock(now func() time.Time) *AnalyticsService {
	s.now = now
	return s
}

// Analyze builds the full analysis for userID from its whole history
func (s *AnalyticsService) Analyze(ctx context.Context, userID uuid.UUID) (result *models.AnalysisResult, err error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}
	defer s.observe("analyze", time.Now(), &err)

	attempts, err := s.attempts.List(ctx, userID, repository.ListOptions{Order: repository.NewestFirst})
	if err != nil {
		s.log.Warn("analysis history read failed", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	return s.analyze(attempts), nil
}

func (s *AnalyticsService) analyze(attempts []quizmodels.QuizAttempt) *models.AnalysisResult {
	now := s.now()
	agg := Aggregate(attempts)

	if agg.TotalAttempts == 0 {
		return &models.AnalysisResult{
			WeakAreas:       []models.WeakArea{},
			Strengths:       []models.Strength{},
			Recommendations: []models.Recommendation{},
			OverallProgress: nil,
			CategoryStats:   agg.CategoryStats,
			DifficultyStats: agg.DifficultyStats,
			Insights:        []models.Insight{},
			Trend:           models.TrendNoData,
			Message:         noDataMessage,
			GeneratedAt:     now,
		}
	}

	weak, strong := Classify(agg)
	trend := EstimateTrend(agg.Points)

	oldestFirst := make([]float64, len(agg.Points))
	for i, p := range agg.Points {
		oldestFirst[len(agg.Points)-1-i] = p.Score
	}

	return &models.AnalysisResult{
		WeakAreas: weak,
		Strengths: strong,
		Recommendations: GenerateRecommendations(RecommendationInput{
			Aggregation: agg,
			WeakAreas:   weak,
			Strengths:   strong,
			Trend:       trend,
		}),
		OverallProgress: &models.OverallProgress{
			TotalQuizzes:    agg.TotalAttempts,
			AverageScore:    round1(agg.AverageScore()),
			Trend:           trend,
			ImprovementRate: OverallImprovementRate(oldestFirst),
		},
		CategoryStats:   agg.CategoryStats,
		DifficultyStats: agg.DifficultyStats,
		Insights:        BuildInsights(agg, attempts, now),
		Trend:           trend,
		GeneratedAt:     now,
	}
}

// ChartData returns daily and per-category series over the last days days.
// days <= 0 uses the configured default.
func (s *AnalyticsService) ChartData(ctx context.Context, userID uuid.UUID, days int) (data *models.ChartData, err error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}
	if days <= 0 {
		days = s.chartDays
	}
	defer s.observe("chart_data", time.Now(), &err)

	since := s.now().AddDate(0, 0, -days)
	attempts, err := s.attempts.List(ctx, userID, repository.ListOptions{Since: since, Order: repository.OldestFirst})
	if err != nil {
		return nil, err
	}
	return BuildChartData(attempts, days), nil
}

// Summary returns headline totals and streaks
func (s *AnalyticsService) Summary(ctx context.Context, userID uuid.UUID) (summary *models.Summary, err error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}
	defer s.observe("summary", time.Now(), &err)

	attempts, err := s.attempts.List(ctx, userID, repository.ListOptions{Order: repository.NewestFirst})
	if err != nil {
		return nil, err
	}

	agg := Aggregate(attempts)
	dates := ActivityDates(attempts)
	out := &models.Summary{
		TotalQuizzes:     agg.TotalAttempts,
		TotalQuestions:   agg.TotalQuestions,
		TotalCorrect:     agg.TotalCorrect,
		AverageScore:     round1(agg.AverageScore()),
		Accuracy:         round1(agg.Accuracy()),
		CategoriesPlayed: len(agg.Categories),
		LongestStreak:    LongestStreak(dates),
		CurrentStreak:    CurrentStreak(dates, s.now()),
		Trend:            models.TrendNoData,
	}
	if agg.TotalAttempts > 0 {
		out.Trend = EstimateTrend(agg.Points)
		bestAvg := -1.0
		for _, category := range agg.Categories {
			if avg := agg.CategoryStats[category].AverageScore; avg > bestAvg {
				out.BestCategory, bestAvg = category, avg
			}
		}
	}
	return out, nil
}

// RefreshCache recomputes the analysis and upserts today's cache row
func (s *AnalyticsService) RefreshCache(ctx context.Context, userID uuid.UUID) (err error) {
	defer func() { s.metrics.CacheRefresh(err) }()

	result, err := s.Analyze(ctx, userID)
	if err != nil {
		return err
	}

	row := &quizmodels.UserAnalytics{
		UserID:       userID,
		AnalysisDate: DateKey(result.GeneratedAt),
	}
	if row.WeakAreas, err = toJSON(result.WeakAreas); err != nil {
		return err
	}
	if row.Strengths, err = toJSON(result.Strengths); err != nil {
		return err
	}
	if row.Recommendations, err = toJSON(result.Recommendations); err != nil {
		return err
	}
	if row.OverallProgress, err = toJSON(result.OverallProgress); err != nil {
		return err
	}

	return s.cache.Upsert(ctx, row)
}

// CachedAnalysis returns the most recent cached snapshot
func (s *AnalyticsService) CachedAnalysis(ctx context.Context, userID uuid.UUID) (*models.CachedAnalysis, error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}

	row, err := s.cache.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	out := &models.CachedAnalysis{
		AnalysisDate: row.AnalysisDate,
		UpdatedAt:    row.UpdatedAt,
	}
	for _, field := range []struct {
		raw  datatypes.JSON
		dest interface{}
	}{
		{row.WeakAreas, &out.WeakAreas},
		{row.Strengths, &out.Strengths},
		{row.Recommendations, &out.Recommendations},
		{row.OverallProgress, &out.OverallProgress},
	} {
		if len(field.raw) == 0 {
			continue
		}
		if err := json.Unmarshal(field.raw, field.dest); err != nil {
			return nil, errors.Internal("failed to decode cached analytics", err.Error())
		}
	}
	return out, nil
}

func (s *AnalyticsService) observe(op string, start time.Time, err *error) {
	s.metrics.ObserveAnalysis(op, time.Since(start), *err)
}

func toJSON(v interface{}) (datatypes.JSON, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Internal("failed to encode analytics", err.Error())
	}
	return datatypes.JSON(b), nil
}
