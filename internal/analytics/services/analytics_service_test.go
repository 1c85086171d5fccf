package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/analytics/models"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/metrics"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
	"github.com/jgirmay/inquizzitive/internal/quiz/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeAttempts struct {
	attempts []quizmodels.QuizAttempt
	err      error
	calls    int
	lastUser uuid.UUID
	lastOpts repository.ListOptions
}

func (f *fakeAttempts) List(_ context.Context, userID uuid.UUID, opts repository.ListOptions) ([]quizmodels.QuizAttempt, error) {
	f.calls++
	f.lastUser = userID
	f.lastOpts = opts
	if f.err != nil {
		return nil, f.err
	}
	return f.attempts, nil
}

type fakeCache struct {
	rows map[string]*quizmodels.UserAnalytics
	err  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{rows: map[string]*quizmodels.UserAnalytics{}}
}

func (f *fakeCache) Upsert(_ context.Context, row *quizmodels.UserAnalytics) error {
	if f.err != nil {
		return f.err
	}
	f.rows[row.UserID.String()+"/"+row.AnalysisDate] = row
	return nil
}

func (f *fakeCache) Latest(_ context.Context, userID uuid.UUID) (*quizmodels.UserAnalytics, error) {
	var latest *quizmodels.UserAnalytics
	for _, row := range f.rows {
		if row.UserID == userID && (latest == nil || row.AnalysisDate > latest.AnalysisDate) {
			latest = row
		}
	}
	if latest == nil {
		return nil, errors.NotFound("cached analytics")
	}
	return latest, nil
}

var fixedNow = time.Date(2024, 1, 10, 18, 0, 0, 0, time.UTC)

func newTestService(attempts *fakeAttempts, cache *fakeCache) *AnalyticsService {
	return NewAnalyticsService(attempts, cache, metrics.New(), zap.NewNop(), 30).
		WithClock(func() time.Time { return fixedNow })
}

func TestAnalyze_RequiresUser(t *testing.T) {
	store := &fakeAttempts{}
	svc := newTestService(store, newFakeCache())

	_, err := svc.Analyze(context.Background(), uuid.Nil)
	require.Error(t, err)
	assert.Equal(t, "User not authenticated", errors.From(err).Message)
	assert.Equal(t, 0, store.calls, "no query without an identity")

	_, err = svc.ChartData(context.Background(), uuid.Nil, 7)
	assert.True(t, errors.Is(err, errors.CodeNotAuthenticated))
	_, err = svc.Summary(context.Background(), uuid.Nil)
	assert.True(t, errors.Is(err, errors.CodeNotAuthenticated))
	_, err = svc.CachedAnalysis(context.Background(), uuid.Nil)
	assert.True(t, errors.Is(err, errors.CodeNotAuthenticated))
	assert.Equal(t, 0, store.calls)
}

func TestAnalyze_QueryFailurePropagates(t *testing.T) {
	store := &fakeAttempts{err: errors.QueryFailed("Failed to fetch quiz history", nil)}
	svc := newTestService(store, newFakeCache())

	result, err := svc.Analyze(context.Background(), uuid.New())
	assert.Nil(t, result)
	require.Error(t, err)
	assert.Equal(t, errors.CodeQueryFailed, errors.From(err).Code)
	assert.Equal(t, 1, store.calls, "failures are not retried")
}

func TestAnalyze_EmptyHistory(t *testing.T) {
	svc := newTestService(&fakeAttempts{}, newFakeCache())

	result, err := svc.Analyze(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, result.WeakAreas)
	assert.Empty(t, result.WeakAreas)
	assert.Empty(t, result.Strengths)
	assert.Empty(t, result.Recommendations)
	assert.Empty(t, result.Insights)
	assert.Nil(t, result.OverallProgress)
	assert.Equal(t, models.TrendNoData, result.Trend)
	assert.NotEmpty(t, result.Message)
}

func TestAnalyze_DecliningHistory(t *testing.T) {
	attempts := series("Math", quizmodels.DifficultyEasy, fixedNow, 40, 40, 40, 40, 40, 80, 80, 80, 80, 80)
	store := &fakeAttempts{attempts: attempts}
	userID := uuid.New()
	svc := newTestService(store, newFakeCache())

	result, err := svc.Analyze(context.Background(), userID)
	require.NoError(t, err)

	assert.Equal(t, userID, store.lastUser)
	assert.Equal(t, repository.NewestFirst, store.lastOpts.Order)
	assert.True(t, store.lastOpts.Since.IsZero(), "weakness analysis reads full history")

	assert.Equal(t, models.TrendDecliningFast, result.Trend)
	require.NotNil(t, result.OverallProgress)
	assert.Equal(t, 10, result.OverallProgress.TotalQuizzes)
	assert.Equal(t, 60.0, result.OverallProgress.AverageScore)
	require.NotNil(t, result.OverallProgress.ImprovementRate)
	assert.Equal(t, -800.0, *result.OverallProgress.ImprovementRate)

	require.Len(t, result.WeakAreas, 1)
	assert.Equal(t, []string{IssueNeedsImprovement, IssueDeclining}, result.WeakAreas[0].Issues)
	assert.Equal(t, 65.0, result.WeakAreas[0].Priority)

	var recTypes []string
	for _, r := range result.Recommendations {
		recTypes = append(recTypes, r.Type)
	}
	assert.Equal(t, []string{models.RecRecovery, models.RecImprovement, models.RecPractice}, recTypes)

	require.Len(t, result.Insights, 1)
	assert.Equal(t, models.InsightStreak, result.Insights[0].Type)
	assert.Equal(t, fixedNow, result.GeneratedAt)
}

func TestChartData_Window(t *testing.T) {
	store := &fakeAttempts{}
	svc := newTestService(store, newFakeCache())

	data, err := svc.ChartData(context.Background(), uuid.New(), 7)
	require.NoError(t, err)
	assert.Equal(t, 7, data.Days)
	assert.Empty(t, data.Daily)
	assert.Equal(t, fixedNow.AddDate(0, 0, -7), store.lastOpts.Since)
	assert.Equal(t, repository.OldestFirst, store.lastOpts.Order)

	data, err = svc.ChartData(context.Background(), uuid.New(), 0)
	require.NoError(t, err)
	assert.Equal(t, 30, data.Days)
	assert.Equal(t, fixedNow.AddDate(0, 0, -30), store.lastOpts.Since)
}

func TestSummary(t *testing.T) {
	attempts := []quizmodels.QuizAttempt{
		attempt("History", quizmodels.DifficultyEasy, 90, fixedNow),
		attempt("Science", quizmodels.DifficultyEasy, 50, fixedNow.AddDate(0, 0, -1)),
		attempt("History", quizmodels.DifficultyEasy, 70, fixedNow.AddDate(0, 0, -3)),
	}
	svc := newTestService(&fakeAttempts{attempts: attempts}, newFakeCache())

	summary, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 3, summary.TotalQuizzes)
	assert.Equal(t, 30, summary.TotalQuestions)
	assert.Equal(t, 21, summary.TotalCorrect)
	assert.Equal(t, 70.0, summary.AverageScore)
	assert.Equal(t, 70.0, summary.Accuracy)
	assert.Equal(t, "History", summary.BestCategory)
	assert.Equal(t, 2, summary.CategoriesPlayed)
	assert.Equal(t, 2, summary.CurrentStreak)
	assert.Equal(t, 2, summary.LongestStreak)
	assert.Equal(t, models.TrendInsufficientData, summary.Trend)
}

func TestSummary_Empty(t *testing.T) {
	svc := newTestService(&fakeAttempts{}, newFakeCache())

	summary, err := svc.Summary(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Equal(t, 0, summary.TotalQuizzes)
	assert.Equal(t, models.TrendNoData, summary.Trend)
	assert.Empty(t, summary.BestCategory)
}

func TestRefreshCache_RoundTrip(t *testing.T) {
	userID := uuid.New()
	attempts := []quizmodels.QuizAttempt{
		attempt("Geography", quizmodels.DifficultyEasy, 40, fixedNow),
		attempt("Art", quizmodels.DifficultyEasy, 95, fixedNow.AddDate(0, 0, -1)),
	}
	cache := newFakeCache()
	svc := newTestService(&fakeAttempts{attempts: attempts}, cache)

	require.NoError(t, svc.RefreshCache(context.Background(), userID))
	require.Contains(t, cache.rows, userID.String()+"/2024-01-10")

	cached, err := svc.CachedAnalysis(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, "2024-01-10", cached.AnalysisDate)
	require.Len(t, cached.WeakAreas, 1)
	assert.Equal(t, "Geography", cached.WeakAreas[0].Category)
	require.Len(t, cached.Strengths, 1)
	assert.Equal(t, "Art", cached.Strengths[0].Category)
	assert.NotEmpty(t, cached.Recommendations)
	require.NotNil(t, cached.OverallProgress)
	assert.Equal(t, 2, cached.OverallProgress.TotalQuizzes)
}

func TestRefreshCache_Failures(t *testing.T) {
	cache := newFakeCache()
	cache.err = errors.QueryFailed("Failed to update analytics cache", nil)
	svc := newTestService(&fakeAttempts{}, cache)
	assert.Error(t, svc.RefreshCache(context.Background(), uuid.New()))

	svc = newTestService(&fakeAttempts{err: errors.QueryFailed("Failed to fetch quiz history", nil)}, newFakeCache())
	assert.Error(t, svc.RefreshCache(context.Background(), uuid.New()))
}

func TestCachedAnalysis_Missing(t *testing.T) {
	svc := newTestService(&fakeAttempts{}, newFakeCache())
	_, err := svc.CachedAnalysis(context.Background(), uuid.New())
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}
