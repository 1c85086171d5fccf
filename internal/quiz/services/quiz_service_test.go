package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/generator"
	"github.com/jgirmay/inquizzitive/internal/metrics"
	"github.com/jgirmay/inquizzitive/internal/quiz/models"
	"github.com/jgirmay/inquizzitive/internal/quiz/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type recordingDispatcher struct {
	mu    sync.Mutex
	users []uuid.UUID
}

func (d *recordingDispatcher) Dispatch(userID uuid.UUID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users = append(d.users, userID)
}

type stubGenerator struct {
	questions []models.Question
	err       error
	gotCount  int
}

func (g *stubGenerator) Generate(_ context.Context, _, _ string, count int) ([]models.Question, error) {
	g.gotCount = count
	return g.questions, g.err
}

var submitNow = time.Date(2024, 3, 5, 9, 30, 0, 0, time.UTC)

func setupService(t *testing.T, gen generator.Generator) (*QuizService, *recordingDispatcher, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.Models()...))

	dispatcher := &recordingDispatcher{}
	svc := NewQuizService(repository.NewAttemptRepository(db), gen, dispatcher, metrics.New(), zap.NewNop()).
		WithClock(func() time.Time { return submitNow })
	return svc, dispatcher, db
}

func validSubmit() *models.SubmitQuizRequest {
	return &models.SubmitQuizRequest{
		Category:       "Science",
		Difficulty:     models.DifficultyMedium,
		TotalQuestions: 8,
		CorrectAnswers: 6,
	}
}

func TestSubmitQuiz_Success(t *testing.T) {
	svc, dispatcher, db := setupService(t, nil)
	userID := uuid.New()

	attempt, err := svc.SubmitQuiz(context.Background(), userID, validSubmit())
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, attempt.ID)
	assert.Equal(t, 75.0, attempt.ScorePercentage)
	assert.Equal(t, submitNow, attempt.CreatedAt)

	var count int64
	require.NoError(t, db.Model(&models.QuizAttempt{}).Where("user_id = ?", userID).Count(&count).Error)
	assert.Equal(t, int64(1), count, "inserted exactly once")
	assert.Equal(t, []uuid.UUID{userID}, dispatcher.users)
}

func TestSubmitQuiz_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		user   uuid.UUID
		mutate func(r *models.SubmitQuizRequest)
		code   string
	}{
		{"no user", uuid.Nil, func(r *models.SubmitQuizRequest) {}, errors.CodeNotAuthenticated},
		{"missing category", uuid.New(), func(r *models.SubmitQuizRequest) { r.Category = "" }, errors.CodeValidation},
		{"unknown difficulty", uuid.New(), func(r *models.SubmitQuizRequest) { r.Difficulty = "Expert" }, errors.CodeValidation},
		{"zero questions", uuid.New(), func(r *models.SubmitQuizRequest) { r.TotalQuestions = 0 }, errors.CodeValidation},
		{"correct exceeds total", uuid.New(), func(r *models.SubmitQuizRequest) { r.CorrectAnswers = 9 }, errors.CodeValidation},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, dispatcher, db := setupService(t, nil)
			req := validSubmit()
			tc.mutate(req)

			_, err := svc.SubmitQuiz(context.Background(), tc.user, req)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.code), err.Error())
			assert.Empty(t, dispatcher.users)

			var count int64
			require.NoError(t, db.Model(&models.QuizAttempt{}).Count(&count).Error)
			assert.Zero(t, count)
		})
	}
}

func TestSubmitQuiz_StoreFailureSkipsRefresh(t *testing.T) {
	svc, dispatcher, db := setupService(t, nil)
	sqlDB, _ := db.DB()
	require.NoError(t, sqlDB.Close())

	_, err := svc.SubmitQuiz(context.Background(), uuid.New(), validSubmit())
	assert.True(t, errors.Is(err, errors.CodeQueryFailed))
	assert.Empty(t, dispatcher.users)
}

func TestHistory_PagesNewestFirst(t *testing.T) {
	svc, _, _ := setupService(t, nil)
	userID := uuid.New()

	for i := 0; i < 5; i++ {
		at := submitNow.Add(time.Duration(i) * time.Hour)
		svc.WithClock(func() time.Time { return at })
		_, err := svc.SubmitQuiz(context.Background(), userID, validSubmit())
		require.NoError(t, err)
	}

	page, err := svc.History(context.Background(), userID, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(5), page.Total)
	assert.Equal(t, int64(3), page.TotalPages)
	require.Len(t, page.Attempts, 2)
	assert.True(t, page.Attempts[0].CreatedAt.After(page.Attempts[1].CreatedAt))

	page, err = svc.History(context.Background(), userID, 3, 2)
	require.NoError(t, err)
	assert.Len(t, page.Attempts, 1)

	page, err = svc.History(context.Background(), userID, 0, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PageSize)
	assert.Len(t, page.Attempts, 5)
}

func TestAttempt_OwnerScoped(t *testing.T) {
	svc, dispatcher, _ := setupService(t, nil)
	owner, other := uuid.New(), uuid.New()

	attempt, err := svc.SubmitQuiz(context.Background(), owner, validSubmit())
	require.NoError(t, err)

	_, err = svc.GetAttempt(context.Background(), other, attempt.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
	assert.True(t, errors.Is(svc.DeleteAttempt(context.Background(), other, attempt.ID), errors.CodeNotFound))

	got, err := svc.GetAttempt(context.Background(), owner, attempt.ID)
	require.NoError(t, err)
	assert.Equal(t, "Science", got.Category)

	require.NoError(t, svc.DeleteAttempt(context.Background(), owner, attempt.ID))
	assert.Len(t, dispatcher.users, 2)

	_, err = svc.GetAttempt(context.Background(), owner, attempt.ID)
	assert.True(t, errors.Is(err, errors.CodeNotFound))
}

func TestGenerateQuestions(t *testing.T) {
	gen := &stubGenerator{questions: []models.Question{{Question: "2+2?", Options: []string{"3", "4", "5", "6"}, Answer: "4"}}}
	svc, _, _ := setupService(t, gen)

	resp, err := svc.GenerateQuestions(context.Background(), &models.GenerateQuestionsRequest{
		Category: "Math", Difficulty: models.DifficultyEasy, Count: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, gen.questions, resp.Questions)
	assert.Equal(t, 1, gen.gotCount)

	_, err = svc.GenerateQuestions(context.Background(), &models.GenerateQuestionsRequest{
		Category: "Math", Difficulty: models.DifficultyEasy, Count: 51,
	})
	assert.True(t, errors.Is(err, errors.CodeValidation))

	gen.err = &generator.GenerationError{Reason: "model returned no candidates"}
	_, err = svc.GenerateQuestions(context.Background(), &models.GenerateQuestionsRequest{
		Category: "Math", Difficulty: models.DifficultyHard, Count: 3,
	})
	require.True(t, errors.Is(err, errors.CodeUpstream))
	assert.Equal(t, "model returned no candidates", errors.From(err).Details)
}

func TestGenerateQuestions_NoGenerator(t *testing.T) {
	svc, _, _ := setupService(t, nil)
	_, err := svc.GenerateQuestions(context.Background(), &models.GenerateQuestionsRequest{
		Category: "Math", Difficulty: models.DifficultyEasy, Count: 2,
	})
	assert.True(t, errors.Is(err, errors.CodeUpstream))
}

func TestScorePercentage(t *testing.T) {
	assert.Equal(t, 0.0, ScorePercentage(0, 0))
	assert.Equal(t, 100.0, ScorePercentage(4, 4))
	assert.InDelta(t, 33.333, ScorePercentage(1, 3), 0.001)
}
