package services

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/common/database"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/common/validation"
	"github.com/jgirmay/inquizzitive/internal/generator"
	"github.com/jgirmay/inquizzitive/internal/metrics"
	"github.com/jgirmay/inquizzitive/internal/quiz/models"
	"github.com/jgirmay/inquizzitive/internal/quiz/repository"
	"go.uber.org/zap"
)

// Dispatcher schedules a background analytics refresh for a user.
// Implementations must return immediately and never report failure.
type Dispatcher interface {
	Dispatch(userID uuid.UUID)
}

type noopDispatcher struct{}

func (noopDispatcher) Dispatch(uuid.UUID) {}

type QuizService struct {
	attempts  repository.AttemptRepository
	generator generator.Generator
	refresh   Dispatcher
	metrics   *metrics.Metrics
	log       *zap.Logger
	now       func() time.Time
}

func NewQuizService(attempts repository.AttemptRepository, gen generator.Generator, refresh Dispatcher, m *metrics.Metrics, log *zap.Logger) *QuizService {
	if refresh == nil {
		refresh = noopDispatcher{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &QuizService{
		attempts:  attempts,
		generator: gen,
		refresh:   refresh,
		metrics:   m,
		log:       log,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

// SubmitQuiz records a finished quiz and schedules a cache refresh
func (s *QuizService) SubmitQuiz(ctx context.Context, userID uuid.UUID, req *models.SubmitQuizRequest) (*models.QuizAttempt, error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}
	if err := validation.Check(req); err != nil {
		return nil, err
	}
	if req.CorrectAnswers > req.TotalQuestions {
		return nil, errors.Validation("invalid request", "correct_answers cannot exceed total_questions")
	}

	attempt := &models.QuizAttempt{
		ID:              uuid.New(),
		UserID:          userID,
		Category:        req.Category,
		Difficulty:      req.Difficulty,
		TotalQuestions:  req.TotalQuestions,
		CorrectAnswers:  req.CorrectAnswers,
		ScorePercentage: ScorePercentage(req.CorrectAnswers, req.TotalQuestions),
		TimeTaken:       req.TimeTaken,
		Questions:       req.Questions,
		CreatedAt:       s.now(),
	}
	if err := s.attempts.Create(ctx, attempt); err != nil {
		s.log.Error("failed to save quiz attempt", zap.String("user_id", userID.String()), zap.Error(err))
		return nil, err
	}

	s.metrics.QuizSubmitted(attempt.Difficulty)
	s.log.Info("quiz submitted",
		zap.String("user_id", userID.String()),
		zap.String("category", attempt.Category),
		zap.Float64("score", attempt.ScorePercentage),
	)

	s.refresh.Dispatch(userID)
	return attempt, nil
}

// History returns one page of the user's attempts, newest first
func (s *QuizService) History(ctx context.Context, userID uuid.UUID, page, pageSize int) (*models.HistoryPage, error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}

	page, pageSize, offset := database.NormalizePage(page, pageSize)
	attempts, total, err := s.attempts.Page(ctx, userID, pageSize, offset)
	if err != nil {
		return nil, err
	}

	result := database.PaginatedResult{Total: total, Page: page, PageSize: pageSize}
	result.Calculate()

	return &models.HistoryPage{
		Attempts:   attempts,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: result.TotalPages,
	}, nil
}

func (s *QuizService) GetAttempt(ctx context.Context, userID, id uuid.UUID) (*models.QuizAttempt, error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}
	return s.attempts.Get(ctx, userID, id)
}

// DeleteAttempt removes an attempt owned by userID and refreshes the cache
func (s *QuizService) DeleteAttempt(ctx context.Context, userID, id uuid.UUID) error {
	if userID == uuid.Nil {
		return errors.NotAuthenticated()
	}
	if err := s.attempts.Delete(ctx, userID, id); err != nil {
		return err
	}
	s.refresh.Dispatch(userID)
	return nil
}

// GenerateQuestions forwards a validated request to the question generator
func (s *QuizService) GenerateQuestions(ctx context.Context, req *models.GenerateQuestionsRequest) (*models.GenerateQuestionsResponse, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, errors.Upstream("question generator unavailable", "no generator configured")
	}

	questions, err := s.generator.Generate(ctx, req.Category, req.Difficulty, req.Count)
	s.metrics.QuestionsGenerated(err)
	if err != nil {
		s.log.Warn("question generation failed",
			zap.String("category", req.Category),
			zap.String("difficulty", req.Difficulty),
			zap.Error(err),
		)
		var genErr *generator.GenerationError
		if stderrors.As(err, &genErr) {
			return nil, errors.Upstream("Failed to generate questions", genErr.Reason)
		}
		return nil, errors.Upstream("Failed to generate questions", err.Error())
	}

	return &models.GenerateQuestionsResponse{Questions: questions}, nil
}

// ScorePercentage is 100*correct/total, 0 when total is 0
func ScorePercentage(correct, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(correct) / float64(total) * 100
}
