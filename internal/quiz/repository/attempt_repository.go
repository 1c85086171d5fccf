package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/quiz/models"
	"gorm.io/gorm"
)

// Order selects the created_at sort direction
type Order int

const (
	NewestFirst Order = iota
	OldestFirst
)

// ListOptions narrows an attempt listing
type ListOptions struct {
	Since time.Time // zero means no lower bound
	Order Order
}

// AttemptRepository is the Record Store for quiz_history
type AttemptRepository interface {
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	List(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]models.QuizAttempt, error)
	Page(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.QuizAttempt, int64, error)
	Get(ctx context.Context, userID, id uuid.UUID) (*models.QuizAttempt, error)
	Delete(ctx context.Context, userID, id uuid.UUID) error
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

type attemptRepository struct {
	db *gorm.DB
}

func NewAttemptRepository(db *gorm.DB) AttemptRepository {
	return &attemptRepository{db: db}
}

func (r *attemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	if attempt.ID == uuid.Nil {
		attempt.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(attempt).Error; err != nil {
		return errors.QueryFailed("Failed to save quiz attempt", err)
	}
	return nil
}

func (r *attemptRepository) List(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]models.QuizAttempt, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !opts.Since.IsZero() {
		q = q.Where("created_at >= ?", opts.Since.UTC())
	}
	if opts.Order == OldestFirst {
		q = q.Order("created_at ASC")
	} else {
		q = q.Order("created_at DESC")
	}

	attempts := []models.QuizAttempt{}
	if err := q.Find(&attempts).Error; err != nil {
		return nil, errors.QueryFailed("Failed to fetch quiz history", err)
	}
	return attempts, nil
}

func (r *attemptRepository) Page(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.QuizAttempt, int64, error) {
	var total int64
	base := r.db.WithContext(ctx).Model(&models.QuizAttempt{}).Where("user_id = ?", userID)
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, errors.QueryFailed("Failed to count quiz history", err)
	}

	attempts := []models.QuizAttempt{}
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&attempts).Error
	if err != nil {
		return nil, 0, errors.QueryFailed("Failed to fetch quiz history", err)
	}
	return attempts, total, nil
}

// Get returns the attempt only when it belongs to userID
func (r *attemptRepository) Get(ctx context.Context, userID, id uuid.UUID) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&attempt).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("quiz attempt")
		}
		return nil, errors.QueryFailed("Failed to fetch quiz attempt", err)
	}
	return &attempt, nil
}

func (r *attemptRepository) Delete(ctx context.Context, userID, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&models.QuizAttempt{})
	if result.Error != nil {
		return errors.QueryFailed("Failed to delete quiz attempt", result.Error)
	}
	if result.RowsAffected == 0 {
		return errors.NotFound("quiz attempt")
	}
	return nil
}

func (r *attemptRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	result := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.QuizAttempt{})
	if result.Error != nil {
		return 0, errors.QueryFailed("Failed to delete quiz history", result.Error)
	}
	return result.RowsAffected, nil
}
