package repository

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/quiz/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// AnalyticsCacheRepository stores the user_analytics cache rows
type AnalyticsCacheRepository interface {
	Upsert(ctx context.Context, row *models.UserAnalytics) error
	Latest(ctx context.Context, userID uuid.UUID) (*models.UserAnalytics, error)
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type analyticsCacheRepository struct {
	db *gorm.DB
}

func NewAnalyticsCacheRepository(db *gorm.DB) AnalyticsCacheRepository {
	return &analyticsCacheRepository{db: db}
}

// Upsert writes the row keyed by (user_id, analysis_date); the last writer wins.
func (r *analyticsCacheRepository) Upsert(ctx context.Context, row *models.UserAnalytics) error {
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.UpdatedAt = time.Now().UTC()

	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "analysis_date"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"weak_areas", "strengths", "recommendations", "overall_progress", "updated_at",
		}),
	}).Create(row).Error
	if err != nil {
		return errors.QueryFailed("Failed to update analytics cache", err)
	}
	return nil
}

func (r *analyticsCacheRepository) Latest(ctx context.Context, userID uuid.UUID) (*models.UserAnalytics, error) {
	var row models.UserAnalytics
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("analysis_date DESC").
		First(&row).Error
	if err != nil {
		if stderrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NotFound("cached analytics")
		}
		return nil, errors.QueryFailed("Failed to fetch cached analytics", err)
	}
	return &row, nil
}

func (r *analyticsCacheRepository) DeleteAllForUser(ctx context.Context, userID uuid.UUID) error {
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.UserAnalytics{}).Error; err != nil {
		return errors.QueryFailed("Failed to delete cached analytics", err)
	}
	return nil
}
