package main

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/accounts/models"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seedNow = time.Date(2024, 4, 1, 20, 0, 0, 0, time.UTC)

func TestHistory_WithinBounds(t *testing.T) {
	opts := seedOptions{Days: 30, PerDay: 3, Seed: 7}
	attempts := history(rand.New(rand.NewSource(opts.Seed)), uuid.New(), opts, seedNow)
	require.NotEmpty(t, attempts)

	for _, a := range attempts {
		assert.GreaterOrEqual(t, a.CorrectAnswers, 0)
		assert.LessOrEqual(t, a.CorrectAnswers, a.TotalQuestions)
		assert.GreaterOrEqual(t, a.TotalQuestions, 5)
		assert.Contains(t, quizmodels.Difficulties, a.Difficulty)
		assert.False(t, a.CreatedAt.After(seedNow))
		assert.True(t, a.CreatedAt.After(seedNow.AddDate(0, 0, -31)))
	}
}

func TestSeed_Idempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(append(models.Models(), quizmodels.Models()...)...))

	opts := seedOptions{Users: 2, Days: 10, PerDay: 2, Password: "demo-password", Seed: 1}
	stats, err := seed(context.Background(), db, opts, seedNow, zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.users)
	assert.Equal(t, 2, stats.cacheRows)

	_, err = seed(context.Background(), db, opts, seedNow, zap.NewNop())
	require.NoError(t, err, "existing demo users are reused")

	var users, cacheRows int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&quizmodels.UserAnalytics{}).Count(&cacheRows).Error)
	assert.Equal(t, int64(2), users)
	assert.Equal(t, int64(2), cacheRows, "one row per user per day")
}
