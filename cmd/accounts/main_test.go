package main

import (
	"context"
	"testing"
	"time"

	"github.com/jgirmay/inquizzitive/internal/accounts/models"
	"github.com/jgirmay/inquizzitive/internal/accounts/repository"
	"github.com/jgirmay/inquizzitive/internal/accounts/services"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newService(t *testing.T) *services.AccountService {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(models.Models()...))

	return services.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		nil, nil, time.Hour, zap.NewNop(),
	).WithBcryptCost(bcrypt.MinCost)
}

func TestRun_Commands(t *testing.T) {
	ctx := context.Background()
	svc := newService(t)

	require.NoError(t, run(ctx, svc, "create", []string{"-username", "turing", "-email", "alan@example.com", "-password", "enigma-1940"}))
	require.NoError(t, run(ctx, svc, "list", nil))

	require.NoError(t, run(ctx, svc, "passwd", []string{"-username", "turing", "-password", "bombe-1941"}))
	_, err := svc.Login(ctx, &models.LoginRequest{Username: "turing", Password: "bombe-1941"})
	require.NoError(t, err)

	assert.Error(t, run(ctx, svc, "passwd", []string{"-username", "turing", "-password", "short"}))
	require.NoError(t, run(ctx, svc, "purge-sessions", nil))

	require.NoError(t, run(ctx, svc, "delete", []string{"-username", "turing"}))
	_, err = svc.GetByUsername(ctx, "turing")
	assert.True(t, errors.Is(err, errors.CodeNotFound))

	assert.Error(t, run(ctx, svc, "frobnicate", nil))
	assert.Error(t, run(ctx, svc, "create", []string{"-username", "x"}))
}
