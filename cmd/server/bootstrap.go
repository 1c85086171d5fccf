package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	accountmodels "github.com/jgirmay/inquizzitive/internal/accounts/models"
	accountrepo "github.com/jgirmay/inquizzitive/internal/accounts/repository"
	accountservices "github.com/jgirmay/inquizzitive/internal/accounts/services"
	analyticsservices "github.com/jgirmay/inquizzitive/internal/analytics/services"
	"github.com/jgirmay/inquizzitive/internal/common/database"
	"github.com/jgirmay/inquizzitive/internal/common/middleware"
	"github.com/jgirmay/inquizzitive/internal/generator"
	"github.com/jgirmay/inquizzitive/internal/jobs"
	"github.com/jgirmay/inquizzitive/internal/metrics"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
	quizrepo "github.com/jgirmay/inquizzitive/internal/quiz/repository"
	quizservices "github.com/jgirmay/inquizzitive/internal/quiz/services"
	"github.com/jgirmay/inquizzitive/internal/realtime"
	"github.com/jgirmay/inquizzitive/pkg/config"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// App holds the wired services behind the HTTP surface
type App struct {
	Config    *config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Metrics   *metrics.Metrics
	Hub       *realtime.Hub
	Auth      *middleware.Authenticator
	Accounts  *accountservices.AccountService
	Quizzes   *quizservices.QuizService
	Analytics *analyticsservices.AnalyticsService

	inProcess *jobs.InProcessDispatcher
	queue     *jobs.AsynqDispatcher
}

// openDatabase connects and migrates every table the server owns
func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	if !strings.EqualFold(cfg.Database.Type, "postgres") {
		if dir := filepath.Dir(cfg.Database.Path); dir != "" {
			if err := os.MkdirAll(dir, 0755); err != nil {
				return nil, fmt.Errorf("failed to create data directory: %w", err)
			}
		}
	}

	db, err := database.Open(cfg.Database.Type, cfg.DSN(), database.LogLevelFor(cfg.Server.Env))
	if err != nil {
		return nil, err
	}

	tables := append(accountmodels.Models(), quizmodels.Models()...)
	if err := database.Migrate(db, tables...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return db, nil
}

// NewApp wires repositories, services and the refresh pipeline
func NewApp(cfg *config.Config, db *gorm.DB, log *zap.Logger, m *metrics.Metrics) (*App, error) {
	attempts := quizrepo.NewAttemptRepository(db)
	cache := quizrepo.NewAnalyticsCacheRepository(db)

	app := &App{
		Config:  cfg,
		DB:      db,
		Log:     log,
		Metrics: m,
		Hub:     realtime.NewHub(m, log.Named("realtime")),
	}

	app.Analytics = analyticsservices.NewAnalyticsService(attempts, cache, m, log.Named("analytics"), cfg.Analytics.ChartDays)
	refresh := jobs.NewRefreshFunc(app.Analytics, app.Hub)

	var d quizservices.Dispatcher
	if cfg.Jobs.RedisURL != "" {
		queue, err := jobs.NewAsynqDispatcher(cfg.Jobs.RedisURL, cfg.Jobs.Concurrency, refresh, log.Named("jobs"))
		if err != nil {
			return nil, err
		}
		app.queue = queue
		d = queue
	} else {
		app.inProcess = jobs.NewInProcessDispatcher(refresh, log.Named("jobs"))
		d = app.inProcess
	}

	gen := generator.NewGeminiClient(cfg.Generator.BaseURL, cfg.Generator.APIKey, cfg.Generator.Model, cfg.Generator.Timeout)
	app.Quizzes = quizservices.NewQuizService(attempts, gen, d, m, log.Named("quiz"))

	app.Accounts = accountservices.NewAccountService(
		accountrepo.NewUserRepository(db),
		accountrepo.NewSessionRepository(db),
		attempts,
		cache,
		cfg.Session.TTL,
		log.Named("accounts"),
	)
	app.Auth = middleware.NewAuthenticator(app.Accounts, cfg.Session.JWTSecret)

	return app, nil
}

// StartWorkers launches the queue worker when Redis is configured
func (a *App) StartWorkers() error {
	if a.queue == nil {
		return nil
	}
	return a.queue.Start()
}

// Shutdown drains background refreshes and closes live connections
func (a *App) Shutdown() {
	if a.queue != nil {
		a.queue.Stop()
	}
	if a.inProcess != nil {
		a.inProcess.Wait()
	}
	a.Hub.Close()
}

// logConfiguration logs the effective configuration without secrets
func logConfiguration(cfg *config.Config, log *zap.Logger) {
	log.Info("configuration loaded",
		zap.String("env", cfg.Server.Env),
		zap.String("addr", cfg.Addr()),
		zap.String("db_type", cfg.Database.Type),
		zap.String("dsn", maskDSN(cfg.DSN())),
		zap.Duration("session_ttl", cfg.Session.TTL),
		zap.Bool("jwt_enabled", cfg.Session.JWTSecret != ""),
		zap.String("generator_model", cfg.Generator.Model),
		zap.Bool("generator_configured", cfg.Generator.APIKey != ""),
		zap.Bool("job_queue", cfg.Jobs.RedisURL != ""),
		zap.Int("chart_days", cfg.Analytics.ChartDays),
	)
}

// maskDSN hides credentials in a connection string
func maskDSN(dsn string) string {
	if i := strings.Index(dsn, "password="); i >= 0 {
		end := strings.IndexByte(dsn[i:], ' ')
		if end < 0 {
			return dsn[:i] + "password=***"
		}
		return dsn[:i] + "password=***" + dsn[i+end:]
	}
	return dsn
}
