package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/accounts/models"
	"github.com/jgirmay/inquizzitive/internal/accounts/repository"
	"github.com/jgirmay/inquizzitive/internal/accounts/services"
	analyticsservices "github.com/jgirmay/inquizzitive/internal/analytics/services"
	"github.com/jgirmay/inquizzitive/internal/common/database"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
	quizrepo "github.com/jgirmay/inquizzitive/internal/quiz/repository"
	"github.com/jgirmay/inquizzitive/pkg/config"
	applog "github.com/jgirmay/inquizzitive/pkg/logger"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type seedOptions struct {
	Users    int
	Days     int
	PerDay   int
	Password string
	Seed     int64
}

// categoryProfile is a learner's baseline and drift in one topic
type categoryProfile struct {
	name  string
	base  float64
	drift float64
}

var profiles = []categoryProfile{
	{"Mathematics", 55, 0.6},
	{"History", 82, 0.0},
	{"Biology", 68, -0.4},
	{"Geography", 90, 0.1},
	{"Chemistry", 45, 0.9},
	{"Literature", 74, -0.2},
}

func main() {
	var opts seedOptions
	flag.IntVar(&opts.Users, "users", 3, "Number of demo users to create")
	flag.IntVar(&opts.Days, "days", 45, "Days of quiz history per user")
	flag.IntVar(&opts.PerDay, "per-day", 2, "Maximum quizzes per active day")
	flag.StringVar(&opts.Password, "password", "demo-password", "Password for every demo user")
	flag.Int64Var(&opts.Seed, "seed", 42, "Random seed")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := applog.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer applog.Sync()
	zlog := applog.L()

	if !strings.EqualFold(cfg.Database.Type, "postgres") {
		os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755)
	}
	db, err := database.Open(cfg.Database.Type, cfg.DSN(), logger.Silent)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.Close(db)
	if err := database.Migrate(db, append(models.Models(), quizmodels.Models()...)...); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}

	zlog.Info("starting data seeding", zap.Int("users", opts.Users), zap.Int("days", opts.Days))
	stats, err := seed(context.Background(), db, opts, time.Now().UTC(), zlog)
	if err != nil {
		zlog.Fatal("seeding failed", zap.Error(err))
	}
	zlog.Info("data seeding complete",
		zap.Int("users", stats.users),
		zap.Int("attempts", stats.attempts),
		zap.Int("cache_rows", stats.cacheRows),
	)
}

type seedStats struct {
	users     int
	attempts  int
	cacheRows int
}

func seed(ctx context.Context, db *gorm.DB, opts seedOptions, now time.Time, log *zap.Logger) (seedStats, error) {
	var stats seedStats
	rng := rand.New(rand.NewSource(opts.Seed))

	attempts := quizrepo.NewAttemptRepository(db)
	cache := quizrepo.NewAnalyticsCacheRepository(db)
	accounts := services.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		attempts, cache, time.Hour, log,
	)
	analytics := analyticsservices.NewAnalyticsService(attempts, cache, nil, log, opts.Days).
		WithClock(func() time.Time { return now })

	for i := 1; i <= opts.Users; i++ {
		username := fmt.Sprintf("demo%d", i)
		user, err := accounts.GetByUsername(ctx, username)
		if err != nil {
			user, err = accounts.Register(ctx, &models.RegisterRequest{
				Username:    username,
				Email:       username + "@inquizzitive.local",
				Password:    opts.Password,
				DisplayName: fmt.Sprintf("Demo Learner %d", i),
			})
			if err != nil {
				return stats, fmt.Errorf("create %s: %w", username, err)
			}
		}
		stats.users++

		for _, a := range history(rng, user.ID, opts, now) {
			a := a
			if err := attempts.Create(ctx, &a); err != nil {
				return stats, err
			}
			stats.attempts++
		}

		if err := analytics.RefreshCache(ctx, user.ID); err != nil {
			return stats, fmt.Errorf("refresh %s: %w", username, err)
		}
		stats.cacheRows++
	}
	return stats, nil
}

// history builds a plausible run of attempts that skips some days
func history(rng *rand.Rand, userID uuid.UUID, opts seedOptions, now time.Time) []quizmodels.QuizAttempt {
	var out []quizmodels.QuizAttempt
	for day := opts.Days - 1; day >= 0; day-- {
		if rng.Float64() < 0.3 {
			continue
		}
		date := now.AddDate(0, 0, -day)
		for q := 0; q < 1+rng.Intn(max(opts.PerDay, 1)); q++ {
			p := profiles[rng.Intn(len(profiles))]
			difficulty := quizmodels.Difficulties[rng.Intn(len(quizmodels.Difficulties))]
			total := 5 + rng.Intn(16)

			elapsed := float64(opts.Days - day)
			expected := p.base + p.drift*elapsed - difficultyPenalty(difficulty) + rng.NormFloat64()*8
			expected = math.Max(0, math.Min(100, expected))
			correct := int(math.Round(expected / 100 * float64(total)))

			seconds := total * (15 + rng.Intn(60))
			out = append(out, quizmodels.QuizAttempt{
				UserID:          userID,
				Category:        p.name,
				Difficulty:      difficulty,
				TotalQuestions:  total,
				CorrectAnswers:  correct,
				ScorePercentage: float64(correct) / float64(total) * 100,
				TimeTaken:       &seconds,
				CreatedAt:       date.Add(-time.Duration(rng.Intn(8*60)) * time.Minute),
			})
		}
	}
	return out
}

func difficultyPenalty(difficulty string) float64 {
	switch difficulty {
	case quizmodels.DifficultyMedium:
		return 8
	case quizmodels.DifficultyHard:
		return 18
	default:
		return 0
	}
}
