package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/jgirmay/inquizzitive/internal/accounts/models"
	"github.com/jgirmay/inquizzitive/internal/accounts/repository"
	"github.com/jgirmay/inquizzitive/internal/accounts/services"
	"github.com/jgirmay/inquizzitive/internal/common/database"
	quizmodels "github.com/jgirmay/inquizzitive/internal/quiz/models"
	quizrepo "github.com/jgirmay/inquizzitive/internal/quiz/repository"
	"github.com/jgirmay/inquizzitive/pkg/config"
	applog "github.com/jgirmay/inquizzitive/pkg/logger"
	"gorm.io/gorm/logger"
)

const usage = `usage: accounts <command> [flags]

commands:
  create  -username NAME -email EMAIL -password PASS [-display NAME]
  list
  delete  -username NAME
  passwd  -username NAME -password PASS
  purge-sessions
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := applog.Init(cfg.Server.Env); err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer applog.Sync()

	svc, closeDB, err := openService(cfg)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer closeDB()

	if err := run(context.Background(), svc, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openService(cfg *config.Config) (*services.AccountService, func(), error) {
	if !strings.EqualFold(cfg.Database.Type, "postgres") {
		os.MkdirAll(filepath.Dir(cfg.Database.Path), 0755)
	}
	db, err := database.Open(cfg.Database.Type, cfg.DSN(), logger.Silent)
	if err != nil {
		return nil, nil, err
	}
	tables := append(models.Models(), quizmodels.Models()...)
	if err := database.Migrate(db, tables...); err != nil {
		return nil, nil, err
	}

	svc := services.NewAccountService(
		repository.NewUserRepository(db),
		repository.NewSessionRepository(db),
		quizrepo.NewAttemptRepository(db),
		quizrepo.NewAnalyticsCacheRepository(db),
		cfg.Session.TTL,
		applog.L(),
	)
	return svc, func() { database.Close(db) }, nil
}

func run(ctx context.Context, svc *services.AccountService, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	username := fs.String("username", "", "account username")
	email := fs.String("email", "", "account email")
	password := fs.String("password", "", "account password")
	display := fs.String("display", "", "display name")
	if err := fs.Parse(args); err != nil {
		return err
	}

	switch cmd {
	case "create":
		user, err := svc.Register(ctx, &models.RegisterRequest{
			Username:    *username,
			Email:       *email,
			Password:    *password,
			DisplayName: *display,
		})
		if err != nil {
			return err
		}
		fmt.Printf("created %s (%s)\n", user.Username, user.ID)

	case "list":
		users, err := svc.List(ctx)
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tLAST LOGIN")
		for _, u := range users {
			last := "never"
			if u.LastLogin != nil {
				last = u.LastLogin.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", u.ID, u.Username, u.Email, last)
		}
		return w.Flush()

	case "delete":
		user, err := svc.GetByUsername(ctx, *username)
		if err != nil {
			return err
		}
		if err := svc.Delete(ctx, user.ID); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", user.Username)

	case "passwd":
		user, err := svc.GetByUsername(ctx, *username)
		if err != nil {
			return err
		}
		if err := svc.SetPassword(ctx, user, *password); err != nil {
			return err
		}
		fmt.Printf("password updated for %s\n", user.Username)

	case "purge-sessions":
		n, err := svc.PurgeExpiredSessions(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("removed %d expired sessions\n", n)

	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}
