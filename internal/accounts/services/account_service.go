package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/accounts/models"
	"github.com/jgirmay/inquizzitive/internal/accounts/repository"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
	"github.com/jgirmay/inquizzitive/internal/common/validation"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	msgInvalidCredentials = "invalid username or password"
	sessionTokenBytes     = 32
)

// HistoryPurger removes a user's quiz attempts
type HistoryPurger interface {
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) (int64, error)
}

// CachePurger removes a user's cached analytics
type CachePurger interface {
	DeleteAllForUser(ctx context.Context, userID uuid.UUID) error
}

type AccountService struct {
	users      repository.UserRepository
	sessions   repository.SessionRepository
	history    HistoryPurger
	cache      CachePurger
	sessionTTL time.Duration
	bcryptCost int
	log        *zap.Logger
	now        func() time.Time
}

func NewAccountService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	history HistoryPurger,
	cache CachePurger,
	sessionTTL time.Duration,
	log *zap.Logger,
) *AccountService {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccountService{
		users:      users,
		sessions:   sessions,
		history:    history,
		cache:      cache,
		sessionTTL: sessionTTL,
		bcryptCost: bcrypt.DefaultCost,
		log:        log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source
func (s *AccountService) WithClock(now func() time.Time) *AccountService {
	s.now = now
	return s
}

// WithBcryptCost lowers hashing cost for tests and seeding
func (s *AccountService) WithBcryptCost(cost int) *AccountService {
	s.bcryptCost = cost
	return s
}

func (s *AccountService) Register(ctx context.Context, req *models.RegisterRequest) (*models.User, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, errors.Internal("failed to hash password", err.Error())
	}

	user := &models.User{
		ID:          uuid.New(),
		Username:    req.Username,
		Email:       strings.ToLower(req.Email),
		Password:    string(hash),
		DisplayName: req.DisplayName,
	}
	if user.DisplayName == "" {
		user.DisplayName = req.Username
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()), zap.String("username", user.Username))
	return user, nil
}

// Login verifies credentials and opens a session
func (s *AccountService) Login(ctx context.Context, req *models.LoginRequest) (*models.LoginResponse, error) {
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByUsername(ctx, req.Username)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			s.log.Info("login attempt for unknown user", zap.String("username", req.Username))
			return nil, errors.Unauthorized(msgInvalidCredentials)
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
		s.log.Info("failed password verification", zap.String("username", user.Username))
		return nil, errors.Unauthorized(msgInvalidCredentials)
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, errors.Internal("failed to create session", err.Error())
	}

	now := s.now()
	session := &models.Session{
		UserID:       user.ID,
		SessionToken: token,
		ExpiresAt:    now.Add(s.sessionTTL),
		LastActivity: now,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	if err := s.users.TouchLogin(ctx, user.ID, now); err != nil {
		s.log.Warn("failed to record last login", zap.String("user_id", user.ID.String()), zap.Error(err))
	} else {
		user.LastLogin = &now
	}

	return &models.LoginResponse{Token: token, ExpiresAt: session.ExpiresAt, User: *user}, nil
}

func (s *AccountService) Logout(ctx context.Context, token string) error {
	if token == "" {
		return errors.NotAuthenticated()
	}
	return s.sessions.DeleteByToken(ctx, token)
}

// ResolveSession returns the owner of a live session token
func (s *AccountService) ResolveSession(ctx context.Context, token string) (uuid.UUID, error) {
	session, err := s.sessions.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return uuid.Nil, errors.Unauthorized("invalid or expired session")
		}
		return uuid.Nil, err
	}

	now := s.now()
	if !now.Before(session.ExpiresAt) {
		if err := s.sessions.DeleteByToken(ctx, token); err != nil {
			s.log.Warn("failed to remove expired session", zap.Error(err))
		}
		return uuid.Nil, errors.Unauthorized("invalid or expired session")
	}

	if err := s.sessions.Touch(ctx, session.ID, now); err != nil {
		s.log.Debug("failed to touch session", zap.Error(err))
	}
	return session.UserID, nil
}

func (s *AccountService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}
	return s.users.GetByID(ctx, userID)
}

func (s *AccountService) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.users.GetByUsername(ctx, username)
}

func (s *AccountService) List(ctx context.Context) ([]models.User, error) {
	return s.users.List(ctx)
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID uuid.UUID, req *models.UpdateProfileRequest) (*models.User, error) {
	if userID == uuid.Nil {
		return nil, errors.NotAuthenticated()
	}
	if err := validation.Check(req); err != nil {
		return nil, err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Email != nil {
		user.Email = strings.ToLower(*req.Email)
	}
	if req.DisplayName != nil {
		user.DisplayName = *req.DisplayName
	}
	if err := s.users.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// ChangePassword checks the current password, stores the new one and
// ends every open session.
func (s *AccountService) ChangePassword(ctx context.Context, userID uuid.UUID, req *models.ChangePasswordRequest) error {
	if userID == uuid.Nil {
		return errors.NotAuthenticated()
	}
	if err := validation.Check(req); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)) != nil {
		return errors.Unauthorized("current password is incorrect")
	}
	return s.SetPassword(ctx, user, req.NewPassword)
}

// SetPassword replaces the password without checking the old one
func (s *AccountService) SetPassword(ctx context.Context, user *models.User, password string) error {
	if err := validation.ValidateStringRange(password, 8, 72); err != nil {
		return errors.Validation("invalid password", err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return errors.Internal("failed to hash password", err.Error())
	}
	user.Password = string(hash)
	if err := s.users.Update(ctx, user); err != nil {
		return err
	}
	return s.sessions.DeleteForUser(ctx, user.ID)
}

// Delete removes the account with its history, cached analytics and sessions
func (s *AccountService) Delete(ctx context.Context, userID uuid.UUID) error {
	if userID == uuid.Nil {
		return errors.NotAuthenticated()
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return err
	}

	removed := int64(0)
	if s.history != nil {
		n, err := s.history.DeleteAllForUser(ctx, userID)
		if err != nil {
			return err
		}
		removed = n
	}
	if s.cache != nil {
		if err := s.cache.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
	}
	if err := s.sessions.DeleteForUser(ctx, userID); err != nil {
		return err
	}
	if err := s.users.Delete(ctx, userID); err != nil {
		return err
	}

	s.log.Info("user deleted", zap.String("user_id", userID.String()), zap.Int64("attempts_removed", removed))
	return nil
}

// PurgeExpiredSessions drops sessions past their expiry
func (s *AccountService) PurgeExpiredSessions(ctx context.Context) (int64, error) {
	return s.sessions.DeleteExpired(ctx, s.now())
}

func newSessionToken() (string, error) {
	b := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
