package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jgirmay/inquizzitive/internal/common/errors"
)

const (
	ContextUserID = "user_id"
	SessionCookie = "session_id"
)

// SessionResolver maps an opaque session token to the owning user
type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (uuid.UUID, error)
}

// Authenticator resolves request credentials. Tokens shaped like a JWT are
// verified against the shared secret when one is configured; everything
// else is looked up as a session token.
type Authenticator struct {
	sessions  SessionResolver
	jwtSecret []byte
}

func NewAuthenticator(sessions SessionResolver, jwtSecret string) *Authenticator {
	a := &Authenticator{sessions: sessions}
	if jwtSecret != "" {
		a.jwtSecret = []byte(jwtSecret)
	}
	return a
}

// Authenticate returns the user behind token
func (a *Authenticator) Authenticate(ctx context.Context, token string) (uuid.UUID, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return uuid.Nil, errors.NotAuthenticated()
	}

	if a.jwtSecret != nil && strings.Count(token, ".") == 2 {
		return a.parseJWT(token)
	}

	if a.sessions == nil {
		return uuid.Nil, errors.NotAuthenticated()
	}
	return a.sessions.ResolveSession(ctx, token)
}

func (a *Authenticator) parseJWT(raw string) (uuid.UUID, error) {
	claims := jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return a.jwtSecret, nil
	}, jwt.WithExpirationRequired())
	if err != nil {
		return uuid.Nil, errors.Unauthorized("invalid or expired token")
	}

	id, err := uuid.Parse(claims.Subject)
	if err != nil || id == uuid.Nil {
		return uuid.Nil, errors.Unauthorized("token subject is not a user id")
	}
	return id, nil
}

// TokenFromRequest reads the session cookie, then the Authorization header.
func TokenFromRequest(c *gin.Context) string {
	if session, err := c.Cookie(SessionCookie); err == nil && session != "" {
		return session
	}

	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return header
}

// AuthRequired rejects requests without a resolvable identity
func AuthRequired(auth *Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := auth.Authenticate(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			JSONErrorResponse(c, err)
			c.Abort()
			return
		}

		c.Set(ContextUserID, userID)
		c.Next()
	}
}

// UserID returns the authenticated user, or uuid.Nil when there is none
func UserID(c *gin.Context) uuid.UUID {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return uuid.Nil
	}
	id, _ := v.(uuid.UUID)
	return id
}
