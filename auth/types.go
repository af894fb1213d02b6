package auth

import (
	"context"
	"fmt"
	"time"

	"newsfeed/model"

	"github.com/google/uuid"
)

// Logger is the narrow logging surface the auth core depends on
type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
}

// Principal is the identity derived from a validated session token,
// re-checked against the credential store
type Principal struct {
	ID       uuid.UUID
	Username string
}

// Config holds auth options. Values are loaded once at startup and passed in
// explicitly; the core never reads global state at call time.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetContextKey() string
}

// TokenService issues and validates signed session tokens
type TokenService interface {
	Generate(identity Identity) (string, error)
	Validate(tokenString string) (AuthClaims, error)
}

// CredentialStore is the persistence boundary for user identity records.
// RotateRefreshToken must be a single atomic compare-and-swap so concurrent
// refresh calls for one user serialize on the stored value.
type CredentialStore interface {
	GetByUserID(ctx context.Context, id uuid.UUID) (*model.User, error)
	GetByUsername(ctx context.Context, username string) (*model.User, error)
	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error
}

// StatusStore persists account lifecycle transitions
type StatusStore interface {
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, changedAt time.Time) (*model.User, error)
}

// TokenPair carries the credentials returned by login and refresh
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] AUTH "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] AUTH "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] AUTH "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] AUTH "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
