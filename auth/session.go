package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"

	"newsfeed/model"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// refreshTokenBytes is the entropy of the opaque refresh token value
const refreshTokenBytes = 32

// SessionManager issues session credentials, rotates refresh tokens and
// re-checks account status on every authenticated request. It is the single
// writer of the refresh-token column; rotation is delegated to the store's
// compare-and-swap so two concurrent refresh calls for one user cannot both
// succeed.
type SessionManager struct {
	store           CredentialStore
	tokens          TokenService
	stateMachine    UserStateMachine
	logger          Logger
	newRefreshToken func() (string, error)
}

// SessionManagerOption customizes a SessionManager
type SessionManagerOption func(*SessionManager)

// WithSessionLogger overrides the default logger
func WithSessionLogger(logger Logger) SessionManagerOption {
	return func(sm *SessionManager) {
		if logger != nil {
			sm.logger = logger
		}
	}
}

// WithRefreshTokenSource overrides refresh token generation (useful for tests)
func WithRefreshTokenSource(source func() (string, error)) SessionManagerOption {
	return func(sm *SessionManager) {
		if source != nil {
			sm.newRefreshToken = source
		}
	}
}

// NewSessionManager returns a SessionManager backed by the given stores
func NewSessionManager(store CredentialStore, statuses StatusStore, tokens TokenService, opts ...SessionManagerOption) *SessionManager {
	sm := &SessionManager{
		store:           store,
		tokens:          tokens,
		logger:          defLogger{},
		newRefreshToken: randomRefreshToken,
	}
	sm.stateMachine = NewUserStateMachine(statuses, WithStateMachineLogger(sm.logger))

	for _, opt := range opts {
		if opt != nil {
			opt(sm)
		}
	}

	return sm
}

// Login verifies the credentials and returns a fresh token pair. The new
// refresh token overwrites any prior value, so at most one refresh token is
// live per user.
func (sm *SessionManager) Login(ctx context.Context, username, password string) (*TokenPair, error) {
	user, err := sm.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user during login")
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		sm.logger.Info("login rejected", "username", username)
		return nil, ErrInvalidCredentials
	}

	user.EnsureStatus()
	if user.Resigned() {
		return nil, ErrAccountResigned
	}

	refresh, err := sm.newRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate refresh token")
	}

	if err := sm.store.SetRefreshToken(ctx, user.ID, &refresh); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to persist refresh token")
	}

	access, err := sm.tokens.Generate(identityFromUser(user))
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

// Refresh rotates the stored refresh token and issues a new session token.
// The presented value must exactly match the stored one; the rotation itself
// is a compare-and-swap, so of two concurrent calls exactly one wins and the
// loser gets ErrInvalidRefreshToken.
func (sm *SessionManager) Refresh(ctx context.Context, username, presented string) (*TokenPair, error) {
	user, err := sm.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidRefreshToken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user during refresh")
	}

	user.EnsureStatus()
	if user.Resigned() {
		return nil, ErrAccountResigned
	}

	if user.RefreshToken == nil || !tokensEqual(*user.RefreshToken, presented) {
		sm.logger.Info("refresh rejected, presented token does not match", "username", username)
		return nil, ErrInvalidRefreshToken
	}

	next, err := sm.newRefreshToken()
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to generate refresh token")
	}

	if err := sm.store.RotateRefreshToken(ctx, user.ID, presented, next); err != nil {
		if errors.IsNotFound(err) || isStale(err) {
			// Lost the race against a concurrent rotation or logout.
			return nil, ErrInvalidRefreshToken
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to rotate refresh token")
	}

	access, err := sm.tokens.Generate(identityFromUser(user))
	if err != nil {
		return nil, err
	}

	return &TokenPair{AccessToken: access, RefreshToken: next}, nil
}

// Logout clears the stored refresh token. Already-issued session tokens stay
// valid until natural expiry.
func (sm *SessionManager) Logout(ctx context.Context, username string) error {
	user, err := sm.store.GetByUsername(ctx, username)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load user during logout")
	}

	if err := sm.store.SetRefreshToken(ctx, user.ID, nil); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear refresh token")
	}

	return nil
}

// Authenticate validates a raw session token and re-checks the account's
// current status against the credential store, so resignation takes effect
// before token expiry.
func (sm *SessionManager) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := sm.tokens.Validate(raw)
	if err != nil {
		return nil, err
	}

	id, err := uuid.Parse(claims.UserID())
	if err != nil {
		return nil, ErrTokenMalformed
	}

	user, err := sm.store.GetByUserID(ctx, id)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to load user during authentication")
	}

	user.EnsureStatus()
	if user.Resigned() {
		return nil, ErrAccountResigned
	}

	return &Principal{ID: user.ID, Username: user.Username}, nil
}

// Resign moves the account to its terminal status after confirming the
// current password, and invalidates the stored refresh token.
func (sm *SessionManager) Resign(ctx context.Context, principalID uuid.UUID, password string) error {
	user, err := sm.store.GetByUserID(ctx, principalID)
	if err != nil {
		if errors.IsNotFound(err) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load user during resignation")
	}

	user.EnsureStatus()
	if user.Resigned() {
		return ErrAccountResigned
	}

	if err := ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		return ErrInvalidCredentials
	}

	actor := ActorRef{ID: user.ID.String(), Type: "user"}
	if _, err := sm.stateMachine.Transition(ctx, actor, user, model.UserStatusResigned,
		WithTransitionReason("account resignation")); err != nil {
		return err
	}

	if err := sm.store.SetRefreshToken(ctx, user.ID, nil); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to clear refresh token")
	}

	return nil
}

func randomRefreshToken() (string, error) {
	buf := make([]byte, refreshTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}

func tokensEqual(stored, presented string) bool {
	return subtle.ConstantTimeCompare([]byte(stored), []byte(presented)) == 1
}

func isStale(err error) bool {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		return richErr.TextCode == TextCodeRefreshTokenStale
	}
	return false
}

type authIdentity struct {
	id       string
	username string
	email    string
}

func (a authIdentity) ID() string       { return a.id }
func (a authIdentity) Username() string { return a.username }
func (a authIdentity) Email() string    { return a.email }

var _ Identity = authIdentity{}

func identityFromUser(user *model.User) Identity {
	return authIdentity{
		id:       user.ID.String(),
		username: user.Username,
		email:    user.Email,
	}
}
