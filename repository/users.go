package repository

import (
	"context"
	"strings"
	"time"

	"newsfeed/model"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const (
	// TextCodeDuplicateUsername marks a registration that collided with an
	// existing username.
	TextCodeDuplicateUsername = "USER_DUPLICATE_USERNAME"

	// TextCodeDuplicateEmail marks a registration whose email-derived id
	// collided with an existing account.
	TextCodeDuplicateEmail = "USER_DUPLICATE_EMAIL"

	// TextCodeRefreshTokenStale marks a compare-and-swap rotation that matched
	// no row. The session layer treats it as an invalid refresh token.
	TextCodeRefreshTokenStale = "AUTH_REFRESH_TOKEN_STALE"
)

// ErrDuplicateUsername is returned when registering a username that is taken.
var ErrDuplicateUsername = goerrors.New("username already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateUsername).
	WithCode(goerrors.CodeBadRequest)

// ErrDuplicateEmail is returned when registering an email that already has an
// account. The user id is derived from the email, so the collision surfaces
// on the primary key rather than a dedicated index.
var ErrDuplicateEmail = goerrors.New("an account with this email already exists", goerrors.CategoryConflict).
	WithTextCode(TextCodeDuplicateEmail).
	WithCode(goerrors.CodeBadRequest)

type Users interface {
	repository.Repository[*model.User]

	Register(ctx context.Context, user *model.User) (*model.User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *model.User) (*model.User, error)

	GetByUsername(ctx context.Context, username string) (*model.User, error)
	GetByUserID(ctx context.Context, id uuid.UUID) (*model.User, error)

	UpdateProfile(ctx context.Context, user *model.User) (*model.User, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, changedAt time.Time) (*model.User, error)

	SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error
	RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error
}

type users struct {
	repository.Repository[*model.User]
	db *bun.DB
}

var (
	_ Users                              = (*users)(nil)
	_ repository.Repository[*model.User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*model.User](db, repository.ModelHandlers[*model.User]{
		NewRecord: func() *model.User { return &model.User{} },
		GetID: func(u *model.User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *model.User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string { return "username" },
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *model.User) (*model.User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *model.User) (*model.User, error) {
	prepareUserDefaults(user)

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if dup := duplicateError(err, user); dup != nil {
			return nil, dup
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	record := &model.User{}
	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.username = ?", username).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"username": username,
				})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByUserID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	return a.Repository.GetByID(ctx, id.String())
}

func (a *users) UpdateProfile(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.Touch(now)

	return a.Repository.Update(ctx, user,
		repository.UpdateByID(user.ID.String()),
		repository.UpdateSkipZeroValues(),
	)
}

func (a *users) UpdateStatus(ctx context.Context, id uuid.UUID, status model.UserStatus, changedAt time.Time) (*model.User, error) {
	record := &model.User{
		ID:              id,
		Status:          status,
		StatusChangedAt: &changedAt,
	}

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

// SetRefreshToken overwrites the stored refresh token; nil clears it.
func (a *users) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string) error {
	res, err := a.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("refresh_token = ?", token).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

// RotateRefreshToken swaps the stored refresh token for next, but only when
// the stored value still equals current. A stale or already-rotated token
// matches no row and yields TextCodeRefreshTokenStale, so of two concurrent
// rotations exactly one wins.
func (a *users) RotateRefreshToken(ctx context.Context, id uuid.UUID, current, next string) error {
	res, err := a.db.NewUpdate().
		Model((*model.User)(nil)).
		Set("refresh_token = ?", next).
		Where("?TableAlias.id = ?", id.String()).
		Where("?TableAlias.refresh_token = ?", current).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return goerrors.New("refresh token was rotated concurrently", goerrors.CategoryConflict).
			WithTextCode(TextCodeRefreshTokenStale).
			WithCode(goerrors.CodeBadRequest).
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}

func prepareUserDefaults(record *model.User) {
	if record == nil {
		return
	}

	record.EnsureStatus()

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "unique violation")
}

// duplicateError maps a unique violation to its taxonomy kind, or returns nil
// for anything else. The username index names "username" in both dialects
// (sqlite "users.username", postgres "users_username_key"); any other unique
// violation on this table is the email-derived primary key.
func duplicateError(err error, user *model.User) error {
	if !isUniqueViolation(err) {
		return nil
	}

	if strings.Contains(strings.ToLower(err.Error()), "username") {
		return ErrDuplicateUsername.WithMetadata(map[string]any{
			"username": user.Username,
		})
	}

	return ErrDuplicateEmail.WithMetadata(map[string]any{
		"email": user.Email,
	})
}
