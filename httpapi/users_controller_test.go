package httpapi

import (
	"context"
	"testing"

	"newsfeed/auth"
	"newsfeed/model"
	"newsfeed/repository"

	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsers struct {
	repository.Users
	mock.Mock
}

func (m *mockUsers) GetByUsername(ctx context.Context, username string) (*model.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUsers) GetByUserID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, user *model.User) (*model.User, error) {
	args := m.Called(ctx, user)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func newUsersController(users repository.Users) *UsersController {
	return NewUsersController(func(c *UsersController) *UsersController {
		c.Repo = &stubManager{users: users}
		c.Sessions = auth.NewSessionManager(nil, nil, nil)
		return c
	})
}

func TestUsersController_Signup_DuplicateUsername(t *testing.T) {
	taken := &model.User{ID: uuid.New(), Username: "newsfeeder01"}

	users := &mockUsers{}
	users.On("GetByUsername", mock.Anything, "newsfeeder01").Return(taken, nil)

	var payload CommonResponse

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		*(args.Get(0).(*SignupRequest)) = validSignup()
	}).Return(nil)
	ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(CommonResponse)
	}).Return(nil)

	require.NoError(t, newUsersController(users).Signup(ctx))

	assert.Equal(t, router.StatusBadRequest, payload.StatusCode)
	assert.Equal(t, repository.ErrDuplicateUsername.Message, payload.Msg)
}

func TestUsersController_ProfileUpdate_ChangesPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!pass")
	require.NoError(t, err)

	principal := &auth.Principal{ID: uuid.New(), Username: "newsfeeder01"}
	stored := &model.User{
		ID:           principal.ID,
		Username:     "newsfeeder01",
		PasswordHash: hash,
		Status:       model.UserStatusNormal,
	}

	users := &mockUsers{}
	users.On("GetByUserID", mock.Anything, principal.ID).Return(stored, nil)

	var persisted *model.User
	users.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*model.User)
		}).
		Return(stored, nil)

	var payload UserResponse

	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = principal
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		*(args.Get(0).(*ProfileUpdateRequest)) = ProfileUpdateRequest{
			Name:            "News Feeder",
			Email:           "feeder@example.com",
			CurrentPassword: "s3cret!pass",
			NewPassword:     "n3w!passw0rd",
		}
	}).Return(nil)
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(UserResponse)
	}).Return(nil)

	require.NoError(t, newUsersController(users).ProfileUpdate(ctx))

	assert.Equal(t, "profile updated", payload.Msg)

	require.NotNil(t, persisted)
	require.NotEmpty(t, persisted.PasswordHash)
	assert.NoError(t, auth.ComparePasswordAndHash("n3w!passw0rd", persisted.PasswordHash))
}

func TestUsersController_ProfileUpdate_WrongCurrentPassword(t *testing.T) {
	hash, err := auth.HashPassword("s3cret!pass")
	require.NoError(t, err)

	principal := &auth.Principal{ID: uuid.New(), Username: "newsfeeder01"}
	stored := &model.User{
		ID:           principal.ID,
		Username:     "newsfeeder01",
		PasswordHash: hash,
		Status:       model.UserStatusNormal,
	}

	users := &mockUsers{}
	users.On("GetByUserID", mock.Anything, principal.ID).Return(stored, nil)

	var payload CommonResponse

	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = principal
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		*(args.Get(0).(*ProfileUpdateRequest)) = ProfileUpdateRequest{
			Name:            "News Feeder",
			Email:           "feeder@example.com",
			CurrentPassword: "wrong-guess!",
			NewPassword:     "n3w!passw0rd",
		}
	}).Return(nil)
	ctx.On("JSON", router.StatusBadRequest, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(CommonResponse)
	}).Return(nil)

	require.NoError(t, newUsersController(users).ProfileUpdate(ctx))

	assert.Equal(t, auth.ErrInvalidCredentials.Message, payload.Msg)
	users.AssertNotCalled(t, "UpdateProfile")
}

func TestUsersController_ProfileUpdate_WithoutPasswordChange(t *testing.T) {
	principal := &auth.Principal{ID: uuid.New(), Username: "newsfeeder01"}
	stored := &model.User{ID: principal.ID, Username: "newsfeeder01"}

	users := &mockUsers{}

	var persisted *model.User
	users.On("UpdateProfile", mock.Anything, mock.AnythingOfType("*model.User")).
		Run(func(args mock.Arguments) {
			persisted = args.Get(1).(*model.User)
		}).
		Return(stored, nil)

	ctx := router.NewMockContext()
	ctx.LocalsMock["user"] = principal
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		*(args.Get(0).(*ProfileUpdateRequest)) = ProfileUpdateRequest{
			Name:  "News Feeder",
			Email: "feeder@example.com",
			Bio:   "hello",
		}
	}).Return(nil)
	ctx.On("JSON", router.StatusOK, mock.Anything).Return(nil)

	require.NoError(t, newUsersController(users).ProfileUpdate(ctx))

	require.NotNil(t, persisted)
	assert.Empty(t, persisted.PasswordHash)
	users.AssertNotCalled(t, "GetByUserID")
}
