package httpapi

import (
	"fmt"

	"newsfeed/auth"
	"newsfeed/model"
	"newsfeed/repository"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// TokenPairResponse is the credential payload returned by login and refresh
type TokenPairResponse struct {
	CommonResponse
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// UsersController handles account and session routes
type UsersController struct {
	Debug      bool
	Logger     auth.Logger
	Repo       repository.Manager
	Sessions   *auth.SessionManager
	ContextKey string
}

type UsersControllerOption func(*UsersController) *UsersController

func NewUsersController(opts ...UsersControllerOption) *UsersController {
	c := &UsersController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing repository manager in users controller...")
	}

	if c.Sessions == nil {
		panic("Missing session manager in users controller...")
	}

	return c
}

// RegisterRoutes mounts the account and session endpoints
func (c *UsersController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/users/signup", c.Signup)
	group.Post("/users/login", c.Login)
	group.Post("/users/refresh", c.Refresh)
	group.Post("/users/logout", c.Logout, protected)
	group.Post("/users/resign", c.Resign, protected)
	group.Get("/users/profile", c.ProfileShow, protected)
	group.Put("/users/profile", c.ProfileUpdate, protected)
}

func (c *UsersController) Signup(ctx router.Context) error {
	payload := new(SignupRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("signup parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if c.Debug {
		fmt.Println("======= SIGNUP ======")
		fmt.Println(print.MaybePrettyJSON(payload))
		fmt.Println("=====================")
	}

	// The unique index still backstops concurrent signups; this pre-check
	// only produces the friendlier duplicate message.
	if _, err := c.Repo.Users().GetByUsername(ctx.Context(), payload.Username); err == nil {
		return RespondError(ctx, c.Logger, repository.ErrDuplicateUsername)
	} else if !goerrors.IsNotFound(err) {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username"))
	}

	registerUser := RegisterUserHandler{repo: c.Repo}
	user, err := registerUser.Execute(ctx.Context(), RegisterUserMessage{
		Username: payload.Username,
		Password: payload.Password,
		Name:     payload.Name,
		Email:    payload.Email,
		Bio:      payload.Bio,
	})
	if err != nil {
		c.Logger.Error("signup register user: %s", err)
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(router.StatusCreated, UserResponse{
		CommonResponse: envelope(router.StatusCreated, "account created"),
		User:           user,
	})
}

func (c *UsersController) Login(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("login parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	pair, err := c.Sessions.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		c.Logger.Info("login rejected: %s", err)
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(router.StatusOK, TokenPairResponse{
		CommonResponse: envelope(router.StatusOK, "login successful"),
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
	})
}

func (c *UsersController) Refresh(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("refresh parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	pair, err := c.Sessions.Refresh(ctx.Context(), payload.Username, payload.RefreshToken)
	if err != nil {
		c.Logger.Info("refresh rejected: %s", err)
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(router.StatusOK, TokenPairResponse{
		CommonResponse: envelope(router.StatusOK, "session refreshed"),
		AccessToken:    pair.AccessToken,
		RefreshToken:   pair.RefreshToken,
	})
}

func (c *UsersController) Logout(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	if err := c.Sessions.Logout(ctx.Context(), principal.Username); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return RespondStatus(ctx, router.StatusOK, "logged out")
}

func (c *UsersController) Resign(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	payload := new(ResignRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("resign parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if err := c.Sessions.Resign(ctx.Context(), principal.ID, payload.Password); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return RespondStatus(ctx, router.StatusOK, "account resigned")
}

func (c *UsersController) ProfileShow(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	user, err := c.Repo.Users().GetByUserID(ctx.Context(), principal.ID)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(ctx, c.Logger, ErrUserNotFound)
		}
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile"))
	}

	return ctx.JSON(router.StatusOK, UserResponse{
		CommonResponse: envelope(router.StatusOK, "profile retrieved"),
		User:           user,
	})
}

func (c *UsersController) ProfileUpdate(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	payload := new(ProfileUpdateRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("profile parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	record := &model.User{
		ID:    principal.ID,
		Name:  payload.Name,
		Email: payload.Email,
		Bio:   payload.Bio,
	}

	// Changing the password requires proving knowledge of the current one.
	if payload.NewPassword != "" {
		current, err := c.Repo.Users().GetByUserID(ctx.Context(), principal.ID)
		if err != nil {
			if goerrors.IsNotFound(err) {
				return RespondError(ctx, c.Logger, ErrUserNotFound)
			}
			return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load profile"))
		}

		if err := auth.ComparePasswordAndHash(payload.CurrentPassword, current.PasswordHash); err != nil {
			return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
		}

		hash, err := auth.HashPassword(payload.NewPassword)
		if err != nil {
			return RespondError(ctx, c.Logger, err)
		}
		record.PasswordHash = hash
	}

	user, err := c.Repo.Users().UpdateProfile(ctx.Context(), record)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(ctx, c.Logger, ErrUserNotFound)
		}
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update profile"))
	}

	return ctx.JSON(router.StatusOK, UserResponse{
		CommonResponse: envelope(router.StatusOK, "profile updated"),
		User:           user,
	})
}
