package httpapi

import (
	"context"

	"newsfeed/auth"
	"newsfeed/model"
	"newsfeed/repository"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PostsController handles feed content routes
type PostsController struct {
	Debug      bool
	Logger     auth.Logger
	Repo       repository.Manager
	Guard      *auth.OwnershipGuard
	ContextKey string
}

type PostsControllerOption func(*PostsController) *PostsController

func NewPostsController(opts ...PostsControllerOption) *PostsController {
	c := &PostsController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing repository manager in posts controller...")
	}

	if c.Guard == nil {
		panic("Missing ownership guard in posts controller...")
	}

	return c
}

// RegisterRoutes mounts the post endpoints. Every route requires an
// authenticated principal; mutations additionally require ownership.
func (c *PostsController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/posts", c.Create, protected)
	group.Get("/posts", c.Feed, protected)
	group.Get("/posts/:id", c.Show, protected)
	group.Put("/posts/:id", c.Update, protected)
	group.Delete("/posts/:id", c.Delete, protected)
}

func (c *PostsController) Create(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	payload := new(PostRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("post parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	post, err := model.NewPost(payload.Contents, principal.ID)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	created, err := c.Repo.Posts().Publish(ctx.Context(), post)
	if err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create post"))
	}

	return ctx.JSON(router.StatusCreated, PostResponse{
		CommonResponse: envelope(router.StatusCreated, "post created"),
		Post:           created,
	})
}

func (c *PostsController) Feed(ctx router.Context) error {
	posts, err := c.Repo.Posts().ListFeed(ctx.Context())
	if err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list feed"))
	}

	return ctx.JSON(router.StatusOK, FeedResponse{
		CommonResponse: envelope(router.StatusOK, "feed retrieved"),
		NewsFeed:       posts,
	})
}

func (c *PostsController) Show(ctx router.Context) error {
	id, err := c.postID(ctx)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	post, err := c.loadPost(ctx.Context(), id)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	return ctx.JSON(router.StatusOK, PostResponse{
		CommonResponse: envelope(router.StatusOK, "post retrieved"),
		Post:           post,
	})
}

func (c *PostsController) Update(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	id, err := c.postID(ctx)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	payload := new(PostRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("post parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	post, err := c.loadPost(ctx.Context(), id)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if err := c.Guard.AuthorizePostMutation(post.UserID, principal.ID, auth.ActionUpdate); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	updated, err := c.Repo.Posts().UpdateContents(ctx.Context(), id, payload.Contents)
	if err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update post"))
	}

	return ctx.JSON(router.StatusOK, PostResponse{
		CommonResponse: envelope(router.StatusOK, "post updated"),
		Post:           updated,
	})
}

func (c *PostsController) Delete(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	id, err := c.postID(ctx)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	post, err := c.loadPost(ctx.Context(), id)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if err := c.Guard.AuthorizePostMutation(post.UserID, principal.ID, auth.ActionDelete); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	err = c.Repo.RunInTx(ctx.Context(), nil, func(txCtx context.Context, tx bun.Tx) error {
		return c.Repo.Posts().DeleteByIDTx(txCtx, tx, id)
	})
	if err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(ctx, c.Logger, ErrPostNotFound)
		}
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete post"))
	}

	return RespondStatus(ctx, router.StatusOK, "post deleted")
}

// postID parses the path id. An unparsable id is indistinguishable from a
// missing post for the caller.
func (c *PostsController) postID(ctx router.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return uuid.Nil, ErrPostNotFound
	}
	return id, nil
}

func (c *PostsController) loadPost(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	post, err := c.Repo.Posts().GetWithAuthor(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrPostNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load post")
	}
	return post, nil
}
