package httpapi

import (
	"context"

	"newsfeed/auth"
	"newsfeed/model"
	"newsfeed/repository"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
)

// CommentsController handles comment routes
type CommentsController struct {
	Debug      bool
	Logger     auth.Logger
	Repo       repository.Manager
	Guard      *auth.OwnershipGuard
	ContextKey string
}

type CommentsControllerOption func(*CommentsController) *CommentsController

func NewCommentsController(opts ...CommentsControllerOption) *CommentsController {
	c := &CommentsController{
		Logger:     defLogger{},
		ContextKey: "user",
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing repository manager in comments controller...")
	}

	if c.Guard == nil {
		panic("Missing ownership guard in comments controller...")
	}

	return c
}

// RegisterRoutes mounts the comment endpoints. Creation hangs off the parent
// post path so a comment can never be orphaned at birth.
func (c *CommentsController) RegisterRoutes(group RouteRegistrar, protected router.MiddlewareFunc) {
	group.Post("/posts/:postId/comments", c.Create, protected)
	group.Get("/posts/:postId/comments", c.ListByPost, protected)
	group.Get("/comments", c.List, protected)
	group.Put("/comments/:id", c.Update, protected)
	group.Delete("/comments/:id", c.Delete, protected)
}

func (c *CommentsController) Create(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	postID, err := uuid.Parse(ctx.Param("postId", ""))
	if err != nil {
		return RespondError(ctx, c.Logger, ErrPostNotFound)
	}

	payload := new(CommentRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("comment parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	// The parent has to exist at creation time.
	if _, err := c.Repo.Posts().GetWithAuthor(ctx.Context(), postID); err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(ctx, c.Logger, ErrPostNotFound)
		}
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load post"))
	}

	comment, err := model.NewComment(payload.Contents, postID, principal.ID)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	created, err := c.Repo.Comments().Publish(ctx.Context(), comment)
	if err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create comment"))
	}

	return ctx.JSON(router.StatusCreated, CommentResponse{
		CommonResponse: envelope(router.StatusCreated, "comment created"),
		Comment:        created,
	})
}

func (c *CommentsController) List(ctx router.Context) error {
	comments, err := c.Repo.Comments().ListAll(ctx.Context())
	if err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list comments"))
	}

	// An empty feed of comments is a nudge, not an error.
	if len(comments) == 0 {
		return RespondStatus(ctx, router.StatusOK, "write a comment first")
	}

	return ctx.JSON(router.StatusOK, CommentListResponse{
		CommonResponse: envelope(router.StatusOK, "comments retrieved"),
		Comments:       comments,
	})
}

func (c *CommentsController) ListByPost(ctx router.Context) error {
	postID, err := uuid.Parse(ctx.Param("postId", ""))
	if err != nil {
		return RespondError(ctx, c.Logger, ErrPostNotFound)
	}

	if _, err := c.Repo.Posts().GetWithAuthor(ctx.Context(), postID); err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(ctx, c.Logger, ErrPostNotFound)
		}
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load post"))
	}

	comments, err := c.Repo.Comments().ListByPost(ctx.Context(), postID)
	if err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list comments"))
	}

	return ctx.JSON(router.StatusOK, CommentListResponse{
		CommonResponse: envelope(router.StatusOK, "comments retrieved"),
		Comments:       comments,
	})
}

func (c *CommentsController) Update(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, c.Logger, ErrCommentNotFound)
	}

	payload := new(CommentRequest)
	if err := ctx.Bind(payload); err != nil {
		c.Logger.Error("comment parse payload: %s", err)
		return RespondStatus(ctx, router.StatusBadRequest, "Error parsing body")
	}

	if err := payload.Validate(); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	comment, err := c.loadComment(ctx.Context(), id)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if err := c.Guard.AuthorizeCommentMutation(comment.UserID, principal.ID, auth.ActionUpdate); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	updated, err := c.Repo.Comments().UpdateContents(ctx.Context(), id, payload.Contents)
	if err != nil {
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update comment"))
	}

	return ctx.JSON(router.StatusOK, CommentResponse{
		CommonResponse: envelope(router.StatusOK, "comment updated"),
		Comment:        updated,
	})
}

func (c *CommentsController) Delete(ctx router.Context) error {
	principal, ok := PrincipalFromContext(ctx, c.ContextKey)
	if !ok {
		return RespondError(ctx, c.Logger, auth.ErrInvalidCredentials)
	}

	id, err := uuid.Parse(ctx.Param("id", ""))
	if err != nil {
		return RespondError(ctx, c.Logger, ErrCommentNotFound)
	}

	comment, err := c.loadComment(ctx.Context(), id)
	if err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if err := c.Guard.AuthorizeCommentMutation(comment.UserID, principal.ID, auth.ActionDelete); err != nil {
		return RespondError(ctx, c.Logger, err)
	}

	if err := c.Repo.Comments().DeleteByCommentID(ctx.Context(), id); err != nil {
		if goerrors.IsNotFound(err) {
			return RespondError(ctx, c.Logger, ErrCommentNotFound)
		}
		return RespondError(ctx, c.Logger, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to delete comment"))
	}

	return RespondStatus(ctx, router.StatusOK, "comment deleted")
}

func (c *CommentsController) loadComment(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	comment, err := c.Repo.Comments().GetWithAuthor(ctx, id)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrCommentNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to load comment")
	}
	return comment, nil
}
