package httpapi

import (
	"newsfeed/auth"
	"newsfeed/model"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
)

// genericErrorMsg is the client-facing message for errors that carry no
// taxonomy. The real cause goes to the operator log only.
const genericErrorMsg = "unable to process request"

// CommonResponse is the envelope every response carries: errors and
// status-only replies are just the envelope, data replies embed it.
type CommonResponse struct {
	StatusCode int    `json:"statusCode"`
	Msg        string `json:"msg"`
}

func envelope(status int, msg string) CommonResponse {
	return CommonResponse{StatusCode: status, Msg: msg}
}

// PostResponse is a single post wrapped in the envelope.
type PostResponse struct {
	CommonResponse
	*model.Post
}

// FeedResponse is the post feed wrapped in the envelope.
type FeedResponse struct {
	CommonResponse
	NewsFeed []*model.Post `json:"newsFeed"`
}

// CommentResponse is a single comment wrapped in the envelope.
type CommentResponse struct {
	CommonResponse
	*model.Comment
}

// CommentListResponse is a comment list wrapped in the envelope.
type CommentListResponse struct {
	CommonResponse
	Comments []*model.Comment `json:"comments"`
}

// UserResponse is a user record wrapped in the envelope.
type UserResponse struct {
	CommonResponse
	*model.User
}

// RespondStatus writes a status-only envelope.
func RespondStatus(ctx router.Context, status int, msg string) error {
	return ctx.JSON(status, envelope(status, msg))
}

// RespondError maps an error to the response envelope. Rich errors keep their
// message and HTTP code; not-found and forbidden pass through, everything else
// collapses to 400. Errors without a taxonomy never leak their message.
func RespondError(ctx router.Context, logger auth.Logger, err error) error {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		if richErr.Category == errors.CategoryInternal {
			logger.Error("internal error: %s", richErr.Error())
			return RespondStatus(ctx, router.StatusBadRequest, genericErrorMsg)
		}
		status := httpStatus(richErr)
		return RespondStatus(ctx, status, richErr.Message)
	}

	logger.Error("unclassified error: %s", err)
	return RespondStatus(ctx, router.StatusBadRequest, genericErrorMsg)
}

func httpStatus(err *errors.Error) int {
	switch int(err.Code) {
	case router.StatusForbidden, router.StatusNotFound:
		return int(err.Code)
	default:
		return router.StatusBadRequest
	}
}
