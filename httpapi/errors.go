package httpapi

import "github.com/goliatone/go-errors"

const (
	TextCodePostNotFound    = "POST_NOT_FOUND"
	TextCodeCommentNotFound = "COMMENT_NOT_FOUND"
	TextCodeUserNotFound    = "USER_NOT_FOUND"
)

// ErrPostNotFound is returned for any reference to a missing post, whether the
// request reads, comments on, edits or deletes it.
var ErrPostNotFound = errors.New("post not found", errors.CategoryNotFound).
	WithTextCode(TextCodePostNotFound).
	WithCode(errors.CodeNotFound)

// ErrCommentNotFound is returned for any reference to a missing comment.
var ErrCommentNotFound = errors.New("comment not found", errors.CategoryNotFound).
	WithTextCode(TextCodeCommentNotFound).
	WithCode(errors.CodeNotFound)

// ErrUserNotFound is returned when the authenticated user's record is gone.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)
