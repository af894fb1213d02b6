package auth

import (
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Action is a mutation kind the ownership guard distinguishes
type Action string

const (
	// ActionUpdate is a content update
	ActionUpdate Action = "update"
	// ActionDelete is a content deletion
	ActionDelete Action = "delete"
)

const (
	TextCodePostEditForbidden      = "POST_EDIT_FORBIDDEN"
	TextCodePostDeleteForbidden    = "POST_DELETE_FORBIDDEN"
	TextCodeCommentEditForbidden   = "COMMENT_EDIT_FORBIDDEN"
	TextCodeCommentDeleteForbidden = "COMMENT_DELETE_FORBIDDEN"
)

// ErrPostEditForbidden is returned when a non-owner tries to update a post.
var ErrPostEditForbidden = errors.New("only the author may edit this post", errors.CategoryAuthz).
	WithTextCode(TextCodePostEditForbidden).
	WithCode(errors.CodeForbidden)

// ErrPostDeleteForbidden is returned when a non-owner tries to delete a post.
var ErrPostDeleteForbidden = errors.New("only the author may delete this post", errors.CategoryAuthz).
	WithTextCode(TextCodePostDeleteForbidden).
	WithCode(errors.CodeForbidden)

// ErrCommentEditForbidden is returned when a non-owner tries to update a comment.
var ErrCommentEditForbidden = errors.New("only the author may edit this comment", errors.CategoryAuthz).
	WithTextCode(TextCodeCommentEditForbidden).
	WithCode(errors.CodeForbidden)

// ErrCommentDeleteForbidden is returned when a non-owner tries to delete a comment.
var ErrCommentDeleteForbidden = errors.New("only the author may delete this comment", errors.CategoryAuthz).
	WithTextCode(TextCodeCommentDeleteForbidden).
	WithCode(errors.CodeForbidden)

// OwnershipGuard authorizes mutation of owned content by strict equality
// between the resource's owner and the authenticated principal. There is no
// super-user bypass and no shared ownership. Reads are not guarded; callers
// must check resource existence before calling the guard.
type OwnershipGuard struct {
	logger Logger
}

// NewOwnershipGuard returns a guard with the given logger
func NewOwnershipGuard(logger Logger) *OwnershipGuard {
	if logger == nil {
		logger = defLogger{}
	}
	return &OwnershipGuard{logger: logger}
}

// AuthorizePostMutation allows the mutation when the principal owns the post
func (g *OwnershipGuard) AuthorizePostMutation(ownerID, principalID uuid.UUID, action Action) error {
	if ownerID == principalID {
		return nil
	}

	g.logger.Info("post mutation denied", "owner", ownerID.String(), "principal", principalID.String(), "action", string(action))

	if action == ActionDelete {
		return ErrPostDeleteForbidden
	}
	return ErrPostEditForbidden
}

// AuthorizeCommentMutation allows the mutation when the principal owns the comment
func (g *OwnershipGuard) AuthorizeCommentMutation(ownerID, principalID uuid.UUID, action Action) error {
	if ownerID == principalID {
		return nil
	}

	g.logger.Info("comment mutation denied", "owner", ownerID.String(), "principal", principalID.String(), "action", string(action))

	if action == ActionDelete {
		return ErrCommentDeleteForbidden
	}
	return ErrCommentEditForbidden
}
