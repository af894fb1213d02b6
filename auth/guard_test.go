package auth_test

import (
	"testing"

	"newsfeed/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestOwnershipGuard_AuthorizePostMutation(t *testing.T) {
	guard := auth.NewOwnershipGuard(nil)

	owner := uuid.New()
	stranger := uuid.New()

	t.Run("owner may update and delete", func(t *testing.T) {
		assert.NoError(t, guard.AuthorizePostMutation(owner, owner, auth.ActionUpdate))
		assert.NoError(t, guard.AuthorizePostMutation(owner, owner, auth.ActionDelete))
	})

	t.Run("non-owner update is forbidden", func(t *testing.T) {
		err := guard.AuthorizePostMutation(owner, stranger, auth.ActionUpdate)
		assert.ErrorIs(t, err, auth.ErrPostEditForbidden)
	})

	t.Run("non-owner delete is forbidden", func(t *testing.T) {
		err := guard.AuthorizePostMutation(owner, stranger, auth.ActionDelete)
		assert.ErrorIs(t, err, auth.ErrPostDeleteForbidden)
	})

	t.Run("the empty principal never owns anything", func(t *testing.T) {
		err := guard.AuthorizePostMutation(owner, uuid.Nil, auth.ActionUpdate)
		assert.ErrorIs(t, err, auth.ErrPostEditForbidden)
	})
}

func TestOwnershipGuard_AuthorizeCommentMutation(t *testing.T) {
	guard := auth.NewOwnershipGuard(nil)

	owner := uuid.New()
	stranger := uuid.New()

	t.Run("owner may update and delete", func(t *testing.T) {
		assert.NoError(t, guard.AuthorizeCommentMutation(owner, owner, auth.ActionUpdate))
		assert.NoError(t, guard.AuthorizeCommentMutation(owner, owner, auth.ActionDelete))
	})

	t.Run("non-owner update is forbidden", func(t *testing.T) {
		err := guard.AuthorizeCommentMutation(owner, stranger, auth.ActionUpdate)
		assert.ErrorIs(t, err, auth.ErrCommentEditForbidden)
	})

	t.Run("non-owner delete is forbidden", func(t *testing.T) {
		err := guard.AuthorizeCommentMutation(owner, stranger, auth.ActionDelete)
		assert.ErrorIs(t, err, auth.ErrCommentDeleteForbidden)
	})
}
