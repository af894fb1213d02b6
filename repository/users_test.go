package repository

import (
	"errors"
	"testing"

	"newsfeed/model"

	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuplicateError(t *testing.T) {
	user := &model.User{Username: "newsfeeder01", Email: "feeder@example.com"}

	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "sqlite username collision",
			err:  errors.New("UNIQUE constraint failed: users.username"),
			want: TextCodeDuplicateUsername,
		},
		{
			name: "sqlite id collision maps to email",
			err:  errors.New("UNIQUE constraint failed: users.id"),
			want: TextCodeDuplicateEmail,
		},
		{
			name: "postgres username collision",
			err:  errors.New(`duplicate key value violates unique constraint "users_username_key"`),
			want: TextCodeDuplicateUsername,
		},
		{
			name: "postgres primary key collision maps to email",
			err:  errors.New(`duplicate key value violates unique constraint "users_pkey"`),
			want: TextCodeDuplicateEmail,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := duplicateError(tt.err, user)
			require.NotNil(t, got)

			var rich *goerrors.Error
			require.True(t, goerrors.As(got, &rich))
			assert.Equal(t, tt.want, rich.TextCode)
			assert.Equal(t, goerrors.CategoryConflict, rich.Category)
		})
	}
}

func TestDuplicateError_IgnoresOtherErrors(t *testing.T) {
	user := &model.User{Username: "newsfeeder01"}

	assert.Nil(t, duplicateError(nil, user))
	assert.Nil(t, duplicateError(errors.New("connection refused"), user))
	assert.Nil(t, duplicateError(errors.New("NOT NULL constraint failed: users.name"), user))
}
