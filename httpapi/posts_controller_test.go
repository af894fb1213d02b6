package httpapi

import (
	"context"
	"database/sql"
	"testing"

	"newsfeed/auth"
	"newsfeed/model"
	"newsfeed/repository"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

// mockPosts overrides only the methods the controller touches; the embedded
// interface covers the rest of the repository surface.
type mockPosts struct {
	repository.Posts
	mock.Mock
}

func (m *mockPosts) GetWithAuthor(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *mockPosts) ListFeed(ctx context.Context) ([]*model.Post, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Post), args.Error(1)
}

func (m *mockPosts) UpdateContents(ctx context.Context, id uuid.UUID, contents string) (*model.Post, error) {
	args := m.Called(ctx, id, contents)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Post), args.Error(1)
}

func (m *mockPosts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	args := m.Called(ctx, tx, id)
	return args.Error(0)
}

// stubManager hands out the mocked repositories and runs transactions inline.
type stubManager struct {
	users    repository.Users
	posts    repository.Posts
	comments repository.Comments
}

func (s *stubManager) Validate() error { return nil }
func (s *stubManager) MustValidate()   {}

func (s *stubManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	return f(ctx, bun.Tx{})
}

func (s *stubManager) Users() repository.Users       { return s.users }
func (s *stubManager) Posts() repository.Posts       { return s.posts }
func (s *stubManager) Comments() repository.Comments { return s.comments }

func newPostsController(posts repository.Posts) *PostsController {
	return NewPostsController(func(c *PostsController) *PostsController {
		c.Repo = &stubManager{posts: posts}
		c.Guard = auth.NewOwnershipGuard(nil)
		return c
	})
}

func notFoundErr() error {
	return goerrors.New("record not found", goerrors.CategoryNotFound)
}

func TestPostsController_Show_MissingPost(t *testing.T) {
	id := uuid.New()

	posts := &mockPosts{}
	posts.On("GetWithAuthor", mock.Anything, id).Return(nil, notFoundErr())

	var payload CommonResponse

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = id.String()
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusNotFound, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(CommonResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Show(ctx))

	assert.Equal(t, router.StatusNotFound, payload.StatusCode)
	assert.Equal(t, "post not found", payload.Msg)
}

func TestPostsController_Show_UnparsableID(t *testing.T) {
	posts := &mockPosts{}

	var payload CommonResponse

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = "not-a-uuid"
	ctx.On("JSON", router.StatusNotFound, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(CommonResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Show(ctx))

	assert.Equal(t, "post not found", payload.Msg)
	posts.AssertNotCalled(t, "GetWithAuthor")
}

func TestPostsController_Show_ReturnsPost(t *testing.T) {
	post, err := model.NewPost("hello feed", uuid.New())
	require.NoError(t, err)
	post.ID = uuid.New()

	posts := &mockPosts{}
	posts.On("GetWithAuthor", mock.Anything, post.ID).Return(post, nil)

	var got PostResponse

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = post.ID.String()
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		got = args.Get(1).(PostResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Show(ctx))

	assert.Equal(t, router.StatusOK, got.StatusCode)
	assert.Equal(t, "post retrieved", got.Msg)
	assert.Equal(t, post, got.Post)
}

func TestPostsController_Feed(t *testing.T) {
	post, err := model.NewPost("hello feed", uuid.New())
	require.NoError(t, err)

	posts := &mockPosts{}
	posts.On("ListFeed", mock.Anything).Return([]*model.Post{post}, nil)

	var payload FeedResponse

	ctx := router.NewMockContext()
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(FeedResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Feed(ctx))

	assert.Equal(t, router.StatusOK, payload.StatusCode)
	assert.Equal(t, "feed retrieved", payload.Msg)
	assert.Equal(t, []*model.Post{post}, payload.NewsFeed)
}

func TestPostsController_Update_CrossUserIsForbidden(t *testing.T) {
	owner := uuid.New()
	stranger := &auth.Principal{ID: uuid.New(), Username: "stranger0001"}

	post, err := model.NewPost("hello feed", owner)
	require.NoError(t, err)
	post.ID = uuid.New()

	posts := &mockPosts{}
	posts.On("GetWithAuthor", mock.Anything, post.ID).Return(post, nil)

	var payload CommonResponse

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = post.ID.String()
	ctx.LocalsMock["user"] = stranger
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		*(args.Get(0).(*PostRequest)) = PostRequest{Contents: "rewritten"}
	}).Return(nil)
	ctx.On("JSON", router.StatusForbidden, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(CommonResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Update(ctx))

	assert.Equal(t, router.StatusForbidden, payload.StatusCode)
	assert.Equal(t, auth.ErrPostEditForbidden.Message, payload.Msg)
	posts.AssertNotCalled(t, "UpdateContents")
}

func TestPostsController_Update_OwnerSucceeds(t *testing.T) {
	owner := &auth.Principal{ID: uuid.New(), Username: "newsfeeder01"}

	post, err := model.NewPost("hello feed", owner.ID)
	require.NoError(t, err)
	post.ID = uuid.New()

	updated, err := model.NewPost("rewritten", owner.ID)
	require.NoError(t, err)
	updated.ID = post.ID

	posts := &mockPosts{}
	posts.On("GetWithAuthor", mock.Anything, post.ID).Return(post, nil)
	posts.On("UpdateContents", mock.Anything, post.ID, "rewritten").Return(updated, nil)

	var payload PostResponse

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = post.ID.String()
	ctx.LocalsMock["user"] = owner
	ctx.On("Context").Return(context.Background())
	ctx.On("Bind", mock.Anything).Run(func(args mock.Arguments) {
		*(args.Get(0).(*PostRequest)) = PostRequest{Contents: "rewritten"}
	}).Return(nil)
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(PostResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Update(ctx))

	assert.Equal(t, "post updated", payload.Msg)
	assert.Equal(t, "rewritten", payload.Post.Contents)
	posts.AssertExpectations(t)
}

func TestPostsController_Delete_CrossUserIsForbidden(t *testing.T) {
	owner := uuid.New()
	stranger := &auth.Principal{ID: uuid.New(), Username: "stranger0001"}

	post, err := model.NewPost("hello feed", owner)
	require.NoError(t, err)
	post.ID = uuid.New()

	posts := &mockPosts{}
	posts.On("GetWithAuthor", mock.Anything, post.ID).Return(post, nil)

	var payload CommonResponse

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = post.ID.String()
	ctx.LocalsMock["user"] = stranger
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusForbidden, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(CommonResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Delete(ctx))

	assert.Equal(t, router.StatusForbidden, payload.StatusCode)
	assert.Equal(t, auth.ErrPostDeleteForbidden.Message, payload.Msg)
	posts.AssertNotCalled(t, "DeleteByIDTx")
}

func TestPostsController_Delete_OwnerSucceeds(t *testing.T) {
	owner := &auth.Principal{ID: uuid.New(), Username: "newsfeeder01"}

	post, err := model.NewPost("hello feed", owner.ID)
	require.NoError(t, err)
	post.ID = uuid.New()

	posts := &mockPosts{}
	posts.On("GetWithAuthor", mock.Anything, post.ID).Return(post, nil)
	posts.On("DeleteByIDTx", mock.Anything, mock.Anything, post.ID).Return(nil)

	var payload CommonResponse

	ctx := router.NewMockContext()
	ctx.ParamsM["id"] = post.ID.String()
	ctx.LocalsMock["user"] = owner
	ctx.On("Context").Return(context.Background())
	ctx.On("JSON", router.StatusOK, mock.Anything).Run(func(args mock.Arguments) {
		payload = args.Get(1).(CommonResponse)
	}).Return(nil)

	require.NoError(t, newPostsController(posts).Delete(ctx))

	assert.Equal(t, "post deleted", payload.Msg)
	posts.AssertExpectations(t)
}
