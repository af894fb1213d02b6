package repository

import (
	"context"
	"time"

	"newsfeed/model"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Posts interface {
	repository.Repository[*model.Post]

	Publish(ctx context.Context, post *model.Post) (*model.Post, error)
	GetWithAuthor(ctx context.Context, id uuid.UUID) (*model.Post, error)
	ListFeed(ctx context.Context) ([]*model.Post, error)
	UpdateContents(ctx context.Context, id uuid.UUID, contents string) (*model.Post, error)
	DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error
}

type posts struct {
	repository.Repository[*model.Post]
	db *bun.DB
}

var (
	_ Posts                              = (*posts)(nil)
	_ repository.Repository[*model.Post] = (*posts)(nil)
)

func NewPostsRepository(db *bun.DB) Posts {
	repo := repository.NewRepository[*model.Post](db, repository.ModelHandlers[*model.Post]{
		NewRecord: func() *model.Post { return &model.Post{} },
		GetID: func(p *model.Post) uuid.UUID {
			if p == nil {
				return uuid.Nil
			}
			return p.ID
		},
		SetID: func(p *model.Post, id uuid.UUID) {
			if p != nil {
				p.ID = id
			}
		},
	})

	return &posts{
		Repository: repo,
		db:         db,
	}
}

func (a *posts) Publish(ctx context.Context, post *model.Post) (*model.Post, error) {
	if post.ID == uuid.Nil {
		post.ID = uuid.New()
	}
	return a.Repository.Create(ctx, post)
}

func (a *posts) GetWithAuthor(ctx context.Context, id uuid.UUID) (*model.Post, error) {
	record := &model.Post{}
	err := a.db.NewSelect().
		Model(record).
		Relation("User").
		Where("?TableAlias.id = ?", id.String()).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{
					"id": id.String(),
				})
		}
		return nil, err
	}

	return record, nil
}

// ListFeed returns every post newest first, author preloaded.
func (a *posts) ListFeed(ctx context.Context) ([]*model.Post, error) {
	records := []*model.Post{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("User").
		Order("created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *posts) UpdateContents(ctx context.Context, id uuid.UUID, contents string) (*model.Post, error) {
	now := time.Now()
	record := &model.Post{
		ID:       id,
		Contents: contents,
	}
	record.Touch(now)

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

// DeleteByIDTx removes the post and its comments inside the caller's
// transaction so a feed never shows orphaned comments.
func (a *posts) DeleteByIDTx(ctx context.Context, tx bun.IDB, id uuid.UUID) error {
	if _, err := tx.NewDelete().
		Model((*model.Comment)(nil)).
		Where("?TableAlias.post_id = ?", id.String()).
		Exec(ctx); err != nil {
		return err
	}

	res, err := tx.NewDelete().
		Model((*model.Post)(nil)).
		Where("?TableAlias.id = ?", id.String()).
		Exec(ctx)
	if err != nil {
		return err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{
				"id": id.String(),
			})
	}

	return nil
}
