package repository

import (
	"context"
	"time"

	"newsfeed/model"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type Comments interface {
	repository.Repository[*model.Comment]

	Publish(ctx context.Context, comment *model.Comment) (*model.Comment, error)
	GetWithAuthor(ctx context.Context, id uuid.UUID) (*model.Comment, error)
	ListAll(ctx context.Context) ([]*model.Comment, error)
	ListByPost(ctx context.Context, postID uuid.UUID) ([]*model.Comment, error)
	UpdateContents(ctx context.Context, id uuid.UUID, contents string) (*model.Comment, error)
	DeleteByCommentID(ctx context.Context, id uuid.UUID) error
}

type comments struct {
	repository.Repository[*model.Comment]
	db *bun.DB
}

var (
	_ Comments                              = (*comments)(nil)
	_ repository.Repository[*model.Comment] = (*comments)(nil)
)

func NewCommentsRepository(db *bun.DB) Comments {
	repo := repository.NewRepository[*model.Comment](db, repository.ModelHandlers[*model.Comment]{
		NewRecord: func() *model.Comment { return &model.Comment{} },
		GetID: func(c *model.Comment) uuid.UUID {
			if c == nil {
				return uuid.Nil
			}
			return c.ID
		},
		SetID: func(c *model.Comment, id uuid.UUID) {
			if c != nil {
				c.ID = id
			}
		},
	})

	return &comments{
		Repository: repo,
		db:         db,
	}
}

func (a *comments) Publish(ctx context.Context, comment *model.Comment) (*model.Comment, error) {
	if comment.ID == uuid.Nil {
		comment.ID = uuid.New()
	}
	return a.Repository.Create(ctx, comment)
}

func (a *comments) GetWithAuthor(ctx context.Context, id uuid.UUID) (*model.Comment, error) {
	record := &model.Comment{}
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

// ListAll returns every comment newest first, author preloaded.
func (a *comments) ListAll(ctx context.Context) ([]*model.Comment, error) {
	records := []*model.Comment{}
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

func (a *comments) ListByPost(ctx context.Context, postID uuid.UUID) ([]*model.Comment, error) {
	records := []*model.Comment{}
	err := a.db.NewSelect().
		Model(&records).
		Relation("User").
		Where("?TableAlias.post_id = ?", postID.String()).
		Order("created_at ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (a *comments) UpdateContents(ctx context.Context, id uuid.UUID, contents string) (*model.Comment, error) {
	now := time.Now()
	record := &model.Comment{
		ID:       id,
		Contents: contents,
	}
	record.Touch(now)

	return a.Repository.Update(ctx, record, repository.UpdateByID(id.String()))
}

func (a *comments) DeleteByCommentID(ctx context.Context, id uuid.UUID) error {
	res, err := a.db.NewDelete().
		Model((*model.Comment)(nil)).
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
