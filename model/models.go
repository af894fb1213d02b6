package model

import (
	"time"

	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserStatus is the lifecycle status of an account
type UserStatus = string

const (
	// UserStatusNormal is the status of an account in good standing
	UserStatusNormal UserStatus = "NORMAL"
	// UserStatusResigned is the terminal status of a closed account
	UserStatusResigned UserStatus = "RESIGNED"
)

// ErrOwnerRequired is returned when content is assigned an empty owner
var ErrOwnerRequired = errors.New("content owner is required", errors.CategoryValidation).
	WithTextCode("CONTENT_OWNER_REQUIRED").
	WithCode(errors.CodeBadRequest)

// ErrParentPostRequired is returned when a comment is assigned an empty parent post
var ErrParentPostRequired = errors.New("comment parent post is required", errors.CategoryValidation).
	WithTextCode("COMMENT_PARENT_REQUIRED").
	WithCode(errors.CodeBadRequest)

// Timestamps is the audit pair embedded in every persisted record
type Timestamps struct {
	CreatedAt *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// Touch updates the modification timestamp
func (t *Timestamps) Touch(now time.Time) {
	t.UpdatedAt = &now
}

// User is the identity record backing authentication and content ownership
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID              uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Username        string     `bun:"username,notnull,unique" json:"username,omitempty"`
	PasswordHash    string     `bun:"password_hash,notnull" json:"-"`
	Name            string     `bun:"name,notnull" json:"name,omitempty"`
	Email           string     `bun:"email,notnull" json:"email,omitempty"`
	Bio             string     `bun:"bio" json:"bio,omitempty"`
	Status          UserStatus `bun:"status,notnull" json:"status,omitempty"`
	StatusChangedAt *time.Time `bun:"status_changed_at,nullzero" json:"status_changed_at,omitempty"`
	RefreshToken    *string    `bun:"refresh_token,nullzero" json:"-"`

	Timestamps
}

// EnsureStatus backfills the default status for records created before the
// status column existed
func (u *User) EnsureStatus() {
	if u.Status == "" {
		u.Status = UserStatusNormal
	}
}

// Resigned reports whether the account reached its terminal status
func (u *User) Resigned() bool {
	return u.Status == UserStatusResigned
}

// Post is user-owned feed content
type Post struct {
	bun.BaseModel `bun:"table:posts,alias:pst"`

	ID       uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Contents string    `bun:"contents,notnull" json:"contents,omitempty"`
	UserID   uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User     *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`

	Timestamps
}

// NewPost builds a post bound to its owner. The owner is mandatory at
// construction time.
func NewPost(contents string, owner uuid.UUID) (*Post, error) {
	p := &Post{Contents: contents}
	if err := p.SetOwner(owner); err != nil {
		return nil, err
	}
	return p, nil
}

// SetOwner assigns the owning user, rejecting the empty id
func (p *Post) SetOwner(owner uuid.UUID) error {
	if owner == uuid.Nil {
		return ErrOwnerRequired
	}
	p.UserID = owner
	return nil
}

// UpdateContents replaces the post body
func (p *Post) UpdateContents(contents string) {
	p.Contents = contents
	p.Touch(time.Now())
}

// Comment is user-owned content attached to a post
type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cmt"`

	ID       uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Contents string    `bun:"contents,notnull" json:"contents,omitempty"`
	PostID   uuid.UUID `bun:"post_id,notnull,type:uuid" json:"post_id,omitempty"`
	Post     *Post     `bun:"rel:belongs-to,join:post_id=id" json:"post,omitempty"`
	UserID   uuid.UUID `bun:"user_id,notnull,type:uuid" json:"user_id,omitempty"`
	User     *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`

	Timestamps
}

// NewComment builds a comment bound to both its parent post and its owner
func NewComment(contents string, parent, owner uuid.UUID) (*Comment, error) {
	c := &Comment{Contents: contents}
	if err := c.SetParent(parent); err != nil {
		return nil, err
	}
	if err := c.SetOwner(owner); err != nil {
		return nil, err
	}
	return c, nil
}

// SetParent assigns the parent post, rejecting the empty id
func (c *Comment) SetParent(parent uuid.UUID) error {
	if parent == uuid.Nil {
		return ErrParentPostRequired
	}
	c.PostID = parent
	return nil
}

// SetOwner assigns the owning user, rejecting the empty id
func (c *Comment) SetOwner(owner uuid.UUID) error {
	if owner == uuid.Nil {
		return ErrOwnerRequired
	}
	c.UserID = owner
	return nil
}

// UpdateContents replaces the comment body
func (c *Comment) UpdateContents(contents string) {
	c.Contents = contents
	c.Touch(time.Now())
}
