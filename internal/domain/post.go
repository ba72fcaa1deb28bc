package domain

import (
	"context"
	"time"
)

// Post represents a blog post. Content is stored in display form: newlines
// submitted by the author are kept as <br> markers and reversed for editing.
type Post struct {
	ID        int64
	Title     string
	Content   string
	UserID    int64
	CreatedAt time.Time

	// Author is populated on reads that join the owning user.
	Author *User
}

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *Post) error
	GetByID(ctx context.Context, id int64) (*Post, error)
	// ListAll returns every post, newest first, with Author populated.
	ListAll(ctx context.Context) ([]Post, error)
	Update(ctx context.Context, post *Post) error
	Delete(ctx context.Context, id int64) error
}
