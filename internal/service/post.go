package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/msomdec/plume/internal/domain"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// lineBreak is the stored representation of a newline in post content.
const lineBreak = "<br>"

// titleCase uppercases the first letter of each word. cases.Title returns
// a stateful transformer that is not safe for concurrent use, so a fresh
// Caser is built per call.
func titleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// PostService handles blog post CRUD and ownership checks.
type PostService struct {
	posts domain.PostRepository
}

// NewPostService creates a new PostService.
func NewPostService(posts domain.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// Create stores a new post owned by userID. The title is title-cased and
// the content newline-normalized for storage.
func (s *PostService) Create(ctx context.Context, userID int64, title, content string) (*domain.Post, error) {
	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}

	post := &domain.Post{
		Title:   titleCase(title),
		Content: NormalizeContent(content),
		UserID:  userID,
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return post, nil
}

// GetByID returns a post by ID with its author populated.
func (s *PostService) GetByID(ctx context.Context, id int64) (*domain.Post, error) {
	return s.posts.GetByID(ctx, id)
}

// ListAll returns every post, newest first.
func (s *PostService) ListAll(ctx context.Context) ([]domain.Post, error) {
	return s.posts.ListAll(ctx)
}

// Update rewrites a post's title and content after an ownership check.
// The title is stored as submitted; only creation title-cases it.
func (s *PostService) Update(ctx context.Context, userID, postID int64, title, content string) (*domain.Post, error) {
	post, err := s.authorize(ctx, userID, postID)
	if err != nil {
		return nil, err
	}

	if err := validatePostFields(title, content); err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = NormalizeContent(content)

	if err := s.posts.Update(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

// Delete removes a post after an ownership check.
func (s *PostService) Delete(ctx context.Context, userID, postID int64) error {
	if _, err := s.authorize(ctx, userID, postID); err != nil {
		return err
	}
	return s.posts.Delete(ctx, postID)
}

// authorize loads a post and enforces that userID is its author.
func (s *PostService) authorize(ctx context.Context, userID, postID int64) (*domain.Post, error) {
	post, err := s.posts.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post.UserID != userID {
		return nil, domain.ErrForbidden
	}
	return post, nil
}

func validatePostFields(title, content string) error {
	fe := FieldErrors{}
	if title == "" {
		fe["title"] = requiredMessage
	}
	if content == "" {
		fe["content"] = requiredMessage
	}
	if len(fe) > 0 {
		return fe
	}
	return nil
}

// NormalizeContent converts submitted newlines to the stored line-break
// representation.
func NormalizeContent(content string) string {
	content = strings.ReplaceAll(content, "\r\n", "\n")
	return strings.ReplaceAll(content, "\n", lineBreak)
}

// DenormalizeContent reverses NormalizeContent so stored content can be
// edited as plain text. NormalizeContent(DenormalizeContent(c)) == c.
func DenormalizeContent(content string) string {
	return strings.ReplaceAll(content, lineBreak, "\n")
}
