package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/msomdec/plume/internal/domain"
)

// AvatarStore implements domain.AvatarStore on a local media directory.
// Filenames are random so an upload never collides with or overwrites
// another user's picture.
type AvatarStore struct {
	dir string
}

// NewAvatarStore creates the media directory if needed and returns a store
// rooted at it.
func NewAvatarStore(dir string) (*AvatarStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media directory: %w", err)
	}
	return &AvatarStore{dir: dir}, nil
}

// Dir returns the directory the store writes into.
func (s *AvatarStore) Dir() string {
	return s.dir
}

func (s *AvatarStore) Save(ctx context.Context, ext string, data []byte) (string, error) {
	filename, err := generateFilename(ext)
	if err != nil {
		return "", fmt.Errorf("generate filename: %w", err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write avatar file: %w", err)
	}
	return filename, nil
}

func (s *AvatarStore) Remove(ctx context.Context, filename string) error {
	// Refuse anything that could escape the media directory.
	if filename != filepath.Base(filename) {
		return fmt.Errorf("%w: bad avatar filename %q", domain.ErrInvalidInput, filename)
	}

	err := os.Remove(filepath.Join(s.dir, filename))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove avatar file: %w", err)
	}
	return nil
}

func generateFilename(ext string) (string, error) {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b) + strings.ToLower(ext), nil
}
