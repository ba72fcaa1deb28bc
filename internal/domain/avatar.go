package domain

import "context"

// AvatarStore persists processed profile pictures under the media directory.
type AvatarStore interface {
	// Save writes data under a generated filename carrying ext (".jpg",
	// ".png", ...) and returns that filename.
	Save(ctx context.Context, ext string, data []byte) (string, error)
	// Remove deletes a stored picture. Removing a file that is already
	// gone is not an error.
	Remove(ctx context.Context, filename string) error
}
