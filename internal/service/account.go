package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/msomdec/plume/internal/domain"
)

// AvatarUpload carries a freshly uploaded profile picture: the client's
// filename (used for change detection and its extension) and the raw bytes.
type AvatarUpload struct {
	Filename string
	Data     []byte
}

// AccountService handles profile updates: username, email, and the profile
// picture.
type AccountService struct {
	users   domain.UserRepository
	avatars domain.AvatarStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(users domain.UserRepository, avatars domain.AvatarStore) *AccountService {
	return &AccountService{users: users, avatars: avatars}
}

// Update applies profile changes for user and reports whether anything was
// written. A submission where nothing changed (same username, same email,
// no picture or a picture whose filename matches the stored one) performs
// no writes at all and returns false. Uniqueness is checked against other
// accounts only, so resubmitting one's own values is never a collision. On
// success user is mutated in place.
func (s *AccountService) Update(ctx context.Context, user *domain.User, username, email string, upload *AvatarUpload) (bool, error) {
	fe := FieldErrors{}
	validateUsername(fe, username)
	validateEmail(fe, email)
	if len(fe) > 0 {
		return false, fe
	}

	if username != user.Username {
		if _, err := s.users.GetByUsername(ctx, username); err == nil {
			fe["username"] = usernameTakenMessage
		} else if !errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("check username: %w", err)
		}
	}
	if email != user.Email {
		if _, err := s.users.GetByEmail(ctx, email); err == nil {
			fe["email"] = emailTakenMessage
		} else if !errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("check email: %w", err)
		}
	}
	if len(fe) > 0 {
		return false, fe
	}

	newPicture := upload != nil && upload.Filename != user.AvatarFile
	if username == user.Username && email == user.Email && !newPicture {
		return false, nil
	}

	oldAvatar := ""
	if newPicture {
		thumb, err := Thumbnail(upload.Data, filepath.Ext(upload.Filename))
		if err != nil {
			if errors.Is(err, domain.ErrInvalidInput) {
				return false, FieldErrors{"picture": "This file is not an image!"}
			}
			return false, err
		}

		filename, err := s.avatars.Save(ctx, filepath.Ext(upload.Filename), thumb)
		if err != nil {
			return false, fmt.Errorf("save avatar: %w", err)
		}

		oldAvatar = user.AvatarFile
		user.AvatarFile = filename
	}

	user.Username = username
	user.Email = email

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return false, FieldErrors{"username": usernameTakenMessage}
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return false, FieldErrors{"email": emailTakenMessage}
		}
		return false, fmt.Errorf("update user: %w", err)
	}

	// The default picture is shared by every new account and stays put.
	if oldAvatar != "" && oldAvatar != domain.DefaultAvatar {
		if err := s.avatars.Remove(ctx, oldAvatar); err != nil {
			slog.Warn("remove old avatar", "file", oldAvatar, "error", err)
		}
	}

	return true, nil
}
