package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/msomdec/plume/internal/domain"
)

// ResetService drives the password-reset flow: issuing a token by email and
// applying a new password once the token comes back.
type ResetService struct {
	users   domain.UserRepository
	auth    *AuthService
	mailer  domain.Mailer
	baseURL string
}

// NewResetService creates a new ResetService. baseURL is the external
// address of this deployment, used to build reset links.
func NewResetService(users domain.UserRepository, auth *AuthService, mailer domain.Mailer, baseURL string) *ResetService {
	return &ResetService{users: users, auth: auth, mailer: mailer, baseURL: baseURL}
}

// RequestReset emails a reset link to the account with the given address.
// An unknown address is a field error: unlike login, this flow tells the
// requester whether the account exists.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	fe := FieldErrors{}
	validateEmail(fe, email)
	if len(fe) > 0 {
		return fe
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return FieldErrors{"email": "There is no account with this email. You must signup first."}
		}
		return fmt.Errorf("get user: %w", err)
	}

	token, err := s.auth.IssueResetToken(user.ID)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(`To reset your password, visit the following link:
%s/reset_password/%s

If you did not make this request then simply ignore this email & no changes will be made.
`, s.baseURL, token)

	if err := s.mailer.Send(ctx, user.Email, "Password Reset Request", body); err != nil {
		if errors.Is(err, domain.ErrMailUnavailable) {
			return err
		}
		return fmt.Errorf("send reset email: %w", err)
	}
	return nil
}

// CompleteReset verifies the token and overwrites the bound user's password
// hash. Token problems surface as domain.ErrUnauthorized, field problems as
// FieldErrors.
func (s *ResetService) CompleteReset(ctx context.Context, token, password, confirmPassword string) error {
	userID, err := s.auth.VerifyResetToken(token)
	if err != nil {
		return err
	}

	fe := FieldErrors{}
	validatePasswordPair(fe, password, confirmPassword)
	if len(fe) > 0 {
		return fe
	}

	hash, err := s.auth.HashPassword(password)
	if err != nil {
		return err
	}

	if err := s.users.UpdatePassword(ctx, userID, hash); err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// VerifyToken reports whether a reset token is currently valid. The GET
// side of the reset form uses it to bounce dead links before showing the
// form.
func (s *ResetService) VerifyToken(token string) error {
	_, err := s.auth.VerifyResetToken(token)
	return err
}
