package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/plume/internal/domain"
	"golang.org/x/crypto/bcrypt"
)

const (
	// sessionTTL is the lifetime of a login without the remember flag.
	sessionTTL = 24 * time.Hour
	// rememberTTL is the lifetime of a remembered login.
	rememberTTL = 30 * 24 * time.Hour
	// resetTTL is the fixed expiry window for password-reset tokens.
	resetTTL = 30 * time.Minute

	resetPurpose = "password_reset"
)

// Messages shown when a chosen username or email collides with an existing
// account.
const (
	usernameTakenMessage = "This username is taken. Please choose a different one."
	emailTakenMessage    = "This email already exists."
)

// AuthService handles user registration, login, and signed token operations.
type AuthService struct {
	users      domain.UserRepository
	jwtSecret  []byte
	bcryptCost int
}

// NewAuthService creates a new AuthService.
func NewAuthService(users domain.UserRepository, jwtSecret string, bcryptCost int) *AuthService {
	return &AuthService{
		users:      users,
		jwtSecret:  []byte(jwtSecret),
		bcryptCost: bcryptCost,
	}
}

// Register creates a new user account after validating inputs. Validation
// problems come back as FieldErrors keyed by form field.
func (s *AuthService) Register(ctx context.Context, username, email, password, confirmPassword string) (*domain.User, error) {
	fe := FieldErrors{}
	validateUsername(fe, username)
	validateEmail(fe, email)
	validatePasswordPair(fe, password, confirmPassword)
	if len(fe) > 0 {
		return nil, fe
	}

	if _, err := s.users.GetByUsername(ctx, username); err == nil {
		fe["username"] = usernameTakenMessage
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check username: %w", err)
	}
	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		fe["email"] = emailTakenMessage
	} else if !errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if len(fe) > 0 {
		return nil, fe
	}

	hash, err := s.HashPassword(password)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		AvatarFile:   domain.DefaultAvatar,
	}

	if err := s.users.Create(ctx, user); err != nil {
		// A concurrent signup can still lose the race to the UNIQUE
		// constraint; report it the same way as the pre-check.
		if errors.Is(err, domain.ErrDuplicateUsername) {
			return nil, FieldErrors{"username": usernameTakenMessage}
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return nil, FieldErrors{"email": emailTakenMessage}
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

// Login verifies credentials and returns the authenticated user. Unknown
// email and wrong password are indistinguishable to the caller.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrUnauthorized
	}

	return user, nil
}

// SessionToken returns a signed JWT for the user. The remember flag selects
// the longer lifetime.
func (s *AuthService) SessionToken(user *domain.User, remember bool) (string, error) {
	ttl := sessionTTL
	if remember {
		ttl = rememberTTL
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub":      strconv.FormatInt(user.ID, 10),
		"username": user.Username,
		"iat":      now.Unix(),
		"exp":      now.Add(ttl).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses and validates a session token string.
// Returns the user ID from the sub claim.
func (s *AuthService) ValidateToken(tokenString string) (int64, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return 0, err
	}
	// Reset tokens must never pass as sessions.
	if purpose, _ := claims["purpose"].(string); purpose != "" {
		return 0, domain.ErrUnauthorized
	}
	return subjectID(claims)
}

// IssueResetToken returns a password-reset token bound to the user id,
// valid for a fixed window.
func (s *AuthService) IssueResetToken(userID int64) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":     strconv.FormatInt(userID, 10),
		"purpose": resetPurpose,
		"iat":     now.Unix(),
		"exp":     now.Add(resetTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign reset token: %w", err)
	}
	return signed, nil
}

// VerifyResetToken validates a password-reset token and returns the bound
// user id. Any failure (bad signature, expiry, wrong purpose, malformed
// token) is domain.ErrUnauthorized.
func (s *AuthService) VerifyResetToken(tokenString string) (int64, error) {
	claims, err := s.parseToken(tokenString)
	if err != nil {
		return 0, err
	}
	if purpose, _ := claims["purpose"].(string); purpose != resetPurpose {
		return 0, domain.ErrUnauthorized
	}
	return subjectID(claims)
}

// GetUserByID retrieves a user by their ID.
func (s *AuthService) GetUserByID(ctx context.Context, id int64) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// HashPassword hashes a password with the configured bcrypt cost.
func (s *AuthService) HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

func (s *AuthService) parseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, domain.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}

func subjectID(claims jwt.MapClaims) (int64, error) {
	sub, err := claims.GetSubject()
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	userID, err := strconv.ParseInt(sub, 10, 64)
	if err != nil {
		return 0, domain.ErrUnauthorized
	}

	return userID, nil
}
