package service_test

import (
	"context"
	"errors"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/msomdec/plume/internal/domain"
	"github.com/msomdec/plume/internal/repository/sqlite"
	"github.com/msomdec/plume/internal/service"
)

const testJWTSecret = "test-secret-key-for-unit-tests"

func newTestDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := sqlite.New(dbPath)
	if err != nil {
		t.Fatalf("New DB: %v", err)
	}
	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func newTestAuthService(t *testing.T) (*service.AuthService, *sqlite.DB) {
	t.Helper()
	db := newTestDB(t)
	// Use cost 4 for fast tests.
	return service.NewAuthService(db.Users(), testJWTSecret, 4), db
}

func TestAuthService_Register_Success(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "alice", "alice@example.com", "secret1", "secret1")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	if user.ID == 0 {
		t.Fatal("expected user ID to be set")
	}
	if user.AvatarFile != domain.DefaultAvatar {
		t.Fatalf("expected default avatar, got %q", user.AvatarFile)
	}
	if user.PasswordHash == "secret1" {
		t.Fatal("password must not be stored in the clear")
	}
}

func TestAuthService_Register_FieldValidation(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name      string
		username  string
		email     string
		password  string
		confirm   string
		wantField string
	}{
		{"empty username", "", "a@x.com", "pw", "pw", "username"},
		{"short username", "a", "a@x.com", "pw", "pw", "username"},
		{"long username", "abcdefghijklmnopqrstu", "a@x.com", "pw", "pw", "username"},
		{"empty email", "alice", "", "pw", "pw", "email"},
		{"bad email", "alice", "not-an-email", "pw", "pw", "email"},
		{"empty password", "alice", "a@x.com", "", "x", "password"},
		{"empty confirm", "alice", "a@x.com", "pw", "", "confirm_password"},
		{"mismatch", "alice", "a@x.com", "pw", "other", "confirm_password"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.username, tc.email, tc.password, tc.confirm)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
			var fe service.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %T", err)
			}
			if fe[tc.wantField] == "" {
				t.Fatalf("expected a message for field %q, got %v", tc.wantField, fe)
			}
		})
	}
}

func TestAuthService_Register_DuplicateFields(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "taken", "taken@example.com", "pw123", "pw123"); err != nil {
		t.Fatalf("first register: %v", err)
	}

	tests := []struct {
		name      string
		username  string
		email     string
		wantField string
	}{
		{"username taken", "taken", "fresh@example.com", "username"},
		{"email taken", "fresh", "taken@example.com", "email"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := auth.Register(ctx, tc.username, tc.email, "pw123", "pw123")
			var fe service.FieldErrors
			if !errors.As(err, &fe) {
				t.Fatalf("expected FieldErrors, got %v", err)
			}
			if fe[tc.wantField] == "" {
				t.Fatalf("expected a message for field %q, got %v", tc.wantField, fe)
			}
		})
	}
}

func TestAuthService_Register_NoRecordOnCollision(t *testing.T) {
	auth, db := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "solo", "solo@example.com", "pw123", "pw123"); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if _, err := auth.Register(ctx, "solo", "other@example.com", "pw123", "pw123"); err == nil {
		t.Fatal("expected duplicate username to fail")
	}

	var count int
	if err := db.SqlDB.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		t.Fatalf("count users: %v", err)
	}
	if count != 1 {
		t.Fatalf("expected 1 user after failed signup, got %d", count)
	}
}

func TestAuthService_Login(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "login", "login@example.com", "secret1", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	user, err := auth.Login(ctx, "login@example.com", "secret1")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if user.Username != "login" {
		t.Fatalf("got user %q", user.Username)
	}
}

func TestAuthService_Login_FailuresAreIndistinguishable(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := auth.Register(ctx, "victim", "victim@example.com", "secret1", "secret1"); err != nil {
		t.Fatalf("Register: %v", err)
	}

	_, wrongPassword := auth.Login(ctx, "victim@example.com", "wrong")
	_, unknownEmail := auth.Login(ctx, "ghost@example.com", "secret1")

	if !errors.Is(wrongPassword, domain.ErrUnauthorized) {
		t.Fatalf("wrong password: expected ErrUnauthorized, got %v", wrongPassword)
	}
	if !errors.Is(unknownEmail, domain.ErrUnauthorized) {
		t.Fatalf("unknown email: expected ErrUnauthorized, got %v", unknownEmail)
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("failure modes must be indistinguishable: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestAuthService_SessionToken_RoundTrip(t *testing.T) {
	auth, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := auth.Register(ctx, "session", "session@example.com", "pw123", "pw123")
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	for _, remember := range []bool{false, true} {
		token, err := auth.SessionToken(user, remember)
		if err != nil {
			t.Fatalf("SessionToken(remember=%v): %v", remember, err)
		}
		gotID, err := auth.ValidateToken(token)
		if err != nil {
			t.Fatalf("ValidateToken: %v", err)
		}
		if gotID != user.ID {
			t.Fatalf("expected user id %d, got %d", user.ID, gotID)
		}
	}
}

func TestAuthService_ValidateToken_Garbage(t *testing.T) {
	auth, _ := newTestAuthService(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		if _, err := auth.ValidateToken(token); !errors.Is(err, domain.ErrUnauthorized) {
			t.Fatalf("token %q: expected ErrUnauthorized, got %v", token, err)
		}
	}
}

func TestAuthService_ResetToken_RoundTrip(t *testing.T) {
	auth, _ := newTestAuthService(t)

	token, err := auth.IssueResetToken(42)
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}

	userID, err := auth.VerifyResetToken(token)
	if err != nil {
		t.Fatalf("VerifyResetToken: %v", err)
	}
	if userID != 42 {
		t.Fatalf("expected bound user id 42, got %d", userID)
	}
}

func TestAuthService_ResetToken_NotASession(t *testing.T) {
	auth, _ := newTestAuthService(t)

	reset, err := auth.IssueResetToken(7)
	if err != nil {
		t.Fatalf("IssueResetToken: %v", err)
	}
	if _, err := auth.ValidateToken(reset); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("reset token must not open a session, got %v", err)
	}

	user := &domain.User{ID: 7, Username: "u"}
	session, err := auth.SessionToken(user, false)
	if err != nil {
		t.Fatalf("SessionToken: %v", err)
	}
	if _, err := auth.VerifyResetToken(session); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("session token must not pass as a reset token, got %v", err)
	}
}

func TestAuthService_ResetToken_ExpiredOrForged(t *testing.T) {
	auth, _ := newTestAuthService(t)

	sign := func(secret string, exp time.Time) string {
		claims := jwt.MapClaims{
			"sub":     strconv.FormatInt(42, 10),
			"purpose": "password_reset",
			"iat":     time.Now().Add(-time.Hour).Unix(),
			"exp":     exp.Unix(),
		}
		token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return token
	}

	tests := []struct {
		name  string
		token string
	}{
		{"expired", sign(testJWTSecret, time.Now().Add(-time.Minute))},
		{"wrong secret", sign("another-secret-entirely-here!!", time.Now().Add(time.Hour))},
		{"malformed", "not-a-token"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := auth.VerifyResetToken(tc.token); !errors.Is(err, domain.ErrUnauthorized) {
				t.Fatalf("expected ErrUnauthorized, got %v", err)
			}
		})
	}
}
