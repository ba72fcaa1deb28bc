package handler_test

import (
	"context"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/msomdec/plume/internal/handler"
	"github.com/msomdec/plume/internal/repository/media"
	"github.com/msomdec/plume/internal/repository/sqlite"
	"github.com/msomdec/plume/internal/service"
)

const testJWTSecret = "test-secret-for-handler-tests"

// stubMailer records sent mail and returns a configured error.
type stubMailer struct {
	err    error
	bodies []string
}

func (m *stubMailer) Send(ctx context.Context, to, subject, body string) error {
	if m.err != nil {
		return m.err
	}
	m.bodies = append(m.bodies, body)
	return nil
}

type testEnv struct {
	auth   *service.AuthService
	mux    *http.ServeMux
	mailer *stubMailer
}

func newTestEnv(t *testing.T) *testEnv {
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

	mediaDir := t.TempDir()
	avatars, err := media.NewAvatarStore(mediaDir)
	if err != nil {
		t.Fatalf("NewAvatarStore: %v", err)
	}

	mailer := &stubMailer{}
	auth := service.NewAuthService(db.Users(), testJWTSecret, 4)
	account := service.NewAccountService(db.Users(), avatars)
	posts := service.NewPostService(db.Posts())
	reset := service.NewResetService(db.Users(), auth, mailer, "http://example.com")

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, auth, account, posts, reset, mediaDir, false)

	return &testEnv{auth: auth, mux: mux, mailer: mailer}
}

// newTestClient returns a cookie-keeping client that does not follow
// redirects, so every hop can be asserted.
func newTestClient(t *testing.T, srv *httptest.Server) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("create cookie jar: %v", err)
	}
	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse // don't follow redirects automatically
		},
	}
}

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body: %v", err)
	}
	return string(body)
}

func signupUser(t *testing.T, client *http.Client, baseURL, username, email, password string) {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/signup", url.Values{
		"username":         {username},
		"email":            {email},
		"password":         {password},
		"confirm_password": {password},
	})
	if err != nil {
		t.Fatalf("POST /signup: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("signup: expected 303, got %d", resp.StatusCode)
	}
}

func signinUser(t *testing.T, client *http.Client, baseURL, email, password string) {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/signin", url.Values{
		"email":    {email},
		"password": {password},
	})
	if err != nil {
		t.Fatalf("POST /signin: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("signin: expected 303, got %d", resp.StatusCode)
	}
}

func createPost(t *testing.T, client *http.Client, baseURL, title, content string) {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/post/new", url.Values{
		"title":   {title},
		"content": {content},
	})
	if err != nil {
		t.Fatalf("POST /post/new: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("new post: expected 303, got %d", resp.StatusCode)
	}
}

func mustLocation(t *testing.T, resp *http.Response, want string) {
	t.Helper()
	if loc := resp.Header.Get("Location"); loc != want {
		t.Fatalf("expected redirect to %s, got %s", want, loc)
	}
}
