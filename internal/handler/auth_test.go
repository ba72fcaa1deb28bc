package handler_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
)

func TestSignup_FormRenders(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()
	client := newTestClient(t, srv)

	resp, err := client.Get(srv.URL + "/signup")
	if err != nil {
		t.Fatalf("GET /signup: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, `name="confirm_password"`) {
		t.Fatal("expected signup form fields")
	}
}

func TestSignup_SuccessRedirectsToSignin(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()
	client := newTestClient(t, srv)

	resp, err := client.PostForm(srv.URL+"/signup", url.Values{
		"username":         {"alice"},
		"email":            {"alice@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	})
	if err != nil {
		t.Fatalf("POST /signup: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	mustLocation(t, resp, "/signin")

	// The signin page shows the queued flash.
	resp, err = client.Get(srv.URL + "/signin")
	if err != nil {
		t.Fatalf("GET /signin: %v", err)
	}
	body := readBody(t, resp)
	if !strings.Contains(body, "Your account has been created!") {
		t.Fatal("expected signup flash on signin page")
	}
}

func TestSignup_DuplicateFlagsField(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()
	client := newTestClient(t, srv)

	signupUser(t, client, srv.URL, "bob", "bob@example.com", "secret1")

	resp, err := client.PostForm(srv.URL+"/signup", url.Values{
		"username":         {"bob"},
		"email":            {"fresh@example.com"},
		"password":         {"secret1"},
		"confirm_password": {"secret1"},
	})
	if err != nil {
		t.Fatalf("POST /signup: %v", err)
	}
	body := readBody(t, resp)
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.StatusCode)
	}
	if !strings.Contains(body, "This username is taken.") {
		t.Fatal("expected username-taken message in form")
	}
	// The submitted values survive the re-render.
	if !strings.Contains(body, `value="fresh@example.com"`) {
		t.Fatal("expected submitted email preserved")
	}
}

var flashRe = regexp.MustCompile(`(?s)<div class="flash[^"]*"[^>]*>(.*?)</div>`)

func signinFailureMessage(t *testing.T, client *http.Client, baseURL, email, password string) string {
	t.Helper()
	resp, err := client.PostForm(baseURL+"/signin", url.Values{
		"email":    {email},
		"password": {password},
	})
	if err != nil {
		t.Fatalf("POST /signin: %v", err)
	}
	body := readBody(t, resp)
	// The form comes back as a normal page carrying the failure notice.
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	m := flashRe.FindStringSubmatch(body)
	if m == nil {
		t.Fatalf("no flash notice in body:\n%s", body)
	}
	return strings.TrimSpace(m[1])
}

func TestSignin_FailuresAreIndistinguishable(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()
	client := newTestClient(t, srv)

	signupUser(t, client, srv.URL, "carol", "carol@example.com", "secret1")

	wrongPassword := signinFailureMessage(t, client, srv.URL, "carol@example.com", "wrong")
	unknownEmail := signinFailureMessage(t, client, srv.URL, "ghost@example.com", "secret1")

	if wrongPassword != unknownEmail {
		t.Fatalf("failure notices differ: %q vs %q", wrongPassword, unknownEmail)
	}
	if !strings.Contains(wrongPassword, "Login Failed") {
		t.Fatalf("unexpected notice %q", wrongPassword)
	}
}

func TestSignin_RememberControlsCookieLifetime(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()
	client := newTestClient(t, srv)

	signupUser(t, client, srv.URL, "dave", "dave@example.com", "secret1")

	tests := []struct {
		name       string
		remember   string
		wantMaxAge bool
	}{
		{"session cookie", "", false},
		{"persistent cookie", "on", true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := client.PostForm(srv.URL+"/signin", url.Values{
				"email":    {"dave@example.com"},
				"password": {"secret1"},
				"remember": {tc.remember},
			})
			if err != nil {
				t.Fatalf("POST /signin: %v", err)
			}
			resp.Body.Close()

			var found *http.Cookie
			for _, c := range resp.Cookies() {
				if c.Name == "auth_token" {
					found = c
				}
			}
			if found == nil {
				t.Fatal("expected auth_token cookie")
			}
			if tc.wantMaxAge && found.MaxAge == 0 {
				t.Fatal("expected a persistent cookie")
			}
			if !tc.wantMaxAge && found.MaxAge != 0 {
				t.Fatalf("expected a session cookie, got MaxAge %d", found.MaxAge)
			}
		})
	}
}

func TestLogout_IdempotentAndClearsCookie(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.mux)
	defer srv.Close()
	client := newTestClient(t, srv)

	// Logging out without a session still redirects home.
	resp, err := client.Get(srv.URL + "/logout")
	if err != nil {
		t.Fatalf("GET /logout: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected 303, got %d", resp.StatusCode)
	}
	mustLocation(t, resp, "/")

	signupUser(t, client, srv.URL, "erin", "erin@example.com", "secret1")
	signinUser(t, client, srv.URL, "erin@example.com", "secret1")

	resp, err = client.Get(srv.URL + "/logout")
	if err != nil {
		t.Fatalf("GET /logout: %v", err)
	}
	resp.Body.Close()

	// The protected account page is now out of reach again.
	resp, err = client.Get(srv.URL + "/account")
	if err != nil {
		t.Fatalf("GET /account: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusSeeOther {
		t.Fatalf("expected redirect to signin after logout, got %d", resp.StatusCode)
	}
}
