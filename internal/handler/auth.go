package handler

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/msomdec/plume/internal/domain"
	"github.com/msomdec/plume/internal/service"
)

const authCookie = "auth_token"

// AuthHandler handles signup, signin, and logout.
type AuthHandler struct {
	auth         *service.AuthService
	cookieSecure bool
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(auth *service.AuthService, cookieSecure bool) *AuthHandler {
	return &AuthHandler{auth: auth, cookieSecure: cookieSecure}
}

// HandleSignupForm renders the signup form.
// GET /signup
func (h *AuthHandler) HandleSignupForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "signup.html", pageData{Title: "Sign Up"})
}

// HandleSignup processes a signup submission. Validation problems re-render
// the form with field messages; success flashes a notice and redirects to
// the signin page.
// POST /signup
func (h *AuthHandler) HandleSignup(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderInternalError(w, r, err)
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))

	_, err := h.auth.Register(r.Context(), username, email,
		r.PostFormValue("password"), r.PostFormValue("confirm_password"))
	if err != nil {
		var fe service.FieldErrors
		if errors.As(err, &fe) {
			render(w, r, http.StatusUnprocessableEntity, "signup.html", pageData{
				Title:  "Sign Up",
				Errors: fe,
				Form:   map[string]string{"username": username, "email": email},
			})
			return
		}
		renderInternalError(w, r, err)
		return
	}

	setFlash(w, "Your account has been created! You are now able to login", "success")
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// HandleSigninForm renders the signin form, carrying through a pending
// ?next= target.
// GET /signin
func (h *AuthHandler) HandleSigninForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "signin.html", pageData{
		Title: "Sign In",
		Form:  map[string]string{"next": r.URL.Query().Get("next")},
	})
}

// HandleSignin processes a signin submission. Unknown email and wrong
// password produce the identical notice.
// POST /signin
func (h *AuthHandler) HandleSignin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderInternalError(w, r, err)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))
	remember := r.PostFormValue("remember") == "on"
	next := r.PostFormValue("next")

	user, err := h.auth.Login(r.Context(), email, r.PostFormValue("password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			// A plain page with the failure notice, not an error status.
			render(w, r, http.StatusOK, "signin.html", pageData{
				Title: "Sign In",
				Flash: &Flash{Message: "Login Failed. Please check email & password", Category: "danger"},
				Form:  map[string]string{"email": email, "next": next},
			})
			return
		}
		renderInternalError(w, r, err)
		return
	}

	token, err := h.auth.SessionToken(user, remember)
	if err != nil {
		renderInternalError(w, r, err)
		return
	}

	cookie := &http.Cookie{
		Name:     authCookie,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
	}
	if remember {
		cookie.MaxAge = 30 * 24 * 60 * 60
	}
	http.SetCookie(w, cookie)

	slog.Info("user signed in", "user_id", user.ID)
	http.Redirect(w, r, safeNext(next), http.StatusSeeOther)
}

// HandleLogout clears the session cookie and redirects Home. It succeeds
// whether or not a session exists.
// GET /logout
func (h *AuthHandler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     authCookie,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   h.cookieSecure,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   -1,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeNext only honors same-site relative redirect targets.
func safeNext(next string) string {
	if strings.HasPrefix(next, "/") && !strings.HasPrefix(next, "//") {
		return next
	}
	return "/"
}
