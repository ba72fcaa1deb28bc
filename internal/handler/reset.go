package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/msomdec/plume/internal/domain"
	"github.com/msomdec/plume/internal/service"
)

// ResetHandler handles the two-step password-reset flow.
type ResetHandler struct {
	reset *service.ResetService
}

// NewResetHandler creates a new ResetHandler.
func NewResetHandler(reset *service.ResetService) *ResetHandler {
	return &ResetHandler{reset: reset}
}

// HandleRequestForm renders the reset-request form.
// GET /reset_password
func (h *ResetHandler) HandleRequestForm(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "reset_request.html", pageData{Title: "Reset Password"})
}

// HandleRequest emails a reset link. An unknown address is reported as
// such — this flow deliberately discloses whether an account exists. If
// the mail server cannot be reached the requester lands on the no-internet
// notice instead of an error page.
// POST /reset_password
func (h *ResetHandler) HandleRequest(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderInternalError(w, r, err)
		return
	}

	email := strings.TrimSpace(r.PostFormValue("email"))

	if err := h.reset.RequestReset(r.Context(), email); err != nil {
		var fe service.FieldErrors
		if errors.As(err, &fe) {
			render(w, r, http.StatusUnprocessableEntity, "reset_request.html", pageData{
				Title:  "Reset Password",
				Errors: fe,
				Form:   map[string]string{"email": email},
			})
			return
		}
		if errors.Is(err, domain.ErrMailUnavailable) {
			http.Redirect(w, r, "/no-internet", http.StatusSeeOther)
			return
		}
		renderInternalError(w, r, err)
		return
	}

	setFlash(w, "An email sent with instructions to reset your password", "info")
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// HandleTokenForm renders the new-password form after checking the token,
// bouncing dead links straight back to the request page.
// GET /reset_password/{token}
func (h *ResetHandler) HandleTokenForm(w http.ResponseWriter, r *http.Request) {
	if err := h.reset.VerifyToken(r.PathValue("token")); err != nil {
		h.redirectInvalidToken(w, r)
		return
	}
	render(w, r, http.StatusOK, "reset_token.html", pageData{Title: "Reset Password"})
}

// HandleToken applies the new password carried alongside a valid token.
// POST /reset_password/{token}
func (h *ResetHandler) HandleToken(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		renderInternalError(w, r, err)
		return
	}

	err := h.reset.CompleteReset(r.Context(), r.PathValue("token"),
		r.PostFormValue("password"), r.PostFormValue("confirm_password"))
	if err != nil {
		if errors.Is(err, domain.ErrUnauthorized) {
			h.redirectInvalidToken(w, r)
			return
		}
		var fe service.FieldErrors
		if errors.As(err, &fe) {
			render(w, r, http.StatusUnprocessableEntity, "reset_token.html", pageData{
				Title:  "Reset Password",
				Errors: fe,
			})
			return
		}
		renderInternalError(w, r, err)
		return
	}

	setFlash(w, "Your password has been updated! You are now able to login", "success")
	http.Redirect(w, r, "/signin", http.StatusSeeOther)
}

// HandleNoInternet renders the mail-server-unreachable notice.
// GET /no-internet
func (h *ResetHandler) HandleNoInternet(w http.ResponseWriter, r *http.Request) {
	render(w, r, http.StatusOK, "no_internet.html", pageData{Title: "No Internet"})
}

func (h *ResetHandler) redirectInvalidToken(w http.ResponseWriter, r *http.Request) {
	setFlash(w, "That is an invalid or expired token.", "warning")
	http.Redirect(w, r, "/reset_password", http.StatusSeeOther)
}
