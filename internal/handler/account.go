package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/msomdec/plume/internal/service"
)

// maxUploadSize caps the multipart body on account submissions.
const maxUploadSize = 10 << 20 // 10MB

// AccountHandler handles the profile page and profile updates.
type AccountHandler struct {
	account *service.AccountService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(account *service.AccountService) *AccountHandler {
	return &AccountHandler{account: account}
}

// HandleAccountForm renders the account page pre-filled with the current
// profile.
// GET /account
func (h *AccountHandler) HandleAccountForm(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())
	render(w, r, http.StatusOK, "account.html", pageData{
		Title: "Account",
		Form:  map[string]string{"username": user.Username, "email": user.Email},
	})
}

// HandleAccountUpdate processes an account submission, including an
// optional new profile picture. A submission that changes nothing writes
// nothing and redirects without a notice.
// POST /account
func (h *AccountHandler) HandleAccountUpdate(w http.ResponseWriter, r *http.Request) {
	user := UserFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		render(w, r, http.StatusRequestEntityTooLarge, "account.html", pageData{
			Title:  "Account",
			Errors: service.FieldErrors{"picture": "That file is too large."},
			Form:   map[string]string{"username": user.Username, "email": user.Email},
		})
		return
	}

	username := strings.TrimSpace(r.PostFormValue("username"))
	email := strings.TrimSpace(r.PostFormValue("email"))

	upload, err := readUpload(r)
	if err != nil {
		renderInternalError(w, r, err)
		return
	}

	changed, err := h.account.Update(r.Context(), user, username, email, upload)
	if err != nil {
		var fe service.FieldErrors
		if errors.As(err, &fe) {
			render(w, r, http.StatusUnprocessableEntity, "account.html", pageData{
				Title:  "Account",
				Errors: fe,
				Form:   map[string]string{"username": username, "email": email},
			})
			return
		}
		renderInternalError(w, r, err)
		return
	}

	if changed {
		setFlash(w, "Your account has been updated!", "success")
	}
	http.Redirect(w, r, "/account", http.StatusSeeOther)
}

// readUpload pulls the optional picture out of the multipart form. A
// missing file field means no new picture.
func readUpload(r *http.Request) (*service.AvatarUpload, error) {
	file, header, err := r.FormFile("picture")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, err
	}

	return &service.AvatarUpload{Filename: header.Filename, Data: data}, nil
}
