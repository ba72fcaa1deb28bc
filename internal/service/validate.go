package service

import (
	"net/mail"
	"sort"
	"strings"

	"github.com/msomdec/plume/internal/domain"
)

// FieldErrors maps form field names to user-visible validation messages.
// It satisfies errors.Is(err, domain.ErrInvalidInput) so callers that do not
// care about individual fields can treat it like any other validation error.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for f := range e {
		fields = append(fields, f)
	}
	sort.Strings(fields)

	var b strings.Builder
	b.WriteString("invalid input:")
	for _, f := range fields {
		b.WriteString(" ")
		b.WriteString(f)
		b.WriteString(": ")
		b.WriteString(e[f])
		b.WriteString(";")
	}
	return strings.TrimSuffix(b.String(), ";")
}

func (e FieldErrors) Is(target error) bool {
	return target == domain.ErrInvalidInput
}

const requiredMessage = "This field is required."

func validateUsername(fe FieldErrors, username string) {
	if username == "" {
		fe["username"] = requiredMessage
		return
	}
	if len(username) < 2 || len(username) > 20 {
		fe["username"] = "Username must be between 2 and 20 characters long."
	}
}

func validateEmail(fe FieldErrors, email string) {
	if email == "" {
		fe["email"] = requiredMessage
		return
	}
	if !validEmail(email) {
		fe["email"] = "Invalid email address."
	}
}

func validatePasswordPair(fe FieldErrors, password, confirm string) {
	if password == "" {
		fe["password"] = requiredMessage
	}
	if confirm == "" {
		fe["confirm_password"] = requiredMessage
	} else if password != "" && password != confirm {
		fe["confirm_password"] = "Passwords must match."
	}
}

// validEmail accepts a bare RFC 5322 address without display name.
func validEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	return err == nil && addr.Address == email
}
