package usecase

import (
	"fmt"
	"net/mail"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEnrichContactInput only demands a non-blank email unless strict is set, in
// which case the address must parse as a mailbox with a dotted domain.
func ValidateEnrichContactInput(input EnrichContactInput, strict bool) []ValidationError {
	var errors []ValidationError

	email := strings.TrimSpace(input.Email)
	if email == "" {
		errors = append(errors, ValidationError{"email", MsgEmailRequired})
		return errors
	}

	if strict && !isValidEmail(email) {
		errors = append(errors, ValidationError{"email", "Email is invalid"})
	}

	return errors
}

func isValidEmail(email string) bool {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return false
	}
	at := strings.LastIndex(email, "@")
	if at <= 0 {
		return false
	}
	domain := email[at+1:]
	return strings.Contains(domain, ".") && !strings.HasPrefix(domain, ".") && !strings.HasSuffix(domain, ".")
}
