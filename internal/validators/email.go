package validators

import (
	"regexp"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// NormalizeEmail validates an optional email and lower-cases it.
// An empty input is valid and stays empty.
func NormalizeEmail(email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", nil
	}

	if len(email) > 254 {
		return "", httperr.ErrValidation("invalid_email", "Email is too long.")
	}

	if !emailPattern.MatchString(email) {
		return "", httperr.ErrValidation("invalid_email", "Invalid email format.")
	}

	return strings.ToLower(email), nil
}
