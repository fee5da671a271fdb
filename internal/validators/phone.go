package validators

import (
	"regexp"
	"strings"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

var (
	phonePlus7 = regexp.MustCompile(`^\+7\d{10}$`)
	phone8     = regexp.MustCompile(`^8\d{10}$`)

	phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "")
)

// NormalizePhone returns the canonical +7XXXXXXXXXX form.
// Accepted inputs are +7 or 8 followed by ten digits, with optional
// spaces, dashes and parentheses.
func NormalizePhone(phone string) (string, error) {
	if strings.TrimSpace(phone) == "" {
		return "", httperr.ErrValidation("phone_required", "Phone is required.")
	}

	clean := phoneNoise.Replace(strings.TrimSpace(phone))

	switch {
	case phonePlus7.MatchString(clean):
		return clean, nil
	case phone8.MatchString(clean):
		return "+7" + clean[1:], nil
	}

	return "", httperr.ErrValidation("invalid_phone", "Invalid phone format, use +7XXXXXXXXXX.")
}
