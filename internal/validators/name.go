package validators

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

var namePattern = regexp.MustCompile(`^[а-яА-ЯёЁa-zA-Z\s-]+$`)

const (
	nameMinLen = 2
	nameMaxLen = 50
)

// ValidateName checks a person name: 2..50 letters, spaces or hyphens.
// field is used in the error code, e.g. "first_name".
func ValidateName(name, field string, required bool) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		if required {
			return "", httperr.ErrValidation(field+"_required", fmt.Sprintf("%s is required.", field))
		}
		return "", nil
	}

	n := utf8.RuneCountInString(name)
	if n < nameMinLen || n > nameMaxLen {
		return "", httperr.ErrValidation(
			"invalid_"+field,
			fmt.Sprintf("%s must be %d to %d characters.", field, nameMinLen, nameMaxLen),
		)
	}

	if !namePattern.MatchString(name) {
		return "", httperr.ErrValidation("invalid_"+field, fmt.Sprintf("%s must contain only letters.", field))
	}

	return name, nil
}
