package validators

import (
	"strings"
	"unicode/utf8"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
)

const (
	NotesMaxLen  = 500
	SourceMaxLen = 50

	searchMinLen = 2
	searchMaxLen = 100
)

var (
	markupPatterns = []string{"<script", "javascript:", "onerror=", "onclick="}
	sqlPatterns    = []string{"--", ";", "/*", "*/", "XP_", "SP_", "DROP", "DELETE", "INSERT", "UPDATE", "CREATE", "ALTER"}
)

// ValidateNotes bounds free-text notes and rejects markup/script injection.
func ValidateNotes(notes string) (string, error) {
	notes = strings.TrimSpace(notes)
	if notes == "" {
		return "", nil
	}

	if utf8.RuneCountInString(notes) > NotesMaxLen {
		return "", httperr.ErrValidation("notes_too_long", "Notes are limited to 500 characters.")
	}

	lower := strings.ToLower(notes)
	for _, p := range markupPatterns {
		if strings.Contains(lower, p) {
			return "", httperr.ErrValidation("unsafe_notes", "Notes contain forbidden markup.")
		}
	}

	return notes, nil
}

func ValidateSource(source, fallback string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return fallback, nil
	}
	if utf8.RuneCountInString(source) > SourceMaxLen {
		return "", httperr.ErrValidation("invalid_source", "Source tag is too long.")
	}
	return source, nil
}

func ValidateSearchQuery(query string) (string, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return "", httperr.ErrValidation("empty_query", "Search query is empty.")
	}

	n := utf8.RuneCountInString(query)
	if n < searchMinLen {
		return "", httperr.ErrValidation("query_too_short", "Search query needs at least 2 characters.")
	}
	if n > searchMaxLen {
		return "", httperr.ErrValidation("query_too_long", "Search query is too long.")
	}

	upper := strings.ToUpper(query)
	for _, p := range sqlPatterns {
		if strings.Contains(upper, p) {
			return "", httperr.ErrValidation("unsafe_query", "Search query contains forbidden characters.")
		}
	}

	return query, nil
}
