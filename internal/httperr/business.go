package httperr

import "errors"

// Kind classifies a business error for the caller and for HTTP mapping.
type Kind string

const (
	KindValidation Kind = "validation"
	KindConflict   Kind = "conflict"
	KindNotFound   Kind = "not_found"
	KindStorage    Kind = "storage"
)

type BusinessError struct {
	Kind    Kind
	Code    string
	Message string
	Details map[string]any
	Err     error
}

func (e BusinessError) Error() string {
	if e.Message != "" {
		return e.Code + ": " + e.Message
	}
	if e.Err != nil {
		return e.Code + ": " + e.Err.Error()
	}
	return e.Code
}

func (e BusinessError) Unwrap() error {
	return e.Err
}

// ErrBusiness is kept for plain coded rule violations; they are validation errors.
func ErrBusiness(code string) error {
	return BusinessError{Kind: KindValidation, Code: code}
}

func ErrValidation(code, message string) error {
	return BusinessError{Kind: KindValidation, Code: code, Message: message}
}

func ErrConflict(code, message string) error {
	return BusinessError{Kind: KindConflict, Code: code, Message: message}
}

func ErrConflictWith(code, message string, details map[string]any) error {
	return BusinessError{Kind: KindConflict, Code: code, Message: message, Details: details}
}

func ErrNotFound(code, message string) error {
	return BusinessError{Kind: KindNotFound, Code: code, Message: message}
}

// ErrStorage wraps an unclassified store failure. Business errors pass through.
func ErrStorage(err error) error {
	if err == nil {
		return nil
	}
	var be BusinessError
	if errors.As(err, &be) {
		return err
	}
	return BusinessError{Kind: KindStorage, Code: "storage_error", Err: err}
}

func IsBusiness(err error, code string) bool {
	var be BusinessError
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}

// KindOf reports the kind of err; anything that is not a BusinessError is storage.
func KindOf(err error) Kind {
	if err == nil {
		return ""
	}
	var be BusinessError
	if errors.As(err, &be) {
		return be.Kind
	}
	return KindStorage
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
