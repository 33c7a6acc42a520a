package quiz

import "errors"

// Error kinds. Handlers map these onto HTTP statuses; the mutating attempt
// operations instead fold them into structured {success:false} results.
var (
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
	ErrValidation = errors.New("validation failed")
	ErrForbidden  = errors.New("forbidden")
)

func isNotFound(err error) bool { return errors.Is(err, ErrNotFound) }
