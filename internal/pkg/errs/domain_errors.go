package errs

// Error kinds shared by every layer. Concrete errors carry one of these so
// the transport layer can pick a status without knowing the origin.
var (
	ErrValidation = New("validation error")
	ErrNotFound   = New("resource not found")
	ErrForbidden  = New("operation forbidden")
	ErrConflict   = New("state conflict")
	ErrDependency = New("dependency failure")

	// ErrUnauthenticated covers missing, invalid or expired credentials.
	ErrUnauthenticated = New("authentication required")
)

var kinds = []error{ErrValidation, ErrNotFound, ErrForbidden, ErrConflict, ErrDependency, ErrUnauthenticated}

type kindedError struct {
	msg  string
	kind error
}

func (e *kindedError) Error() string { return e.msg }

func (e *kindedError) Is(target error) bool { return target == e.kind }

// Kinded creates a sentinel error of the given kind. Each sentinel keeps its
// own identity; Is(err, kind) holds for all of them.
func Kinded(kind error, msg string) error {
	return &kindedError{msg: msg, kind: kind}
}

// KindOf returns the kind err carries, or nil.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, k := range kinds {
		if Is(err, k) {
			return k
		}
	}
	return nil
}
