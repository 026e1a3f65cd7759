package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return cr.Wrapf(err, format, args...)
}

func New(msg string) error {
	return cr.New(msg)
}

func Newf(format string, args ...any) error {
	return cr.Newf(format, args...)
}

// Mark tags err with markErr. When markErr is a kinded sentinel, err also
// carries its kind.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	out := cr.Mark(err, markErr)
	if k := KindOf(markErr); k != nil && k != markErr {
		out = cr.Mark(out, k)
	}
	return out
}

// Public returns an error that reads as sentinel and matches it, with cause
// kept as detail for verbose formatting.
func Public(sentinel, cause error) error {
	if cause == nil {
		return sentinel
	}
	return cr.WithSecondaryError(sentinel, cause)
}

func Is(err, reference error) bool {
	return cr.Is(err, reference)
}

func As(err error, target any) bool {
	return cr.As(err, target)
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}

// Join combines errs, dropping nils. It returns nil when every err is nil.
func Join(errs ...error) error {
	return cr.Join(errs...)
}
