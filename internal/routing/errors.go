package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel error kinds for this package. These allow errors.Is/As from callers.
var (
	ErrNotFound       = errors.New("route not found")
	ErrNoReverseMatch = errors.New("no reverse match")
	ErrInvalidPattern = errors.New("invalid route pattern")
	ErrInvalidEntry   = errors.New("invalid route entry")
)

// NotFoundError reports a path that no entry matched, with the patterns tried
// in declaration order. It unwraps to ErrNotFound.
type NotFoundError struct {
	Path  string
	Tried []string
}

func (e *NotFoundError) Error() string {
	if len(e.Tried) == 0 {
		return fmt.Sprintf("%s: %q", ErrNotFound, e.Path)
	}
	return fmt.Sprintf("%s: %q (tried %s)", ErrNotFound, e.Path, strings.Join(e.Tried, ", "))
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }
