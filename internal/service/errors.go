package service

import "fmt"

// ErrorKind distinguishes the two operation-level failures.
type ErrorKind string

const (
	// KindUpstreamInsufficient: a mandatory feed was absent or too sparse.
	KindUpstreamInsufficient ErrorKind = "upstream_insufficient"
	// KindInternal: an unexpected fault while merging.
	KindInternal ErrorKind = "internal"
)

// Error is returned by Aggregate and Refresh instead of a partial dataset.
type Error struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }
