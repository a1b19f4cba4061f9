// Package errors has the sentinel errors shared by the domain stores.
package errors

import "errors"

// ErrMissing: a referenced record does not exist.
var ErrMissing = errors.New("missing data")

// ErrConflict: a uniqueness constraint rejected the write.
var ErrConflict = errors.New("conflicting data")

// ErrDenied: the tenant is not allowed to touch the record.
var ErrDenied = errors.New("access denied")

// ErrUnavailable: the backing store cannot be reached.
var ErrUnavailable = errors.New("store unavailable")

// Missing describes which record was not found.
type Missing struct {
	Table    string
	Identity string
}

var _ error = Missing{}

func (m Missing) Error() string {
	return m.Identity + " is not found in " + m.Table
}

func (m Missing) Unwrap() error {
	return ErrMissing
}

// Conflict describes which record collided.
type Conflict struct {
	Table    string
	Identity string
}

var _ error = Conflict{}

func (c Conflict) Error() string {
	return c.Identity + " already exists in " + c.Table
}

func (c Conflict) Unwrap() error {
	return ErrConflict
}
