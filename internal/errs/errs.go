// Package errs contains sentinel errors shared across layers so callers can
// map failures to HTTP responses with errors.Is instead of string matching.
package errs

import "errors"

var (
	// ErrStoreUnavailable indicates the backing table cannot be reached.
	// Endpoints map it to 503; the access recorder swallows it.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound indicates the requested entity does not exist. Note that a
	// period with no access events is NOT a not-found condition; it yields a
	// zero-valued summary.
	ErrNotFound = errors.New("not found")

	// ErrInvalidPeriod indicates a period string not in YYYY-MM form.
	ErrInvalidPeriod = errors.New("invalid period")
)
