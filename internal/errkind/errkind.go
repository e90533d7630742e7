// Package errkind defines the error categories reported by the potential.
//
// Call sites wrap one of the sentinels with fmt.Errorf("...: %w", ...) so
// callers can classify failures with errors.Is.
package errkind

import "errors"

var (
	// ErrConfiguration reports invalid model hyperparameters. It is only
	// returned at construction time; no partial model is produced.
	ErrConfiguration = errors.New("configuration error")

	// ErrInvalidInput reports a malformed structure: non-finite
	// coordinates, a non-positive cutoff, mismatched array lengths or an
	// unknown element.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDomain reports degenerate geometry such as coincident atoms,
	// where angular features are undefined.
	ErrDomain = errors.New("domain error")
)
