// Package apperr defines the error taxonomy shared by resolution and dispatch.
package apperr

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnsupportedOS      = errors.New("capability not available on this operating system")
	ErrTargetNotFound     = errors.New("target does not exist")
	ErrCitationUnresolved = errors.New("citation unresolved")
	ErrCitationDepth      = errors.New("citation chain too deep")
	ErrEmptyHistory       = errors.New("no previous document")
)
