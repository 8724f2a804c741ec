package errors

import "errors"

var (
	// ErrNotFound is a generic sentinel for missing resources (fixture files, catalog entries).
	ErrNotFound = errors.New("not found")
	// ErrInvalidArgument is a generic sentinel for malformed keys and fixture documents.
	ErrInvalidArgument = errors.New("invalid argument")
)
