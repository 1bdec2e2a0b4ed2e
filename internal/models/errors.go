package models

import "errors"

// Error taxonomy shared by every layer. Wrap with fmt.Errorf("...: %w", Err...)
// and test with errors.Is.
var (
	// ErrValidation marks malformed caller input (empty preferences, bad k).
	ErrValidation = errors.New("validation error")
	// ErrData marks an inconsistent snapshot at construction time.
	ErrData = errors.New("data error")
	// ErrNotFound marks a key absent from a repository.
	ErrNotFound = errors.New("not found")
	// ErrEncoding marks text that could not be embedded.
	ErrEncoding = errors.New("encoding error")
	// ErrRender marks a chart that could not be produced.
	ErrRender = errors.New("render error")
	// ErrInvalidArgument marks a malformed call into the ranker.
	ErrInvalidArgument = errors.New("invalid argument")
)
