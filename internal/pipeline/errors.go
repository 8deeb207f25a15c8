package pipeline

import "errors"

// modelNotFoundError signals that no model file could be resolved.
type modelNotFoundError struct{ id, reason string }

func (e modelNotFoundError) Error() string {
	if e.reason == "" {
		return "model not found: " + e.id
	}
	return "model not found: " + e.id + ": " + e.reason
}

// ErrModelNotFound returns an error for a model that could not be resolved.
func ErrModelNotFound(id, reason string) error { return modelNotFoundError{id: id, reason: reason} }

// IsModelNotFound reports whether err indicates an unresolvable model.
func IsModelNotFound(err error) bool {
	var e modelNotFoundError
	return errors.As(err, &e)
}

// dependencyUnavailableError signals a missing external dependency (llama.cpp
// not compiled in, llama-server unreachable).
type dependencyUnavailableError struct{ msg string }

func (e dependencyUnavailableError) Error() string { return e.msg }

// ErrDependencyUnavailable constructs a dependencyUnavailableError.
func ErrDependencyUnavailable(msg string) error { return dependencyUnavailableError{msg: msg} }

// IsDependencyUnavailable reports whether err indicates a missing/failed runtime dependency.
func IsDependencyUnavailable(err error) bool {
	var e dependencyUnavailableError
	return errors.As(err, &e)
}

// invalidOptionsError signals generation parameters the pipeline refuses.
type invalidOptionsError struct{ msg string }

func (e invalidOptionsError) Error() string { return e.msg }

// IsInvalidOptions reports whether err was caused by bad generation options.
func IsInvalidOptions(err error) bool {
	var e invalidOptionsError
	return errors.As(err, &e)
}
