// Package service provides business logic implementations.
package service

import "errors"

var (
	// ErrNotAuthenticated means the caller has no resolved identity.
	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrStoreUnavailable wraps any failure of the backing store. Callers
	// must deny the triggering action.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrUnknownProvider means the provider is not supported or not configured.
	ErrUnknownProvider = errors.New("unknown or unconfigured provider")

	// ErrEmailRequired means the provider did not return an email.
	ErrEmailRequired = errors.New("email is required")

	// ErrSubjectRequired means the provider did not return a subject id.
	ErrSubjectRequired = errors.New("provider subject id is required")

	// ErrNotFound means the addressed resource does not exist for the caller.
	ErrNotFound = errors.New("not found")

	// ErrForbidden means the caller may not perform the operation.
	ErrForbidden = errors.New("forbidden")

	// ErrUpstreamUnavailable means a third-party dependency is not configured or failed.
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
)
