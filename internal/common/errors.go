// Package common defines shared constants and sentinel errors used across
// agent and server layers of fieldreport. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrStorage marks local durable-store failures. A capture that fails to
	// persist must surface this to the caller instead of being dropped.
	ErrStorage = errors.New("storage error")

	// ErrRemoteIDConflict is returned when a sync result would assign a
	// remote id that another local record already holds.
	ErrRemoteIDConflict = errors.New("remote id already assigned")

	// Service-level errors.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// ErrValidation marks a request the server will never accept as given.
	// Mapped to 422 so clients can tell it apart from transient failures.
	ErrValidation = errors.New("validation failed")

	// ErrPermanentReject marks a submission the server refused for good
	// (validation failure). Retrying the same payload cannot succeed, so the
	// record is flagged for manual review instead of staying in the retry set.
	ErrPermanentReject = errors.New("permanently rejected by server")

	// ErrUnavailable marks transient transport failures: timeouts, refused
	// connections, 5xx responses. The record stays pending and is retried on
	// the next sync trigger.
	ErrUnavailable = errors.New("server unavailable")

	// Auth errors.
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrInvalidCredentials = errors.New("invalid username/password")
	ErrLoginAlreadyExists = errors.New("login already exists")
	ErrInvalidLoginFormat = errors.New("invalid login format")
)
