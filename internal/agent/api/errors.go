package api

import (
	"fmt"

	"github.com/dmitrijs2005/fieldreport/internal/common"
)

// APIError carries the HTTP status of a failed request. Unwrap yields a
// sentinel from the common package so the sync engine can decide between
// retrying (transient) and flagging for review (permanent reject).
type APIError struct {
	StatusCode int
	Message    string
	kind       error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("server returned %d", e.StatusCode)
}

func (e *APIError) Unwrap() error { return e.kind }

// newAPIError classifies an HTTP status. 5xx, timeouts and throttling are
// transient; 401 is an auth problem; the remaining 4xx mean the server will
// never accept this payload.
func newAPIError(statusCode int, message string) *APIError {
	kind := common.ErrUnavailable
	switch {
	case statusCode == 401:
		kind = common.ErrorUnauthorized
	case statusCode == 404:
		kind = common.ErrorNotFound
	case statusCode == 408 || statusCode == 429:
		kind = common.ErrUnavailable
	case statusCode >= 400 && statusCode < 500:
		kind = common.ErrPermanentReject
	}
	return &APIError{StatusCode: statusCode, Message: message, kind: kind}
}
