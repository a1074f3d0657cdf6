// Package vaulterr declares the error-kind taxonomy a Vault-backed client
// reports to its caller (spec.md §7). Error kinds that map directly onto a
// Matrix C-S API error body reuse gomatrixserverlib/spec's MatrixError the
// same way dendrite's own clientapi/httputil.MatrixErrorResponse does,
// instead of re-declaring an errcode enum.
package vaulterr

import (
	"errors"
	"fmt"

	"github.com/matrix-org/gomatrixserverlib/spec"
	"github.com/sirupsen/logrus"
)

// TransportError wraps a network failure, timeout, or non-JSON body
// reported by the (external) transport. Nothing in this module retries a
// failed request.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error during %s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a structurally invalid JSON body or a coder
// andThen-validator failure (e.g. a hashdict hash mismatch). It is fatal
// to the current request but never corrupts the Vault.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("decode error: %v", e.Err)
	}
	return fmt.Sprintf("decode error at %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// InvariantViolation is a DecodeError with a fixed, specific message
// (spec.md §7: "e.g. hashdict load failed"). It is always surfaced
// wrapped as a DecodeError.
func InvariantViolation(path, message string) *DecodeError {
	return &DecodeError{Path: path, Err: errors.New(message)}
}

// AuthError wraps a 401-class response. Recovery (remove the access
// token, optionally refresh) is the caller's/task chain's job; this type
// only carries enough information to drive that decision.
type AuthError struct {
	MatrixErr spec.MatrixError
	Expired   bool // set by FromMatrixError for every M_UNKNOWN_TOKEN with HTTP status 401; an expired token and an invalid one are not told apart
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication error: %s", e.MatrixErr.Error())
}

// RateLimited wraps a 429 / M_LIMIT_EXCEEDED response, carrying the
// homeserver's retry-after hint (milliseconds, 0 if absent).
type RateLimited struct {
	MatrixErr    spec.MatrixError
	RetryAfterMs int64
}

func (e *RateLimited) Error() string {
	return fmt.Sprintf("rate limited (retry after %dms): %s", e.RetryAfterMs, e.MatrixErr.Error())
}

// Forbidden wraps a 403 / M_FORBIDDEN response. Surfaced to the caller
// with no state change.
type Forbidden struct {
	MatrixErr spec.MatrixError
}

func (e *Forbidden) Error() string {
	return e.MatrixErr.Error()
}

// UnsupportedVersion means no versioned-dispatch implementation was
// compatible with the homeserver's advertised versions (spec.md §4.4).
// Fatal to the specific operation; does not corrupt the Vault.
type UnsupportedVersion struct {
	Operation          string
	AdvertisedVersions []string
}

func (e *UnsupportedVersion) Error() string {
	return fmt.Sprintf("unsupported homeserver version for endpoint %q (advertised: %v)", e.Operation, e.AdvertisedVersions)
}

// FromMatrixError classifies a decoded spec.MatrixError into one of the
// richer kinds above, mirroring the status-code switch in dendrite's
// clientapi/httputil.MatrixErrorResponse (run in reverse: there the
// switch picks an HTTP status for an outgoing error; here it picks an
// error kind for an incoming one).
func FromMatrixError(me spec.MatrixError, httpStatus int) error {
	log := logrus.WithField("errcode", me.ErrCode).WithField("status", httpStatus)
	switch me.ErrCode {
	case spec.ErrorForbidden, spec.ErrorUnableToAuthoriseJoin:
		log.Warn("vaulterr: forbidden")
		return &Forbidden{MatrixErr: me}
	case spec.ErrorLimitExceeded:
		log.Warn("vaulterr: rate limited")
		return &RateLimited{MatrixErr: me}
	case spec.ErrorUnknownToken, spec.ErrorMissingToken:
		log.Warn("vaulterr: auth error")
		return &AuthError{MatrixErr: me, Expired: me.ErrCode == spec.ErrorUnknownToken && httpStatus == 401}
	default:
		log.Warn("vaulterr: unclassified error treated as decode error")
		return &DecodeError{Err: me}
	}
}
