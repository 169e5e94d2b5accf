package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrDuplicateKey           = errors.New("duplicate key")
	ErrNotFound               = errors.New("not found")
	ErrUnknownReference       = errors.New("unknown reference")
	ErrInactiveReference      = errors.New("inactive reference")
	ErrInvalidStatus          = errors.New("invalid status")
	ErrInvalidDate            = errors.New("invalid date")
	ErrInvalidField           = errors.New("invalid field")
	ErrStoreUnavailable       = errors.New("store unavailable")
	ErrCriticalPartialFailure = errors.New("critical partial failure")
)

// DerivedKeyFailure records one derived-store write that did not apply.
type DerivedKeyFailure struct {
	Key    string `json:"key"`
	Member string `json:"member"`
	Error  string `json:"error"`
}

// PartialFailureError is returned when the primary insert committed but at
// least one derived-store update failed. The primary row is never rolled back.
type PartialFailureError struct {
	StorageRef   uuid.UUID           `json:"storage_ref"`
	PolicyNumber string              `json:"nro_poliza"`
	Failures     []DerivedKeyFailure `json:"failures"`
	Err          error               `json:"-"`
}

func (e *PartialFailureError) Error() string {
	keys := make([]string, len(e.Failures))
	for i, failure := range e.Failures {
		keys[i] = failure.Key + "[" + failure.Member + "]"
	}
	return fmt.Sprintf("%s: policy %s stored as %s but derived update failed for %s: %v",
		ErrCriticalPartialFailure, e.PolicyNumber, e.StorageRef, strings.Join(keys, ", "), e.Err)
}

func (e *PartialFailureError) Unwrap() []error {
	return []error{ErrCriticalPartialFailure, e.Err}
}

// FailedKeys lists the derived keys that were not updated.
func (e *PartialFailureError) FailedKeys() []string {
	keys := make([]string, len(e.Failures))
	for i, failure := range e.Failures {
		keys[i] = failure.Key
	}
	return keys
}

// ErrorCode maps an error to the stable code used by the HTTP layer and the CLI.
func ErrorCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCriticalPartialFailure):
		return "CRITICAL_PARTIAL_FAILURE"
	case errors.Is(err, ErrStoreUnavailable):
		return "STORE_UNAVAILABLE"
	case errors.Is(err, ErrDuplicateKey):
		return "DUPLICATE_KEY"
	case errors.Is(err, ErrUnknownReference):
		return "UNKNOWN_REFERENCE"
	case errors.Is(err, ErrInactiveReference):
		return "INACTIVE_REFERENCE"
	case errors.Is(err, ErrNotFound):
		return "NOT_FOUND"
	case errors.Is(err, ErrInvalidStatus):
		return "INVALID_STATUS"
	case errors.Is(err, ErrInvalidDate):
		return "INVALID_DATE"
	case errors.Is(err, ErrInvalidField):
		return "INVALID_FIELD"
	default:
		return "INTERNAL_ERROR"
	}
}
