// Package apperr defines the route discovery core's error taxonomy: a
// closed set of kinds (not types) that every layer surfaces through, so the
// HTTP boundary can map a single sentinel-wrapped error to a status code
// without inspecting concrete types.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is one entry of the taxonomy in §7.
type Kind string

const (
	KindValidation           Kind = "validation"
	KindInsufficientPois     Kind = "insufficient_pois"
	KindDirectionsTransient  Kind = "directions_transient"
	KindDirectionsFatal      Kind = "directions_fatal"
	KindDirectionsUnavailable Kind = "directions_unavailable"
	KindStorage              Kind = "storage_error"
	KindCancelled            Kind = "cancelled"
)

// RouteError is the core's structured error. Details carries kind-specific
// context (e.g. ObservedCount for InsufficientPois) without growing the
// Kind enum.
type RouteError struct {
	Kind    Kind
	Message string
	Details map[string]any
	cause   error
}

func (e *RouteError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *RouteError) Unwrap() error { return e.cause }

// New constructs a RouteError of the given kind.
func New(kind Kind, message string) *RouteError {
	return &RouteError{Kind: kind, Message: message, Details: map[string]any{}}
}

// Wrap constructs a RouteError of the given kind wrapping cause.
func Wrap(kind Kind, message string, cause error) *RouteError {
	return &RouteError{Kind: kind, Message: message, Details: map[string]any{}, cause: cause}
}

// WithDetails attaches structured context and returns e for chaining.
func (e *RouteError) WithDetails(details map[string]any) *RouteError {
	e.Details = details
	return e
}

// KindOf extracts the Kind from err if it (or something it wraps) is a
// *RouteError, defaulting to KindStorage for unrecognized errors so the
// HTTP boundary always has a kind to map.
func KindOf(err error) Kind {
	var re *RouteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindStorage
}

// IsRetriable reports whether the error kind is one the generator retries
// internally rather than surfacing.
func IsRetriable(err error) bool {
	switch KindOf(err) {
	case KindDirectionsTransient:
		return true
	default:
		return false
	}
}

// Insufficient constructs the InsufficientPois error with the observed
// candidate count, per §7's "surfaced with the observed count".
func Insufficient(observedCount int) *RouteError {
	return New(KindInsufficientPois, "too few candidate pois after filtering").
		WithDetails(map[string]any{"observed_count": observedCount})
}

// ValidationError is a single field-level validation failure, mirroring the
// teacher's request-boundary ValidationError shape. It is distinct from
// RouteError because the HTTP layer needs field-addressable detail the core
// itself never produces.
type ValidationError struct {
	Field   string
	Message string
}

func (v *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}
