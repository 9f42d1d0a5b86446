// Package directions implements the stateless directions-provider adapter
// (§4.3): a capability interface and two transports (direct shared-secret,
// proxied bearer credential), generalized from the teacher's
// GoogleDirectionsProvider.
package directions

import (
	"context"

	"github.com/watnow/routeloop/internal/apperr"
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// Result is the normalized response the client returns for any transport.
type Result struct {
	Polyline        geo.Polyline
	TotalDistanceM  float64
	TotalDurationS  int
}

// ErrorKind narrows apperr.Kind to the subset the directions client may
// produce, per §4.3's { Transport, Upstream4xx, Upstream5xx, RateLimited,
// Parse } taxonomy.
type ErrorKind string

const (
	ErrTransport   ErrorKind = "transport"
	ErrUpstream4xx ErrorKind = "upstream_4xx"
	ErrUpstream5xx ErrorKind = "upstream_5xx"
	ErrRateLimited ErrorKind = "rate_limited"
	ErrParse       ErrorKind = "parse"
)

// Retriable reports whether the kind should be retried per §4.5 step 3f.
func (k ErrorKind) Retriable() bool {
	switch k {
	case ErrTransport, ErrUpstream5xx, ErrRateLimited:
		return true
	default:
		return false
	}
}

// Error wraps a directions failure with its taxonomy kind.
type Error struct {
	Kind  ErrorKind
	cause error
}

func (e *Error) Error() string {
	return "directions: " + string(e.Kind) + ": " + e.cause.Error()
}

func (e *Error) Unwrap() error { return e.cause }

func newError(kind ErrorKind, cause error) *Error {
	return &Error{Kind: kind, cause: cause}
}

// ToRouteError maps a directions Error onto the core's taxonomy, per §7.
func ToRouteError(err error) *apperr.RouteError {
	if err == nil {
		return nil
	}
	if de, ok := err.(*Error); ok {
		if de.Kind.Retriable() {
			return apperr.Wrap(apperr.KindDirectionsTransient, "directions call failed transiently", err)
		}
		return apperr.Wrap(apperr.KindDirectionsFatal, "directions call failed fatally", err)
	}
	return apperr.Wrap(apperr.KindDirectionsFatal, "directions call failed", err)
}

// Client is the capability the generator depends on. It is stateless: it
// formats waypoints and decodes the response, and it never caches
// internally (caching is routecache's responsibility).
type Client interface {
	GetDirections(ctx context.Context, waypoints []geo.Coordinates, mode model.TransportMode) (Result, error)
}
