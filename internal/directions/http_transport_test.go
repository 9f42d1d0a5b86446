package directions

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

func twoWaypoints() []geo.Coordinates {
	return []geo.Coordinates{
		geo.MustCoordinates(35.0, 135.0),
		geo.MustCoordinates(35.01, 135.01),
	}
}

func TestHTTPTransport_BuildURL(t *testing.T) {
	transport := newHTTPTransport("http://example.test/route/v1/", time.Second, func(*http.Request) {})
	url := transport.buildURL(twoWaypoints(), model.ModeWalking)
	assert.Equal(t, "http://example.test/route/v1/walking/135.000000,35.000000;135.010000,35.010000?geometries=geojson&overview=full&steps=false", url)
}

func TestHTTPTransport_GetDirections_WaypointCountOutOfRange(t *testing.T) {
	transport := newHTTPTransport("http://example.test", time.Second, func(*http.Request) {})
	_, err := transport.getDirections(context.Background(), []geo.Coordinates{geo.MustCoordinates(35.0, 135.0)}, model.ModeWalking)
	require.Error(t, err)
	de, ok := err.(*Error)
	require.True(t, ok)
	assert.Equal(t, ErrParse, de.Kind)
}

func TestHTTPTransport_GetDirections_SuccessDecodesGeometry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"routes":[{"geometry":{"type":"LineString","coordinates":[[135.0,35.0],[135.01,35.01]]},"distance":1234.5,"duration":600}]}`))
	}))
	defer srv.Close()

	transport := newHTTPTransport(srv.URL, time.Second, func(*http.Request) {})
	result, err := transport.getDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	require.NoError(t, err)
	assert.Equal(t, 1234.5, result.TotalDistanceM)
	assert.Equal(t, 600, result.TotalDurationS)
	require.Len(t, result.Polyline, 2)
	assert.InDelta(t, 35.0, result.Polyline[0].Lat(), 1e-9)
	assert.InDelta(t, 135.0, result.Polyline[0].Lng(), 1e-9)
}

func TestHTTPTransport_GetDirections_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	transport := newHTTPTransport(srv.URL, time.Second, func(*http.Request) {})
	_, err := transport.getDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	require.Error(t, err)
	de := err.(*Error)
	assert.Equal(t, ErrRateLimited, de.Kind)
	assert.True(t, de.Kind.Retriable())
}

func TestHTTPTransport_GetDirections_Upstream5xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	transport := newHTTPTransport(srv.URL, time.Second, func(*http.Request) {})
	_, err := transport.getDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	de := err.(*Error)
	assert.Equal(t, ErrUpstream5xx, de.Kind)
}

func TestHTTPTransport_GetDirections_Upstream4xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	transport := newHTTPTransport(srv.URL, time.Second, func(*http.Request) {})
	_, err := transport.getDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	de := err.(*Error)
	assert.Equal(t, ErrUpstream4xx, de.Kind)
	assert.False(t, de.Kind.Retriable())
}

func TestHTTPTransport_GetDirections_MalformedJSONIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	transport := newHTTPTransport(srv.URL, time.Second, func(*http.Request) {})
	_, err := transport.getDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	de := err.(*Error)
	assert.Equal(t, ErrParse, de.Kind)
}

func TestHTTPTransport_GetDirections_EmptyRoutesIsParseError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"routes":[]}`))
	}))
	defer srv.Close()

	transport := newHTTPTransport(srv.URL, time.Second, func(*http.Request) {})
	_, err := transport.getDirections(context.Background(), twoWaypoints(), model.ModeWalking)
	de := err.(*Error)
	assert.Equal(t, ErrParse, de.Kind)
}

func TestDecodeGeometry_MalformedCoordinatePairErrors(t *testing.T) {
	_, err := decodeGeometry(lineString{Coordinates: [][]float64{{135.0}}})
	assert.Error(t, err)
}
