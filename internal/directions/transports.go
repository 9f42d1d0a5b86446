package directions

import (
	"context"
	"net/http"
	"time"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
	"github.com/watnow/routeloop/internal/opmetrics"
)

// DirectClient attaches a shared secret to every outgoing request itself,
// per §4.3 auth mode 1.
type DirectClient struct {
	transport *httpTransport
}

func NewDirectClient(baseURL, sharedSecret string, timeout time.Duration) *DirectClient {
	transport := newHTTPTransport(baseURL, timeout, func(req *http.Request) {
		q := req.URL.Query()
		q.Set("key", sharedSecret)
		req.URL.RawQuery = q.Encode()
	})
	return &DirectClient{transport: transport}
}

func (c *DirectClient) GetDirections(ctx context.Context, waypoints []geo.Coordinates, mode model.TransportMode) (Result, error) {
	return instrumentedCall(ctx, c.transport, waypoints, mode)
}

// ProxiedClient sends a per-client bearer credential; the upstream secret
// lives behind an external proxy, per §4.3 auth mode 2.
type ProxiedClient struct {
	transport *httpTransport
}

func NewProxiedClient(proxyBaseURL, bearerToken string, timeout time.Duration) *ProxiedClient {
	transport := newHTTPTransport(proxyBaseURL, timeout, func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+bearerToken)
	})
	return &ProxiedClient{transport: transport}
}

func (c *ProxiedClient) GetDirections(ctx context.Context, waypoints []geo.Coordinates, mode model.TransportMode) (Result, error) {
	return instrumentedCall(ctx, c.transport, waypoints, mode)
}

// NewClient selects a transport at construction based on whether a proxy
// base URL is configured, per §4.3: "The core selects one at construction
// based on whether a proxy base URL is configured." Both transports
// satisfy the same Client interface, so the generator's correctness never
// depends on which one is active.
func NewClient(baseURL, proxyBaseURL, sharedSecret, bearerToken string, timeout time.Duration) Client {
	if proxyBaseURL != "" {
		return NewProxiedClient(proxyBaseURL, bearerToken, timeout)
	}
	return NewDirectClient(baseURL, sharedSecret, timeout)
}

func instrumentedCall(ctx context.Context, transport *httpTransport, waypoints []geo.Coordinates, mode model.TransportMode) (Result, error) {
	start := time.Now()
	result, err := transport.getDirections(ctx, waypoints, mode)
	opmetrics.DirectionsCallDuration.WithLabelValues(string(mode)).Observe(time.Since(start).Seconds())

	outcome := "success"
	if err != nil {
		if de, ok := err.(*Error); ok {
			outcome = string(de.Kind)
		} else {
			outcome = "unknown_error"
		}
	}
	opmetrics.DirectionsCallsTotal.WithLabelValues(outcome).Inc()
	opmetrics.DirectionsBudgetConsumed.Inc()

	return result, err
}
