package directions

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// httpTransport implements the shared request-building and
// response-decoding logic for both auth modes in §4.3; Direct and Proxied
// differ only in how they attach credentials to the outgoing request.
type httpTransport struct {
	baseURL    string
	httpClient *http.Client
	attachAuth func(req *http.Request)
}

func newHTTPTransport(baseURL string, timeout time.Duration, attachAuth func(req *http.Request)) *httpTransport {
	return &httpTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		attachAuth: attachAuth,
	}
}

func (t *httpTransport) getDirections(ctx context.Context, waypoints []geo.Coordinates, mode model.TransportMode) (Result, error) {
	if len(waypoints) < 2 || len(waypoints) > 25 {
		return Result{}, newError(ErrParse, fmt.Errorf("directions: waypoint count %d out of range [2, 25]", len(waypoints)))
	}

	reqURL := t.buildURL(waypoints, mode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return Result{}, newError(ErrTransport, err)
	}
	t.attachAuth(req)

	resp, err := t.httpClient.Do(req)
	if err != nil {
		return Result{}, newError(ErrTransport, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return Result{}, newError(ErrRateLimited, fmt.Errorf("directions: rate limited (status %d)", resp.StatusCode))
	case resp.StatusCode >= 500:
		return Result{}, newError(ErrUpstream5xx, fmt.Errorf("directions: upstream error (status %d)", resp.StatusCode))
	case resp.StatusCode >= 400:
		return Result{}, newError(ErrUpstream4xx, fmt.Errorf("directions: client error (status %d)", resp.StatusCode))
	}

	var body directionsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return Result{}, newError(ErrParse, err)
	}
	if len(body.Routes) == 0 {
		return Result{}, newError(ErrParse, fmt.Errorf("directions: response contained no routes"))
	}

	first := body.Routes[0]
	polyline, err := decodeGeometry(first.Geometry)
	if err != nil {
		return Result{}, newError(ErrParse, err)
	}

	return Result{
		Polyline:       polyline,
		TotalDistanceM: first.Distance,
		TotalDurationS: int(first.Duration),
	}, nil
}

// buildURL follows §6's path shape: /{mode}/{coord_list}?geometries=geojson
// &overview=full&steps=false, where coord_list is a semicolon-separated
// sequence of lng,lat pairs.
func (t *httpTransport) buildURL(waypoints []geo.Coordinates, mode model.TransportMode) string {
	pairs := make([]string, len(waypoints))
	for i, wp := range waypoints {
		pairs[i] = fmt.Sprintf("%f,%f", wp.Lng(), wp.Lat())
	}
	coordList := strings.Join(pairs, ";")
	return fmt.Sprintf("%s/%s/%s?geometries=geojson&overview=full&steps=false", t.baseURL, mode, coordList)
}

// decodeGeometry swaps the wire's (lng, lat) GeoJSON LineString ordering
// into the core's canonical (lat, lng) Coordinates, exactly once at the
// boundary, per §4.1's coordinate-order invariant and §6's decode rule.
func decodeGeometry(geometry lineString) (geo.Polyline, error) {
	points := make(geo.Polyline, 0, len(geometry.Coordinates))
	for _, pair := range geometry.Coordinates {
		if len(pair) != 2 {
			return nil, fmt.Errorf("directions: malformed geometry coordinate pair %v", pair)
		}
		c, err := geo.NewCoordinates(pair[1], pair[0])
		if err != nil {
			return nil, fmt.Errorf("directions: malformed geometry point: %w", err)
		}
		points = append(points, c)
	}
	return points, nil
}

type directionsResponse struct {
	Routes []providerRoute `json:"routes"`
}

type providerRoute struct {
	Geometry lineString `json:"geometry"`
	Distance float64    `json:"distance"`
	Duration float64    `json:"duration"`
}

type lineString struct {
	Type        string      `json:"type"`
	Coordinates [][]float64 `json:"coordinates"`
}
