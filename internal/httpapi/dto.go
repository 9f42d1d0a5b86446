package httpapi

import (
	"github.com/watnow/routeloop/internal/geo"
	"github.com/watnow/routeloop/internal/model"
)

// locationDTO is the wire shape of a coordinate pair, matching §6's request
// boundary and the teacher's own Location DTO naming.
type locationDTO struct {
	Latitude  float64 `json:"latitude" binding:"required,min=-90,max=90"`
	Longitude float64 `json:"longitude" binding:"required,min=-180,max=180"`
}

// preferencesDTO is the optional preferences block, per §6.
type preferencesDTO struct {
	Categories      []string `json:"categories,omitempty"`
	HiddenGems      bool     `json:"hidden_gems,omitempty"`
	MaxAlternatives int      `json:"max_alternatives,omitempty" binding:"omitempty,min=1,max=5"`
}

// loopRequestDTO is the POST /loops request body.
type loopRequestDTO struct {
	Start       locationDTO     `json:"start" binding:"required"`
	DistanceKm  float64         `json:"distance_km" binding:"required,min=0.5,max=50"`
	Mode        string          `json:"mode" binding:"required,oneof=walking cycling"`
	Preferences *preferencesDTO `json:"preferences,omitempty"`
}

// toLoopRequest converts the validated DTO into the core's model.LoopRequest,
// surfacing coordinate construction failures as *apperr.ValidationError-style
// detail via the returned error.
func (d loopRequestDTO) toLoopRequest() (model.LoopRequest, error) {
	start, err := geo.NewCoordinates(d.Start.Latitude, d.Start.Longitude)
	if err != nil {
		return model.LoopRequest{}, err
	}

	req := model.LoopRequest{
		Start:      start,
		DistanceKm: d.DistanceKm,
		Mode:       model.TransportMode(d.Mode),
	}
	if d.Preferences != nil {
		cats := make([]model.PoiCategory, len(d.Preferences.Categories))
		for i, c := range d.Preferences.Categories {
			cats[i] = model.PoiCategory(c)
		}
		req.Preferences = model.Preferences{
			Categories:      cats,
			HiddenGems:      d.Preferences.HiddenGems,
			MaxAlternatives: d.Preferences.MaxAlternatives,
		}
	}
	return req, nil
}

// routeDTO is one produced route, serialized for the response body.
type routeDTO struct {
	ID              string          `json:"id"`
	DistanceKm      float64         `json:"distance_km"`
	DurationMinutes int             `json:"duration_minutes"`
	ElevationGainM  *float64        `json:"elevation_gain_m,omitempty"`
	Polyline        []locationDTO   `json:"polyline"`
	Pois            []routePoiDTO   `json:"pois"`
	SnappedPois     []snappedPoiDTO `json:"snapped_pois,omitempty"`
	Score           float64         `json:"score"`
	Metrics         *metricsDTO     `json:"metrics,omitempty"`
	IsFallback      bool            `json:"is_fallback"`
}

type routePoiDTO struct {
	ID                  string  `json:"id"`
	Name                string  `json:"name"`
	Category            string  `json:"category"`
	Latitude            float64 `json:"latitude"`
	Longitude           float64 `json:"longitude"`
	OrderInRoute        int     `json:"order_in_route"`
	DistanceFromStartKm float64 `json:"distance_from_start_km"`
}

type snappedPoiDTO struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	Category          string  `json:"category"`
	Latitude          float64 `json:"latitude"`
	Longitude         float64 `json:"longitude"`
	DistanceFromPathM float64 `json:"distance_from_path_m"`
	ArcLengthKm       float64 `json:"arc_length_km"`
}

type metricsDTO struct {
	Circularity        float64 `json:"circularity"`
	Convexity          float64 `json:"convexity"`
	PathOverlapPercent float64 `json:"path_overlap_percent"`
	PoiDensityPerKm    float64 `json:"poi_density_per_km"`
	CategoryEntropy    float64 `json:"category_entropy"`
	LandmarkCoverage   float64 `json:"landmark_coverage"`
	DensityContext     string  `json:"density_context"`
}

func toRouteDTO(r model.Route) routeDTO {
	polyline := make([]locationDTO, len(r.Polyline))
	for i, c := range r.Polyline {
		polyline[i] = locationDTO{Latitude: c.Lat(), Longitude: c.Lng()}
	}

	pois := make([]routePoiDTO, len(r.Pois))
	for i, wp := range r.Pois {
		pois[i] = routePoiDTO{
			ID:                  wp.Poi.ID,
			Name:                wp.Poi.Name,
			Category:            string(wp.Poi.Category),
			Latitude:            wp.Poi.Location.Lat(),
			Longitude:           wp.Poi.Location.Lng(),
			OrderInRoute:        wp.OrderInRoute,
			DistanceFromStartKm: wp.DistanceFromStartKm,
		}
	}

	snapped := make([]snappedPoiDTO, len(r.SnappedPois))
	for i, sp := range r.SnappedPois {
		snapped[i] = snappedPoiDTO{
			ID:                sp.Poi.ID,
			Name:              sp.Poi.Name,
			Category:          string(sp.Poi.Category),
			Latitude:          sp.Poi.Location.Lat(),
			Longitude:         sp.Poi.Location.Lng(),
			DistanceFromPathM: sp.DistanceFromPathM,
			ArcLengthKm:       sp.ArcLengthKm,
		}
	}

	dto := routeDTO{
		ID:              r.ID,
		DistanceKm:      r.DistanceKm,
		DurationMinutes: r.DurationMinutes,
		ElevationGainM:  r.ElevationGainM,
		Polyline:        polyline,
		Pois:            pois,
		SnappedPois:     snapped,
		Score:           r.Score,
		IsFallback:      r.IsFallback,
	}
	if r.Metrics != nil {
		dto.Metrics = &metricsDTO{
			Circularity:        r.Metrics.Circularity,
			Convexity:          r.Metrics.Convexity,
			PathOverlapPercent: r.Metrics.PathOverlapPercent,
			PoiDensityPerKm:    r.Metrics.PoiDensityPerKm,
			CategoryEntropy:    r.Metrics.CategoryEntropy,
			LandmarkCoverage:   r.Metrics.LandmarkCoverage,
			DensityContext:     string(r.Metrics.DensityContext),
		}
	}
	return dto
}
