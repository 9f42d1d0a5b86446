package model

import (
	"fmt"

	"github.com/watnow/routeloop/internal/geo"
)

// Poi is a categorized, geolocated landmark. Instances are treated as
// immutable read-only facts by the route discovery core; they are created
// by the ingestion collaborator, never by the generator.
type Poi struct {
	ID                 string
	Name               string
	Category           PoiCategory
	Location           geo.Coordinates
	Popularity         int
	Description        string
	EstimatedVisitMins *int
	OsmID              *int64
	Metadata           map[string]string
}

// NewPoi validates and constructs a Poi.
func NewPoi(id, name string, category PoiCategory, location geo.Coordinates, popularity int) (Poi, error) {
	if id == "" {
		return Poi{}, fmt.Errorf("model: poi id must not be empty")
	}
	if name == "" {
		return Poi{}, fmt.Errorf("model: poi name must not be empty")
	}
	if !IsValidCategory(category) {
		return Poi{}, fmt.Errorf("model: unknown poi category %q", category)
	}
	if popularity < 0 || popularity > 100 {
		return Poi{}, fmt.Errorf("model: popularity %d out of range [0, 100]", popularity)
	}
	return Poi{ID: id, Name: name, Category: category, Location: location, Popularity: popularity}, nil
}

// QualityScore returns popularity normalized to [0, 1], inverted when the
// hidden-gems preference is active.
func (p Poi) QualityScore(hiddenGems bool) float64 {
	q := float64(p.Popularity) / 100.0
	if hiddenGems {
		return 1 - q
	}
	return q
}

// IsLandmark reports whether the POI clears the §4.8 landmark-coverage
// popularity threshold.
func (p Poi) IsLandmark() bool {
	return p.Popularity >= 75
}
