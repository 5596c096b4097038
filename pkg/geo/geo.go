// Package geo provides the polygon handling used to build area queries:
// convex hulls, Overpass poly: coordinate strings and centroids.
//
// Geometries use github.com/paulmach/orb, so points are (x=longitude, y=latitude).
package geo

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"
)

// ErrUnsupportedGeometry is returned when an operation receives a geometry
// that is not an orb.Polygon or orb.MultiPolygon.
var ErrUnsupportedGeometry = errors.New("geometry must be a polygon or multipolygon")

// Empty reports whether g carries no coordinates.
func Empty(g orb.Geometry) bool {
	switch v := g.(type) {
	case nil:
		return true
	case orb.Point:
		return false
	case orb.MultiPoint:
		return len(v) == 0
	case orb.LineString:
		return len(v) == 0
	case orb.MultiLineString:
		for _, ls := range v {
			if len(ls) > 0 {
				return false
			}
		}
		return true
	case orb.Ring:
		return len(v) == 0
	case orb.Polygon:
		return len(v) == 0 || len(v[0]) == 0
	case orb.MultiPolygon:
		for _, p := range v {
			if !Empty(p) {
				return false
			}
		}
		return true
	case orb.Collection:
		for _, c := range v {
			if !Empty(c) {
				return false
			}
		}
		return true
	case orb.Bound:
		return false
	default:
		return true
	}
}

// exteriors returns the outer ring of each polygon in g.
func exteriors(g orb.Geometry) ([]orb.Ring, error) {
	switch v := g.(type) {
	case orb.Polygon:
		if len(v) == 0 {
			return nil, nil
		}
		return []orb.Ring{v[0]}, nil
	case orb.MultiPolygon:
		rings := make([]orb.Ring, 0, len(v))
		for _, p := range v {
			if len(p) > 0 {
				rings = append(rings, p[0])
			}
		}
		return rings, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedGeometry, g)
	}
}
