// Package pois fetches OpenStreetMap points of interest inside a polygon
// and reduces them to point geometries.
package pois

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"github.com/NERVsystems/accessgap/pkg/geo"
	"github.com/NERVsystems/accessgap/pkg/osm"
)

// Element types.
const (
	TypeNode     = "node"
	TypeWay      = "way"
	TypeRelation = "relation"
)

// Feature is one OpenStreetMap element with its geometry. Geometry may be
// empty when the element came back without coordinates.
type Feature struct {
	Type     string
	ID       int64
	Tags     map[string]string
	Geometry orb.Geometry
}

// FromElements converts Overpass elements fetched with "out geom;" to
// features. Nodes become points. Ways become polygons when closed and
// lines otherwise. Relations become multipolygons when their outer members
// close into rings, and a collection of their member geometries otherwise.
// Elements of other types are skipped.
func FromElements(elements []osm.Element) []Feature {
	features := make([]Feature, 0, len(elements))
	for _, el := range elements {
		var g orb.Geometry
		switch el.Type {
		case TypeNode:
			g = orb.Point{el.Lon, el.Lat}
		case TypeWay:
			g = wayGeometry(el)
		case TypeRelation:
			g = relationGeometry(el)
		default:
			continue
		}
		features = append(features, Feature{
			Type:     el.Type,
			ID:       el.ID,
			Tags:     el.Tags,
			Geometry: g,
		})
	}
	return features
}

// Within returns the features whose geometry intersects area, a polygon or
// multipolygon. Features without geometry are kept since they cannot be
// placed.
func Within(features []Feature, area orb.Geometry) ([]Feature, error) {
	out := make([]Feature, 0, len(features))
	for _, f := range features {
		if geo.Empty(f.Geometry) {
			out = append(out, f)
			continue
		}
		ok, err := geo.Intersects(area, f.Geometry)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, f)
		}
	}
	return out, nil
}

// AllPoints replaces the geometry of every way and relation with its
// centroid. Nodes and features with empty geometry are kept as they are.
// The input slice is not modified.
func AllPoints(features []Feature) []Feature {
	out := make([]Feature, len(features))
	for i, f := range features {
		out[i] = f
		if f.Type == TypeNode || geo.Empty(f.Geometry) {
			continue
		}
		out[i].Geometry = geo.Centroid(f.Geometry)
	}
	return out
}

func toLineString(pts []osm.LatLon) orb.LineString {
	ls := make(orb.LineString, 0, len(pts))
	for _, p := range pts {
		ls = append(ls, orb.Point{p.Lon, p.Lat})
	}
	return ls
}

func closed(ls orb.LineString) bool {
	return len(ls) >= 4 && ls[0].Equal(ls[len(ls)-1])
}

func wayGeometry(el osm.Element) orb.Geometry {
	ls := toLineString(el.Geometry)
	if len(ls) == 0 && el.Center != nil {
		return orb.Point{el.Center.Lon, el.Center.Lat}
	}
	if closed(ls) {
		return orb.Polygon{orb.Ring(ls)}
	}
	return ls
}

func relationGeometry(el osm.Element) orb.Geometry {
	var outers, inners []orb.LineString
	var members orb.Collection
	for _, m := range el.Members {
		switch m.Type {
		case TypeNode:
			if m.Lat != 0 || m.Lon != 0 {
				members = append(members, orb.Point{m.Lon, m.Lat})
			}
		case TypeWay:
			ls := toLineString(m.Geometry)
			if len(ls) == 0 {
				continue
			}
			members = append(members, ls)
			switch m.Role {
			case "outer", "":
				outers = append(outers, ls)
			case "inner":
				inners = append(inners, ls)
			}
		}
	}

	if mp := assemble(stitchRings(outers), stitchRings(inners)); len(mp) > 0 {
		return mp
	}
	if len(members) == 0 && el.Center != nil {
		return orb.Point{el.Center.Lon, el.Center.Lat}
	}
	return members
}

// assemble builds polygons from outer rings and places each inner ring in
// the first outer ring containing it. Inner rings outside every outer ring
// are dropped.
func assemble(outers, inners []orb.Ring) orb.MultiPolygon {
	mp := make(orb.MultiPolygon, 0, len(outers))
	for _, r := range outers {
		mp = append(mp, orb.Polygon{r})
	}
	for _, in := range inners {
		for i := range mp {
			if planar.RingContains(mp[i][0], in[0]) {
				mp[i] = append(mp[i], in)
				break
			}
		}
	}
	return mp
}

// stitchRings joins way segments that share end points into closed rings.
// Segments that cannot be closed are dropped.
func stitchRings(ways []orb.LineString) []orb.Ring {
	pending := make([]orb.LineString, 0, len(ways))
	for _, w := range ways {
		if len(w) >= 2 {
			pending = append(pending, w)
		}
	}

	var rings []orb.Ring
	for len(pending) > 0 {
		cur := append(orb.LineString(nil), pending[0]...)
		pending = pending[1:]

		for !cur[0].Equal(cur[len(cur)-1]) {
			i, joined := join(cur, pending)
			if i < 0 {
				break
			}
			cur = joined
			pending = append(pending[:i], pending[i+1:]...)
		}

		if closed(cur) {
			rings = append(rings, orb.Ring(cur))
		}
	}
	return rings
}

// join attaches the first segment of candidates that touches an end of cur
// and returns its index and the joined line, or -1.
func join(cur orb.LineString, candidates []orb.LineString) (int, orb.LineString) {
	head, tail := cur[0], cur[len(cur)-1]
	for i, w := range candidates {
		first, last := w[0], w[len(w)-1]
		switch {
		case first.Equal(tail):
			return i, append(cur, w[1:]...)
		case last.Equal(tail):
			return i, append(cur, reversed(w)[1:]...)
		case last.Equal(head):
			return i, append(append(orb.LineString(nil), w[:len(w)-1]...), cur...)
		case first.Equal(head):
			r := reversed(w)
			return i, append(r[:len(r)-1], cur...)
		}
	}
	return -1, nil
}

func reversed(ls orb.LineString) orb.LineString {
	out := make(orb.LineString, len(ls))
	for i, p := range ls {
		out[len(ls)-1-i] = p
	}
	return out
}
