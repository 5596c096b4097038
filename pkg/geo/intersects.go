package geo

import (
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy/lineintersector"
)

type segment [2]orb.Point

// Intersects reports whether g touches or overlaps area, which must be a
// polygon or multipolygon. Holes in area are respected. Empty geometries
// intersect nothing.
func Intersects(area, g orb.Geometry) (bool, error) {
	mp, err := multiPolygon(area)
	if err != nil {
		return false, err
	}
	if Empty(mp) || Empty(g) || !mp.Bound().Intersects(g.Bound()) {
		return false, nil
	}

	for _, p := range vertices(g, nil) {
		if planar.MultiPolygonContains(mp, p) {
			return true, nil
		}
	}

	areaEdges := edges(mp, nil)
	for _, e := range edges(g, nil) {
		for _, a := range areaEdges {
			res := lineintersector.LineIntersectsLine(lineintersector.RobustLineIntersector{},
				coord(e[0]), coord(e[1]), coord(a[0]), coord(a[1]))
			if res.HasIntersection() {
				return true, nil
			}
		}
	}

	// No vertex of g inside area and no crossing edges: area can still lie
	// wholly inside a polygonal g.
	if outer := polygons(g, nil); len(outer) > 0 {
		for _, p := range mp {
			if len(p) > 0 && len(p[0]) > 0 && planar.MultiPolygonContains(outer, p[0][0]) {
				return true, nil
			}
		}
	}

	return false, nil
}

func multiPolygon(g orb.Geometry) (orb.MultiPolygon, error) {
	switch v := g.(type) {
	case orb.Polygon:
		return orb.MultiPolygon{v}, nil
	case orb.MultiPolygon:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: got %T", ErrUnsupportedGeometry, g)
	}
}

func coord(p orb.Point) geom.Coord {
	return geom.Coord{p[0], p[1]}
}

func vertices(g orb.Geometry, out []orb.Point) []orb.Point {
	switch v := g.(type) {
	case orb.Point:
		out = append(out, v)
	case orb.MultiPoint:
		out = append(out, v...)
	case orb.LineString:
		out = append(out, v...)
	case orb.Ring:
		out = append(out, v...)
	case orb.MultiLineString:
		for _, ls := range v {
			out = append(out, ls...)
		}
	case orb.Polygon:
		for _, r := range v {
			out = append(out, r...)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			out = vertices(p, out)
		}
	case orb.Collection:
		for _, c := range v {
			out = vertices(c, out)
		}
	case orb.Bound:
		out = vertices(v.ToPolygon(), out)
	}
	return out
}

func edges(g orb.Geometry, out []segment) []segment {
	path := func(pts []orb.Point) {
		for i := 1; i < len(pts); i++ {
			out = append(out, segment{pts[i-1], pts[i]})
		}
	}

	switch v := g.(type) {
	case orb.LineString:
		path(v)
	case orb.Ring:
		path(v)
	case orb.MultiLineString:
		for _, ls := range v {
			path(ls)
		}
	case orb.Polygon:
		for _, r := range v {
			path(r)
		}
	case orb.MultiPolygon:
		for _, p := range v {
			out = edges(p, out)
		}
	case orb.Collection:
		for _, c := range v {
			out = edges(c, out)
		}
	case orb.Bound:
		out = edges(v.ToPolygon(), out)
	}
	return out
}

// polygons collects the areal parts of g.
func polygons(g orb.Geometry, out orb.MultiPolygon) orb.MultiPolygon {
	switch v := g.(type) {
	case orb.Polygon:
		out = append(out, v)
	case orb.MultiPolygon:
		out = append(out, v...)
	case orb.Collection:
		for _, c := range v {
			out = polygons(c, out)
		}
	case orb.Bound:
		out = append(out, v.ToPolygon())
	}
	return out
}
