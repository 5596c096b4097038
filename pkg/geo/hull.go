package geo

import (
	"github.com/paulmach/orb"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/xy"
)

// ConvexHull returns the convex hull of a polygon or multipolygon as a
// MultiPolygon with a single polygon. The hull ring is closed and runs
// clockwise from its southernmost vertex, westernmost on ties; collinear
// vertices are dropped.
//
// If the hull degenerates to a line or a point, the exterior rings of g are
// returned as they are.
func ConvexHull(g orb.Geometry) (orb.MultiPolygon, error) {
	rings, err := exteriors(g)
	if err != nil {
		return nil, err
	}

	var flat []float64
	for _, r := range rings {
		for _, p := range r {
			flat = append(flat, p[0], p[1])
		}
	}

	if len(flat) > 0 {
		hull := xy.ConvexHull(geom.NewLineStringFlat(geom.XY, flat))
		if poly, ok := hull.(*geom.Polygon); ok && poly.NumLinearRings() > 0 {
			if ring := normalizeRing(toRing(poly.LinearRing(0).Coords())); ring != nil {
				return orb.MultiPolygon{{ring}}, nil
			}
		}
	}

	out := make(orb.MultiPolygon, 0, len(rings))
	for _, r := range rings {
		out = append(out, orb.Polygon{r})
	}
	return out, nil
}

func toRing(coords []geom.Coord) orb.Ring {
	r := make(orb.Ring, 0, len(coords))
	for _, c := range coords {
		r = append(r, orb.Point{c.X(), c.Y()})
	}
	return r
}

// normalizeRing puts a hull ring in canonical order. It returns nil when
// fewer than three non-collinear vertices remain.
func normalizeRing(r orb.Ring) orb.Ring {
	pts := make(orb.Ring, 0, len(r))
	for _, p := range r {
		if len(pts) > 0 && pts[len(pts)-1].Equal(p) {
			continue
		}
		pts = append(pts, p)
	}
	if len(pts) > 1 && pts[0].Equal(pts[len(pts)-1]) {
		pts = pts[:len(pts)-1]
	}

	for removed := true; removed && len(pts) >= 3; {
		removed = false
		for i := range pts {
			prev := pts[(i+len(pts)-1)%len(pts)]
			next := pts[(i+1)%len(pts)]
			if cross(prev, pts[i], next) == 0 {
				pts = append(pts[:i], pts[i+1:]...)
				removed = true
				break
			}
		}
	}
	if len(pts) < 3 {
		return nil
	}

	closed := append(append(orb.Ring{}, pts...), pts[0])
	if closed.Orientation() == orb.CCW {
		pts.Reverse()
	}

	start := 0
	for i, p := range pts {
		s := pts[start]
		if p[1] < s[1] || (p[1] == s[1] && p[0] < s[0]) {
			start = i
		}
	}

	out := make(orb.Ring, 0, len(pts)+1)
	out = append(out, pts[start:]...)
	out = append(out, pts[:start]...)
	return append(out, out[0])
}

// cross is the z component of (b-a) x (c-b).
func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-b[1]) - (b[1]-a[1])*(c[0]-b[0])
}
