package geo

import (
	"errors"
	"testing"

	"github.com/paulmach/orb"
)

// lShape covers the unit square minus its north-east quarter.
var lShape = orb.Polygon{{{0, 0}, {1, 0}, {1, 0.5}, {0.5, 0.5}, {0.5, 1}, {0, 1}, {0, 0}}}

func TestIntersects(t *testing.T) {
	withHole := orb.Polygon{
		{{0, 0}, {4, 0}, {4, 4}, {0, 4}, {0, 0}},
		{{1, 1}, {1, 3}, {3, 3}, {3, 1}, {1, 1}},
	}

	tests := []struct {
		name     string
		area     orb.Geometry
		g        orb.Geometry
		expected bool
	}{
		{"point inside", lShape, orb.Point{0.25, 0.75}, true},
		{"point in the notch", lShape, orb.Point{0.9, 0.9}, false},
		{"point on the boundary", lShape, orb.Point{0.5, 0.75}, true},
		{"point outside the bound", lShape, orb.Point{2, 2}, false},
		{"line crossing into the area", lShape, orb.LineString{{0.75, 0.9}, {0.75, 0.25}}, true},
		{"line wholly in the notch", lShape, orb.LineString{{0.6, 0.6}, {0.9, 0.9}}, false},
		{"line crossing without vertices inside", lShape, orb.LineString{{-1, 0.25}, {2, 0.25}}, true},
		{"polygon in the notch", lShape, orb.Polygon{{{0.6, 0.6}, {0.9, 0.6}, {0.9, 0.9}, {0.6, 0.6}}}, false},
		{"polygon containing the area", lShape, orb.Polygon{{{-1, -1}, {2, -1}, {2, 2}, {-1, 2}, {-1, -1}}}, true},
		{"point in a hole", withHole, orb.Point{2, 2}, false},
		{"point in the rim", withHole, orb.Point{0.5, 2}, true},
		{"multipolygon area", orb.MultiPolygon{lShape}, orb.Point{0.25, 0.25}, true},
		{"collection with one part inside", lShape, orb.Collection{orb.Point{0.9, 0.9}, orb.Point{0.1, 0.1}}, true},
		{"empty geometry", lShape, orb.LineString{}, false},
		{"nil geometry", lShape, nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Intersects(tt.area, tt.g)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.expected {
				t.Errorf("Intersects() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestIntersects_UnsupportedArea(t *testing.T) {
	if _, err := Intersects(orb.LineString{{0, 0}, {1, 1}}, orb.Point{0, 0}); !errors.Is(err, ErrUnsupportedGeometry) {
		t.Errorf("expected ErrUnsupportedGeometry, got %v", err)
	}
}
