package geo

import (
	"testing"

	"github.com/paulmach/orb"
)

func TestConvexHull_Orientation(t *testing.T) {
	poly := orb.Polygon{{{3, 1}, {5, 4}, {2, 6}, {-1, 3}, {1, 2}, {2, 3}, {3, 1}}}

	hull, err := ConvexHull(poly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hull) != 1 || len(hull[0]) != 1 {
		t.Fatalf("expected a single ring, got %v", hull)
	}

	ring := hull[0][0]
	if !ring.Closed() {
		t.Errorf("hull ring is not closed: %v", ring)
	}
	if ring.Orientation() != orb.CW {
		t.Errorf("expected clockwise ring, got %v", ring.Orientation())
	}
	if !ring[0].Equal(orb.Point{3, 1}) {
		t.Errorf("expected ring to start at southernmost vertex, got %v", ring[0])
	}
	// {1,2} lies on the hull boundary and {2,3} inside it.
	if len(ring) != 5 {
		t.Errorf("expected 4 hull vertices plus closing vertex, got %d", len(ring))
	}
}

func TestConvexHull_DropsCollinearVertices(t *testing.T) {
	poly := orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {2, 1}, {2, 0}, {1, 0}, {0, 0}}}

	hull, err := ConvexHull(poly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := orb.Ring{{0, 0}, {0, 1}, {2, 1}, {2, 0}, {0, 0}}
	if !hull[0][0].Equal(expected) {
		t.Errorf("ConvexHull() = %v, want %v", hull[0][0], expected)
	}
}

func TestNormalizeRing(t *testing.T) {
	tests := []struct {
		name     string
		ring     orb.Ring
		expected orb.Ring
	}{
		{
			name:     "counter-clockwise reversed",
			ring:     orb.Ring{{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 0}},
			expected: orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}},
		},
		{
			name:     "rotated to lowest then leftmost",
			ring:     orb.Ring{{1, 1}, {1, 0}, {0, 0}, {0, 1}},
			expected: orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}},
		},
		{
			name:     "duplicate vertices removed",
			ring:     orb.Ring{{0, 0}, {0, 0}, {0, 1}, {1, 1}, {1, 1}, {1, 0}, {0, 0}},
			expected: orb.Ring{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}},
		},
		{
			name:     "collinear collapses",
			ring:     orb.Ring{{0, 0}, {1, 1}, {2, 2}, {0, 0}},
			expected: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeRing(tt.ring)
			if tt.expected == nil {
				if got != nil {
					t.Errorf("normalizeRing() = %v, want nil", got)
				}
				return
			}
			if !got.Equal(tt.expected) {
				t.Errorf("normalizeRing() = %v, want %v", got, tt.expected)
			}
		})
	}
}
