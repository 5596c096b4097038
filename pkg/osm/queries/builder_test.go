package queries

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/accessgap/pkg/geo"
	"github.com/NERVsystems/accessgap/pkg/osm"
)

const squareCoords = "0.000000 0.000000 1.000000 0.000000 1.000000 1.000000 0.000000 1.000000 0.000000 0.000000"

var square = orb.Polygon{{{0, 0}, {0, 1}, {1, 1}, {1, 0}}}

func TestQuery_Minimal(t *testing.T) {
	q, err := NewQuery(square)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	expected := "[out:json];(" +
		"node(poly:'" + squareCoords + "');" +
		"way(poly:'" + squareCoords + "');" +
		"relation(poly:'" + squareCoords + "');" +
		");out body;"
	if got := q.Build(); got != expected {
		t.Errorf("unexpected query:\n%s\nwant\n%s", got, expected)
	}
}

func TestQuery_FullPreamble(t *testing.T) {
	q, err := NewQuery(square,
		WithTimeout(10),
		WithMaxSize(10000),
		WithDate(time.Date(2017, 3, 9, 0, 0, 0, 0, time.UTC)),
	)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	expected := "[out:json][timeout:10][maxsize:10000][date:'2017-03-09T00:00:00Z'];"
	if got := q.Preamble(); got != expected {
		t.Errorf("unexpected preamble: %s", got)
	}
	if !strings.HasPrefix(q.Build(), expected+"(node(poly:") {
		t.Errorf("preamble not immediately followed by filter clause: %s", q.Build())
	}
}

func TestQuery_MultiTagUnion(t *testing.T) {
	q, err := NewQuery(square, WithFilter(Fragments("[amenity=restaurant]", "[amenity=bar]")))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	expected := "(" +
		"node[amenity=restaurant](poly:'" + squareCoords + "');" +
		"way[amenity=restaurant](poly:'" + squareCoords + "');" +
		"relation[amenity=restaurant](poly:'" + squareCoords + "');" +
		"node[amenity=bar](poly:'" + squareCoords + "');" +
		"way[amenity=bar](poly:'" + squareCoords + "');" +
		"relation[amenity=bar](poly:'" + squareCoords + "');" +
		");"
	if got := q.FilterClause(); got != expected {
		t.Errorf("unexpected filter clause:\n%s\nwant\n%s", got, expected)
	}
}

func TestQuery_BuildIsIdempotent(t *testing.T) {
	q, err := NewQuery(square, WithQuickTag(AllFood), WithTimeout(25))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	first := q.Build()
	second := q.Build()
	if first != second {
		t.Errorf("Build() not idempotent:\n%s\n%s", first, second)
	}
	if q.String() != first {
		t.Errorf("String() differs from Build()")
	}
}

func TestQuery_QuickTagMatchesLiteralFragments(t *testing.T) {
	quick, err := NewQuery(square, WithQuickTag(AllFood))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	literal, err := NewQuery(square, WithFilter(Fragments(
		"[amenity=restaurant]",
		"[amenity=food_court]",
		"[amenity=cafe]",
		"[amenity=fast_food]",
		"[amenity=bar]",
		"[amenity=pub]",
		"[amenity=ice_cream]",
		"[amenity=biergarten]",
		"[leisure=outdoor_seating]",
	)))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	if quick.FilterClause() != literal.FilterClause() {
		t.Errorf("quick tag filter differs from literal fragments:\n%s\n%s", quick.FilterClause(), literal.FilterClause())
	}
	if quick.Build() != literal.Build() {
		t.Errorf("quick tag query differs from literal query")
	}
	if tag, ok := quick.QuickTag(); !ok || tag != AllFood {
		t.Errorf("QuickTag() = %q, %v", tag, ok)
	}
	if _, ok := literal.QuickTag(); ok {
		t.Errorf("literal query reports a quick tag")
	}
}

func TestQuery_QuickTagName(t *testing.T) {
	q, err := NewQuery(square, WithQuickTagName("Fast_Food"))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	if !strings.Contains(q.Build(), "node[amenity=fast_food](poly:") {
		t.Errorf("unexpected query: %s", q.Build())
	}
}

func TestQuery_Errors(t *testing.T) {
	tests := []struct {
		name    string
		polygon orb.Geometry
		opts    []Option
		target  error
	}{
		{"unknown quick tag", square, []Option{WithQuickTagName("brewery")}, ErrUnknownQuickTag},
		{"empty quick tag name", square, []Option{WithQuickTagName("")}, ErrUnknownQuickTag},
		{"blank quick tag name", square, []Option{WithQuickTagName("  ")}, ErrUnknownQuickTag},
		{"unknown quick tag value", square, []Option{WithQuickTag(QuickTag("brewery"))}, ErrUnknownQuickTag},
		{"conflicting filters", square, []Option{WithQuickTag(Cafe), WithFilter(Fragment("[amenity=bar]"))}, ErrConflictingFilters},
		{"point", orb.Point{1, 2}, nil, geo.ErrUnsupportedGeometry},
		{"line", orb.LineString{{0, 0}, {1, 1}}, nil, geo.ErrUnsupportedGeometry},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := NewQuery(tt.polygon, tt.opts...)
			if !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
			if q != nil {
				t.Errorf("expected no query on error")
			}
		})
	}
}

func TestQuery_UnknownQuickTagNamesInput(t *testing.T) {
	_, err := NewQuery(square, WithQuickTagName("Brewery"))

	var unknown *UnknownQuickTagError
	if !errors.As(err, &unknown) {
		t.Fatalf("expected UnknownQuickTagError, got %v", err)
	}
	if unknown.Name != "Brewery" {
		t.Errorf("expected name Brewery, got %q", unknown.Name)
	}

	_, err = NewQuery(square, WithQuickTagName(""))
	if !errors.As(err, &unknown) || unknown.Name != "" {
		t.Errorf("expected UnknownQuickTagError for the empty name, got %v", err)
	}
}

func TestQuery_WithOutput(t *testing.T) {
	q, err := NewQuery(square, WithQuickTag(Bar), WithOutput(OutputGeom))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}
	if !strings.HasSuffix(q.Build(), ");out geom;") {
		t.Errorf("unexpected epilogue: %s", q.Build())
	}
}

func TestQuery_MultiPolygon(t *testing.T) {
	mp := orb.MultiPolygon{
		{{{0, 0}, {0, 1}, {1, 1}, {1, 0}, {0, 0}}},
		{{{2, 0}, {2, 1}, {3, 1}, {3, 0}, {2, 0}}},
	}
	q, err := NewQuery(mp)
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	expected := "0.000000 0.000000 1.000000 0.000000 1.000000 3.000000 0.000000 3.000000 0.000000 0.000000"
	if q.Polygon() != expected {
		t.Errorf("unexpected polygon: %s", q.Polygon())
	}
}

type recordingSender struct {
	query  string
	result *osm.Result
}

func (s *recordingSender) Send(_ context.Context, query string) (*osm.Result, error) {
	s.query = query
	return s.result, nil
}

func TestQuery_Send(t *testing.T) {
	q, err := NewQuery(square, WithQuickTag(Pub))
	if err != nil {
		t.Fatalf("NewQuery: %v", err)
	}

	sender := &recordingSender{result: &osm.Result{Elements: []osm.Element{{Type: "node", ID: 1}}}}
	res, err := q.Send(context.Background(), sender)
	if err != nil {
		t.Fatalf("Send: %v", err)
	}
	if sender.query != q.Build() {
		t.Errorf("sender received %q", sender.query)
	}
	if len(res.Elements) != 1 {
		t.Errorf("expected 1 element, got %d", len(res.Elements))
	}
}
