// Package queries builds Overpass QL queries that select OpenStreetMap
// elements inside a polygon.
//
// A query is the settings statement, a union of node, way and relation
// statements filtered by the polygon and optional tags, and an output
// statement, concatenated without separators:
//
//	[out:json][timeout:10];(node[amenity=cafe](poly:'...');way[amenity=cafe](poly:'...');relation[amenity=cafe](poly:'...'););out body;
package queries

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/accessgap/pkg/geo"
	"github.com/NERVsystems/accessgap/pkg/osm"
)

// Output is the verbosity of the output statement.
type Output string

const (
	OutputBody   Output = "body"
	OutputGeom   Output = "geom"
	OutputCenter Output = "center"
	OutputMeta   Output = "meta"
)

// ErrConflictingFilters is returned when a query is given both a quick tag
// and literal filter fragments.
var ErrConflictingFilters = errors.New("quick tag and filter fragments are mutually exclusive")

// Sender submits a rendered query to an Overpass endpoint.
type Sender interface {
	Send(ctx context.Context, query string) (*osm.Result, error)
}

type settings struct {
	options   Options
	quick     QuickTag
	quickName string
	hasQuick  bool
	filter    TagFilter
	hasFilter bool
	output    Output
}

// Option configures a Query.
type Option func(*settings)

// WithTimeout sets the [timeout:N] clause, in seconds.
func WithTimeout(seconds int) Option {
	return func(s *settings) { s.options.Timeout = seconds }
}

// WithMaxSize sets the [maxsize:N] clause, in bytes.
func WithMaxSize(bytes int64) Option {
	return func(s *settings) { s.options.MaxSize = bytes }
}

// WithDate sets the [date:...] clause.
func WithDate(t time.Time) Option {
	return func(s *settings) { s.options.Date = t }
}

// WithOptions replaces all settings clauses at once.
func WithOptions(o Options) Option {
	return func(s *settings) { s.options = o }
}

// WithQuickTag filters by a catalog entry.
func WithQuickTag(t QuickTag) Option {
	return func(s *settings) {
		s.quick = t
		s.quickName = string(t)
		s.hasQuick = true
	}
}

// WithQuickTagName filters by a catalog entry looked up with ParseQuickTag.
// An unknown or empty name makes NewQuery fail.
func WithQuickTagName(name string) Option {
	return func(s *settings) {
		s.quickName = name
		s.hasQuick = true
	}
}

// WithFilter filters by literal fragments.
func WithFilter(f TagFilter) Option {
	return func(s *settings) {
		s.filter = f
		s.hasFilter = !f.IsZero()
	}
}

// WithOutput changes the output statement from "out body;".
func WithOutput(o Output) Option {
	return func(s *settings) { s.output = o }
}

// Query is an immutable Overpass query over one polygon. It is safe for
// concurrent use.
type Query struct {
	poly    string
	options Options
	filter  TagFilter
	quick   QuickTag
	output  Output
}

// NewQuery builds a query over polygon, which must be an orb.Polygon or
// orb.MultiPolygon. The polygon is reduced to its convex hull.
func NewQuery(polygon orb.Geometry, opts ...Option) (*Query, error) {
	s := settings{output: OutputBody}
	for _, opt := range opts {
		opt(&s)
	}

	q := &Query{
		options: s.options,
		filter:  s.filter,
		output:  s.output,
	}
	if q.output == "" {
		q.output = OutputBody
	}

	if s.hasQuick {
		if s.hasFilter {
			return nil, ErrConflictingFilters
		}
		t, err := ParseQuickTag(s.quickName)
		if err != nil {
			return nil, err
		}
		q.quick = t
		q.filter = t.Filter()
	}

	poly, err := geo.EncodePolygon(polygon)
	if err != nil {
		return nil, fmt.Errorf("encode polygon: %w", err)
	}
	q.poly = poly

	return q, nil
}

// Polygon returns the encoded poly: coordinate string.
func (q *Query) Polygon() string {
	return q.poly
}

// Options returns the settings clauses of q.
func (q *Query) Options() Options {
	return q.options
}

// Filter returns the tag filter of q, expanded from its quick tag if it
// has one.
func (q *Query) Filter() TagFilter {
	return q.filter
}

// QuickTag returns the quick tag q was built from, if any.
func (q *Query) QuickTag() (QuickTag, bool) {
	return q.quick, q.quick != ""
}

// Preamble renders the settings statement.
func (q *Query) Preamble() string {
	return q.options.Preamble()
}

// FilterClause renders the union statement.
func (q *Query) FilterClause() string {
	return FilterClause(q.poly, q.filter)
}

// Build renders the complete query text.
func (q *Query) Build() string {
	return q.Preamble() + q.FilterClause() + "out " + string(q.output) + ";"
}

// String implements fmt.Stringer.
func (q *Query) String() string {
	return q.Build()
}

// Send submits q through s.
func (q *Query) Send(ctx context.Context, s Sender) (*osm.Result, error) {
	return s.Send(ctx, q.Build())
}
