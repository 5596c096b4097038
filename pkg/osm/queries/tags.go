package queries

// TagFilter selects the elements a query returns. It holds no fragments
// (every element matches), a single fragment, or an ordered list of
// fragments that are OR'd together.
//
// Fragments are Overpass bracket expressions such as "[amenity=cafe]" and
// are passed through without validation.
type TagFilter struct {
	fragments []string
}

// NoFilter matches every node, way and relation inside the polygon.
func NoFilter() TagFilter {
	return TagFilter{}
}

// Fragment returns a filter with a single bracket expression.
func Fragment(f string) TagFilter {
	return TagFilter{fragments: []string{f}}
}

// Fragments returns a filter that matches any of fs. Called with no
// arguments it is the same as NoFilter, so an empty list widens the query
// to every element in the polygon instead of matching nothing.
func Fragments(fs ...string) TagFilter {
	if len(fs) == 0 {
		return NoFilter()
	}
	return TagFilter{fragments: append([]string(nil), fs...)}
}

// IsZero reports whether f is NoFilter.
func (f TagFilter) IsZero() bool {
	return len(f.fragments) == 0
}

// List returns the fragments in order. NoFilter yields a single empty
// fragment so every filter renders at least one element group.
func (f TagFilter) List() []string {
	if f.IsZero() {
		return []string{""}
	}
	return append([]string(nil), f.fragments...)
}
