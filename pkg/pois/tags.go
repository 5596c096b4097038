package pois

import (
	"sort"
	"strings"

	"github.com/NERVsystems/accessgap/pkg/osm/queries"
)

// TagValue is the value side of a tag selector: any value, or one of a
// list of exact values.
type TagValue struct {
	any    bool
	values []string
}

// Any matches every element carrying the key.
func Any() TagValue {
	return TagValue{any: true}
}

// Equals matches elements whose value is one of vs. With no values it is
// the same as Any.
func Equals(vs ...string) TagValue {
	if len(vs) == 0 {
		return Any()
	}
	return TagValue{values: append([]string(nil), vs...)}
}

// IsAny reports whether v matches any value.
func (v TagValue) IsAny() bool {
	return v.any || len(v.values) == 0
}

// Values returns the exact values v matches, nil for Any.
func (v TagValue) Values() []string {
	if v.IsAny() {
		return nil
	}
	return append([]string(nil), v.values...)
}

// DefaultTags selects restaurants.
func DefaultTags() map[string]TagValue {
	return map[string]TagValue{"amenity": Equals("restaurant")}
}

// TagFilter turns a tag selector into filter fragments. Every key/value pair
// becomes its own fragment, so elements matching any of them are returned.
// Keys are sorted and values keep their order.
func TagFilter(tags map[string]TagValue) queries.TagFilter {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var fragments []string
	for _, k := range keys {
		v := tags[k]
		if v.IsAny() {
			fragments = append(fragments, "["+quote(k)+"]")
			continue
		}
		for _, val := range v.values {
			fragments = append(fragments, "["+quote(k)+"="+quote(val)+"]")
		}
	}
	return queries.Fragments(fragments...)
}

// quote leaves plain keys and values bare and wraps anything else in
// double quotes with Overpass escaping.
func quote(s string) string {
	if s != "" && !strings.ContainsFunc(s, needsQuote) {
		return s
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

func needsQuote(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return false
	case r == '_' || r == ':' || r == '-':
		return false
	}
	return true
}
