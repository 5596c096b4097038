package queries

import "strings"

var elementTypes = [...]string{"node", "way", "relation"}

// FilterClause renders the union statement selecting elements of every type
// inside poly, an encoded poly: coordinate string. Each fragment of tags
// gets its own node, way and relation group, in order.
func FilterClause(poly string, tags TagFilter) string {
	var b strings.Builder
	b.WriteString("(")
	for _, f := range tags.List() {
		for _, el := range elementTypes {
			b.WriteString(el)
			b.WriteString(f)
			b.WriteString("(poly:'")
			b.WriteString(poly)
			b.WriteString("');")
		}
	}
	b.WriteString(");")
	return b.String()
}
