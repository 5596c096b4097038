package geo

import (
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

// EncodePolygon renders the convex hull of g in the form the Overpass poly:
// filter expects: "lat lon" pairs with six fixed decimals, separated by single
// spaces, in ring order with the closing vertex repeated. Multiple hull rings
// are joined with a single space.
func EncodePolygon(g orb.Geometry) (string, error) {
	hull, err := ConvexHull(g)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, poly := range hull {
		if len(poly) == 0 {
			continue
		}
		for _, p := range poly[0] {
			if b.Len() > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(formatCoord(p.Lat()))
			b.WriteByte(' ')
			b.WriteString(formatCoord(p.Lon()))
		}
	}
	return b.String(), nil
}

func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}
