package pois

import (
	"strconv"

	"github.com/paulmach/orb/geojson"
)

// FeatureCollection renders features as GeoJSON. Each feature carries its
// tags as properties plus "osm_type" and "osm_id".
func FeatureCollection(features []Feature) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, f := range features {
		gf := geojson.NewFeature(f.Geometry)
		gf.ID = f.Type + "/" + strconv.FormatInt(f.ID, 10)
		for k, v := range f.Tags {
			gf.Properties[k] = v
		}
		gf.Properties["osm_type"] = f.Type
		gf.Properties["osm_id"] = f.ID
		fc.Append(gf)
	}
	return fc
}
