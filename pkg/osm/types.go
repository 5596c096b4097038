package osm

// Result is a decoded Overpass JSON response.
type Result struct {
	Version   float64   `json:"version"`
	Generator string    `json:"generator"`
	OSM3S     OSM3S     `json:"osm3s"`
	Elements  []Element `json:"elements"`
	// Remark carries server-side errors such as a query timeout, which
	// Overpass reports with a 200 status.
	Remark string `json:"remark,omitempty"`
}

// OSM3S describes the database state a result was read from.
type OSM3S struct {
	TimestampOSMBase string `json:"timestamp_osm_base"`
	Copyright        string `json:"copyright"`
}

// LatLon is a coordinate pair as Overpass writes it.
type LatLon struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Bounds is the bounding box of a way or relation, present with out geom
// and out bb.
type Bounds struct {
	MinLat float64 `json:"minlat"`
	MinLon float64 `json:"minlon"`
	MaxLat float64 `json:"maxlat"`
	MaxLon float64 `json:"maxlon"`
}

// Member is a relation member. Geometry is filled for way members and
// Lat/Lon for node members when the query uses out geom.
type Member struct {
	Type     string   `json:"type"`
	Ref      int64    `json:"ref"`
	Role     string   `json:"role"`
	Lat      float64  `json:"lat,omitempty"`
	Lon      float64  `json:"lon,omitempty"`
	Geometry []LatLon `json:"geometry,omitempty"`
}

// Element is a node, way or relation returned from the Overpass API.
type Element struct {
	Type     string            `json:"type"`
	ID       int64             `json:"id"`
	Lat      float64           `json:"lat,omitempty"`
	Lon      float64           `json:"lon,omitempty"`
	Center   *LatLon           `json:"center,omitempty"`
	Bounds   *Bounds           `json:"bounds,omitempty"`
	Tags     map[string]string `json:"tags,omitempty"`
	Nodes    []int64           `json:"nodes,omitempty"`    // For ways, list of node IDs
	Geometry []LatLon          `json:"geometry,omitempty"` // For ways, with out geom
	Members  []Member          `json:"members,omitempty"`  // For relations
}
