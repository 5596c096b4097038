package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/attribute"

	"github.com/NERVsystems/accessgap/pkg/core"
	"github.com/NERVsystems/accessgap/pkg/monitoring"
	"github.com/NERVsystems/accessgap/pkg/osm/queries"
	"github.com/NERVsystems/accessgap/pkg/pois"
	"github.com/NERVsystems/accessgap/pkg/tracing"
)

const (
	maxTagCount       = 20
	maxTagKeyLength   = 100
	maxTagValueLength = 200
)

// POIsInput defines the input parameters for pois_from_polygon
type POIsInput struct {
	Polygon json.RawMessage            `json:"polygon"`
	Tags    map[string]json.RawMessage `json:"tags,omitempty"`
	Date    string                     `json:"date,omitempty"`
	NoCache bool                       `json:"no_cache,omitempty"`
	Timeout int                        `json:"timeout,omitempty"`
	MaxSize int64                      `json:"maxsize,omitempty"`
}

// POIsFromPolygonTool returns a tool definition for fetching points of interest inside a polygon
func POIsFromPolygonTool() mcp.Tool {
	return mcp.NewTool("pois_from_polygon",
		mcp.WithDescription("Fetch OpenStreetMap features matching tags inside a polygon and return them as a GeoJSON FeatureCollection of points. Ways and relations are reduced to their centroids. Example: polygon: {\"type\": \"Polygon\", \"coordinates\": [[[13.40, 52.52], [13.41, 52.52], [13.41, 52.53], [13.40, 52.52]]]}, tags: {\"amenity\": [\"restaurant\", \"cafe\"], \"cuisine\": true}"),
		mcp.WithObject("polygon",
			mcp.Required(),
			mcp.Description("GeoJSON Polygon or MultiPolygon in [lon, lat] order. A Feature or FeatureCollection of polygons is also accepted."),
		),
		mcp.WithObject("tags",
			mcp.Description("Tags to match, any one of them is enough. A value may be a string, a list of strings, or true or \"*\" to match any value. Defaults to {\"amenity\": \"restaurant\"}"),
		),
		mcp.WithString("date",
			mcp.Description("Query the database as it was at this RFC 3339 instant, e.g. 2019-01-01T00:00:00Z"),
		),
		mcp.WithBoolean("no_cache",
			mcp.Description("Bypass the Overpass result cache"),
			mcp.DefaultBool(false),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Server-side timeout in seconds"),
			mcp.DefaultNumber(pois.DefaultTimeout),
		),
		mcp.WithNumber("maxsize",
			mcp.Description("Server-side memory limit in bytes. Omitted when 0."),
		),
	)
}

// NewPOIsFromPolygonHandler returns the pois_from_polygon handler sending
// its queries through sender.
func NewPOIsFromPolygonHandler(sender queries.Sender) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("pois_from_polygon", func(ctx context.Context, input POIsInput, logger *slog.Logger) (interface{}, error) {
		polygon, err := ParsePolygon(input.Polygon)
		if err != nil {
			return nil, err
		}
		date, err := ParseDate(input.Date)
		if err != nil {
			return nil, err
		}
		tags, err := ParseTags(input.Tags)
		if err != nil {
			return nil, err
		}
		if input.Timeout < 0 || input.MaxSize < 0 {
			return nil, core.NewValidationError(core.ErrInvalidParameter, "timeout and maxsize must not be negative")
		}

		features, err := pois.FromPolygon(ctx, sender, polygon, pois.Options{
			Tags:    tags,
			Date:    date,
			NoCache: input.NoCache,
			Timeout: input.Timeout,
			MaxSize: input.MaxSize,
			Logger:  logger,
		})
		if err != nil {
			return nil, err
		}

		monitoring.RecordFeaturesReturned(len(features))
		tracing.SetAttributes(ctx, attribute.Int(tracing.AttrPOICount, len(features)))
		logger.Info("fetched features", "count", len(features), "no_cache", input.NoCache)

		return pois.FeatureCollection(features), nil
	})
}

// ParseTags converts tool tag arguments into pois tag values. An empty map
// is nil, which selects the default tags.
func ParseTags(raw map[string]json.RawMessage) (map[string]pois.TagValue, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	if len(raw) > maxTagCount {
		return nil, core.NewValidationError(core.ErrInvalidParameter,
			fmt.Sprintf("too many tags: %d (maximum: %d)", len(raw), maxTagCount))
	}

	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	tags := make(map[string]pois.TagValue, len(raw))
	for _, key := range keys {
		if key == "" {
			return nil, core.NewValidationError(core.ErrInvalidParameter, "empty tag key")
		}
		if len(key) > maxTagKeyLength {
			return nil, core.NewValidationError(core.ErrInvalidParameter,
				fmt.Sprintf("tag key too long: %d characters (maximum: %d)", len(key), maxTagKeyLength))
		}

		v, err := parseTagValue(raw[key])
		if err != nil {
			return nil, core.NewValidationError(core.ErrInvalidParameter, fmt.Sprintf("tag %q: %v", key, err))
		}
		for _, s := range v.Values() {
			if len(s) > maxTagValueLength {
				return nil, core.NewValidationError(core.ErrInvalidParameter,
					fmt.Sprintf("tag %q: value too long: %d characters (maximum: %d)", key, len(s), maxTagValueLength))
			}
		}
		tags[key] = v
	}

	return tags, nil
}

func parseTagValue(raw json.RawMessage) (pois.TagValue, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return pois.Any(), nil
	}

	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		if !b {
			return pois.TagValue{}, fmt.Errorf("false is not a tag value, use true or \"*\" to match any value")
		}
		return pois.Any(), nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if s == "*" {
			return pois.Any(), nil
		}
		return pois.Equals(s), nil
	}

	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return pois.Equals(list...), nil
	}

	return pois.TagValue{}, fmt.Errorf("value must be a string, a list of strings, or true")
}
