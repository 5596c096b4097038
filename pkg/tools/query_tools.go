package tools

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mark3labs/mcp-go/mcp"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/accessgap/pkg/core"
	"github.com/NERVsystems/accessgap/pkg/monitoring"
	"github.com/NERVsystems/accessgap/pkg/osm/queries"
	"github.com/NERVsystems/accessgap/pkg/tracing"
)

// BuildQueryInput defines the input parameters for build_overpass_query
type BuildQueryInput struct {
	Polygon  json.RawMessage `json:"polygon"`
	QuickTag string          `json:"quick_tag,omitempty"`
	Filters  []string        `json:"filters,omitempty"`
	Timeout  int             `json:"timeout,omitempty"`
	MaxSize  int64           `json:"maxsize,omitempty"`
	Date     string          `json:"date,omitempty"`
}

// BuildQueryOutput defines the output of build_overpass_query
type BuildQueryOutput struct {
	Query     string   `json:"query"`
	Preamble  string   `json:"preamble"`
	Filter    string   `json:"filter"`
	Polygon   string   `json:"polygon"`
	QuickTag  string   `json:"quick_tag,omitempty"`
	Fragments []string `json:"fragments,omitempty"`
}

// QuickTagInfo describes one entry of the quick tag catalog
type QuickTagInfo struct {
	Name      string   `json:"name"`
	Fragments []string `json:"fragments"`
}

// BuildOverpassQueryTool returns a tool definition for building polygon queries
func BuildOverpassQueryTool() mcp.Tool {
	return mcp.NewTool("build_overpass_query",
		mcp.WithDescription("Build the Overpass QL query that selects nodes, ways and relations inside a polygon. The polygon is reduced to its convex hull. Pass either quick_tag or filters, not both. Example: polygon: {\"type\": \"Polygon\", \"coordinates\": [[[13.40, 52.52], [13.41, 52.52], [13.41, 52.53], [13.40, 52.52]]]}, quick_tag: \"all_food\""),
		mcp.WithObject("polygon",
			mcp.Required(),
			mcp.Description("GeoJSON Polygon or MultiPolygon in [lon, lat] order. A Feature or FeatureCollection of polygons is also accepted."),
		),
		mcp.WithString("quick_tag",
			mcp.Description("Named filter preset: restaurant, food_court, cafe, fast_food, bar, pub, ice_cream, biergarten, outdoor_seating, all_food"),
		),
		mcp.WithArray("filters",
			mcp.Description("Literal Overpass tag filter fragments, OR-ed together. Example: [\"[amenity=cafe]\", \"[shop=bakery]\"]"),
		),
		mcp.WithNumber("timeout",
			mcp.Description("Server-side timeout in seconds. Omitted when 0."),
		),
		mcp.WithNumber("maxsize",
			mcp.Description("Server-side memory limit in bytes. Omitted when 0."),
		),
		mcp.WithString("date",
			mcp.Description("Query the database as it was at this RFC 3339 instant, e.g. 2019-01-01T00:00:00Z"),
		),
	)
}

// HandleBuildOverpassQuery implements query building
func HandleBuildOverpassQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("build_overpass_query", func(ctx context.Context, input BuildQueryInput, logger *slog.Logger) (interface{}, error) {
		polygon, err := ParsePolygon(input.Polygon)
		if err != nil {
			return nil, err
		}
		date, err := ParseDate(input.Date)
		if err != nil {
			return nil, err
		}
		if input.Timeout < 0 || input.MaxSize < 0 {
			return nil, core.NewValidationError(core.ErrInvalidParameter, "timeout and maxsize must not be negative")
		}

		opts := []queries.Option{
			queries.WithOptions(queries.Options{
				Timeout: input.Timeout,
				MaxSize: input.MaxSize,
				Date:    date,
			}),
		}
		if input.QuickTag != "" {
			opts = append(opts, queries.WithQuickTagName(input.QuickTag))
		}
		if len(input.Filters) > 0 {
			opts = append(opts, queries.WithFilter(queries.Fragments(input.Filters...)))
		}

		q, err := queries.NewQuery(polygon, opts...)
		if err != nil {
			return nil, err
		}

		out := BuildQueryOutput{
			Query:    q.Build(),
			Preamble: q.Preamble(),
			Filter:   q.FilterClause(),
			Polygon:  q.Polygon(),
		}
		mode := "none"
		if f := q.Filter(); !f.IsZero() {
			out.Fragments = f.List()
			mode = "filter"
		}
		if tag, ok := q.QuickTag(); ok {
			out.QuickTag = tag.String()
			mode = "quick_tag"
		}

		monitoring.RecordQueryBuilt(mode, len(out.Fragments))
		tracing.AddEvent(ctx, "query_built", trace.WithAttributes(
			tracing.QueryAttributes(out.QuickTag, len(out.Fragments), len(out.Query))...,
		))
		logger.Debug("built overpass query", "mode", mode, "fragments", len(out.Fragments), "length", len(out.Query))

		return out, nil
	})(ctx, req)
}

// ListQuickTagsTool returns a tool definition for listing the quick tag catalog
func ListQuickTagsTool() mcp.Tool {
	return mcp.NewTool("list_quick_tags",
		mcp.WithDescription("List the named filter presets accepted by build_overpass_query and the tag filter fragments each one expands to"),
	)
}

// HandleListQuickTags lists the quick tag catalog in its canonical order
func HandleListQuickTags(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return WithParsedInput("list_quick_tags", func(ctx context.Context, _ struct{}, _ *slog.Logger) (interface{}, error) {
		tags := queries.QuickTags()
		out := make([]QuickTagInfo, len(tags))
		for i, t := range tags {
			out[i] = QuickTagInfo{Name: t.String(), Fragments: t.Fragments()}
		}
		return map[string]interface{}{"quick_tags": out}, nil
	})(ctx, req)
}
