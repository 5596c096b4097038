// Package tools provides the accessgap MCP tool implementations.
package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/NERVsystems/accessgap/pkg/core"
	"github.com/NERVsystems/accessgap/pkg/geo"
)

// ErrorResponse is used for consistent error reporting
func ErrorResponse(message string) *mcp.CallToolResult {
	return mcp.NewToolResultError(message)
}

// InputParser is a generic function to parse request arguments into a strongly typed struct
func InputParser[T any](req mcp.CallToolRequest) (T, *mcp.CallToolResult, error) {
	var input T

	inputJSON, err := json.Marshal(req.Params.Arguments)
	if err != nil {
		return input, core.NewValidationError(core.ErrInvalidInput, fmt.Sprintf("Invalid input format: %v", err)).ToMCPResult(), err
	}

	if err := json.Unmarshal(inputJSON, &input); err != nil {
		return input, core.NewValidationError(core.ErrInvalidInput, fmt.Sprintf("Failed to parse input: %v", err)).ToMCPResult(), err
	}

	return input, nil, nil
}

// WithParsedInput is a higher-order function that handles request parsing and error handling.
// Handler errors are mapped to structured MCP errors with core.FromError.
func WithParsedInput[T any](
	handlerName string,
	handler func(ctx context.Context, input T, logger *slog.Logger) (interface{}, error),
) func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		logger := slog.Default().With("tool", handlerName)

		input, errResult, err := InputParser[T](req)
		if err != nil {
			logger.Error("failed to parse input", "error", err)
			return errResult, nil
		}

		result, err := handler(ctx, input, logger)
		if err != nil {
			logger.Error("handler error", "error", err)
			return core.FromError(err).ToMCPResult(), nil
		}

		resultBytes, err := json.Marshal(result)
		if err != nil {
			logger.Error("failed to marshal result", "error", err)
			return ErrorResponse("Failed to generate result"), nil
		}

		return mcp.NewToolResultText(string(resultBytes)), nil
	}
}

// ParsePolygon decodes a GeoJSON Polygon or MultiPolygon. A Feature or
// FeatureCollection is accepted too; the polygons of a collection are
// merged into one MultiPolygon. The document may also arrive as a JSON
// string holding the GeoJSON text.
func ParsePolygon(raw json.RawMessage) (orb.Geometry, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, core.NewValidationError(core.ErrMissingParameter, "polygon is required")
	}

	if raw[0] == '"' {
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return nil, invalidPolygon(err)
		}
		raw = []byte(s)
	}

	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, invalidPolygon(err)
	}

	var g orb.Geometry
	switch head.Type {
	case "Feature":
		f, err := geojson.UnmarshalFeature(raw)
		if err != nil {
			return nil, invalidPolygon(err)
		}
		g = f.Geometry
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(raw)
		if err != nil {
			return nil, invalidPolygon(err)
		}
		var mp orb.MultiPolygon
		for _, f := range fc.Features {
			switch fg := f.Geometry.(type) {
			case orb.Polygon:
				mp = append(mp, fg)
			case orb.MultiPolygon:
				mp = append(mp, fg...)
			default:
				return nil, fmt.Errorf("feature %v: %w", f.ID, geo.ErrUnsupportedGeometry)
			}
		}
		g = mp
	default:
		gj, err := geojson.UnmarshalGeometry(raw)
		if err != nil {
			return nil, invalidPolygon(err)
		}
		g = gj.Geometry()
	}

	switch g.(type) {
	case orb.Polygon, orb.MultiPolygon:
	default:
		return nil, fmt.Errorf("%s: %w", typeName(g), geo.ErrUnsupportedGeometry)
	}
	if geo.Empty(g) {
		return nil, core.NewValidationError(core.ErrInvalidInput, "polygon has no coordinates")
	}

	return g, nil
}

// ParseDate parses an RFC 3339 timestamp. The empty string is the zero time.
func ParseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, core.NewValidationError(core.ErrInvalidParameter,
			fmt.Sprintf("date must be RFC 3339, e.g. 2019-01-01T00:00:00Z: %v", err))
	}
	return t, nil
}

func invalidPolygon(err error) error {
	return core.NewValidationError(core.ErrInvalidInput, fmt.Sprintf("polygon is not valid GeoJSON: %v", err)).
		WithSuggestions(`{"type": "Polygon", "coordinates": [[[13.40, 52.52], [13.41, 52.52], [13.41, 52.53], [13.40, 52.52]]]}`)
}

func typeName(g orb.Geometry) string {
	if g == nil {
		return "null geometry"
	}
	return g.GeoJSONType()
}
