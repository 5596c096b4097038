package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/NERVsystems/accessgap/pkg/monitoring"
	"github.com/NERVsystems/accessgap/pkg/osm/queries"
	"github.com/NERVsystems/accessgap/pkg/tracing"
)

// Handler is the signature of an MCP tool handler.
type Handler func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error)

// Registry contains all tool definitions and handlers
type Registry struct {
	logger *slog.Logger
	sender queries.Sender
}

// NewRegistry creates a new tool registry. Tools that talk to Overpass
// send their queries through sender.
func NewRegistry(logger *slog.Logger, sender queries.Sender) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		logger: logger,
		sender: sender,
	}
}

// ToolDefinition represents an accessgap MCP tool definition.
type ToolDefinition struct {
	Name        string
	Description string
	Tool        mcp.Tool
	Handler     Handler
}

// GetToolDefinitions returns the list of all available tools.
func (r *Registry) GetToolDefinitions() []ToolDefinition {
	return []ToolDefinition{
		{
			Name:        "get_version",
			Description: "Get the version information for this service",
			Tool:        GetVersionTool(),
			Handler:     HandleGetVersion,
		},
		{
			Name:        "build_overpass_query",
			Description: "Build an Overpass QL query for a polygon. Parameters: polygon (GeoJSON), quick_tag (string) or filters (array of strings), timeout (number), maxsize (number), date (RFC 3339 string)",
			Tool:        BuildOverpassQueryTool(),
			Handler:     HandleBuildOverpassQuery,
		},
		{
			Name:        "list_quick_tags",
			Description: "List the quick tag presets and their filter fragments",
			Tool:        ListQuickTagsTool(),
			Handler:     HandleListQuickTags,
		},
		{
			Name:        "pois_from_polygon",
			Description: "Fetch tagged features inside a polygon as GeoJSON points. Parameters: polygon (GeoJSON), tags (object), date (RFC 3339 string), no_cache (boolean), timeout (number)",
			Tool:        POIsFromPolygonTool(),
			Handler:     NewPOIsFromPolygonHandler(r.sender),
		},
	}
}

// RegisterTools registers all tools with the MCP server.
func (r *Registry) RegisterTools(mcpServer *server.MCPServer) {
	for _, def := range r.GetToolDefinitions() {
		r.logger.Info("registering tool", "name", def.Name)
		mcpServer.AddTool(def.Tool, r.wrap(def.Name, def.Handler))
	}
}

// wrap instruments a tool handler with an OpenTelemetry span and
// request metrics.
func (r *Registry) wrap(toolName string, handler Handler) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, span := tracing.StartSpan(ctx, fmt.Sprintf("mcp.tool.%s", toolName),
			trace.WithAttributes(
				attribute.String(tracing.AttrMCPToolName, toolName),
			),
		)
		defer span.End()

		startTime := time.Now()
		result, err := handler(ctx, req)
		duration := time.Since(startTime)

		// Handlers report tool failures in the result, not the error.
		failed := err != nil || (result != nil && result.IsError)
		status := tracing.StatusSuccess
		if failed {
			status = tracing.StatusError
		}
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		} else if failed {
			span.SetStatus(codes.Error, "tool returned an error result")
		} else {
			span.SetStatus(codes.Ok, "")
		}

		resultSize := 0
		if result != nil && result.Content != nil {
			if data, marshalErr := json.Marshal(result.Content); marshalErr == nil {
				resultSize = len(data)
			}
		}

		span.SetAttributes(tracing.MCPToolAttributes(toolName, status, duration.Milliseconds(), resultSize)...)
		monitoring.RecordMCPRequest(toolName, duration, !failed)

		r.logger.Debug("tool execution traced",
			"tool", toolName,
			"duration_ms", duration.Milliseconds(),
			"status", status,
			"result_size", resultSize,
		)

		return result, err
	}
}

// GetToolNames returns a list of all tool names.
func (r *Registry) GetToolNames() []string {
	defs := r.GetToolDefinitions()
	names := make([]string, len(defs))
	for i, def := range defs {
		names[i] = def.Name
	}
	return names
}
