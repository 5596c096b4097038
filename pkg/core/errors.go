// Package core provides the error model shared by the accessgap MCP tools.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/NERVsystems/accessgap/pkg/geo"
	"github.com/NERVsystems/accessgap/pkg/osm"
	"github.com/NERVsystems/accessgap/pkg/osm/queries"
)

// ErrorCode defines standard error codes for MCP tools
type ErrorCode string

// Standard error codes
const (
	// Input validation errors
	ErrInvalidInput        ErrorCode = "INVALID_INPUT"
	ErrInvalidParameter    ErrorCode = "INVALID_PARAMETER"
	ErrMissingParameter    ErrorCode = "MISSING_PARAMETER"
	ErrUnsupportedGeometry ErrorCode = "UNSUPPORTED_GEOMETRY"
	ErrUnknownQuickTag     ErrorCode = "UNKNOWN_QUICK_TAG"
	ErrConflictingFilters  ErrorCode = "CONFLICTING_FILTERS"

	// Service errors
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrServiceTimeout     ErrorCode = "SERVICE_TIMEOUT"
	ErrRateLimit          ErrorCode = "RATE_LIMIT"
	ErrNetworkError       ErrorCode = "NETWORK_ERROR"

	// Data errors
	ErrParseError    ErrorCode = "PARSE_ERROR"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// MCPError represents a detailed error structure for MCP tool responses
type MCPError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Query       string   `json:"query,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Guidance    string   `json:"guidance,omitempty"`
}

// Error implements the error interface
func (e MCPError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a new MCPError with the given code and message
func NewError(code ErrorCode, message string) *MCPError {
	return &MCPError{
		Code:    string(code),
		Message: message,
	}
}

// WithQuery adds query information to the error
func (e *MCPError) WithQuery(query string) *MCPError {
	e.Query = query
	return e
}

// WithGuidance adds guidance information to the error
func (e *MCPError) WithGuidance(guidance string) *MCPError {
	e.Guidance = guidance
	return e
}

// WithSuggestions adds suggestions to the error
func (e *MCPError) WithSuggestions(suggestions ...string) *MCPError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// ToMCPResult converts the error to an MCP tool result
func (e *MCPError) ToMCPResult() *mcp.CallToolResult {
	errorJSON, err := json.Marshal(e)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ERROR: %s - %s", e.Code, e.Message))
	}

	return mcp.NewToolResultError(string(errorJSON))
}

// NewValidationError creates an error for validation failures
func NewValidationError(code ErrorCode, message string) *MCPError {
	return NewError(code, message).
		WithGuidance("Please correct the parameters and try again.")
}

// ServiceError creates an error for an external service reply with the
// given HTTP status.
func ServiceError(service string, statusCode int, message string) *MCPError {
	var code ErrorCode
	var guidance string

	switch statusCode {
	case http.StatusTooManyRequests:
		code = ErrRateLimit
		guidance = osm.GuidanceOverpassRateLimit
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		code = ErrServiceTimeout
		guidance = osm.GuidanceOverpassTimeout
	case http.StatusBadRequest:
		code = ErrInvalidInput
		guidance = osm.GuidanceOverpassSyntax
	case http.StatusInternalServerError:
		code = ErrInternalError
		guidance = "The server encountered an error. This is likely temporary, please try again later."
	default:
		code = ErrServiceUnavailable
		guidance = osm.GuidanceOverpassGeneral
	}

	return NewError(code, fmt.Sprintf("%s service error: %s", service, message)).
		WithGuidance(guidance)
}

// FromError maps an error returned by the geometry, query or Overpass
// layers to an MCPError. A nil error maps to nil.
func FromError(err error) *MCPError {
	if err == nil {
		return nil
	}

	var mcpErr *MCPError
	if errors.As(err, &mcpErr) {
		return mcpErr
	}

	var apiErr *osm.APIError
	if errors.As(err, &apiErr) {
		e := ServiceError(apiErr.Service, apiErr.StatusCode, apiErr.Message)
		if apiErr.Guidance != "" {
			e.Guidance = apiErr.Guidance
		}
		return e
	}

	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError

	switch {
	case errors.Is(err, geo.ErrUnsupportedGeometry):
		return NewValidationError(ErrUnsupportedGeometry, err.Error()).
			WithSuggestions("Pass a GeoJSON Polygon or MultiPolygon")
	case errors.Is(err, queries.ErrUnknownQuickTag):
		return NewValidationError(ErrUnknownQuickTag, err.Error()).
			WithSuggestions(quickTagNames()...)
	case errors.Is(err, queries.ErrConflictingFilters):
		return NewValidationError(ErrConflictingFilters, err.Error()).
			WithSuggestions("Pass either quick_tag or filters")
	case errors.Is(err, context.DeadlineExceeded):
		return NewError(ErrServiceTimeout, err.Error()).
			WithGuidance(osm.GuidanceOverpassTimeout)
	case errors.Is(err, context.Canceled):
		return NewError(ErrServiceUnavailable, err.Error())
	case errors.As(err, &syntaxErr), errors.As(err, &typeErr):
		return NewError(ErrParseError, err.Error()).
			WithGuidance("The data received was incomplete or malformed. Try different search parameters.")
	}

	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) {
		return NewError(ErrNetworkError, err.Error()).
			WithGuidance("Check your internet connection and try again.")
	}

	return NewError(ErrInternalError, err.Error())
}

func quickTagNames() []string {
	tags := queries.QuickTags()
	names := make([]string, len(tags))
	for i, t := range tags {
		names[i] = t.String()
	}
	return names
}
