package osm

import (
	"fmt"
	"net/http"
	"strings"
)

// Guidance messages attached to Overpass errors.
const (
	GuidanceOverpassTimeout   = "Consider simplifying your query by reducing the polygon or adding more specific filters."
	GuidanceOverpassRateLimit = "The Overpass API is currently experiencing high load. Please try again in a minute."
	GuidanceOverpassSyntax    = "There's an issue with the query format. Check the filter fragments."
	GuidanceOverpassMemory    = "The query requires too much memory. Try reducing the search area or raising maxsize."
	GuidanceOverpassGeneral   = "Please try again later or modify your request parameters."
)

// APIError represents a non-success reply from an external API service,
// with information to help users recover.
type APIError struct {
	Service     string // The API service name
	StatusCode  int    // HTTP status code
	Message     string // Error message or body excerpt
	Recoverable bool   // Whether retrying later may succeed
	Guidance    string // Guidance for users on how to recover
}

// Error implements the error interface and provides a formatted error message.
func (e *APIError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s API error (%d): %s. %s", e.Service, e.StatusCode, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s API error (%d): %s", e.Service, e.StatusCode, e.Message)
}

// NewAPIError creates a new APIError with guidance inferred from the status
// code when none is given.
func NewAPIError(service string, statusCode int, message, guidance string) *APIError {
	if guidance == "" {
		guidance = remarkGuidance(message)
	}
	if guidance == "" {
		switch statusCode {
		case http.StatusTooManyRequests:
			guidance = GuidanceOverpassRateLimit
		case http.StatusRequestTimeout, http.StatusGatewayTimeout:
			guidance = GuidanceOverpassTimeout
		case http.StatusBadRequest:
			guidance = GuidanceOverpassSyntax
		default:
			guidance = GuidanceOverpassGeneral
		}
	}

	return &APIError{
		Service:     service,
		StatusCode:  statusCode,
		Message:     message,
		Recoverable: statusCode != http.StatusBadRequest,
		Guidance:    guidance,
	}
}

// remarkGuidance recognizes the runtime errors Overpass reports in a remark
// or error page. It returns "" for anything else.
func remarkGuidance(msg string) string {
	msg = strings.ToLower(msg)
	switch {
	case strings.Contains(msg, "out of memory"):
		return GuidanceOverpassMemory
	case strings.Contains(msg, "timed out"):
		return GuidanceOverpassTimeout
	}
	return ""
}
