package tracing

import "go.opentelemetry.io/otel/attribute"

// Attribute keys
const (
	// MCP tool attributes
	AttrMCPToolName     = "mcp.tool.name"
	AttrMCPToolStatus   = "mcp.tool.status"
	AttrMCPToolDuration = "mcp.tool.duration_ms"
	AttrMCPResultSize   = "mcp.tool.result_size"

	// Query building attributes
	AttrQueryQuickTag  = "accessgap.query.quick_tag"
	AttrQueryFragments = "accessgap.query.fragments"
	AttrQueryLength    = "accessgap.query.length"
	AttrPOICount       = "accessgap.pois.count"

	// External service attributes
	AttrServiceName      = "accessgap.service.name"
	AttrServiceOperation = "accessgap.service.operation"
	AttrServiceURL       = "accessgap.service.url"

	// Cache attributes
	AttrCacheType = "accessgap.cache.type"
	AttrCacheHit  = "accessgap.cache.hit"
	AttrCacheKey  = "accessgap.cache.key"

	// Rate limiting attributes
	AttrRateLimitService = "accessgap.ratelimit.service"
	AttrRateLimitWaitMs  = "accessgap.ratelimit.wait_ms"

	// HTTP attributes for the monitoring endpoints
	AttrHTTPMethod     = "http.method"
	AttrHTTPPath       = "http.path"
	AttrHTTPStatusCode = "http.status_code"

	// Error attributes
	AttrErrorType    = "error.type"
	AttrErrorMessage = "error.message"
)

// Status values
const (
	StatusSuccess     = "success"
	StatusError       = "error"
	StatusRateLimited = "rate_limited"
)

// ServiceOverpass names the Overpass API in spans, metrics and logs.
const ServiceOverpass = "overpass"

// CacheTypeOverpass labels the Overpass result cache.
const CacheTypeOverpass = "overpass"

// MCPToolAttributes returns attributes for MCP tool execution
func MCPToolAttributes(toolName string, status string, durationMs int64, resultSize int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrMCPToolName, toolName),
		attribute.String(AttrMCPToolStatus, status),
		attribute.Int64(AttrMCPToolDuration, durationMs),
		attribute.Int(AttrMCPResultSize, resultSize),
	}
}

// QueryAttributes describes a built query. quickTag may be empty.
func QueryAttributes(quickTag string, fragments, length int) []attribute.KeyValue {
	attrs := []attribute.KeyValue{
		attribute.Int(AttrQueryFragments, fragments),
		attribute.Int(AttrQueryLength, length),
	}
	if quickTag != "" {
		attrs = append(attrs, attribute.String(AttrQueryQuickTag, quickTag))
	}
	return attrs
}

// CacheAttributes returns attributes for cache operations
func CacheAttributes(cacheType string, hit bool, key string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(AttrCacheType, cacheType),
		attribute.Bool(AttrCacheHit, hit),
		attribute.String(AttrCacheKey, key),
	}
}

// ErrorAttributes returns attributes for errors
func ErrorAttributes(err error) []attribute.KeyValue {
	if err == nil {
		return nil
	}
	return []attribute.KeyValue{
		attribute.String(AttrErrorType, "error"),
		attribute.String(AttrErrorMessage, err.Error()),
	}
}
