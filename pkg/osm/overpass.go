package osm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/accessgap/pkg/tracing"
)

const (
	// DefaultCacheSize is the number of results kept when ClientOptions
	// leaves CacheSize at zero.
	DefaultCacheSize = 128

	// DefaultCacheTTL is how long a cached result stays valid.
	DefaultCacheTTL = time.Hour

	// maxErrorBody bounds the response excerpt kept in an APIError.
	maxErrorBody = 500

	// sharedFetchTimeout bounds a request shared by concurrent callers,
	// which no longer follows any caller's deadline.
	sharedFetchTimeout = 3 * time.Minute

	healthQuery = "[out:json];out meta;"
)

// ClientOptions configures an OverpassClient. The zero value talks to
// OverpassBaseURL at one request per second with a result cache.
type ClientOptions struct {
	// Endpoint is the interpreter URL.
	Endpoint string

	// HTTPClient defaults to the shared pooled client.
	HTTPClient *http.Client

	// RateLimit is in requests per second, Burst in requests.
	RateLimit float64
	Burst     int

	// CacheSize caps the number of cached results. Negative disables the
	// cache.
	CacheSize int
	CacheTTL  time.Duration

	Logger *slog.Logger
}

// OverpassClient submits Overpass QL queries and decodes the JSON results.
// It is safe for concurrent use. Results may be shared between callers and
// must be treated as read-only.
type OverpassClient struct {
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	cache    *expirable.LRU[uint64, *Result]
	group    singleflight.Group
	logger   *slog.Logger
}

// NewOverpassClient creates a client from opts.
func NewOverpassClient(opts ClientOptions) *OverpassClient {
	if opts.Endpoint == "" {
		opts.Endpoint = OverpassBaseURL
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = httpClient
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 1
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	c := &OverpassClient{
		endpoint: opts.Endpoint,
		client:   opts.HTTPClient,
		limiter:  rate.NewLimiter(rate.Limit(opts.RateLimit), opts.Burst),
		logger:   opts.Logger.With("service", tracing.ServiceOverpass),
	}

	if opts.CacheSize >= 0 {
		size := opts.CacheSize
		if size == 0 {
			size = DefaultCacheSize
		}
		ttl := opts.CacheTTL
		if ttl <= 0 {
			ttl = DefaultCacheTTL
		}
		c.cache = expirable.NewLRU[uint64, *Result](size, nil, ttl)
	}

	return c
}

type noCacheKey struct{}

// WithoutCache returns a context under which Send neither reads nor fills
// the result cache.
func WithoutCache(ctx context.Context) context.Context {
	return context.WithValue(ctx, noCacheKey{}, true)
}

// CacheDisabled reports whether ctx came from WithoutCache.
func CacheDisabled(ctx context.Context) bool {
	v, _ := ctx.Value(noCacheKey{}).(bool)
	return v
}

// Endpoint returns the interpreter URL.
func (c *OverpassClient) Endpoint() string {
	return c.endpoint
}

// CacheLen returns the number of cached results.
func (c *OverpassClient) CacheLen() int {
	if c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

// Purge empties the result cache.
func (c *OverpassClient) Purge() {
	if c.cache != nil {
		c.cache.Purge()
	}
}

// Send submits query and returns the decoded result. A non-200 reply is
// returned as an *APIError. Send does not retry.
//
// Identical queries in flight at the same time share one request, and
// successful results are cached unless ctx came from WithoutCache. A caller
// whose ctx ends stops waiting without aborting the request for the others.
func (c *OverpassClient) Send(ctx context.Context, query string) (*Result, error) {
	ctx, span := tracing.StartSpan(ctx, "overpass.send",
		trace.WithAttributes(
			attribute.String(tracing.AttrServiceName, tracing.ServiceOverpass),
			attribute.String(tracing.AttrServiceOperation, "interpreter"),
			attribute.String(tracing.AttrServiceURL, c.endpoint),
		),
	)
	defer span.End()

	if c.cache == nil || CacheDisabled(ctx) {
		return c.fetch(ctx, query)
	}

	hooks := getMonitoringHooks()
	key := xxhash.Sum64String(query)
	keyStr := strconv.FormatUint(key, 16)

	if res, ok := c.cache.Get(key); ok {
		span.SetAttributes(tracing.CacheAttributes(tracing.CacheTypeOverpass, true, keyStr)...)
		hooks.cache(tracing.CacheTypeOverpass, true, c.cache.Len())
		c.logger.Debug("overpass cache hit", "key", keyStr)
		return res, nil
	}
	span.SetAttributes(tracing.CacheAttributes(tracing.CacheTypeOverpass, false, keyStr)...)
	hooks.cache(tracing.CacheTypeOverpass, false, c.cache.Len())

	// The shared request outlives any single caller: it runs detached from
	// the caller's cancellation and each caller stops waiting on its own ctx.
	ch := c.group.DoChan(keyStr, func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()

		res, err := c.fetch(fetchCtx, query)
		if err != nil {
			return nil, err
		}
		c.cache.Add(key, res)
		return res, nil
	})

	select {
	case <-ctx.Done():
		span.SetStatus(codes.Error, "caller canceled")
		return nil, ctx.Err()
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		if r.Shared {
			c.logger.Debug("shared in-flight overpass request", "key", keyStr)
		}
		return r.Val.(*Result), nil
	}
}

func (c *OverpassClient) fetch(ctx context.Context, query string) (*Result, error) {
	hooks := getMonitoringHooks()

	form := url.Values{"data": {query}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("failed to create overpass request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	c.logger.Debug("sending overpass query", "query", query)

	resp, err := monitoredDo(ctx, c.client, c.limiter, req, tracing.ServiceOverpass, "interpreter")
	if err != nil {
		tracing.RecordError(ctx, err)
		tracing.SetStatus(ctx, codes.Error, "request failed")
		c.logger.Error("overpass request failed", "error", err)
		return nil, fmt.Errorf("overpass request failed: %w", err)
	}
	defer resp.Body.Close()

	tracing.SetAttributes(ctx, attribute.Int(tracing.AttrHTTPStatusCode, resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		apiErr := NewAPIError("Overpass", resp.StatusCode, strings.TrimSpace(string(body)), "")
		hooks.reportError(tracing.ServiceOverpass, "status_"+strconv.Itoa(resp.StatusCode))
		tracing.RecordError(ctx, apiErr)
		tracing.SetStatus(ctx, codes.Error, http.StatusText(resp.StatusCode))
		c.logger.Error("overpass returned error status", "status", resp.StatusCode, "error", apiErr)
		return nil, apiErr
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		hooks.reportError(tracing.ServiceOverpass, "parse_error")
		tracing.RecordError(ctx, err)
		tracing.SetStatus(ctx, codes.Error, "decode failed")
		return nil, fmt.Errorf("failed to decode overpass response: %w", err)
	}

	if result.Remark != "" {
		tracing.AddEvent(ctx, "overpass_remark", trace.WithAttributes(attribute.String("overpass.remark", result.Remark)))
		if guidance := remarkGuidance(result.Remark); guidance != "" {
			c.logger.Warn("overpass remark", "remark", result.Remark, "guidance", guidance)
		} else {
			c.logger.Warn("overpass remark", "remark", result.Remark)
		}
	}

	tracing.SetAttributes(ctx, attribute.Int("overpass.elements", len(result.Elements)))
	c.logger.Debug("overpass response", "elements", len(result.Elements))

	return &result, nil
}

// CheckHealth checks the endpoint with a trivial query. Only server errors
// count as unhealthy.
func (c *OverpassClient) CheckHealth(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return fmt.Errorf("failed to create overpass health check request: %w", err)
	}
	req.URL.RawQuery = url.Values{"data": {healthQuery}}.Encode()

	resp, err := monitoredDo(ctx, c.client, c.limiter, req, tracing.ServiceOverpass, "health")
	if err != nil {
		return fmt.Errorf("overpass health check failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 500 {
		return fmt.Errorf("overpass health check returned status %d", resp.StatusCode)
	}

	return nil
}
