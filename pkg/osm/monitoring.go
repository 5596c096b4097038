package osm

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"

	"github.com/NERVsystems/accessgap/pkg/tracing"
)

// MonitoringHooks defines hooks for monitoring Overpass traffic
type MonitoringHooks struct {
	// OnRequest is called before making an HTTP request
	OnRequest func(service, operation string)

	// OnResponse is called after receiving an HTTP response
	OnResponse func(service, operation string, duration time.Duration, success bool)

	// OnRateLimit is called when a request had to wait for the rate limiter
	OnRateLimit func(service string, waitTime time.Duration)

	// OnError is called when an error occurs
	OnError func(service, errorType string)

	// OnCache is called on every result cache lookup with the cache size
	// after the lookup
	OnCache func(cacheType string, hit bool, size int)
}

var (
	// Global monitoring hooks
	globalHooks *MonitoringHooks
	hooksMutex  sync.RWMutex
)

// SetMonitoringHooks sets global monitoring hooks
func SetMonitoringHooks(hooks *MonitoringHooks) {
	hooksMutex.Lock()
	defer hooksMutex.Unlock()
	globalHooks = hooks
}

// getMonitoringHooks returns the current monitoring hooks, never nil
func getMonitoringHooks() *MonitoringHooks {
	hooksMutex.RLock()
	defer hooksMutex.RUnlock()
	if globalHooks == nil {
		return &MonitoringHooks{}
	}
	return globalHooks
}

func (h *MonitoringHooks) request(service, operation string) {
	if h.OnRequest != nil {
		h.OnRequest(service, operation)
	}
}

func (h *MonitoringHooks) response(service, operation string, d time.Duration, success bool) {
	if h.OnResponse != nil {
		h.OnResponse(service, operation, d, success)
	}
}

func (h *MonitoringHooks) rateLimit(service string, d time.Duration) {
	if h.OnRateLimit != nil {
		h.OnRateLimit(service, d)
	}
}

func (h *MonitoringHooks) reportError(service, errorType string) {
	if h.OnError != nil {
		h.OnError(service, errorType)
	}
}

func (h *MonitoringHooks) cache(cacheType string, hit bool, size int) {
	if h.OnCache != nil {
		h.OnCache(cacheType, hit, size)
	}
}

// waitForRateLimit blocks until limiter admits one request and returns how
// long that took.
func waitForRateLimit(ctx context.Context, limiter *rate.Limiter, service string) (time.Duration, error) {
	if limiter == nil || limiter.Allow() {
		return 0, nil
	}

	startWait := time.Now()
	tracing.AddEvent(ctx, "rate_limit_wait",
		trace.WithAttributes(
			attribute.String(tracing.AttrRateLimitService, service),
		),
	)

	err := limiter.Wait(ctx)

	waitDuration := time.Since(startWait)
	tracing.SetAttributes(ctx,
		attribute.String(tracing.AttrRateLimitService, service),
		attribute.Int64(tracing.AttrRateLimitWaitMs, waitDuration.Milliseconds()),
	)
	return waitDuration, err
}

// monitoredDo performs req on client after waiting for limiter, reporting
// to the monitoring hooks. HTTP error statuses are reported through
// OnResponse only; OnError is for failures without a response.
func monitoredDo(ctx context.Context, client *http.Client, limiter *rate.Limiter, req *http.Request, service, operation string) (*http.Response, error) {
	hooks := getMonitoringHooks()
	hooks.request(service, operation)

	req.Header.Set("User-Agent", GetUserAgent())

	waited, err := waitForRateLimit(ctx, limiter, service)
	if err != nil {
		hooks.reportError(service, "rate_limit_wait_error")
		return nil, err
	}
	if waited > 0 {
		hooks.rateLimit(service, waited)
	}

	start := time.Now()
	resp, err := client.Do(req)
	duration := time.Since(start)

	success := err == nil && resp != nil && resp.StatusCode < 400
	hooks.response(service, operation, duration, success)

	if err != nil {
		hooks.reportError(service, "request_error")
	}

	return resp, err
}
