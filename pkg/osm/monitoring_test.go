package osm

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/time/rate"
)

func TestSetAndGetMonitoringHooks(t *testing.T) {
	SetMonitoringHooks(nil)

	if getMonitoringHooks() == nil {
		t.Fatal("Expected empty hooks when none are set")
	}

	var requestCalled, responseCalled, rateLimitCalled, errorCalled, cacheCalled bool

	hooks := &MonitoringHooks{
		OnRequest: func(service, operation string) {
			requestCalled = true
		},
		OnResponse: func(service, operation string, duration time.Duration, success bool) {
			responseCalled = true
		},
		OnRateLimit: func(service string, waitTime time.Duration) {
			rateLimitCalled = true
		},
		OnError: func(service, errorType string) {
			errorCalled = true
		},
		OnCache: func(cacheType string, hit bool, size int) {
			cacheCalled = true
		},
	}

	SetMonitoringHooks(hooks)
	defer SetMonitoringHooks(nil)

	retrieved := getMonitoringHooks()
	retrieved.request("test", "test")
	retrieved.response("test", "test", 100*time.Millisecond, true)
	retrieved.rateLimit("test", 100*time.Millisecond)
	retrieved.reportError("test", "test")
	retrieved.cache("test", true, 1)

	if !requestCalled {
		t.Error("OnRequest should have been called")
	}
	if !responseCalled {
		t.Error("OnResponse should have been called")
	}
	if !rateLimitCalled {
		t.Error("OnRateLimit should have been called")
	}
	if !errorCalled {
		t.Error("OnError should have been called")
	}
	if !cacheCalled {
		t.Error("OnCache should have been called")
	}
}

func TestMonitoredDoSuccess(t *testing.T) {
	var gotUserAgent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUserAgent = r.Header.Get("User-Agent")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	var requestCalled, responseCalled bool
	var capturedService, capturedOperation string
	var capturedDuration time.Duration
	var capturedSuccess bool

	hooks := &MonitoringHooks{
		OnRequest: func(service, operation string) {
			requestCalled = true
			capturedService = service
			capturedOperation = operation
		},
		OnResponse: func(service, operation string, duration time.Duration, success bool) {
			responseCalled = true
			capturedDuration = duration
			capturedSuccess = success
		},
	}

	SetMonitoringHooks(hooks)
	defer SetMonitoringHooks(nil)

	req, err := http.NewRequest("GET", server.URL, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := monitoredDo(context.Background(), server.Client(), nil, req, "overpass", "test_operation")
	if err != nil {
		t.Fatalf("monitoredDo failed: %v", err)
	}
	defer resp.Body.Close()

	if !requestCalled {
		t.Error("OnRequest should have been called")
	}
	if !responseCalled {
		t.Error("OnResponse should have been called")
	}
	if capturedService != "overpass" {
		t.Errorf("Expected service 'overpass', got %s", capturedService)
	}
	if capturedOperation != "test_operation" {
		t.Errorf("Expected operation 'test_operation', got %s", capturedOperation)
	}
	if capturedDuration <= 0 {
		t.Error("Duration should be greater than 0")
	}
	if !capturedSuccess {
		t.Error("Request should have been successful")
	}
	if gotUserAgent != GetUserAgent() {
		t.Errorf("Expected User-Agent %q, got %q", GetUserAgent(), gotUserAgent)
	}
}

func TestMonitoredDoErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte("Internal Server Error"))
	}))
	defer server.Close()

	var errorCalled bool
	capturedSuccess := true

	hooks := &MonitoringHooks{
		OnResponse: func(service, operation string, duration time.Duration, success bool) {
			capturedSuccess = success
		},
		OnError: func(service, errorType string) {
			errorCalled = true
		},
	}

	SetMonitoringHooks(hooks)
	defer SetMonitoringHooks(nil)

	req, err := http.NewRequest("GET", server.URL, nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	resp, err := monitoredDo(context.Background(), server.Client(), nil, req, "overpass", "test_operation")
	if err != nil {
		t.Fatalf("monitoredDo failed: %v", err)
	}
	defer resp.Body.Close()

	if capturedSuccess {
		t.Error("Request should not have been successful")
	}

	// Error hook is for failures without a response
	if errorCalled {
		t.Error("OnError should not have been called for HTTP error status")
	}
}

func TestMonitoredDoNetworkError(t *testing.T) {
	var capturedErrorType string

	hooks := &MonitoringHooks{
		OnError: func(service, errorType string) {
			capturedErrorType = errorType
		},
	}

	SetMonitoringHooks(hooks)
	defer SetMonitoringHooks(nil)

	req, err := http.NewRequest("GET", "http://127.0.0.1:1", nil)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	_, err = monitoredDo(context.Background(), http.DefaultClient, nil, req, "overpass", "test_operation")
	if err == nil {
		t.Error("Expected network error")
	}

	if capturedErrorType != "request_error" {
		t.Errorf("Expected error type 'request_error', got %s", capturedErrorType)
	}
}

func TestMonitoredDoRateLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	var rateLimitCalls int
	var capturedWaitTime time.Duration

	hooks := &MonitoringHooks{
		OnRateLimit: func(service string, waitTime time.Duration) {
			rateLimitCalls++
			capturedWaitTime = waitTime
		},
	}

	SetMonitoringHooks(hooks)
	defer SetMonitoringHooks(nil)

	limiter := rate.NewLimiter(rate.Limit(10), 1)

	for i := 0; i < 2; i++ {
		req, _ := http.NewRequest("GET", server.URL, nil)
		resp, err := monitoredDo(context.Background(), server.Client(), limiter, req, "overpass", "test_operation")
		if err != nil {
			t.Fatalf("Request %d failed: %v", i, err)
		}
		resp.Body.Close()
	}

	if rateLimitCalls != 1 {
		t.Errorf("Expected OnRateLimit once, got %d", rateLimitCalls)
	}
	if capturedWaitTime <= 0 {
		t.Error("Wait time should be recorded")
	}
}

func TestMonitoredDoRateLimitCancelled(t *testing.T) {
	var capturedErrorType string
	SetMonitoringHooks(&MonitoringHooks{
		OnError: func(service, errorType string) {
			capturedErrorType = errorType
		},
	})
	defer SetMonitoringHooks(nil)

	limiter := rate.NewLimiter(rate.Limit(0.01), 1)
	limiter.Allow()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	req, _ := http.NewRequestWithContext(ctx, "GET", "http://127.0.0.1:1", nil)
	if _, err := monitoredDo(ctx, http.DefaultClient, limiter, req, "overpass", "test_operation"); err == nil {
		t.Fatal("Expected error from cancelled context")
	}
	if capturedErrorType != "rate_limit_wait_error" {
		t.Errorf("Expected error type 'rate_limit_wait_error', got %s", capturedErrorType)
	}
}

func BenchmarkMonitoredDo(b *testing.B) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	hooks := &MonitoringHooks{
		OnRequest:  func(service, operation string) {},
		OnResponse: func(service, operation string, duration time.Duration, success bool) {},
	}

	SetMonitoringHooks(hooks)
	defer SetMonitoringHooks(nil)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		req, _ := http.NewRequest("GET", server.URL, nil)
		resp, _ := monitoredDo(context.Background(), server.Client(), nil, req, "overpass", "benchmark")
		if resp != nil {
			resp.Body.Close()
		}
	}
}
