// Package osm talks to the Overpass API.
package osm

import (
	"context"
	"net/http"
	"sync"
	"time"
)

const (
	// OverpassBaseURL is the public Overpass interpreter.
	OverpassBaseURL = "https://overpass-api.de/api/interpreter"

	// DefaultUserAgent is the default User-Agent string
	DefaultUserAgent = "accessgap/0.1.0"
)

var (
	// Global HTTP client with connection pooling
	httpClient *http.Client

	// User agent string
	userAgent     string
	userAgentLock sync.RWMutex
)

func init() {
	// Must exceed the [timeout:N] sent with feature queries.
	httpClient = &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
		},
		Timeout: 180 * time.Second,
	}

	SetUserAgent(DefaultUserAgent)
}

// SetUserAgent sets the User-Agent string
func SetUserAgent(ua string) {
	userAgentLock.Lock()
	defer userAgentLock.Unlock()
	userAgent = ua
}

// GetUserAgent returns the current User-Agent string
func GetUserAgent() string {
	userAgentLock.RLock()
	defer userAgentLock.RUnlock()
	return userAgent
}

// GetClient returns the global HTTP client
func GetClient(ctx context.Context) *http.Client {
	return httpClient
}
