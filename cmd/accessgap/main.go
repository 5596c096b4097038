package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NERVsystems/accessgap/pkg/monitoring"
	"github.com/NERVsystems/accessgap/pkg/osm"
	"github.com/NERVsystems/accessgap/pkg/server"
	"github.com/NERVsystems/accessgap/pkg/tracing"
	ver "github.com/NERVsystems/accessgap/pkg/version"
)

var (
	showVersionFlag bool
	debug           bool
	userAgent       string

	// Overpass client flags
	overpassURL   string
	overpassRPS   float64
	overpassBurst int
	cacheSize     int
	cacheTTL      time.Duration

	// Monitoring flags
	enableMonitoring bool
	monitoringAddr   string

	// Query printing flags
	printQueryPath string
	query          queryFlags
)

func init() {
	flag.BoolVar(&showVersionFlag, "version", false, "Display version information")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.StringVar(&userAgent, "user-agent", osm.DefaultUserAgent, "User-Agent string for Overpass API requests")

	flag.StringVar(&overpassURL, "overpass-url", osm.OverpassBaseURL, "Overpass API interpreter URL")
	flag.Float64Var(&overpassRPS, "overpass-rps", 1.0, "Overpass rate limit in requests per second")
	flag.IntVar(&overpassBurst, "overpass-burst", 1, "Overpass rate limit burst size")
	flag.IntVar(&cacheSize, "cache-size", osm.DefaultCacheSize, "Number of Overpass results to cache, negative disables the cache")
	flag.DurationVar(&cacheTTL, "cache-ttl", osm.DefaultCacheTTL, "How long Overpass results stay cached")

	flag.BoolVar(&enableMonitoring, "enable-monitoring", true, "Enable Prometheus metrics and health endpoints")
	flag.StringVar(&monitoringAddr, "monitoring-addr", ":9090", "Monitoring server address")

	flag.StringVar(&printQueryPath, "print-query", "", "Print the Overpass query for the GeoJSON polygon in this file and exit")
	query.register(flag.CommandLine)
}

func main() {
	flag.Parse()

	var logLevel slog.Level
	if debug {
		logLevel = slog.LevelDebug
	} else {
		logLevel = slog.LevelInfo
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if showVersionFlag {
		fmt.Println(ver.String())
		return
	}

	if printQueryPath != "" {
		if err := printQuery(os.Stdout, printQueryPath, query); err != nil {
			logger.Error("failed to build query", "path", printQueryPath, "error", err)
			os.Exit(1)
		}
		return
	}

	ctx := context.Background()
	shutdownTracing, err := tracing.InitTracing(ctx, ver.BuildVersion)
	if err != nil {
		logger.Error("failed to initialize tracing", "error", err)
	} else {
		defer func() {
			if err := shutdownTracing(context.Background()); err != nil {
				logger.Error("error shutting down tracing", "error", err)
			}
		}()

		if endpoint := os.Getenv("OTLP_ENDPOINT"); endpoint != "" {
			logger.Info("OpenTelemetry tracing enabled", "endpoint", endpoint)
		}
	}

	if userAgent != osm.DefaultUserAgent {
		osm.SetUserAgent(userAgent)
	}

	logger.Info("starting accessgap MCP server",
		"version", ver.BuildVersion,
		"log_level", logLevel.String(),
		"user_agent", osm.GetUserAgent(),
		"overpass_url", overpassURL,
		"overpass_rps", overpassRPS,
		"overpass_burst", overpassBurst,
		"cache_size", cacheSize,
		"cache_ttl", cacheTTL,
		"monitoring_enabled", enableMonitoring,
		"monitoring_addr", monitoringAddr)

	if enableMonitoring {
		setMonitoringHooks()
	}

	client := osm.NewOverpassClient(osm.ClientOptions{
		Endpoint:  overpassURL,
		RateLimit: overpassRPS,
		Burst:     overpassBurst,
		CacheSize: cacheSize,
		CacheTTL:  cacheTTL,
		Logger:    logger,
	})

	s, err := server.NewServer(server.Options{Sender: client, Logger: logger})
	if err != nil {
		logger.Error("failed to create server", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if enableMonitoring {
		healthChecker := monitoring.NewHealthChecker(monitoring.ServiceName, ver.BuildVersion)
		defer healthChecker.Shutdown()

		overpassMonitor := monitoring.NewConnectionMonitor(
			tracing.ServiceOverpass,
			healthChecker,
			client.CheckHealth,
			30*time.Second,
		)
		overpassMonitor.Start()
		defer overpassMonitor.Stop()

		server.StartMonitoringServer(ctx, monitoringAddr, healthChecker, logger)
	}

	if err := s.RunWithContext(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}

// setMonitoringHooks forwards Overpass client events to Prometheus.
func setMonitoringHooks() {
	osm.SetMonitoringHooks(&osm.MonitoringHooks{
		OnResponse: func(service, operation string, duration time.Duration, success bool) {
			monitoring.RecordExternalServiceRequest(service, operation, duration, success)
		},
		OnRateLimit: func(service string, waitTime time.Duration) {
			monitoring.RecordRateLimitWait(service, waitTime)
		},
		OnError: func(service, errorType string) {
			monitoring.RecordError(service, errorType)
		},
		OnCache: func(cacheType string, hit bool, size int) {
			monitoring.RecordCacheLookup(cacheType, hit, size)
		},
	})
}
