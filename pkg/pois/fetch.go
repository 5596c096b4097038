package pois

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/paulmach/orb"

	"github.com/NERVsystems/accessgap/pkg/osm"
	"github.com/NERVsystems/accessgap/pkg/osm/queries"
)

// DefaultTimeout is the [timeout:N] sent with feature queries, in seconds.
const DefaultTimeout = 90

// Options configures FromPolygon.
type Options struct {
	// Tags selects the features to fetch. Nil means DefaultTags.
	Tags map[string]TagValue

	// Date queries the database as it was at this instant.
	Date time.Time

	// NoCache skips the Overpass result cache.
	NoCache bool

	// Timeout in seconds, DefaultTimeout when zero.
	Timeout int

	// MaxSize in bytes, omitted when zero.
	MaxSize int64

	Logger *slog.Logger
}

// Query builds the query FromPolygon sends for polygon.
func Query(polygon orb.Geometry, opts Options) (*queries.Query, error) {
	tags := opts.Tags
	if tags == nil {
		tags = DefaultTags()
	}
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	return queries.NewQuery(polygon,
		queries.WithOptions(queries.Options{
			Timeout: timeout,
			MaxSize: opts.MaxSize,
			Date:    opts.Date,
		}),
		queries.WithFilter(TagFilter(tags)),
		queries.WithOutput(queries.OutputGeom),
	)
}

// FromPolygon fetches the features matching opts.Tags inside polygon and
// returns them with ways and relations reduced to their centroids.
//
// The query covers the convex hull of polygon, so features that do not
// intersect polygon itself are dropped before the reduction.
func FromPolygon(ctx context.Context, sender queries.Sender, polygon orb.Geometry, opts Options) ([]Feature, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	q, err := Query(polygon, opts)
	if err != nil {
		return nil, err
	}

	if opts.NoCache {
		ctx = osm.WithoutCache(ctx)
	}

	res, err := q.Send(ctx, sender)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch features: %w", err)
	}

	features, err := Within(FromElements(res.Elements), polygon)
	if err != nil {
		return nil, err
	}
	features = AllPoints(features)
	logger.Debug("fetched features", "elements", len(res.Elements), "features", len(features))
	return features, nil
}
