package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/NERVsystems/accessgap/pkg/osm/queries"
	"github.com/NERVsystems/accessgap/pkg/tools"
)

// stringList is a repeatable string flag.
type stringList []string

func (l *stringList) String() string {
	return strings.Join(*l, ",")
}

func (l *stringList) Set(v string) error {
	*l = append(*l, v)
	return nil
}

// queryFlags shape the query printed by -print-query.
type queryFlags struct {
	quickTag string
	filters  stringList
	timeout  int
	maxSize  int64
	date     string
}

func (q *queryFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&q.quickTag, "quick-tag", "", "Quick tag preset for -print-query")
	fs.Var(&q.filters, "filter", "Tag filter fragment for -print-query, e.g. [amenity=cafe] (repeatable)")
	fs.IntVar(&q.timeout, "timeout", 0, "[timeout:N] in seconds for -print-query")
	fs.Int64Var(&q.maxSize, "maxsize", 0, "[maxsize:N] in bytes for -print-query")
	fs.StringVar(&q.date, "date", "", "RFC 3339 [date:...] for -print-query")
}

// printQuery writes the query for the GeoJSON polygon stored at path to w.
func printQuery(w io.Writer, path string, qf queryFlags) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read polygon: %w", err)
	}

	polygon, err := tools.ParsePolygon(data)
	if err != nil {
		return err
	}
	date, err := tools.ParseDate(qf.date)
	if err != nil {
		return err
	}

	opts := []queries.Option{
		queries.WithOptions(queries.Options{
			Timeout: qf.timeout,
			MaxSize: qf.maxSize,
			Date:    date,
		}),
	}
	if qf.quickTag != "" {
		opts = append(opts, queries.WithQuickTagName(qf.quickTag))
	}
	if len(qf.filters) > 0 {
		opts = append(opts, queries.WithFilter(queries.Fragments(qf.filters...)))
	}

	q, err := queries.NewQuery(polygon, opts...)
	if err != nil {
		return err
	}

	_, err = fmt.Fprintln(w, q.Build())
	return err
}
