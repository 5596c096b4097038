package queries

import (
	"strconv"
	"strings"
	"time"
)

// DateLayout is the timestamp format of the [date:...] setting.
const DateLayout = "2006-01-02T15:04:05Z"

// Options holds the optional global settings of a query. A zero field
// omits its clause.
type Options struct {
	// Timeout is the server-side time limit in seconds.
	Timeout int
	// MaxSize is the server-side memory limit in bytes.
	MaxSize int64
	// Date queries the database as it was at this instant.
	Date time.Time
}

// Preamble renders the settings statement, e.g.
// "[out:json][timeout:10][maxsize:10000][date:'2017-03-09T00:00:00Z'];".
func (o Options) Preamble() string {
	var b strings.Builder
	b.WriteString("[out:json]")
	if o.Timeout > 0 {
		b.WriteString("[timeout:")
		b.WriteString(strconv.Itoa(o.Timeout))
		b.WriteString("]")
	}
	if o.MaxSize > 0 {
		b.WriteString("[maxsize:")
		b.WriteString(strconv.FormatInt(o.MaxSize, 10))
		b.WriteString("]")
	}
	if !o.Date.IsZero() {
		b.WriteString("[date:'")
		b.WriteString(o.Date.UTC().Format(DateLayout))
		b.WriteString("']")
	}
	b.WriteString(";")
	return b.String()
}
