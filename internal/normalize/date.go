package normalize

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// PublishedDate is the outcome of parsing a feed's published text: either a
// parsed timestamp or the raw text kept verbatim.
type PublishedDate struct {
	Raw    string
	Time   time.Time
	Parsed bool
}

// ParseDate parses raw publish text. Dates without a zone are taken as UTC.
func ParseDate(raw string) PublishedDate {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return PublishedDate{Raw: raw}
	}
	t, err := dateparse.ParseIn(trimmed, time.UTC)
	if err != nil {
		return PublishedDate{Raw: raw}
	}
	return PublishedDate{Raw: raw, Time: t.UTC(), Parsed: true}
}

// String returns the ISO-8601 UTC timestamp, or the raw text if unparsed.
func (d PublishedDate) String() string {
	if !d.Parsed {
		return d.Raw
	}
	return d.Time.Format(time.RFC3339)
}

// ParseStored reads back a published_parsed value written by String.
func ParseStored(s string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC(), true
	}
	d := ParseDate(s)
	return d.Time, d.Parsed
}
