package feed

import (
	"net/url"
	"strings"

	"github.com/TobiSchelling/feedshelf/internal/config"
)

// Source is a single configured feed.
type Source struct {
	URL        string
	Title      string
	ManualTags []string
}

// Registry is the immutable, ordered list of feed sources for a run.
type Registry struct {
	sources []Source
}

// NewRegistry copies sources into a Registry. Sources without a title get
// one derived from the feed host.
func NewRegistry(sources []Source) *Registry {
	r := &Registry{sources: make([]Source, len(sources))}
	for i, s := range sources {
		if s.Title == "" {
			s.Title = extractSourceName(s.URL)
		}
		s.ManualTags = append([]string(nil), s.ManualTags...)
		r.sources[i] = s
	}
	return r
}

// RegistryFromConfig builds a Registry from the configured feeds.
func RegistryFromConfig(cfg *config.Config) *Registry {
	sources := make([]Source, len(cfg.Sources.Feeds))
	for i, f := range cfg.Sources.Feeds {
		sources[i] = Source{URL: f.URL, Title: f.Title, ManualTags: f.ManualTags}
	}
	return NewRegistry(sources)
}

// Sources returns a copy of the registered sources in configuration order.
func (r *Registry) Sources() []Source {
	out := make([]Source, len(r.sources))
	for i, s := range r.sources {
		s.ManualTags = append([]string(nil), s.ManualTags...)
		out[i] = s
	}
	return out
}

// Len returns the number of sources.
func (r *Registry) Len() int {
	return len(r.sources)
}

func extractSourceName(feedURL string) string {
	u, err := url.Parse(feedURL)
	if err != nil || u.Hostname() == "" {
		return feedURL
	}
	host := strings.ToLower(u.Hostname())

	for _, prefix := range []string{"www.", "blog.", "blogs.", "rss.", "feeds."} {
		host = strings.TrimPrefix(host, prefix)
	}

	name := host
	if parts := strings.Split(host, "."); len(parts) >= 2 {
		name = parts[len(parts)-2]
	}
	if name == "" {
		return feedURL
	}
	return strings.ToUpper(name[:1]) + name[1:]
}
