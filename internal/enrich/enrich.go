package enrich

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	readability "github.com/go-shiori/go-readability"

	"github.com/TobiSchelling/feedshelf/internal/article"
	"github.com/TobiSchelling/feedshelf/internal/normalize"
)

const maxPageBytes = 5 << 20

// Result holds the results of an enrichment pass.
type Result struct {
	Attempted int
	Enriched  int
	Failed    int
}

// Enricher fills missing lead images and summaries from the article page.
type Enricher struct {
	client        *http.Client
	userAgent     string
	summaryLength int
}

// New creates an Enricher.
func New(timeout time.Duration, userAgent string, summaryLength int) *Enricher {
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if summaryLength <= 0 {
		summaryLength = normalize.DefaultSummaryLength
	}
	return &Enricher{
		userAgent:     userAgent,
		summaryLength: summaryLength,
		client: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return http.ErrUseLastResponse
				}
				return nil
			},
		},
	}
}

// NeedsEnrichment reports whether a lacks an image or a summary.
func NeedsEnrichment(a article.Article) bool {
	return a.Image == nil || a.Summary == ""
}

// Enrich updates articles in place. Pages are fetched one at a time; after
// an HTTP error the rest of that domain is skipped.
func (e *Enricher) Enrich(ctx context.Context, articles []article.Article) *Result {
	result := &Result{}
	failedDomains := make(map[string]struct{})

	for i := range articles {
		a := &articles[i]
		if !NeedsEnrichment(*a) {
			continue
		}
		result.Attempted++

		domain := ""
		if u, err := url.Parse(a.Link); err == nil {
			domain = strings.ToLower(u.Host)
		}
		if _, failed := failedDomains[domain]; failed {
			result.Failed++
			continue
		}

		page, err := e.fetchPage(ctx, a.Link)
		if err != nil {
			result.Failed++
			if _, ok := err.(*httpError); ok && domain != "" {
				failedDomains[domain] = struct{}{}
				log.Printf("HTTP error for %s, skipping remaining from %s", a.Link, domain)
			} else {
				log.Printf("Could not enrich %s: %v", a.Link, err)
			}
			continue
		}

		if apply(a, page, e.summaryLength) {
			result.Enriched++
		} else {
			result.Failed++
		}
	}

	log.Printf("Enrichment complete: %d enriched, %d failed", result.Enriched, result.Failed)
	return result
}

// apply copies the page's lead image and excerpt into the empty fields of a.
func apply(a *article.Article, page readability.Article, summaryLength int) bool {
	changed := false

	if a.Image == nil {
		if img := strings.TrimSpace(page.Image); img != "" {
			resolved := normalize.ResolveURL(a.Link, img)
			a.Image = &resolved
			changed = true
		}
	}

	if a.Summary == "" {
		text := page.Excerpt
		if strings.TrimSpace(text) == "" {
			text = page.TextContent
		}
		text = strings.Join(strings.Fields(text), " ")
		if text != "" {
			a.Summary = normalize.Truncate(text, summaryLength)
			changed = true
		}
	}

	return changed
}

func (e *Enricher) fetchPage(ctx context.Context, pageURL string) (readability.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return readability.Article{}, err
	}
	if e.userAgent != "" {
		req.Header.Set("User-Agent", e.userAgent)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return readability.Article{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return readability.Article{}, &httpError{code: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return readability.Article{}, err
	}

	parsedURL, _ := url.Parse(pageURL)
	return readability.FromReader(bytes.NewReader(body), parsedURL)
}

type httpError struct {
	code int
}

func (e *httpError) Error() string {
	return fmt.Sprintf("%d %s", e.code, http.StatusText(e.code))
}
