// Package fetch loads pages over HTTP and parses them into queryable
// documents.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/brogergvhs/mangascout/internal/resolve"
	"github.com/brogergvhs/mangascout/internal/util"
)

// ErrStatus is returned for responses outside the 2xx range.
var ErrStatus = errors.New("unexpected HTTP status")

// Fetcher returns a parsed document for a page. The document's Url is the
// final URL after redirects.
type Fetcher interface {
	Fetch(ctx context.Context, pageURL string) (*goquery.Document, error)
}

type HTTPFetcher struct {
	client   *http.Client
	timeout  time.Duration
	attempts int
	backoff  time.Duration
}

type Option func(*HTTPFetcher)

// WithTimeout bounds each Fetch call, retries included.
func WithTimeout(d time.Duration) Option {
	return func(f *HTTPFetcher) { f.timeout = d }
}

func WithAttempts(n int) Option {
	return func(f *HTTPFetcher) { f.attempts = n }
}

func WithBackoff(d time.Duration) Option {
	return func(f *HTTPFetcher) { f.backoff = d }
}

const DefaultTimeout = 15 * time.Second

func NewHTTPFetcher(c *http.Client, opts ...Option) *HTTPFetcher {
	if c == nil {
		c = http.DefaultClient
	}

	f := &HTTPFetcher{
		client:   c,
		timeout:  DefaultTimeout,
		attempts: 1,
		backoff:  500 * time.Millisecond,
	}
	for _, o := range opts {
		o(f)
	}

	return f
}

func (f *HTTPFetcher) Fetch(ctx context.Context, pageURL string) (*goquery.Document, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}

	resp, err := util.DoWithRetry(f.client, req, f.attempts, f.backoff)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", pageURL, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetch %s: %w: %d", pageURL, ErrStatus, resp.StatusCode)
	}

	body, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", pageURL, err)
	}

	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	doc.Url = resp.Request.URL

	return doc, nil
}

// BaseURI returns the URI relative references in doc resolve against: the
// first <base href> when present, else the document URL.
func BaseURI(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}

	var docURL string
	if doc.Url != nil {
		docURL = doc.Url.String()
	}

	if href, ok := doc.Find("base[href]").First().Attr("href"); ok {
		if abs := resolve.AbsURL(href, docURL); abs != "" {
			return abs
		}
	}

	return docURL
}

// Static serves fixed HTML keyed by URL. It backs tests and the offline
// "profile test --html" mode.
type Static map[string]string

func (s Static) Fetch(_ context.Context, pageURL string) (*goquery.Document, error) {
	html, ok := s[pageURL]
	if !ok {
		return nil, fmt.Errorf("fetch %s: %w: 404", pageURL, ErrStatus)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}

	u, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", pageURL, err)
	}
	doc.Url = u

	return doc, nil
}
