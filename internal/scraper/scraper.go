// Package scraper extracts chapter links and page images from manga sites it
// has never seen before. A stored site profile is tried first; when it is
// missing or finds nothing, site-agnostic heuristics take over.
//
// Public methods never return errors. A failed fetch, an unusable selector
// or a failing script all end in an empty result, which callers treat as
// "try the next thing".
package scraper

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/mangascout/internal/fetch"
	"github.com/brogergvhs/mangascout/internal/render"
	"github.com/brogergvhs/mangascout/internal/ui"
)

type Scraper struct {
	fetcher  fetch.Fetcher
	renderer render.Evaluator
	log      *ui.Logger
}

type Option func(*Scraper)

// WithRenderer enables the rendered-page strategies.
func WithRenderer(e render.Evaluator) Option {
	return func(s *Scraper) {
		if e != nil {
			s.renderer = e
		}
	}
}

func WithLogger(l *ui.Logger) Option {
	return func(s *Scraper) { s.log = l }
}

func New(f fetch.Fetcher, opts ...Option) *Scraper {
	s := &Scraper{
		fetcher:  f,
		renderer: render.Unavailable,
	}
	for _, o := range opts {
		o(s)
	}

	return s
}

func (s *Scraper) fetchDOM(ctx context.Context, pageURL string) (*goquery.Document, string, error) {
	doc, err := s.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, "", err
	}

	base := fetch.BaseURI(doc)
	if base == "" {
		base = pageURL
	}

	return doc, base, nil
}
