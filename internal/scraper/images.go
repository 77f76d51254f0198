package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/mangascout/internal/profile"
	"github.com/brogergvhs/mangascout/internal/resolve"
)

const genericImageSelector = "img[src], img[data-src], img[data-srcset], img[srcset]"

// genericImageAttrs is the probe order for pages without a profile. Lazy
// loaders keep the real page in data-src or data-original and a placeholder
// in src.
var genericImageAttrs = []string{"data-src", "data-original", "src", "srcset", "data-srcset"}

// FetchImages lists the page images of chapterURL in document order, which
// is the reading order. The list is never sorted.
func (s *Scraper) FetchImages(ctx context.Context, chapterURL string, p profile.SiteProfile) []string {
	var strategies []strategy[string]

	if rule := p.Images; rule != nil {
		if rule.AllowScriptExecution {
			strategies = append(strategies, strategy[string]{
				name: "images/rendered",
				run: func(ctx context.Context) ([]string, error) {
					return s.renderedImages(ctx, chapterURL, rule)
				},
			})
		} else {
			strategies = append(strategies, strategy[string]{
				name: "images/profile",
				run: func(ctx context.Context) ([]string, error) {
					return s.profileImages(ctx, chapterURL, rule)
				},
			})
		}
	}

	strategies = append(strategies, strategy[string]{
		name: "images/heuristic",
		run: func(ctx context.Context) ([]string, error) {
			return s.genericImages(ctx, chapterURL)
		},
	})

	return firstSuccess(ctx, s.log, strategies...)
}

func (s *Scraper) renderedImages(ctx context.Context, chapterURL string, rule *profile.ImagesRule) ([]string, error) {
	raw, err := s.renderer.Evaluate(ctx, chapterURL, imagesScript(rule.Selector, rule.Attrs))
	if err != nil {
		return nil, err
	}

	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err != nil {
		return nil, fmt.Errorf("decode rendered images: %w", err)
	}

	return resolve.Dedup(urls), nil
}

func (s *Scraper) profileImages(ctx context.Context, chapterURL string, rule *profile.ImagesRule) ([]string, error) {
	doc, base, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	sel, err := query(doc.Selection, rule.Selector)
	if err != nil {
		return nil, err
	}

	// the node's own src backs up the configured attributes
	attrs := append(append([]string{}, rule.Attrs...), "src")

	return collectImages(sel, attrs, base), nil
}

func (s *Scraper) genericImages(ctx context.Context, chapterURL string) ([]string, error) {
	doc, base, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		return nil, err
	}

	return collectImages(doc.Find(genericImageSelector), genericImageAttrs, base), nil
}

func collectImages(sel *goquery.Selection, attrs []string, base string) []string {
	var urls []string

	sel.Each(func(_ int, el *goquery.Selection) {
		attr, raw := probe(el, attrs)
		if raw == "" {
			return
		}
		if u := resolveAttr(el, attr, raw, base); u != "" {
			urls = append(urls, u)
		}
	})

	return resolve.FilterRaster(resolve.Dedup(urls))
}

// probe returns the first attribute of attrs carrying a non-blank value on
// el, with that value.
func probe(el *goquery.Selection, attrs []string) (string, string) {
	for _, a := range attrs {
		if v := strings.TrimSpace(el.AttrOr(a, "")); v != "" {
			return a, v
		}
	}

	return "", ""
}
