package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/mangascout/internal/profile"
	"github.com/brogergvhs/mangascout/internal/resolve"
)

// ChapterLink is one chapter found on a manga page. URL is absolute; Title
// falls back to URL when the link has no text.
type ChapterLink struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

var reTrailingDigits = regexp.MustCompile(`/\d+$`)

// FetchChapters lists the chapters linked from mangaURL in page order.
// Strategies run in this order, first non-empty wins:
//
//   - the profile's chapterList rule against the rendered page, when the
//     rule asks for script execution;
//   - the same rule against the static page;
//   - anchors that look like chapter links.
func (s *Scraper) FetchChapters(ctx context.Context, mangaURL string, p profile.SiteProfile) []ChapterLink {
	var strategies []strategy[ChapterLink]

	if rule := p.ChapterList; rule != nil {
		if rule.AllowScriptExecution {
			strategies = append(strategies, strategy[ChapterLink]{
				name: "chapters/rendered",
				run: func(ctx context.Context) ([]ChapterLink, error) {
					return s.renderedChapters(ctx, mangaURL, rule)
				},
			})
		}
		strategies = append(strategies, strategy[ChapterLink]{
			name: "chapters/profile",
			run: func(ctx context.Context) ([]ChapterLink, error) {
				return s.profileChapters(ctx, mangaURL, rule)
			},
		})
	}

	strategies = append(strategies, strategy[ChapterLink]{
		name: "chapters/heuristic",
		run: func(ctx context.Context) ([]ChapterLink, error) {
			return s.heuristicChapters(ctx, mangaURL)
		},
	})

	return firstSuccess(ctx, s.log, strategies...)
}

func (s *Scraper) renderedChapters(ctx context.Context, mangaURL string, rule *profile.ChapterListRule) ([]ChapterLink, error) {
	raw, err := s.renderer.Evaluate(ctx, mangaURL, chapterListScript(rule.Selector, rule.URLAttr))
	if err != nil {
		return nil, err
	}

	var links []ChapterLink
	if err := json.Unmarshal([]byte(raw), &links); err != nil {
		return nil, fmt.Errorf("decode rendered chapters: %w", err)
	}

	c := newLinkCollector()
	for _, l := range links {
		c.add(l.Title, strings.TrimSpace(l.URL))
	}

	return c.links, nil
}

func (s *Scraper) profileChapters(ctx context.Context, mangaURL string, rule *profile.ChapterListRule) ([]ChapterLink, error) {
	doc, base, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	sel, err := query(doc.Selection, rule.Selector)
	if err != nil {
		return nil, err
	}

	c := newLinkCollector()
	sel.Each(func(_ int, el *goquery.Selection) {
		attr := rule.URLAttr
		raw := strings.TrimSpace(el.AttrOr(attr, ""))
		if raw == "" {
			attr = "href"
			raw = strings.TrimSpace(el.AttrOr(attr, ""))
		}
		if raw == "" {
			return
		}

		c.add(el.Text(), resolveAttr(el, attr, raw, base))
	})

	return c.links, nil
}

func (s *Scraper) heuristicChapters(ctx context.Context, mangaURL string) ([]ChapterLink, error) {
	doc, base, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		return nil, err
	}

	c := newLinkCollector()
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		u := anchorURL(a, base)
		if !looksLikeChapter(u) {
			return
		}
		c.add(a.Text(), u)
	})

	return c.links, nil
}

// looksLikeChapter reports whether an absolute link URL reads like a
// chapter: it mentions "chapter" or ends in a numeric path segment.
func looksLikeChapter(u string) bool {
	return strings.Contains(strings.ToLower(u), "chapter") || reTrailingDigits.MatchString(u)
}

func anchorURL(a *goquery.Selection, base string) string {
	raw := strings.TrimSpace(a.AttrOr("href", ""))
	if raw == "" {
		return ""
	}

	return resolveAttr(a, "href", raw, base)
}

// resolveAttr resolves a raw value read from attr on el. The browser-style
// absolute value of the attribute is only meaningful for single URLs, so it
// is skipped for srcset-style lists.
func resolveAttr(el *goquery.Selection, attr, raw, base string) string {
	var elementAbs string
	if !strings.Contains(raw, ",") {
		elementAbs = resolve.AbsAttr(el, attr, base)
	}

	return resolve.Resolve(raw, base, elementAbs)
}

type linkCollector struct {
	links []ChapterLink
	seen  map[string]bool
}

func newLinkCollector() *linkCollector {
	return &linkCollector{seen: map[string]bool{}}
}

func (c *linkCollector) add(title, u string) {
	if u == "" || c.seen[u] {
		return
	}
	c.seen[u] = true

	title = strings.Join(strings.Fields(title), " ")
	if title == "" {
		title = u
	}

	c.links = append(c.links, ChapterLink{Title: title, URL: u})
}
