package scraper

import (
	"context"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/mangascout/internal/profile"
)

type Direction int

const (
	Next Direction = iota
	Prev
)

func (d Direction) String() string {
	if d == Prev {
		return "prev"
	}

	return "next"
}

// words are matched as whole words of the lowercased anchor text.
func (d Direction) words() []string {
	if d == Prev {
		return []string{"prev", "previous", "older", "back"}
	}

	return []string{"next", "newer", "forward"}
}

// arrows only count as the first or last token of the anchor text.
func (d Direction) arrows() []string {
	if d == Prev {
		return []string{"<", "<<", "«", "‹", "←"}
	}

	return []string{">", ">>", "»", "›", "→"}
}

// AdjacentChapter finds the link to the next or previous chapter on a
// chapter page. The rendered page is used when p asks for script
// execution.
func (s *Scraper) AdjacentChapter(ctx context.Context, chapterURL string, dir Direction, p profile.SiteProfile) (string, bool) {
	if p.RequiresScriptExecution() {
		u, err := s.renderer.Evaluate(ctx, chapterURL, adjacentScript(dir))
		if err == nil && strings.TrimSpace(u) != "" {
			return strings.TrimSpace(u), true
		}
		s.log.Debugf("adjacent/rendered: %v", err)
	}

	doc, base, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		s.log.Debugf("adjacent: %v", err)
		return "", false
	}

	if a := adjacentAnchor(doc, dir); a != nil {
		if u := anchorURL(a, base); u != "" {
			return u, true
		}
	}

	return "", false
}

func adjacentAnchor(doc *goquery.Document, dir Direction) *goquery.Selection {
	d := dir.String()

	for _, sel := range []string{"a[rel~='" + d + "'][href]", "a." + d + "[href]"} {
		if a := doc.Find(sel).First(); a.Length() > 0 {
			return a
		}
	}

	anchors := doc.Find("a[href]")

	var found *goquery.Selection
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if hasWord(a.AttrOr("class", ""), d) || hasWord(a.AttrOr("aria-label", ""), d) {
			found = a
			return false
		}
		return true
	})
	if found != nil {
		return found
	}

	words, arrows := dir.words(), dir.arrows()
	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		text := a.Text()
		for _, w := range words {
			if hasWord(text, w) {
				found = a
				return false
			}
		}
		if edgeToken(text, arrows) {
			found = a
			return false
		}
		return true
	})

	return found
}

// hasWord reports whether s, split on anything but letters and digits,
// contains w. "nav-prev" has the word "prev", "preview" does not.
func hasWord(s, w string) bool {
	for _, f := range strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		if f == w {
			return true
		}
	}

	return false
}

func edgeToken(s string, tokens []string) bool {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return false
	}

	first, last := fields[0], fields[len(fields)-1]
	for _, t := range tokens {
		if first == t || last == t {
			return true
		}
	}

	return false
}
