package scraper

import (
	"context"
	"net/url"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/mangascout/internal/profile"
)

// DeriveSelector guesses a chapter-list selector for mangaURL from one known
// chapter link. It reports false when the page cannot be fetched or when no
// anchor matches the example or looks like a chapter link. The result is a
// starting point for a profile, not a guaranteed match.
func (s *Scraper) DeriveSelector(ctx context.Context, mangaURL, exampleURL string) (string, bool) {
	doc, base, err := s.fetchDOM(ctx, mangaURL)
	if err != nil {
		s.log.Debugf("derive: %v", err)
		return "", false
	}

	anchors := doc.Find("a[href]")
	if anchors.Length() == 0 {
		return "", false
	}

	example := strings.TrimSpace(exampleURL)
	match := findAnchor(anchors, base, func(u string) bool {
		return example != "" && (u == example || strings.Contains(u, example))
	})
	if match == nil {
		match = findAnchor(anchors, base, looksLikeChapter)
	}

	if match == nil {
		return "", false
	}

	for _, sel := range elementSelectors(match) {
		if profile.ValidSelector(sel) {
			return sel, true
		}
	}

	return hrefSelector(anchorURL(match, base)), true
}

// DerivedProfile wraps a derived selector in a profile ready for the store.
func DerivedProfile(selector string) profile.SiteProfile {
	return profile.SiteProfile{
		ChapterList: &profile.ChapterListRule{Selector: selector, URLAttr: "href"},
	}
}

func findAnchor(anchors *goquery.Selection, base string, keep func(string) bool) *goquery.Selection {
	var found *goquery.Selection

	anchors.EachWithBreak(func(_ int, a *goquery.Selection) bool {
		if u := anchorURL(a, base); u != "" && keep(u) {
			found = a
			return false
		}
		return true
	})

	return found
}

// elementSelectors lists candidate selectors for el, most specific first.
func elementSelectors(el *goquery.Selection) []string {
	tag := goquery.NodeName(el)

	var out []string
	if id := idSelector(tag, el); id != "" {
		out = append(out, id)
	}
	if cls := classSelector(tag, el); cls != "" {
		out = append(out, cls)
	}

	parent := el.Parent()
	if parent.Length() > 0 {
		ptag := goquery.NodeName(parent)
		if id := idSelector(ptag, parent); id != "" {
			out = append(out, id+" "+tag)
		}
		if cls := classSelector(ptag, parent); cls != "" {
			out = append(out, cls+" "+tag)
		}
	}

	return out
}

func idSelector(tag string, el *goquery.Selection) string {
	id := strings.TrimSpace(el.AttrOr("id", ""))
	if id == "" {
		return ""
	}

	return tag + "#" + id
}

func classSelector(tag string, el *goquery.Selection) string {
	classes := strings.Fields(el.AttrOr("class", ""))
	if len(classes) == 0 {
		return ""
	}

	return tag + "." + strings.Join(classes, ".")
}

// hrefSelector matches links sharing the anchor's last path segment, or
// any link mentioning "chapter" when that segment carries no digit.
func hrefSelector(linkURL string) string {
	seg := lastSegment(linkURL)
	if seg != "" && strings.IndexFunc(seg, unicode.IsDigit) >= 0 {
		if sel := "a[href*='" + seg + "']"; profile.ValidSelector(sel) {
			return sel
		}
	}

	return "a[href*='chapter']"
}

func lastSegment(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}

	parts := strings.Split(p, "/")
	for i := len(parts) - 1; i >= 0; i-- {
		if s := strings.TrimSpace(parts[i]); s != "" {
			return s
		}
	}

	return ""
}
