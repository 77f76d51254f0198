package scraper

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/brogergvhs/mangascout/internal/profile"
)

var suggestedAttrs = []string{"data-src", "data-original", "src", "srcset"}

// SuggestProfile drafts a profile for the site of chapterURL. The images
// rule targets the container holding the most <img> elements; the chapter
// rule is the generic "chapter" link match. It reports false when the page
// cannot be fetched or has no images.
func (s *Scraper) SuggestProfile(ctx context.Context, chapterURL string) (profile.SiteProfile, bool) {
	doc, _, err := s.fetchDOM(ctx, chapterURL)
	if err != nil {
		s.log.Debugf("suggest: %v", err)
		return profile.SiteProfile{}, false
	}

	container := busiestContainer(doc.Find("img"))
	if container == "" {
		return profile.SiteProfile{}, false
	}

	imgSel := container + " img"
	if !profile.ValidSelector(imgSel) {
		imgSel = "img"
	}

	return profile.SiteProfile{
		ChapterList: &profile.ChapterListRule{Selector: "a[href*='chapter']", URLAttr: "href"},
		Images:      &profile.ImagesRule{Selector: imgSel, Attrs: suggestedAttrs},
	}, true
}

// busiestContainer keys every image by its closest div, section or article
// (or its parent when there is none) and returns the most common key. Ties
// go to the container seen first.
func busiestContainer(imgs *goquery.Selection) string {
	counts := map[string]int{}
	var order []string

	imgs.Each(func(_ int, img *goquery.Selection) {
		p := img.Closest("div, section, article")
		if p.Length() == 0 {
			p = img.Parent()
		}
		if p.Length() == 0 {
			return
		}

		key := containerKey(p)
		if _, ok := counts[key]; !ok {
			order = append(order, key)
		}
		counts[key]++
	})

	best, max := "", 0
	for _, k := range order {
		if counts[k] > max {
			best, max = k, counts[k]
		}
	}

	return best
}

func containerKey(el *goquery.Selection) string {
	tag := strings.ToLower(goquery.NodeName(el))
	if id := idSelector(tag, el); id != "" {
		return id
	}
	if cls := classSelector(tag, el); cls != "" {
		return cls
	}

	return tag
}
