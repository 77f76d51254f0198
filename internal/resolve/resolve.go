// Package resolve turns raw attribute values scraped from a page into
// absolute URLs.
package resolve

import (
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var reRaster = regexp.MustCompile(`(?i)^https?://.*\.(png|jpg|jpeg|webp|gif|bmp)(\?.*)?$`)

// Resolve turns raw into an absolute URL. The order of the rules matters and
// must not change:
//
//  1. a comma-separated (srcset style) value keeps the first token of its
//     last segment;
//  2. a non-empty elementAbs (the value already resolved against the
//     document) wins;
//  3. "//host/x" gets an https: scheme, "http..." is kept as is, anything
//     else is appended to baseURI.
//
// The join in step 3 is plain concatenation and does not collapse "../".
func Resolve(raw, baseURI, elementAbs string) string {
	v := raw
	if strings.Contains(v, ",") {
		parts := strings.Split(v, ",")
		last := strings.TrimSpace(parts[len(parts)-1])
		if fields := strings.Fields(last); len(fields) > 0 {
			v = fields[0]
		} else {
			v = last
		}
	}

	if abs := strings.TrimSpace(elementAbs); abs != "" {
		return abs
	}

	v = strings.TrimSpace(v)
	switch {
	case strings.HasPrefix(v, "//"):
		return "https:" + v
	case strings.HasPrefix(v, "http"):
		return v
	case strings.HasSuffix(baseURI, "/"):
		return strings.TrimSpace(baseURI + v)
	default:
		return strings.TrimSpace(baseURI + "/" + v)
	}
}

// AbsAttr returns the value of attr on sel resolved against base, the way a
// browser exposes it. It is empty when the attribute is missing or blank,
// or when either side does not parse.
func AbsAttr(sel *goquery.Selection, attr, base string) string {
	v, ok := sel.Attr(attr)
	if !ok {
		return ""
	}

	return AbsURL(v, base)
}

// AbsURL resolves ref against base with RFC 3986 rules. It returns "" when
// ref is blank or the result is not absolute.
func AbsURL(ref, base string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return ""
	}

	r, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if r.IsAbs() {
		return r.String()
	}

	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}

	return b.ResolveReference(r).String()
}

// Dedup drops blank and repeated entries, keeping first-seen order.
func Dedup(urls []string) []string {
	seen := make(map[string]bool, len(urls))
	out := make([]string, 0, len(urls))

	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}

	return out
}

// IsRaster reports whether u looks like a raster image URL.
func IsRaster(u string) bool {
	return reRaster.MatchString(u)
}

// FilterRaster keeps the raster image URLs of urls. If none would be kept the
// input is returned unchanged.
func FilterRaster(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if IsRaster(u) {
			out = append(out, u)
		}
	}

	if len(out) == 0 {
		return urls
	}

	return out
}
