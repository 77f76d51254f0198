package scraper

import (
	"regexp"
	"strconv"
	"strings"
)

const number = `([0-9]+(?:\.[0-9]+)?)`

var (
	// tried against the title, then the URL, pattern by pattern
	numberPatterns = []*regexp.Regexp{
		regexp.MustCompile(`chapter\s*` + number),
		regexp.MustCompile(`ch(?:apter)?\.?\s*` + number),
		regexp.MustCompile(`(?:^|[^0-9])` + number + `(?:$|[^0-9])`),
	}

	// last resort, URL only
	reTrailingNumber = regexp.MustCompile(`.*/` + number + `/?$`)
)

// ExtractChapterNumber returns the chapter number read from title or url,
// or -1 when neither carries one.
func ExtractChapterNumber(title, url string) (n float64) {
	defer func() {
		if recover() != nil {
			n = -1
		}
	}()

	t := strings.ToLower(title)
	u := strings.ToLower(url)

	for _, re := range numberPatterns {
		for _, s := range [2]string{t, u} {
			if v, ok := matchNumber(re, s); ok {
				return v
			}
		}
	}

	if v, ok := matchNumber(reTrailingNumber, u); ok {
		return v
	}

	return -1
}

func matchNumber(re *regexp.Regexp, s string) (float64, bool) {
	if s == "" {
		return 0, false
	}

	m := re.FindStringSubmatch(s)
	if m == nil {
		return 0, false
	}

	v, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0, false
	}

	return v, true
}
