// Package chapters numbers and selects the chapters found on a manga page.
package chapters

import (
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/brogergvhs/mangascout/internal/scraper"
)

type Chapter struct {
	Title  string  `json:"title"`
	URL    string  `json:"url"`
	Number float64 `json:"number"`
	// Label is Number formatted for display and selection ("12", "12.5").
	Label string `json:"label"`
	// Parsed is false when Number is the chapter's position on the page.
	Parsed bool `json:"parsed"`
}

// Number assigns every link a chapter number read from its title or URL.
// Links without a positive number get their 1-based position instead.
func Number(links []scraper.ChapterLink) []Chapter {
	out := make([]Chapter, 0, len(links))

	for i, l := range links {
		n := scraper.ExtractChapterNumber(l.Title, l.URL)
		parsed := n > 0
		if !parsed {
			n = float64(i + 1)
		}

		out = append(out, Chapter{
			Title:  l.Title,
			URL:    l.URL,
			Number: n,
			Label:  strconv.FormatFloat(n, 'f', -1, 64),
			Parsed: parsed,
		})
	}

	return out
}

// SortByNumber orders chapters by number, keeping page order for ties.
func SortByNumber(all []Chapter) {
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Number < all[j].Number
	})
}

var reUnderscore = regexp.MustCompile(`_+`)

func sanitize(s string) string {
	s = strings.ToLower(s)

	repl := []string{
		"•", "_",
		"-", "_",
		"—", "_",
		"–", "_",
		"/", "_",
		"\\", "_",
		".", "_",
		" ", "_",
		"(", "",
		")", "",
	}
	for i := 0; i < len(repl); i += 2 {
		s = strings.ReplaceAll(s, repl[i], repl[i+1])
	}

	clean := make([]rune, 0, len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' {
			clean = append(clean, r)
		}
	}

	return strings.Trim(reUnderscore.ReplaceAllString(string(clean), "_"), "_")
}

func (c Chapter) baseName() string {
	lbl := sanitize(c.Label)
	title := sanitize(c.Title)

	if title != "" && title != lbl && !strings.HasPrefix(c.Title, "http") {
		return lbl + "_" + title
	}

	return lbl
}

// ManifestName is the file name a chapter's page manifest is written to.
func (c Chapter) ManifestName() string {
	return c.baseName() + ".json"
}

func (c Chapter) ManifestPath(dir string) string {
	return filepath.Join(dir, c.ManifestName())
}
