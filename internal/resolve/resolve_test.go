package resolve_test

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/mangascout/internal/resolve"
)

func TestResolve(t *testing.T) {
	cases := []struct {
		name       string
		raw        string
		base       string
		elementAbs string
		want       string
	}{
		{"srcset keeps last candidate", "a.jpg 300w, b.jpg 600w", "https://site/", "", "https://site/b.jpg"},
		{"absolute srcset", "https://cdn/x-600.jpg 600w, https://cdn/full.jpg 1200w", "https://site/", "", "https://cdn/full.jpg"},
		{"protocol relative", "//cdn.example.com/x.jpg", "https://site/", "", "https://cdn.example.com/x.jpg"},
		{"absolute kept", "http://img.example/1.png", "https://site/", "", "http://img.example/1.png"},
		{"element absolute wins", "img/1.png", "https://site/", "https://site/ch/img/1.png", "https://site/ch/img/1.png"},
		{"comma split happens before element absolute", "a.jpg 1x, b.jpg 2x", "https://site/", " https://site/abs.jpg ", "https://site/abs.jpg"},
		{"base with slash", "p/1.jpg", "https://site/ch/", "", "https://site/ch/p/1.jpg"},
		{"base without slash is concatenated", "../1.jpg", "https://site/ch", "", "https://site/ch/../1.jpg"},
		{"trimmed", "  //cdn/x.jpg  ", "https://site/", "", "https://cdn/x.jpg"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, resolve.Resolve(tc.raw, tc.base, tc.elementAbs))
		})
	}
}

func TestAbsAttr(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(
		`<img id="a" src="../p/1.jpg"><img id="b" src=""><img id="c">`))
	require.NoError(t, err)

	base := "https://site/manga/ch-1/"
	assert.Equal(t, "https://site/manga/p/1.jpg", resolve.AbsAttr(doc.Find("#a"), "src", base))
	assert.Empty(t, resolve.AbsAttr(doc.Find("#b"), "src", base))
	assert.Empty(t, resolve.AbsAttr(doc.Find("#c"), "src", base))
	assert.Empty(t, resolve.AbsAttr(doc.Find("#a"), "src", "relative/base"))
}

func TestDedup(t *testing.T) {
	in := []string{"https://a/1.jpg", " ", "https://a/2.jpg", "https://a/1.jpg", "https://a/3.jpg"}

	assert.Equal(t, []string{"https://a/1.jpg", "https://a/2.jpg", "https://a/3.jpg"}, resolve.Dedup(in))
}

func TestFilterRaster(t *testing.T) {
	mixed := []string{"https://a/1.JPG", "https://a/page.html", "https://a/2.webp?w=800", "https://a/3.gif"}
	assert.Equal(t, []string{"https://a/1.JPG", "https://a/2.webp?w=800", "https://a/3.gif"}, resolve.FilterRaster(mixed))

	none := []string{"https://a/img?id=1", "https://a/img?id=2"}
	assert.Equal(t, none, resolve.FilterRaster(none))
}
