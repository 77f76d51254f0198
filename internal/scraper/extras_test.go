package scraper_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/mangascout/internal/profile"
	"github.com/brogergvhs/mangascout/internal/scraper"
)

func TestExtractChapterNumber(t *testing.T) {
	cases := []struct {
		title string
		url   string
		want  float64
	}{
		{"Chapter 12.5", "", 12.5},
		{"Ch.7", "", 7},
		{"Intro", "https://x/manga/42", 42},
		{"no digits here", "https://x/manga/abc", -1},
		{"", "", -1},
		{"CHAPTER   3", "https://x/m/99", 3},
		{"Episode", "https://x/m/chapter-8", 8},
		{"Vol 2", "https://x/chapter-5", 2},
		{"The End", "https://x/read/ch.11/", 11},
		{"Extra", "https://x/m/1.5/", 1.5},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, scraper.ExtractChapterNumber(tc.title, tc.url), "%q %q", tc.title, tc.url)
	}
}

func TestSrcsetAgainstDirectoryBase(t *testing.T) {
	page := `<img srcset="a.jpg 300w, b.jpg 600w">`
	s := scraper.New(newCountingFetcher(map[string]string{"https://site/ch/1/": page}))

	got := s.FetchImages(context.Background(), "https://site/ch/1/", profile.SiteProfile{})
	assert.Equal(t, []string{"https://site/ch/1/b.jpg"}, got)
}

func TestDeriveSelector(t *testing.T) {
	cases := []struct {
		name    string
		page    string
		example string
		want    string
	}{
		{
			name:    "own id",
			page:    `<a id="c1" class="chap" href="/m/chapter-1">1</a>`,
			example: "https://site/m/chapter-1",
			want:    "a#c1",
		},
		{
			name:    "own classes",
			page:    `<a class="chap link" href="/m/chapter-1">1</a>`,
			example: "https://site/m/chapter-1",
			want:    "a.chap.link",
		},
		{
			name:    "parent id",
			page:    `<ul><li id="c1"><a href="/m/chapter-1">1</a></li></ul>`,
			example: "https://site/m/chapter-1",
			want:    "li#c1 a",
		},
		{
			name:    "bare parent falls back to href fragment",
			page:    `<ul id="chapters"><li><a href="/m/chapter-1">1</a></li></ul>`,
			example: "https://site/m/chapter-1",
			want:    "a[href*='chapter-1']",
		},
		{
			name:    "parent classes",
			page:    `<div class="row item"><a href="/m/chapter-1">1</a></div>`,
			example: "https://site/m/chapter-1",
			want:    "div.row.item a",
		},
		{
			name:    "heuristic match when example is absent",
			page:    `<a href="/">home</a><span id="box"><a href="/m/7">7</a></span>`,
			example: "https://elsewhere/none",
			want:    "span#box a",
		},
		{
			name:    "href fragment with digits",
			page:    `<div><a href="/">home</a><a href="/m/ep-12/">12</a></div>`,
			example: "https://site/m/ep-12/",
			want:    "a[href*='ep-12']",
		},
		{
			name:    "generic chapter fragment",
			page:    `<div><a href="/">home</a><a href="/m/latest">latest</a></div>`,
			example: "https://site/m/latest",
			want:    "a[href*='chapter']",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := scraper.New(newCountingFetcher(map[string]string{"https://site/m": tc.page}))

			got, ok := s.DeriveSelector(context.Background(), "https://site/m", tc.example)
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestDeriveSelectorNoAnchors(t *testing.T) {
	s := scraper.New(newCountingFetcher(map[string]string{"https://site/m": `<p>empty</p>`}))

	_, ok := s.DeriveSelector(context.Background(), "https://site/m", "https://site/m/1")
	assert.False(t, ok)

	_, ok = s.DeriveSelector(context.Background(), "https://site/unreachable", "https://site/m/1")
	assert.False(t, ok)
}

func TestDeriveSelectorNoMatchingAnchor(t *testing.T) {
	s := scraper.New(newCountingFetcher(map[string]string{
		"https://site/m": `<nav><a href="/about">About</a><a href="/">Home</a></nav>`,
	}))

	sel, ok := s.DeriveSelector(context.Background(), "https://site/m", "https://other/x/latest")
	assert.False(t, ok)
	assert.Empty(t, sel)
}

func TestDerivedSelectorFeedsChapterList(t *testing.T) {
	page := `<div class="list"><a href="/m/1">One</a><a href="/m/2">Two</a></div><a href="/m/about">About</a>`
	s := scraper.New(newCountingFetcher(map[string]string{"https://site/m": page}))

	sel, ok := s.DeriveSelector(context.Background(), "https://site/m", "https://site/m/1")
	require.True(t, ok)

	p := scraper.DerivedProfile(sel)
	doc, err := p.Marshal()
	require.NoError(t, err)
	assert.Equal(t, p, profile.Parse(doc))

	got := s.FetchChapters(context.Background(), "https://site/m", p)
	assert.Equal(t, []scraper.ChapterLink{
		{Title: "One", URL: "https://site/m/1"},
		{Title: "Two", URL: "https://site/m/2"},
	}, got)
}

func TestSuggestProfile(t *testing.T) {
	page := `<header><img src="/logo.png"></header>
	<div class="reader main">
		<p><img data-src="/p/1.jpg"></p>
		<p><img data-src="/p/2.jpg"></p>
		<p><img data-src="/p/3.jpg"></p>
	</div>
	<section id="ads"><img src="/ad.jpg"></section>`
	s := scraper.New(newCountingFetcher(map[string]string{"https://site/ch/1": page}))

	p, ok := s.SuggestProfile(context.Background(), "https://site/ch/1")
	require.True(t, ok)
	require.NotNil(t, p.Images)
	assert.Equal(t, "div.reader.main img", p.Images.Selector)
	assert.Equal(t, []string{"data-src", "data-original", "src", "srcset"}, p.Images.Attrs)
	require.NotNil(t, p.ChapterList)
	assert.Equal(t, "href", p.ChapterList.URLAttr)

	got := s.FetchImages(context.Background(), "https://site/ch/1", p)
	assert.Equal(t, []string{"https://site/p/1.jpg", "https://site/p/2.jpg", "https://site/p/3.jpg"}, got)
}

func TestSuggestProfileNoImages(t *testing.T) {
	s := scraper.New(newCountingFetcher(map[string]string{"https://site/ch/1": `<p>text</p>`}))

	_, ok := s.SuggestProfile(context.Background(), "https://site/ch/1")
	assert.False(t, ok)
}

func TestAdjacentChapter(t *testing.T) {
	cases := []struct {
		name string
		page string
		dir  scraper.Direction
		want string
	}{
		{"rel next", `<a href="/c/1">Prev</a><a rel="next" href="/c/3">x</a>`, scraper.Next, "https://site/c/3"},
		{"class prev", `<a class="btn prev" href="/c/1">x</a><a href="/c/3">y</a>`, scraper.Prev, "https://site/c/1"},
		{"aria label", `<a aria-label="Next chapter" href="/c/3">→</a>`, scraper.Next, "https://site/c/3"},
		{"text arrow", `<a href="/c/1">« back</a><a href="/c/3">forward »</a>`, scraper.Next, "https://site/c/3"},
		{"text previous", `<a href="/c/3">Next</a><a href="/c/1">Previous</a>`, scraper.Prev, "https://site/c/1"},
		{"class part", `<a class="nav-prev" href="/c/1">x</a>`, scraper.Prev, "https://site/c/1"},
		{"preview is not prev", `<a class="preview" href="/p">Preview</a><a href="/c/1">‹ Prev</a>`, scraper.Prev, "https://site/c/1"},
		{"arrow inside text skipped", `<a href="/m">1 > 0</a><a href="/c/3">Chapter 3 ›</a>`, scraper.Next, "https://site/c/3"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s := scraper.New(newCountingFetcher(map[string]string{"https://site/c/2": tc.page}))

			got, ok := s.AdjacentChapter(context.Background(), "https://site/c/2", tc.dir, profile.SiteProfile{})
			require.True(t, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestAdjacentChapterMissing(t *testing.T) {
	pages := map[string]string{
		"home":       `<a href="/">Home</a>`,
		"preview":    `<a class="thumb-preview" href="/p/1">Preview</a><a href="/p/2">Previews</a>`,
		"comparison": `<a href="/faq">a < b and c > d</a>`,
	}

	for name, page := range pages {
		t.Run(name, func(t *testing.T) {
			s := scraper.New(newCountingFetcher(map[string]string{"https://site/c/2": page}))

			_, ok := s.AdjacentChapter(context.Background(), "https://site/c/2", scraper.Prev, profile.SiteProfile{})
			assert.False(t, ok)
			_, ok = s.AdjacentChapter(context.Background(), "https://site/c/2", scraper.Next, profile.SiteProfile{})
			assert.False(t, ok)
		})
	}
}

func TestAdjacentChapterRendered(t *testing.T) {
	ev := &fakeEvaluator{out: "https://site/c/3"}
	f := newCountingFetcher(nil)
	s := scraper.New(f, scraper.WithRenderer(ev))

	p := profile.Parse(`{"images": {"selector": "img", "allowScriptExecution": true}}`)
	got, ok := s.AdjacentChapter(context.Background(), "https://site/c/2", scraper.Next, p)

	require.True(t, ok)
	assert.Equal(t, "https://site/c/3", got)
	assert.Zero(t, f.count("https://site/c/2"))
}
