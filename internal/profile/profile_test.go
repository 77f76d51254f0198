package profile_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brogergvhs/mangascout/internal/profile"
)

func TestParseFullProfile(t *testing.T) {
	p := profile.Parse(`{
		"chapterList": {"selector": "ul.chapters a", "urlAttr": "data-url"},
		"images": {"selector": "div.reader img", "attrs": ["data-src", "src"], "allowScriptExecution": true}
	}`)

	require.NotNil(t, p.ChapterList)
	assert.Equal(t, "ul.chapters a", p.ChapterList.Selector)
	assert.Equal(t, "data-url", p.ChapterList.URLAttr)
	assert.False(t, p.ChapterList.AllowScriptExecution)

	require.NotNil(t, p.Images)
	assert.Equal(t, "div.reader img", p.Images.Selector)
	assert.Equal(t, []string{"data-src", "src"}, p.Images.Attrs)
	assert.True(t, p.Images.AllowScriptExecution)
	assert.True(t, p.RequiresScriptExecution())
}

func TestParseDefaultsURLAttr(t *testing.T) {
	p := profile.Parse(`{"chapterList": {"selector": "a.ch"}}`)

	require.NotNil(t, p.ChapterList)
	assert.Equal(t, "href", p.ChapterList.URLAttr)
	assert.Nil(t, p.Images)
	assert.False(t, p.RequiresScriptExecution())
}

func TestParseNeverFails(t *testing.T) {
	docs := map[string]string{
		"empty":            "",
		"blank":            "   ",
		"malformed":        `{"chapterList": `,
		"array root":       `[1, 2, 3]`,
		"wrong types":      `{"chapterList": "a.ch", "images": 42}`,
		"blank selector":   `{"chapterList": {"selector": "  "}, "images": {"selector": ""}}`,
		"invalid selector": `{"chapterList": {"selector": "a[href"}, "images": {"selector": "div >> ]"}}`,
		"selector number":  `{"images": {"selector": 7}}`,
	}

	for name, doc := range docs {
		t.Run(name, func(t *testing.T) {
			p := profile.Parse(doc)
			assert.True(t, p.IsEmpty())
			assert.False(t, p.RequiresScriptExecution())
		})
	}
}

func TestParseKeepsValidRuleNextToBrokenOne(t *testing.T) {
	p := profile.Parse(`{"chapterList": [1], "images": {"selector": "img.page", "attrs": ["src", 3, ""]}}`)

	assert.Nil(t, p.ChapterList)
	require.NotNil(t, p.Images)
	assert.Equal(t, []string{"src"}, p.Images.Attrs)
}

func TestRequiresScriptExecution(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		want bool
	}{
		{"none", `{"images": {"selector": "img"}}`, false},
		{"images flag", `{"images": {"selector": "img", "allowScriptExecution": true}}`, true},
		{"chapter flag", `{"chapterList": {"selector": "a", "allowScriptExecution": true}}`, true},
		{"legacy allowJs", `{"images": {"selector": "img", "allowJs": true}}`, true},
		{"string flag", `{"chapterList": {"selector": "a", "allowJs": "true"}}`, true},
		{"flag on dropped rule", `{"images": {"selector": "", "allowScriptExecution": true}}`, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, profile.Parse(tc.doc).RequiresScriptExecution())
		})
	}
}

func TestMarshalRoundTrip(t *testing.T) {
	in := profile.SiteProfile{
		ChapterList: &profile.ChapterListRule{Selector: "div#list a", URLAttr: "href"},
		Images:      &profile.ImagesRule{Selector: "img.page", Attrs: []string{"data-src"}, AllowScriptExecution: true},
	}

	doc, err := in.Marshal()
	require.NoError(t, err)
	assert.Contains(t, doc, `"allowScriptExecution": true`)

	assert.Equal(t, in, profile.Parse(doc))
}

func TestOrigin(t *testing.T) {
	assert.Equal(t, "https://site.example", profile.Origin("https://site.example/manga/1?x=y"))
	assert.Equal(t, "http://host:8080", profile.Origin("http://host:8080/a"))
	assert.Equal(t, "not a url", profile.Origin("not a url"))
}

func TestFileStore(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profiles.yaml")

	s, err := profile.OpenFileStore(path)
	require.NoError(t, err)
	assert.Empty(t, s.Origins())

	require.NoError(t, s.Put("https://b.example/", `{"chapterList": {"selector": "a.ch"}}`))
	require.NoError(t, s.Put("https://a.example", `{"images": {"selector": "img"}}`))

	reopened, err := profile.OpenFileStore(path)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, reopened.Origins())

	p := profile.Lookup(reopened, "https://b.example/manga/42")
	require.NotNil(t, p.ChapterList)
	assert.Equal(t, "a.ch", p.ChapterList.Selector)

	assert.True(t, profile.Lookup(reopened, "https://c.example/x").IsEmpty())
	assert.True(t, profile.Lookup(nil, "https://b.example/x").IsEmpty())

	require.NoError(t, reopened.Delete("https://b.example"))
	require.NoError(t, reopened.Delete("https://missing.example"))
	_, ok := reopened.Get("https://b.example")
	assert.False(t, ok)
}
