// Package profile parses site profiles: small JSON rulesets telling the
// scraper where chapter links and page images live on one site.
//
// A profile document looks like:
//
//	{
//	  "chapterList": {"selector": "ul.chapters a", "urlAttr": "href"},
//	  "images": {"selector": "div.reader img", "attrs": ["data-src", "src"],
//	             "allowScriptExecution": false}
//	}
//
// Parsing never fails. Anything unusable is dropped and the scraper falls
// back to its heuristics.
package profile

import (
	"encoding/json"
	"net/url"
	"strings"

	"github.com/andybalholm/cascadia"
)

const defaultURLAttr = "href"

// ChapterListRule locates chapter links on a manga page.
type ChapterListRule struct {
	Selector             string
	URLAttr              string
	AllowScriptExecution bool
}

// ImagesRule locates page images on a chapter page. Attrs are probed in
// order on each matched node.
type ImagesRule struct {
	Selector             string
	Attrs                []string
	AllowScriptExecution bool
}

// SiteProfile is an immutable, validated profile. A nil rule means there is
// no rule for that extraction kind.
type SiteProfile struct {
	ChapterList *ChapterListRule
	Images      *ImagesRule
}

// Parse decodes doc into a SiteProfile. Malformed JSON or wrong types give
// an empty profile; each rule is decoded on its own so one broken rule does
// not discard the other.
func Parse(doc string) SiteProfile {
	var p SiteProfile

	if strings.TrimSpace(doc) == "" {
		return p
	}

	var root map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc), &root); err != nil {
		return p
	}

	if raw, ok := root["chapterList"]; ok {
		p.ChapterList = parseChapterList(raw)
	}
	if raw, ok := root["images"]; ok {
		p.Images = parseImages(raw)
	}

	return p
}

func parseChapterList(raw json.RawMessage) *ChapterListRule {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil
	}

	sel := stringField(obj, "selector")
	if !ValidSelector(sel) {
		return nil
	}

	attr := stringField(obj, "urlAttr")
	if attr == "" {
		attr = defaultURLAttr
	}

	return &ChapterListRule{
		Selector:             sel,
		URLAttr:              attr,
		AllowScriptExecution: scriptFlag(obj),
	}
}

func parseImages(raw json.RawMessage) *ImagesRule {
	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil || obj == nil {
		return nil
	}

	sel := stringField(obj, "selector")
	if !ValidSelector(sel) {
		return nil
	}

	var attrs []string
	if list, ok := obj["attrs"].([]any); ok {
		for _, v := range list {
			s, ok := v.(string)
			if !ok {
				continue
			}
			if s = strings.TrimSpace(s); s != "" {
				attrs = append(attrs, s)
			}
		}
	}

	return &ImagesRule{
		Selector:             sel,
		Attrs:                attrs,
		AllowScriptExecution: scriptFlag(obj),
	}
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

// scriptFlag reads allowScriptExecution, or allowJs as written by older
// profiles. Either one set is enough.
func scriptFlag(obj map[string]any) bool {
	return boolField(obj, "allowScriptExecution") || boolField(obj, "allowJs")
}

func boolField(obj map[string]any, key string) bool {
	switch v := obj[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	default:
		return false
	}
}

// ValidSelector reports whether sel is non-blank and accepted by the CSS
// engine used for static extraction.
func ValidSelector(sel string) bool {
	if strings.TrimSpace(sel) == "" {
		return false
	}
	_, err := cascadia.Compile(sel)

	return err == nil
}

// RequiresScriptExecution reports whether any rule asks for extraction
// against a rendered page. Callers check it before fetching anything.
func (p SiteProfile) RequiresScriptExecution() bool {
	return (p.Images != nil && p.Images.AllowScriptExecution) ||
		(p.ChapterList != nil && p.ChapterList.AllowScriptExecution)
}

// IsEmpty reports whether the profile carries no rule at all.
func (p SiteProfile) IsEmpty() bool {
	return p.ChapterList == nil && p.Images == nil
}

type chapterListDoc struct {
	Selector             string `json:"selector"`
	URLAttr              string `json:"urlAttr,omitempty"`
	AllowScriptExecution bool   `json:"allowScriptExecution,omitempty"`
}

type imagesDoc struct {
	Selector             string   `json:"selector"`
	Attrs                []string `json:"attrs,omitempty"`
	AllowScriptExecution bool     `json:"allowScriptExecution,omitempty"`
}

type document struct {
	ChapterList *chapterListDoc `json:"chapterList,omitempty"`
	Images      *imagesDoc      `json:"images,omitempty"`
}

// Marshal serialises the profile back into its JSON document form.
func (p SiteProfile) Marshal() (string, error) {
	var d document

	if p.ChapterList != nil {
		d.ChapterList = &chapterListDoc{
			Selector:             p.ChapterList.Selector,
			URLAttr:              p.ChapterList.URLAttr,
			AllowScriptExecution: p.ChapterList.AllowScriptExecution,
		}
	}
	if p.Images != nil {
		d.Images = &imagesDoc{
			Selector:             p.Images.Selector,
			Attrs:                p.Images.Attrs,
			AllowScriptExecution: p.Images.AllowScriptExecution,
		}
	}

	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return "", err
	}

	return string(b), nil
}

// Origin returns the scheme://host key profiles are stored under. It returns
// the input unchanged when it cannot be parsed as an absolute URL.
func Origin(rawURL string) string {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil || u.Scheme == "" || u.Host == "" {
		return rawURL
	}

	return u.Scheme + "://" + u.Host
}
