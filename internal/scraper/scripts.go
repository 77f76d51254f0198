package scraper

import (
	"encoding/json"
	"strings"
)

// jsResolve mirrors resolve.Resolve inside the page. The browser already
// knows the document base, so relative values go through URL().
const jsResolve = `function __resolve(v){
  if(!v) return '';
  v = String(v);
  if(v.indexOf(',') !== -1){
    var parts = v.split(',');
    v = parts[parts.length-1].trim().split(/\s+/)[0];
  }
  v = v.trim();
  if(v.indexOf('//') === 0) return 'https:' + v;
  if(v.indexOf('http') === 0) return v;
  try { return new URL(v, document.baseURI).href; } catch(e) { return v; }
}`

func jsString(s string) string {
	b, _ := json.Marshal(s)
	return string(b)
}

func jsStrings(list []string) string {
	if list == nil {
		list = []string{}
	}
	b, _ := json.Marshal(list)

	return string(b)
}

// imagesScript returns a JSON array of image URLs, in DOM order, for the
// nodes matching selector. attrs are probed in order; the element property
// of the same name is the fallback for each.
func imagesScript(selector string, attrs []string) string {
	var b strings.Builder

	b.WriteString("(function(){try{")
	b.WriteString(jsResolve)
	b.WriteString(`
var attrs = ` + jsStrings(attrs) + `;
var out = [];
document.querySelectorAll(` + jsString(selector) + `).forEach(function(el){
  var v = '';
  for (var i = 0; i < attrs.length && !v; i++) {
    var a = attrs[i];
    v = el.getAttribute(a) || el[a] || '';
  }
  if (!v) v = el.getAttribute('src') || el.src || '';
  v = __resolve(v);
  if (v) out.push(v);
});
return JSON.stringify(out);
}catch(e){return '[]';}})()`)

	return b.String()
}

// chapterListScript returns a JSON array of {title,url} for the nodes
// matching selector, reading the link from urlAttr with href as fallback.
func chapterListScript(selector, urlAttr string) string {
	var b strings.Builder

	b.WriteString("(function(){try{")
	b.WriteString(jsResolve)
	b.WriteString(`
var attr = ` + jsString(urlAttr) + `;
var out = [];
document.querySelectorAll(` + jsString(selector) + `).forEach(function(el){
  var v = el.getAttribute(attr) || el[attr] || el.getAttribute('href') || el.href || '';
  v = __resolve(v);
  if (!v) return;
  var t = (el.textContent || '').trim();
  out.push({title: t || v, url: v});
});
return JSON.stringify(out);
}catch(e){return '[]';}})()`)

	return b.String()
}

// adjacentScript returns the URL of the next or previous chapter link, or
// an empty string. Matching follows adjacentAnchor: whole words only, and
// arrows only at either end of the link text.
func adjacentScript(dir Direction) string {
	d := dir.String()

	return `(function(){try{
function tokens(s){ return String(s || '').toLowerCase().split(/[^\p{L}\p{N}]+/u).filter(Boolean); }
function link(a){ return a.href || a.getAttribute('href'); }
var sels = ['a[rel~="` + d + `"]', 'a.` + d + `'];
for (var i = 0; i < sels.length; i++) {
  var el = document.querySelector(sels[i]);
  if (el && link(el)) return link(el);
}
var anchors = Array.from(document.querySelectorAll('a[href]'));
for (var j = 0; j < anchors.length; j++) {
  var a = anchors[j];
  if (tokens(a.className).indexOf('` + d + `') !== -1 || tokens(a.getAttribute('aria-label')).indexOf('` + d + `') !== -1) return link(a);
}
var words = ` + jsStrings(dir.words()) + `;
var arrows = ` + jsStrings(dir.arrows()) + `;
for (var k = 0; k < anchors.length; k++) {
  var t = tokens(anchors[k].textContent);
  for (var w = 0; w < words.length; w++) {
    if (t.indexOf(words[w]) !== -1) return link(anchors[k]);
  }
  var f = (anchors[k].textContent || '').trim().split(/\s+/);
  if (arrows.indexOf(f[0]) !== -1 || arrows.indexOf(f[f.length-1]) !== -1) return link(anchors[k]);
}
return '';
}catch(e){return '';}})()`
}
