// internal/head/builder.go
//
// The Builder collects everything that should appear inside a page's
// <head> element.  It is scoped to one request.  core.NewContext seeds it,
// page handlers add to it, and the theme layout emits each slice.
//
// Features
// --------
//   - SetTitle    – "<page> | <site>", or the bare site name for "".
//   - Description – <meta name="description">, escaped.
//   - NoIndex     – keeps account and booking pages out of search results.
//   - Canonical   – <link rel="canonical">.
//   - Meta, Link  – raw, pre-escaped tags, deduplicated.
//   - JSONLD      – structured data wrapped in
//     <script type="application/ld+json">…</script>.
package head

import (
	"html/template"
	"strings"
	"sync"
)

// Builder guards its slices with a mutex; widgets may render concurrently.
type Builder struct {
	mu sync.Mutex

	site  string
	title string

	metas  []string
	links  []string
	jsonLD []string

	seen map[string]struct{}
}

// New returns a Builder whose titles end in site.
func New(site string) *Builder {
	return &Builder{site: site, title: site, seen: make(map[string]struct{})}
}

// ------------------------------------------------------------------
// Title
// ------------------------------------------------------------------

// SetTitle names the page.  The last caller wins.
func (b *Builder) SetTitle(page string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	switch {
	case page == "":
		b.title = b.site
	case b.site == "":
		b.title = page
	default:
		b.title = page + " | " + b.site
	}
}

// Title returns a fully formed <title> tag or an empty string.
func (b *Builder) Title() template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.title == "" {
		return ""
	}
	return template.HTML("<title>" + template.HTMLEscapeString(b.title) + "</title>")
}

// ------------------------------------------------------------------
// Tags
// ------------------------------------------------------------------

// Description sets the page description.
func (b *Builder) Description(d string) {
	b.Meta(`<meta name="description" content="` + template.HTMLEscapeString(d) + `">`)
}

// NoIndex asks crawlers to skip the page.
func (b *Builder) NoIndex() { b.Meta(`<meta name="robots" content="noindex, nofollow">`) }

// Canonical names the preferred URL of the page.
func (b *Builder) Canonical(href string) {
	b.Link(`<link rel="canonical" href="` + template.HTMLEscapeString(href) + `">`)
}

func (b *Builder) Meta(tag string)  { b.add("meta:"+tag, &b.metas, tag) }
func (b *Builder) Link(tag string)  { b.add("link:"+tag, &b.links, tag) }
func (b *Builder) JSONLD(js string) { b.add("jsonld:"+js, &b.jsonLD, js) }

func (b *Builder) add(key string, tgt *[]string, tag string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, dup := b.seen[key]; dup {
		return
	}
	b.seen[key] = struct{}{}
	*tgt = append(*tgt, tag)
}

// ------------------------------------------------------------------
// Called from the theme layout
// ------------------------------------------------------------------

func (b *Builder) Metas() template.HTML { return b.join(b.metas, "", "") }
func (b *Builder) Links() template.HTML { return b.join(b.links, "", "") }

// JSON returns all JSON-LD blocks wrapped in <script> tags.
func (b *Builder) JSON() template.HTML {
	return b.join(b.jsonLD, `<script type="application/ld+json">`, `</script>`)
}

// join wraps and concatenates pre-escaped fragments.
func (b *Builder) join(sl []string, open, close string) template.HTML {
	b.mu.Lock()
	defer b.mu.Unlock()
	var sb strings.Builder
	for _, s := range sl {
		sb.WriteString(open)
		sb.WriteString(s)
		sb.WriteString(close)
	}
	return template.HTML(sb.String())
}
