// Package content renders the static informational pages from Markdown
// embedded in the binary.
package content

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"sync"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

//go:embed pages/*.md
var pages embed.FS

// md escapes raw HTML in the source (WithUnsafe is not set).
var md = goldmark.New(
	goldmark.WithExtensions(extension.Typographer),
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// Page is a rendered page.
type Page struct {
	Name string        `json:"nombre"`
	HTML template.HTML `json:"html"`
}

// Pages caches rendered pages by name.
type Pages struct {
	mu    sync.Mutex
	cache map[string]Page
}

func NewPages() *Pages {
	return &Pages{cache: make(map[string]Page)}
}

// Get renders pages/<name>.md, caching the result.
func (p *Pages) Get(name string) (Page, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if page, ok := p.cache[name]; ok {
		return page, nil
	}

	src, err := pages.ReadFile("pages/" + name + ".md")
	if err != nil {
		return Page{}, fmt.Errorf("page %q: %w", name, err)
	}
	var buf bytes.Buffer
	if err := md.Convert(src, &buf); err != nil {
		return Page{}, fmt.Errorf("render %q: %w", name, err)
	}
	page := Page{Name: name, HTML: template.HTML(buf.String())}
	p.cache[name] = page
	return page, nil
}
