// Package render turns ingot bodies into HTML and derives path names.
package render

import (
	"bytes"
	"fmt"

	"github.com/goliatone/go-slug"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/starford/nibi/internal/ingot"
)

// Renderer converts Markdown bodies to HTML. It holds no per-call state and
// may be shared.
type Renderer struct {
	md goldmark.Markdown
}

// Option configures a Renderer.
type Option func(*config)

type config struct {
	unsafe    bool
	hardWraps bool
}

// WithUnsafeHTML passes raw HTML in bodies through unchanged.
func WithUnsafeHTML() Option {
	return func(c *config) { c.unsafe = true }
}

// WithHardWraps renders single line breaks as <br>.
func WithHardWraps() Option {
	return func(c *config) { c.hardWraps = true }
}

// New builds a Renderer with GFM, linkify and task lists enabled and
// automatic heading ids.
func New(opts ...Option) *Renderer {
	var c config
	for _, opt := range opts {
		opt(&c)
	}

	var rendererOptions []goldmark.Option
	var htmlOptions []html.Option
	if c.unsafe {
		htmlOptions = append(htmlOptions, html.WithUnsafe())
	}
	if c.hardWraps {
		htmlOptions = append(htmlOptions, html.WithHardWraps())
	}
	if len(htmlOptions) > 0 {
		rendererOptions = append(rendererOptions, goldmark.WithRendererOptions(htmlOptions...))
	}

	md := goldmark.New(append([]goldmark.Option{
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.TaskList),
		goldmark.WithParserOptions(parser.WithAutoHeadingID()),
	}, rendererOptions...)...)
	return &Renderer{md: md}
}

// Render converts body to HTML.
func (r *Renderer) Render(body string) ([]byte, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(body), &buf); err != nil {
		return nil, fmt.Errorf("render: convert: %w", err)
	}
	return buf.Bytes(), nil
}

// Slug derives a URL path name from text. It returns "" when text holds
// nothing usable.
func Slug(text string) string {
	s, err := slug.Normalize(text)
	if err != nil {
		return ""
	}
	return s
}

// FillPName sets rec.PName from the title when no path name was given.
func FillPName(rec *ingot.Ingot) {
	if rec.PName == "" {
		rec.PName = Slug(rec.Title)
	}
}
