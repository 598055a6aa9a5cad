package markdown

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer"
	"github.com/yuin/goldmark/renderer/html"
	"github.com/yuin/goldmark/text"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// GoldmarkRenderer implements interfaces.MarkdownRenderer using the goldmark
// engine. The renderer is stateless so callers can share a single instance
// across requests without locking.
type GoldmarkRenderer struct {
	defaults interfaces.RenderOptions
}

// NewGoldmarkRenderer constructs a renderer with the given default options.
// Zero-value defaults enable the GFM family with raw HTML passthrough.
func NewGoldmarkRenderer(defaults interfaces.RenderOptions) *GoldmarkRenderer {
	return &GoldmarkRenderer{defaults: defaults}
}

// Render converts markdown into HTML and collects the heading outline. Every
// heading receives a stable auto-generated anchor; the outline entries carry
// the same anchors so navigation links resolve against the rendered body.
// Empty or nil source yields empty output, not an error.
func (r *GoldmarkRenderer) Render(ctx context.Context, source []byte, opts interfaces.RenderOptions) (interfaces.RenderResult, error) {
	if err := ctx.Err(); err != nil {
		return interfaces.RenderResult{}, err
	}
	if isZeroOptions(opts) {
		opts = r.defaults
	}
	if len(source) == 0 {
		return interfaces.RenderResult{TOC: []interfaces.TOCEntry{}}, nil
	}

	engine := newEngine(opts)
	doc := engine.Parser().Parse(text.NewReader(source))

	var buf bytes.Buffer
	if err := engine.Renderer().Render(&buf, source, doc); err != nil {
		return interfaces.RenderResult{}, fmt.Errorf("markdown render: %w", err)
	}

	toc, err := collectTOC(doc, source)
	if err != nil {
		return interfaces.RenderResult{}, fmt.Errorf("markdown outline: %w", err)
	}

	return interfaces.RenderResult{
		HTML: buf.String(),
		TOC:  toc,
	}, nil
}

func isZeroOptions(opts interfaces.RenderOptions) bool {
	return len(opts.Extensions) == 0 && !opts.HardWraps && !opts.SafeMode && !opts.Sanitize
}

// newEngine builds a goldmark.Markdown from the supplied options. Unsupported
// extension names are ignored rather than rejected.
func newEngine(opts interfaces.RenderOptions) goldmark.Markdown {
	exts := collectExtensions(opts.Extensions)

	parserOptions := []parser.Option{
		parser.WithAutoHeadingID(),
	}

	rendererOptions := []renderer.Option{}
	if opts.HardWraps {
		rendererOptions = append(rendererOptions, html.WithHardWraps())
	}

	// SafeMode and Sanitize both suppress raw HTML passthrough.
	if !opts.SafeMode && !opts.Sanitize {
		rendererOptions = append(rendererOptions, html.WithUnsafe())
	}

	engineOptions := []goldmark.Option{
		goldmark.WithParserOptions(parserOptions...),
	}
	if len(rendererOptions) > 0 {
		engineOptions = append(engineOptions, goldmark.WithRendererOptions(rendererOptions...))
	}
	if len(exts) > 0 {
		engineOptions = append(engineOptions, goldmark.WithExtensions(exts...))
	}

	return goldmark.New(engineOptions...)
}

var extensionRegistry = map[string]goldmark.Extender{
	"gfm":           extension.GFM,
	"table":         extension.Table,
	"tables":        extension.Table,
	"strikethrough": extension.Strikethrough,
	"linkify":       extension.Linkify,
	"autolink":      extension.Linkify,
	"tasklist":      extension.TaskList,
	"definition":    extension.DefinitionList,
	"footnote":      extension.Footnote,
}

func collectExtensions(names []string) []goldmark.Extender {
	if len(names) == 0 {
		return []goldmark.Extender{
			extension.GFM,
			extension.Linkify,
			extension.TaskList,
		}
	}

	var extenders []goldmark.Extender
	seen := map[string]struct{}{}

	for _, name := range names {
		key := strings.ToLower(strings.TrimSpace(name))
		if key == "" {
			continue
		}
		if _, ok := seen[key]; ok {
			continue
		}
		ext, ok := extensionRegistry[key]
		if !ok {
			continue
		}
		extenders = append(extenders, ext)
		seen[key] = struct{}{}
	}

	return extenders
}

// collectTOC walks the parsed document and records each heading in source
// order with its level, text, and auto-assigned anchor.
func collectTOC(doc ast.Node, source []byte) ([]interfaces.TOCEntry, error) {
	entries := []interfaces.TOCEntry{}

	err := ast.Walk(doc, func(node ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		heading, ok := node.(*ast.Heading)
		if !ok {
			return ast.WalkContinue, nil
		}

		anchor := ""
		if id, found := heading.AttributeString("id"); found {
			if raw, ok := id.([]byte); ok {
				anchor = string(raw)
			}
		}

		entries = append(entries, interfaces.TOCEntry{
			Level:  heading.Level,
			Text:   nodeText(heading, source),
			Anchor: anchor,
		})
		return ast.WalkSkipChildren, nil
	})
	if err != nil {
		return nil, err
	}

	return entries, nil
}

// nodeText flattens the inline content of a node into plain text, keeping
// emphasis and code span contents while dropping markup.
func nodeText(node ast.Node, source []byte) string {
	var sb strings.Builder
	_ = ast.Walk(node, func(child ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch n := child.(type) {
		case *ast.Text:
			sb.Write(n.Segment.Value(source))
		case *ast.String:
			sb.Write(n.Value)
		}
		return ast.WalkContinue, nil
	})
	return sb.String()
}
