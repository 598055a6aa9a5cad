package interfaces

import "context"

// RenderOptions toggles renderer behaviour per invocation. Extensions are
// matched against the renderer's registry by name; unknown names are
// ignored so option sets can be shared across renderer versions.
type RenderOptions struct {
	Extensions []string
	HardWraps  bool
	SafeMode   bool
	Sanitize   bool
}

// TOCEntry is a single heading in document order.
type TOCEntry struct {
	Level  int    `json:"level"`
	Text   string `json:"text"`
	Anchor string `json:"anchor"`
}

// RenderResult carries the rendered HTML plus the extracted table of
// contents for one markdown document.
type RenderResult struct {
	HTML string     `json:"html"`
	TOC  []TOCEntry `json:"toc"`
}

// MarkdownRenderer converts markdown source into HTML and a table of
// contents. Implementations must be deterministic for identical
// (source, opts) inputs.
type MarkdownRenderer interface {
	Render(ctx context.Context, source []byte, opts RenderOptions) (RenderResult, error)
}
