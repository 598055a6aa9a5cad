package markdown

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// CachingRenderer memoizes render results keyed by a fingerprint of the
// source and the effective options. Rendering is deterministic, so a cache
// hit returns byte-identical output to a fresh render.
type CachingRenderer struct {
	inner interfaces.MarkdownRenderer

	mu      sync.RWMutex
	entries map[string]interfaces.RenderResult
	maxSize int
}

const defaultCacheSize = 512

// NewCachingRenderer wraps a renderer with an in-process memo. A maxSize of
// zero or less falls back to the default capacity. Eviction is wholesale:
// when the memo fills up it is reset rather than tracking recency.
func NewCachingRenderer(inner interfaces.MarkdownRenderer, maxSize int) *CachingRenderer {
	if maxSize <= 0 {
		maxSize = defaultCacheSize
	}
	return &CachingRenderer{
		inner:   inner,
		entries: make(map[string]interfaces.RenderResult),
		maxSize: maxSize,
	}
}

func (c *CachingRenderer) Render(ctx context.Context, source []byte, opts interfaces.RenderOptions) (interfaces.RenderResult, error) {
	key := fingerprint(source, opts)

	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cloneResult(cached), nil
	}

	result, err := c.inner.Render(ctx, source, opts)
	if err != nil {
		return interfaces.RenderResult{}, err
	}

	c.mu.Lock()
	if len(c.entries) >= c.maxSize {
		c.entries = make(map[string]interfaces.RenderResult)
	}
	c.entries[key] = cloneResult(result)
	c.mu.Unlock()

	return result, nil
}

// Len reports the number of memoized entries.
func (c *CachingRenderer) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func fingerprint(source []byte, opts interfaces.RenderOptions) string {
	names := make([]string, 0, len(opts.Extensions))
	for _, name := range opts.Extensions {
		names = append(names, strings.ToLower(strings.TrimSpace(name)))
	}
	sort.Strings(names)

	h := sha256.New()
	h.Write(source)
	h.Write([]byte{0})
	h.Write([]byte(strings.Join(names, ",")))
	h.Write([]byte{0})
	h.Write([]byte(strconv.FormatBool(opts.HardWraps)))
	h.Write([]byte(strconv.FormatBool(opts.SafeMode)))
	h.Write([]byte(strconv.FormatBool(opts.Sanitize)))
	return hex.EncodeToString(h.Sum(nil))
}

func cloneResult(result interfaces.RenderResult) interfaces.RenderResult {
	out := interfaces.RenderResult{HTML: result.HTML}
	if result.TOC != nil {
		out.TOC = append([]interfaces.TOCEntry{}, result.TOC...)
	}
	return out
}
