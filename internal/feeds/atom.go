package feeds

import (
	"fmt"
	"html"
	"sort"
	"strings"
	"time"

	"github.com/goliatone/go-pagesync/internal/store"
)

const maxFeedEntries = 100

// FeedOptions shapes one Atom rendition.
type FeedOptions struct {
	// Title of the feed document. Defaults to "Pages".
	Title string
	// DatasourceID scopes entry links and the self link.
	DatasourceID string
}

// Builder renders stored pages into Atom feed documents.
type Builder struct {
	links *LinkBuilder
	now   func() time.Time
}

// NewBuilder wires a feed builder over the given link builder. A nil link
// builder gets a localhost default.
func NewBuilder(links *LinkBuilder) *Builder {
	if links == nil {
		links = NewLinkBuilder("")
	}
	return &Builder{links: links, now: time.Now}
}

// SetClock overrides the timestamp source. Test hook.
func (b *Builder) SetClock(now func() time.Time) {
	if now != nil {
		b.now = now
	}
}

// BuildAtom renders pages into an Atom document. Entries are ordered by
// publish time descending; pages without one sort as if published at build
// time, which floats unpublished drafts to the top of the feed. The entry
// cap keeps feed documents bounded no matter how much history is stored.
func (b *Builder) BuildAtom(pages []*store.Page, opts FeedOptions) (string, error) {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		title = "Pages"
	}
	generatedAt := b.now().UTC()

	feedID, err := b.links.FeedURL(opts.DatasourceID)
	if err != nil {
		return "", err
	}

	entries := make([]*store.Page, len(pages))
	copy(entries, pages)
	sort.SliceStable(entries, func(i, j int) bool {
		left := effectivePublishAt(entries[i], generatedAt)
		right := effectivePublishAt(entries[j], generatedAt)
		if left.Equal(right) {
			return entries[i].PageID < entries[j].PageID
		}
		return left.After(right)
	})
	if len(entries) > maxFeedEntries {
		entries = entries[:maxFeedEntries]
	}

	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	sb.WriteString(`<feed xmlns="http://www.w3.org/2005/Atom">` + "\n")
	sb.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(feedID)))
	sb.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(title)))
	sb.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", generatedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(b.links.BaseURL())))
	sb.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(feedID)))

	for _, page := range entries {
		link, err := b.links.PostURL(page.DatasourceID, page.Slug)
		if err != nil {
			return "", err
		}

		published := effectivePublishAt(page, generatedAt)
		updated := page.UpdatedAt.UTC()
		if updated.IsZero() {
			updated = published
		}

		sb.WriteString("  <entry>\n")
		sb.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(page.PageID)))
		sb.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(page.Title)))
		sb.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(link)))
		sb.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("    <published>%s</published>\n", published.Format(time.RFC3339)))
		for _, tag := range page.Tags {
			sb.WriteString(fmt.Sprintf(`    <category term="%s" />`+"\n", escapeXMLAttr(tag)))
		}
		sb.WriteString("  </entry>\n")
	}

	sb.WriteString(`</feed>` + "\n")
	return sb.String(), nil
}

// effectivePublishAt is the ordering timestamp: the page's publish time, or
// the feed build time when none is set.
func effectivePublishAt(page *store.Page, fallback time.Time) time.Time {
	if page.PublishAt != nil && !page.PublishAt.IsZero() {
		return page.PublishAt.UTC()
	}
	return fallback
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
