package markdownfs

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/adrg/frontmatter"

	"github.com/goliatone/go-pagesync/pkg/interfaces"
)

// Source exposes a directory of frontmatter-annotated markdown files as an
// external page source. Every fetch walks the tree and reports the full set,
// so missing-page tombstoning works out of the box; NextCursor is always
// empty because the filesystem has no delta feed.
type Source struct {
	fs      fs.FS
	name    string
	pattern string
}

// Config configures a filesystem source.
type Config struct {
	// Name identifies the source in adapter errors and logs.
	Name string
	// Pattern limits discovered files by base name glob. Defaults to "*.md".
	Pattern string
}

// New builds a Source over the provided filesystem.
func New(filesystem fs.FS, cfg Config) *Source {
	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		name = "markdownfs"
	}
	pattern := strings.TrimSpace(cfg.Pattern)
	if pattern == "" {
		pattern = "*.md"
	}
	return &Source{fs: filesystem, name: name, pattern: pattern}
}

func (s *Source) Name() string { return s.name }

// Fetch walks the tree and parses every matching document into an external
// record. A file that fails to parse fails the whole fetch; partial listings
// would be indistinguishable from upstream deletions.
func (s *Source) Fetch(ctx context.Context, req interfaces.FetchRequest) (*interfaces.FetchResult, error) {
	var paths []string
	err := fs.WalkDir(s.fs, ".", func(entryPath string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if entry.IsDir() {
			return nil
		}
		matched, err := path.Match(s.pattern, path.Base(entryPath))
		if err != nil {
			return err
		}
		if matched {
			paths = append(paths, entryPath)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("markdownfs walk: %w", err)
	}
	sort.Strings(paths)

	records := make([]interfaces.ExternalRecord, 0, len(paths))
	for _, filePath := range paths {
		record, err := s.loadRecord(filePath, req.DatasourceID)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return &interfaces.FetchResult{Records: records}, nil
}

// documentEnvelope is the recognized frontmatter shape. Unknown keys land in
// the inline Custom map and surface as record meta.
type documentEnvelope struct {
	ID        string         `yaml:"id"`
	Title     string         `yaml:"title"`
	Slug      string         `yaml:"slug"`
	PublishAt string         `yaml:"publish_at"`
	Date      time.Time      `yaml:"date"`
	Tags      []string       `yaml:"tags"`
	Authors   []string       `yaml:"authors"`
	Draft     bool           `yaml:"draft"`
	Custom    map[string]any `yaml:",inline"`
}

func (s *Source) loadRecord(filePath, datasourceID string) (interfaces.ExternalRecord, error) {
	data, err := fs.ReadFile(s.fs, filePath)
	if err != nil {
		return interfaces.ExternalRecord{}, fmt.Errorf("markdownfs read %s: %w", filePath, err)
	}

	var envelope documentEnvelope
	body, err := frontmatter.Parse(bytes.NewReader(data), &envelope)
	if err != nil {
		return interfaces.ExternalRecord{}, fmt.Errorf("markdownfs parse %s: %w", filePath, err)
	}

	record := interfaces.ExternalRecord{
		PageID:       envelope.ID,
		DatasourceID: datasourceID,
		Title:        envelope.Title,
		Slug:         envelope.Slug,
		Meta:         map[string]any{},
	}
	if record.PageID == "" {
		record.PageID = pageIDFromPath(filePath)
	}
	if record.Slug == "" {
		record.Slug = pageIDFromPath(filePath)
	}

	content := string(body)
	record.Content = &content

	switch {
	case envelope.Draft:
		// Drafts sync without a publish date and stay out of feeds.
	case envelope.PublishAt != "":
		publishAt := envelope.PublishAt
		record.PublishAt = &publishAt
	case !envelope.Date.IsZero():
		publishAt := envelope.Date.UTC().Format(time.RFC3339)
		record.PublishAt = &publishAt
	}

	for _, tag := range envelope.Tags {
		record.Tags = append(record.Tags, tag)
	}
	for _, author := range envelope.Authors {
		record.Authors = append(record.Authors, author)
	}
	for key, value := range envelope.Custom {
		record.Meta[key] = value
	}

	return record, nil
}

// pageIDFromPath derives a stable identifier from the document location:
// the slash path without its extension.
func pageIDFromPath(filePath string) string {
	ext := path.Ext(filePath)
	return strings.TrimSuffix(filePath, ext)
}
