package feeds

import (
	"fmt"
	"strings"

	urlkit "github.com/goliatone/go-urlkit"
)

const (
	linkGroup = "content"

	routePost = "post"
	routeFeed = "feed"
	routeTags = "tags"
)

// LinkBuilder produces absolute URLs for feed entries and API surfaces
// through a go-urlkit route manager, so link shapes live in one place.
type LinkBuilder struct {
	manager *urlkit.RouteManager
	baseURL string
}

// NewLinkBuilder configures the content route group rooted at baseURL.
func NewLinkBuilder(baseURL string) *LinkBuilder {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = "http://localhost"
	}

	manager := urlkit.NewRouteManager(&urlkit.Config{
		Groups: []urlkit.GroupConfig{
			{
				Name:    linkGroup,
				BaseURL: baseURL,
				Paths: map[string]string{
					routePost: "/posts/:slug",
					routeFeed: "/feed.atom",
					routeTags: "/tags",
				},
			},
		},
	})

	return &LinkBuilder{manager: manager, baseURL: baseURL}
}

// BaseURL returns the configured site root.
func (b *LinkBuilder) BaseURL() string { return b.baseURL }

// PostURL builds the canonical link for a page slug. The datasource travels
// as a query parameter because slugs are only unique per datasource.
func (b *LinkBuilder) PostURL(datasourceID, slug string) (string, error) {
	builder, err := b.routeBuilder(routePost)
	if err != nil {
		return "", err
	}
	builder.WithParam("slug", slug)
	if datasourceID != "" {
		builder.WithQuery("ds", datasourceID)
	}
	return builder.Build()
}

// FeedURL builds the self link of the Atom feed.
func (b *LinkBuilder) FeedURL(datasourceID string) (string, error) {
	builder, err := b.routeBuilder(routeFeed)
	if err != nil {
		return "", err
	}
	if datasourceID != "" {
		builder.WithQuery("ds", datasourceID)
	}
	return builder.Build()
}

// TagsURL builds the link to the tag aggregate listing.
func (b *LinkBuilder) TagsURL(datasourceID string) (string, error) {
	builder, err := b.routeBuilder(routeTags)
	if err != nil {
		return "", err
	}
	if datasourceID != "" {
		builder.WithQuery("ds", datasourceID)
	}
	return builder.Build()
}

// routeBuilder guards the urlkit group lookup, which panics on unknown
// routes instead of returning an error.
func (b *LinkBuilder) routeBuilder(route string) (builder *urlkit.Builder, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("feeds: route %q: %v", route, rec)
		}
	}()
	group := b.manager.Group(linkGroup)
	builder = group.Builder(route)
	return builder, err
}
