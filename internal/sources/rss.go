// Package sources holds one adapter per upstream. Every adapter absorbs its
// own failures: the aggregation layer cannot tell a broken upstream from a
// healthy but empty one.
package sources

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/feedsift/feedsift/backend/internal/config"
	"github.com/feedsift/feedsift/backend/internal/models"
	"github.com/feedsift/feedsift/backend/internal/processing"
)

// RSS fetches and normalizes RSS/Atom feeds. RSS upstreams are not
// rate-limited here, so there is no cache in front of them.
type RSS struct {
	client *http.Client
	log    *slog.Logger
}

// NewRSS creates the adapter with a bounded HTTP client.
func NewRSS(timeout time.Duration, log *slog.Logger) *RSS {
	return &RSS{client: &http.Client{Timeout: timeout}, log: log}
}

// FetchFeed pulls one configured feed and maps its entries. Fetch and parse
// failures are logged and yield nothing; one broken feed must never take
// the others down with it.
func (r *RSS) FetchFeed(ctx context.Context, src config.FeedConfig) []models.FeedItem {
	// gofeed parsers lazily initialize internal state, so concurrent
	// fetches each get their own.
	parser := gofeed.NewParser()
	parser.Client = r.client

	feed, err := parser.ParseURLWithContext(src.URL, ctx)
	if err != nil {
		r.log.Error("fetch feed", slog.String("feed", src.Name), slog.Any("err", err))
		return nil
	}

	items := make([]models.FeedItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		content := entry.Content
		if content == "" {
			content = processing.Excerpt(entry.Description)
		}

		items = append(items, models.FeedItem{
			Title:       entry.Title,
			Link:        entry.Link,
			Content:     content,
			PublishedAt: entry.Published,
			Source:      src.Name,
		})
	}

	return items
}
