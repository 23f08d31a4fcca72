package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/feedsift/feedsift/backend/internal/config"
	"github.com/feedsift/feedsift/backend/internal/feedcache"
	"github.com/feedsift/feedsift/backend/internal/models"
)

const (
	redditCacheKey = "reddit"

	// Reddit rejects requests without a descriptive User-Agent.
	redditUserAgent = "feedsift/1.0.0 (Local Self-Hosted)"

	redditSubreddits = "MachineLearning+LocalLLaMA+technology+programming"
)

// Reddit pulls the daily top posts from a fixed set of high-signal
// subreddits through the public JSON listing. The credential only gates
// the adapter; the listing itself needs identification, not auth. Cache
// policy matches Twitter: fresh cache short-circuits, stale cache is the
// fallback on failure.
type Reddit struct {
	baseURL string
	client  *http.Client
	cache   *feedcache.Store[[]models.FeedItem]
	log     *slog.Logger
}

// NewReddit creates the adapter, disabled until a credential is configured.
func NewReddit(cache *feedcache.Store[[]models.FeedItem], timeout time.Duration, log *slog.Logger) *Reddit {
	return &Reddit{
		baseURL: "https://www.reddit.com",
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
	}
}

// Fetch returns the current post batch under the same cache-first,
// stale-on-error policy as the other social adapters.
func (r *Reddit) Fetch(ctx context.Context, cfg config.App) []models.FeedItem {
	if cfg.Social.Reddit == "" {
		return nil
	}

	cached, ok := r.cache.Read(redditCacheKey)
	if ok && r.cache.Fresh(cached) {
		r.log.Debug("serving reddit feed from cache")
		return cached.Data
	}

	items, err := r.listTop(ctx)
	if err != nil {
		if ok {
			r.log.Warn("reddit fetch failed, serving stale cache", slog.Any("err", err))
			return cached.Data
		}
		r.log.Error("reddit fetch failed", slog.Any("err", err))
		return nil
	}

	r.cache.Write(redditCacheKey, items)
	return items
}

type redditPost struct {
	Title      string  `json:"title"`
	Permalink  string  `json:"permalink"`
	Selftext   string  `json:"selftext"`
	URL        string  `json:"url"`
	CreatedUTC float64 `json:"created_utc"`
	Subreddit  string  `json:"subreddit"`
}

func (r *Reddit) listTop(ctx context.Context) ([]models.FeedItem, error) {
	url := fmt.Sprintf("%s/r/%s/top.json?t=day&limit=15", r.baseURL, redditSubreddits)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build reddit request: %w", err)
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("reddit request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("reddit responded %s", resp.Status)
	}

	var payload struct {
		Data struct {
			Children []struct {
				Data redditPost `json:"data"`
			} `json:"children"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode reddit response: %w", err)
	}

	items := make([]models.FeedItem, 0, len(payload.Data.Children))
	for _, child := range payload.Data.Children {
		post := child.Data

		// Text posts carry their body, link posts only the target URL.
		content := post.Selftext
		if content == "" {
			content = post.URL
		}

		items = append(items, models.FeedItem{
			Title:       "Reddit: " + post.Title,
			Link:        "https://reddit.com" + post.Permalink,
			Content:     content,
			PublishedAt: time.Unix(int64(post.CreatedUTC), 0).UTC().Format(time.RFC3339),
			Source:      "Reddit (r/" + post.Subreddit + ")",
		})
	}

	return items, nil
}
