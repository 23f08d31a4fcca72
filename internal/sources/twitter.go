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
	twitterCacheKey = "twitter"
	twitterSource   = "Twitter (AI Search)"

	// High-signal recent-search query; retweets add nothing but volume.
	twitterQuery = `(AI OR "Large Language Model" OR "Machine Learning") -is:retweet lang:en has:links`
)

// Twitter pulls recent tweets through the v2 search API. The upstream is
// rate-limited, so every fetch goes through the durable cache first and
// falls back to it (fresh or stale) when the API call fails.
type Twitter struct {
	baseURL string
	client  *http.Client
	cache   *feedcache.Store[[]models.FeedItem]
	log     *slog.Logger
}

// NewTwitter creates the adapter. It stays disabled until a bearer token
// shows up in the config snapshot.
func NewTwitter(cache *feedcache.Store[[]models.FeedItem], timeout time.Duration, log *slog.Logger) *Twitter {
	return &Twitter{
		baseURL: "https://api.twitter.com/2",
		client:  &http.Client{Timeout: timeout},
		cache:   cache,
		log:     log,
	}
}

// Fetch returns the current tweet batch: cache when fresh, upstream
// otherwise, stale cache when the upstream fails, nothing when disabled.
func (t *Twitter) Fetch(ctx context.Context, cfg config.App) []models.FeedItem {
	token := cfg.Social.Twitter
	if token == "" {
		return nil
	}

	cached, ok := t.cache.Read(twitterCacheKey)
	if ok && t.cache.Fresh(cached) {
		t.log.Debug("serving twitter feed from cache")
		return cached.Data
	}

	items, err := t.search(ctx, token)
	if err != nil {
		if ok {
			t.log.Warn("twitter fetch failed, serving stale cache", slog.Any("err", err))
			return cached.Data
		}
		t.log.Error("twitter fetch failed", slog.Any("err", err))
		return nil
	}

	t.cache.Write(twitterCacheKey, items)
	return items
}

type tweet struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	CreatedAt string `json:"created_at"`
}

func (t *Twitter) search(ctx context.Context, token string) ([]models.FeedItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.baseURL+"/tweets/search/recent", nil)
	if err != nil {
		return nil, fmt.Errorf("build twitter request: %w", err)
	}

	q := req.URL.Query()
	q.Set("query", twitterQuery)
	q.Set("max_results", "10")
	q.Set("tweet.fields", "created_at,author_id,text")
	req.URL.RawQuery = q.Encode()
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("twitter request: %w", err)
	}
	defer resp.Body.Close()

	// A 429 lands here too; rate-limit rejections fall back to cache like
	// any other failure.
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("twitter responded %s", resp.Status)
	}

	var payload struct {
		Data []tweet `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode twitter response: %w", err)
	}

	items := make([]models.FeedItem, 0, len(payload.Data))
	for _, tw := range payload.Data {
		items = append(items, models.FeedItem{
			Title:       "Tweet: " + truncate(tw.Text, 50) + "...",
			Link:        "https://twitter.com/i/web/status/" + tw.ID,
			Content:     tw.Text,
			PublishedAt: tw.CreatedAt,
			Source:      twitterSource,
		})
	}

	return items, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
