// Package aggregator orchestrates the fan-out/fan-in that produces the
// final feed: fetch every source concurrently, classify every collected
// item concurrently, drop the low-value ones, sort by recency.
package aggregator

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/feedsift/feedsift/backend/internal/config"
	"github.com/feedsift/feedsift/backend/internal/models"
	"github.com/feedsift/feedsift/backend/internal/processing"
)

// FeedFetcher pulls one configured RSS feed. Implementations absorb their
// own failures and return nothing.
type FeedFetcher interface {
	FetchFeed(ctx context.Context, src config.FeedConfig) []models.FeedItem
}

// SocialFetcher pulls one social platform, deciding from the snapshot
// whether it is enabled at all.
type SocialFetcher interface {
	Fetch(ctx context.Context, cfg config.App) []models.FeedItem
}

// Classifier delivers a verdict on one item's text.
type Classifier interface {
	Classify(ctx context.Context, text, instruction string) (models.Classification, error)
}

// Pipeline wires the adapters and the classifier into one operation.
type Pipeline struct {
	rss      FeedFetcher
	social   []SocialFetcher
	classify Classifier
	log      *slog.Logger
}

// New assembles a Pipeline.
func New(rss FeedFetcher, social []SocialFetcher, classify Classifier, log *slog.Logger) *Pipeline {
	return &Pipeline{rss: rss, social: social, classify: classify, log: log}
}

// Run produces the aggregated, filtered feed for one config snapshot,
// sorted by recency descending. It never fails: broken sources contribute
// nothing and classifier trouble keeps items instead of dropping them.
func (p *Pipeline) Run(ctx context.Context, cfg config.App) []models.FeedItem {
	collected := p.collect(ctx, cfg)
	p.log.Debug("sources collected", slog.Int("items", len(collected)))

	kept := p.filter(ctx, cfg, collected)
	p.log.Debug("classification done", slog.Int("kept", len(kept)), slog.Int("dropped", len(collected)-len(kept)))

	sortByRecency(kept)
	return kept
}

// collect fans out one fetch per configured feed plus one per social
// adapter and joins them all. Order of arrival is not significant; the
// final sort establishes ordering.
func (p *Pipeline) collect(ctx context.Context, cfg config.App) []models.FeedItem {
	var (
		mu    sync.Mutex
		wg    sync.WaitGroup
		items []models.FeedItem
	)

	add := func(batch []models.FeedItem) {
		mu.Lock()
		items = append(items, batch...)
		mu.Unlock()
	}

	for _, feed := range cfg.Feeds {
		wg.Add(1)
		go func(feed config.FeedConfig) {
			defer wg.Done()
			add(p.rss.FetchFeed(ctx, feed))
		}(feed)
	}

	for _, social := range p.social {
		wg.Add(1)
		go func(social SocialFetcher) {
			defer wg.Done()
			add(social.Fetch(ctx, cfg))
		}(social)
	}

	wg.Wait()
	return items
}

// filter classifies all items concurrently. Verdict IsBrainRot drops the
// item; a successful verdict attaches score and reasoning; a failed
// classification call keeps the item untouched. Fail open, never closed.
func (p *Pipeline) filter(ctx context.Context, cfg config.App, items []models.FeedItem) []models.FeedItem {
	if len(items) == 0 {
		return []models.FeedItem{}
	}

	results := make([]*models.FeedItem, len(items))

	var wg sync.WaitGroup
	for i := range items {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()

			item := items[i]
			text := processing.ClassificationText(item.Title, item.Content)

			verdict, err := p.classify.Classify(ctx, text, cfg.FilterPrompts.System)
			if err != nil {
				p.log.Warn("classification call failed, keeping item", slog.Any("err", err))
				results[i] = &item
				return
			}

			if verdict.IsBrainRot {
				p.log.Debug("filtered out item", slog.String("title", item.Title))
				return
			}

			score := verdict.Score
			item.Score = &score
			item.Reasoning = verdict.Reasoning
			results[i] = &item
		}(i)
	}
	wg.Wait()

	kept := make([]models.FeedItem, 0, len(items))
	for _, r := range results {
		if r != nil {
			kept = append(kept, *r)
		}
	}
	return kept
}

// sortByRecency orders newest first. Ties keep arrival order.
func sortByRecency(items []models.FeedItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return parseWhen(items[i].PublishedAt).After(parseWhen(items[j].PublishedAt))
	})
}

// parseWhen interprets the loose timestamp strings upstreams emit. Absent
// or unparseable values come back as the zero time and sort oldest.
func parseWhen(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}
	}

	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		time.RFC1123Z,
		time.RFC1123,
		"2006-01-02 15:04:05",
	}

	for _, f := range formats {
		if ts, err := time.Parse(f, raw); err == nil {
			return ts
		}
	}

	return time.Time{}
}
