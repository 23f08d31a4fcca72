package aggregator

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feedsift/feedsift/backend/internal/config"
	"github.com/feedsift/feedsift/backend/internal/models"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type stubRSS struct {
	byName map[string][]models.FeedItem
}

func (s *stubRSS) FetchFeed(_ context.Context, src config.FeedConfig) []models.FeedItem {
	return s.byName[src.Name]
}

type stubSocial struct {
	items []models.FeedItem
}

func (s *stubSocial) Fetch(_ context.Context, _ config.App) []models.FeedItem {
	return s.items
}

// stubClassifier drops every item whose text contains dropMarker and scores
// the rest 0.9.
type stubClassifier struct {
	dropMarker string
	err        error
}

func (s *stubClassifier) Classify(_ context.Context, text, _ string) (models.Classification, error) {
	if s.err != nil {
		return models.Classification{}, s.err
	}
	if s.dropMarker != "" && strings.Contains(text, s.dropMarker) {
		return models.Classification{Score: 0.1, IsBrainRot: true, Reasoning: "low effort"}, nil
	}
	return models.Classification{Score: 0.9, IsBrainRot: false, Reasoning: "high signal"}, nil
}

func snapshot(feeds ...config.FeedConfig) config.App {
	return config.App{
		Feeds:         feeds,
		FilterPrompts: config.FilterPrompts{System: "keep it high signal"},
	}
}

func TestRunSortsByRecencyAbsentOldest(t *testing.T) {
	rss := &stubRSS{byName: map[string][]models.FeedItem{
		"Example": {
			{Title: "middle", PublishedAt: "2020-01-01T00:00:00Z", Source: "Example"},
			{Title: "undated", Source: "Example"},
			{Title: "newest", PublishedAt: "2024-06-01T00:00:00Z", Source: "Example"},
		},
	}}

	p := New(rss, nil, &stubClassifier{}, discard())
	got := p.Run(context.Background(), snapshot(config.FeedConfig{Name: "Example"}))

	require.Len(t, got, 3)
	require.Equal(t, "newest", got[0].Title)
	require.Equal(t, "middle", got[1].Title)
	require.Equal(t, "undated", got[2].Title)
}

func TestRunEndToEnd(t *testing.T) {
	// One healthy feed, one dead feed, one social adapter contributing
	// nothing; the classifier drops exactly one item.
	rss := &stubRSS{byName: map[string][]models.FeedItem{
		"Healthy": {
			{Title: "Solid analysis", PublishedAt: "2024-05-01T00:00:00Z", Source: "Healthy"},
			{Title: "Clickbait listicle", PublishedAt: "2024-05-02T00:00:00Z", Source: "Healthy"},
			{Title: "Field report", PublishedAt: "2024-05-03T00:00:00Z", Source: "Healthy"},
		},
	}}
	social := &stubSocial{}

	p := New(rss, []SocialFetcher{social}, &stubClassifier{dropMarker: "Clickbait"}, discard())
	got := p.Run(context.Background(), snapshot(
		config.FeedConfig{Name: "Healthy"},
		config.FeedConfig{Name: "TimedOut"},
	))

	require.Len(t, got, 2)
	require.Equal(t, "Field report", got[0].Title)
	require.Equal(t, "Solid analysis", got[1].Title)

	for _, item := range got {
		require.NotNil(t, item.Score)
		require.Equal(t, 0.9, *item.Score)
		require.Equal(t, "high signal", item.Reasoning)
	}
}

func TestRunFailsOpenOnClassifierError(t *testing.T) {
	rss := &stubRSS{byName: map[string][]models.FeedItem{
		"Example": {
			{Title: "kept as-is", PublishedAt: "2024-05-01T00:00:00Z", Source: "Example"},
		},
	}}

	p := New(rss, nil, &stubClassifier{err: errors.New("broken pipe")}, discard())
	got := p.Run(context.Background(), snapshot(config.FeedConfig{Name: "Example"}))

	require.Len(t, got, 1)
	require.Nil(t, got[0].Score)
	require.Empty(t, got[0].Reasoning)
}

func TestRunEmptySnapshot(t *testing.T) {
	p := New(&stubRSS{}, nil, &stubClassifier{}, discard())
	got := p.Run(context.Background(), snapshot())

	require.NotNil(t, got)
	require.Empty(t, got)
}

func TestParseWhen(t *testing.T) {
	require.Equal(t, time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), parseWhen("2024-06-01T10:00:00Z"))

	rfc1123 := parseWhen("Mon, 02 Jan 2006 15:04:05 GMT")
	require.False(t, rfc1123.IsZero())
	require.Equal(t, 2006, rfc1123.Year())

	legacy := parseWhen("2024-02-03 04:05:06")
	require.False(t, legacy.IsZero())
	require.Equal(t, 3, legacy.Day())

	require.True(t, parseWhen("").IsZero())
	require.True(t, parseWhen("not a date").IsZero())
}
