package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/feedsift/feedsift/backend/internal/config"
)

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	store := config.NewStore(path)

	app := config.App{
		Feeds: []config.FeedConfig{
			{ID: "1", Name: "Hacker News", URL: "https://news.ycombinator.com/rss", Type: "rss"},
		},
		FilterPrompts: config.FilterPrompts{System: "filter out low-value content"},
		Social:        config.Social{Twitter: "token-a", Reddit: "token-b"},
	}

	require.NoError(t, store.Save(app))

	loaded, err := store.Load()
	require.NoError(t, err)
	require.Equal(t, app, loaded)
}

func TestStoreLoadMissingFile(t *testing.T) {
	store := config.NewStore(filepath.Join(t.TempDir(), "absent.json"))

	_, err := store.Load()
	require.Error(t, err)
}

func TestStoreLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "settings.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	_, err := config.NewStore(path).Load()
	require.Error(t, err)
}

func TestAppValidate(t *testing.T) {
	valid := config.App{
		Feeds:         []config.FeedConfig{},
		FilterPrompts: config.FilterPrompts{System: "prompt"},
	}
	require.NoError(t, valid.Validate())

	noFeeds := config.App{FilterPrompts: config.FilterPrompts{System: "prompt"}}
	require.Error(t, noFeeds.Validate())

	noPrompt := config.App{Feeds: []config.FeedConfig{}}
	require.Error(t, noPrompt.Validate())
}
