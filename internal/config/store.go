package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// FeedConfig declares one RSS-type upstream.
type FeedConfig struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	URL  string `json:"url"`
	Type string `json:"type"`
}

// FilterPrompts carries the instruction text handed to the AI classifier.
type FilterPrompts struct {
	System string `json:"system"`
}

// Social holds the optional per-platform credentials. An empty credential
// disables the matching adapter.
type Social struct {
	Twitter string `json:"twitter,omitempty"`
	Reddit  string `json:"reddit,omitempty"`
}

// App is one immutable snapshot of the settings file. The pipeline receives
// it by value once per invocation; updates produce a new snapshot on disk
// rather than mutating anything shared.
type App struct {
	Feeds         []FeedConfig  `json:"feeds"`
	FilterPrompts FilterPrompts `json:"filterPrompts"`
	Social        Social        `json:"social,omitempty"`
}

// Validate rejects snapshots the pipeline could not run against.
func (a App) Validate() error {
	if a.Feeds == nil {
		return fmt.Errorf("feeds must be a list")
	}
	if strings.TrimSpace(a.FilterPrompts.System) == "" {
		return fmt.Errorf("filterPrompts.system cannot be empty")
	}
	return nil
}

// Store reads and writes the settings file. Load failing is the only
// error class allowed to surface to feed consumers.
type Store struct {
	path string
}

// NewStore wires a Store to the settings file at path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load reads the current settings snapshot from disk.
func (s *Store) Load() (App, error) {
	var app App

	data, err := os.ReadFile(s.path)
	if err != nil {
		return app, fmt.Errorf("read settings: %w", err)
	}
	if err := json.Unmarshal(data, &app); err != nil {
		return app, fmt.Errorf("parse settings: %w", err)
	}

	return app, nil
}

// Save replaces the settings file with the given snapshot.
func (s *Store) Save(app App) error {
	data, err := json.MarshalIndent(app, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}
