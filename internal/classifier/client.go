// Package classifier talks to the external AI content classifier. The
// service is allowed to be down: every transport-level failure degrades to
// a fixed permissive verdict so an outage means "show everything", never
// "show nothing".
package classifier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/feedsift/feedsift/backend/internal/models"
)

// Client calls the AI service's filter endpoint.
type Client struct {
	url    string
	client *http.Client
	log    *slog.Logger
}

// New creates a client for the AI service at serviceURL.
func New(serviceURL string, timeout time.Duration, log *slog.Logger) *Client {
	return &Client{
		url:    serviceURL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

type filterRequest struct {
	Text    string `json:"text"`
	Context string `json:"context"`
}

// Classify asks the service for a verdict on text, passing the configured
// filter instruction as context. Service downtime, HTTP errors and
// malformed responses all return the permissive fallback with a nil error;
// a non-nil error escapes only when the request cannot even be built.
func (c *Client) Classify(ctx context.Context, text, instruction string) (models.Classification, error) {
	body, err := json.Marshal(filterRequest{Text: text, Context: instruction})
	if err != nil {
		return models.Classification{}, fmt.Errorf("marshal filter request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url+"/filter", bytes.NewReader(body))
	if err != nil {
		return models.Classification{}, fmt.Errorf("build filter request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.log.Warn("AI service unreachable, passing item through", slog.Any("err", err))
		return fallback(), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.log.Warn("AI service error, passing item through", slog.String("status", resp.Status))
		return fallback(), nil
	}

	var verdict models.Classification
	if err := json.NewDecoder(resp.Body).Decode(&verdict); err != nil {
		c.log.Warn("malformed AI verdict, passing item through", slog.Any("err", err))
		return fallback(), nil
	}

	return verdict, nil
}

// fallback is the fixed availability-over-precision verdict: a neutral
// score and no exclusion.
func fallback() models.Classification {
	return models.Classification{
		Score:      0.5,
		IsBrainRot: false,
		Reasoning:  "AI service unavailable",
	}
}
