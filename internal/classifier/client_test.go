package classifier_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/feedsift/feedsift/backend/internal/classifier"
	"github.com/feedsift/feedsift/backend/internal/models"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestClassifySuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/filter", r.URL.Path)

		var req struct {
			Text    string `json:"text"`
			Context string `json:"context"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "some headline some body", req.Text)
		require.Equal(t, "keep it high signal", req.Context)

		_, _ = w.Write([]byte(`{"score":0.92,"is_brain_rot":true,"reasoning":"engagement bait"}`))
	}))
	defer srv.Close()

	client := classifier.New(srv.URL, 5*time.Second, discard())

	verdict, err := client.Classify(context.Background(), "some headline some body", "keep it high signal")
	require.NoError(t, err)
	require.Equal(t, models.Classification{Score: 0.92, IsBrainRot: true, Reasoning: "engagement bait"}, verdict)
}

func TestClassifyServiceDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening anymore

	client := classifier.New(srv.URL, time.Second, discard())

	verdict, err := client.Classify(context.Background(), "text", "ctx")
	require.NoError(t, err)
	require.Equal(t, 0.5, verdict.Score)
	require.False(t, verdict.IsBrainRot)
	require.Equal(t, "AI service unavailable", verdict.Reasoning)
}

func TestClassifyServiceError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	client := classifier.New(srv.URL, time.Second, discard())

	verdict, err := client.Classify(context.Background(), "text", "ctx")
	require.NoError(t, err)
	require.Equal(t, 0.5, verdict.Score)
	require.False(t, verdict.IsBrainRot)
}

func TestClassifyMalformedVerdict(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("definitely not json"))
	}))
	defer srv.Close()

	client := classifier.New(srv.URL, time.Second, discard())

	verdict, err := client.Classify(context.Background(), "text", "ctx")
	require.NoError(t, err)
	require.Equal(t, 0.5, verdict.Score)
	require.False(t, verdict.IsBrainRot)
}
