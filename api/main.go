package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/feedsift/feedsift/backend/internal/aggregator"
	"github.com/feedsift/feedsift/backend/internal/classifier"
	"github.com/feedsift/feedsift/backend/internal/config"
	"github.com/feedsift/feedsift/backend/internal/feedcache"
	"github.com/feedsift/feedsift/backend/internal/logger"
	"github.com/feedsift/feedsift/backend/internal/models"
	"github.com/feedsift/feedsift/backend/internal/sources"
)

func main() {
	log := logger.New("api")

	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file loaded", slog.Any("err", err))
	}

	cfg, err := config.LoadServer()
	if err != nil {
		log.Error("load config", slog.Any("err", err))
		os.Exit(1)
	}

	store := config.NewStore(cfg.SettingsPath)
	cache := feedcache.NewStore[[]models.FeedItem](cfg.CacheDir, cfg.CacheTTL, log)

	pipeline := aggregator.New(
		sources.NewRSS(cfg.FetchTimeout, log),
		[]aggregator.SocialFetcher{
			sources.NewTwitter(cache, cfg.FetchTimeout, log),
			sources.NewReddit(cache, cfg.FetchTimeout, log),
		},
		classifier.New(cfg.AIServiceURL, cfg.ClassifyTimeout, log),
		log,
	)

	srv := &server{log: log, store: store, pipeline: pipeline}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.Get("/", srv.handleRoot)
	r.Get("/health", srv.handleHealth)
	r.Get("/api/feeds", srv.handleFeeds)
	r.Get("/api/config", srv.handleGetConfig)
	r.Post("/api/config", srv.handleUpdateConfig)

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      2 * time.Minute,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	go func() {
		log.Info("api server starting", slog.String("addr", cfg.BindAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server stopped", slog.Any("err", err))
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	log.Info("shutdown signal received")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown", slog.Any("err", err))
	}
}

type feedProducer interface {
	Run(ctx context.Context, cfg config.App) []models.FeedItem
}

type settingsStore interface {
	Load() (config.App, error)
	Save(config.App) error
}

type server struct {
	log      *slog.Logger
	store    settingsStore
	pipeline feedProducer
}

type errorResponse struct {
	Error string `json:"error"`
}

type feedResponse struct {
	Source string            `json:"source"`
	Items  []models.FeedItem `json:"items"`
}

type updateResponse struct {
	Message string     `json:"message"`
	Config  config.App `json:"config"`
}

func (s *server) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("feedsift backend is running"))
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if _, err := s.store.Load(); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) handleFeeds(w http.ResponseWriter, r *http.Request) {
	// One slow upstream stalls at most its own timeout, but classification
	// of a large batch still takes a while.
	ctx, cancel := context.WithTimeout(r.Context(), 90*time.Second)
	defer cancel()

	cfg, err := s.store.Load()
	if err != nil {
		s.log.Error("load settings", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to fetch feeds"})
		return
	}

	items := s.pipeline.Run(ctx, cfg)
	writeJSON(w, http.StatusOK, feedResponse{Source: "Aggregated", Items: items})
}

func (s *server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	cfg, err := s.store.Load()
	if err != nil {
		s.log.Error("load settings", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to load configuration"})
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (s *server) handleUpdateConfig(w http.ResponseWriter, r *http.Request) {
	var next config.App
	if err := json.NewDecoder(r.Body).Decode(&next); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body"})
		return
	}

	if err := next.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid configuration format"})
		return
	}

	for i := range next.Feeds {
		if strings.TrimSpace(next.Feeds[i].ID) == "" {
			next.Feeds[i].ID = uuid.NewString()
		}
	}

	if err := s.store.Save(next); err != nil {
		s.log.Error("save settings", slog.Any("err", err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "failed to update configuration"})
		return
	}

	writeJSON(w, http.StatusOK, updateResponse{Message: "configuration updated", Config: next})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		// nothing better to do
	}
}
