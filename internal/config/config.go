package config

import (
	"fmt"
	"os"
	"time"
)

// Server holds the environment-driven settings of the API process.
// Everything the pipeline reads per run (feeds, prompts, credentials)
// lives in the settings file instead, see Store.
type Server struct {
	BindAddr        string
	SettingsPath    string
	CacheDir        string
	CacheTTL        time.Duration
	AIServiceURL    string
	FetchTimeout    time.Duration
	ClassifyTimeout time.Duration
}

// LoadServer builds a Server config from environment variables.
func LoadServer() (*Server, error) {
	c := &Server{
		BindAddr:        getEnv("API_BIND_ADDR", "0.0.0.0:3000"),
		SettingsPath:    getEnv("SETTINGS_PATH", "settings.json"),
		CacheDir:        getEnv("CACHE_DIR", "cache"),
		CacheTTL:        getDuration("CACHE_TTL", "15m"),
		AIServiceURL:    getEnv("AI_SERVICE_URL", "http://localhost:8000"),
		FetchTimeout:    getDuration("FETCH_TIMEOUT", "10s"),
		ClassifyTimeout: getDuration("CLASSIFY_TIMEOUT", "30s"),
	}

	if c.CacheTTL <= 0 {
		return nil, fmt.Errorf("CACHE_TTL must be positive")
	}
	if c.FetchTimeout <= 0 {
		return nil, fmt.Errorf("FETCH_TIMEOUT must be positive")
	}
	if c.ClassifyTimeout <= 0 {
		return nil, fmt.Errorf("CLASSIFY_TIMEOUT must be positive")
	}

	return c, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getDuration(key, fallback string) time.Duration {
	raw := getEnv(key, fallback)
	d, err := time.ParseDuration(raw)
	if err != nil {
		fd, ferr := time.ParseDuration(fallback)
		if ferr != nil {
			panic(fmt.Sprintf("invalid fallback duration %q: %v", fallback, ferr))
		}
		return fd
	}
	return d
}
