package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"folio.dev/internal/models"
)

// Config holds all application configuration
type Config struct {
	ServerAddr      string
	DataPath        string
	StaticPath      string
	ContentFile     string
	Dev             bool
	LogLevel        string
	ShutdownTimeout time.Duration
	FrameInterval   time.Duration
	Analytics       AnalyticsConfig
	Perf            PerfConfig
	Scene           SceneConfig
}

// AnalyticsConfig holds telemetry egress settings. An empty Endpoint
// disables forwarding.
type AnalyticsConfig struct {
	Endpoint string
	Buffer   int
	Timeout  time.Duration
}

// PerfConfig holds performance sampler settings
type PerfConfig struct {
	Interval time.Duration
}

// SceneConfig holds 3D scene defaults
type SceneConfig struct {
	Tier          string
	MaxRestores   int
	RestoreWindow time.Duration
}

// Load reads configuration from environment variables.
// A .env file is auto-loaded by the command via godotenv/autoload; real
// environment variables take precedence.
func Load() *Config {
	dataPath := getEnv("DATA_PATH", "data")
	return &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		DataPath:        dataPath,
		StaticPath:      getEnv("STATIC_PATH", "static"),
		ContentFile:     getEnv("CONTENT_FILE", filepath.Join(dataPath, "content.yaml")),
		Dev:             getEnvBool("DEV", false),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		FrameInterval:   getEnvDuration("FRAME_INTERVAL", 16*time.Millisecond),
		Analytics: AnalyticsConfig{
			Endpoint: getEnv("ANALYTICS_ENDPOINT", ""),
			Buffer:   getEnvInt("ANALYTICS_BUFFER", 256),
			Timeout:  getEnvDuration("ANALYTICS_TIMEOUT", 5*time.Second),
		},
		Perf: PerfConfig{
			Interval: getEnvDuration("PERF_INTERVAL", 15*time.Second),
		},
		Scene: SceneConfig{
			Tier:          getEnv("SCENE_TIER", "medium"),
			MaxRestores:   getEnvInt("SCENE_MAX_RESTORES", 3),
			RestoreWindow: getEnvDuration("SCENE_RESTORE_WINDOW", 30*time.Second),
		},
	}
}

// LoadCatalog reads and parses the content file
func LoadCatalog(path string) (*models.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var catalog models.Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return &catalog, nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		i, err := strconv.Atoi(v)
		if err == nil {
			return i
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err == nil {
			return d
		}
	}
	return def
}
