package config

import (
	"os"
	"strconv"
	"time"

	"labscope/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Source SourceConfig
	Engine EngineConfig
	Server ServerConfig
}

// SourceKind selects the catalog source adapter
type SourceKind string

const (
	SourceAPI      SourceKind = "api"
	SourcePostgres SourceKind = "postgres"
	SourceWorkbook SourceKind = "workbook"
)

// SourceConfig holds data source settings
type SourceConfig struct {
	Kind         SourceKind
	BaseURL      string
	DatabaseURL  string
	WorkbookPath string
	Timeout      time.Duration
}

// EngineConfig holds the engine's tunable caps and windows
type EngineConfig struct {
	DebounceDelay    time.Duration
	PageSize         int
	BucketWidth      float64
	GroupLimit       int
	CompareLimit     int
	TypeaheadLimit   int
	FetchLimit       int
	VocabConcurrency int64
}

// ServerConfig holds the presentation server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := &Config{
		Source: SourceConfig{
			Kind:         SourceKind(getEnv("SOURCE_KIND", string(SourceAPI))),
			BaseURL:      os.Getenv("SOURCE_BASE_URL"),
			DatabaseURL:  os.Getenv("DATABASE_URL"),
			WorkbookPath: os.Getenv("WORKBOOK_PATH"),
			Timeout:      time.Duration(getEnvInt("SOURCE_TIMEOUT_SECONDS", 15)) * time.Second,
		},
		Engine: EngineConfig{
			DebounceDelay:    time.Duration(getEnvInt("DEBOUNCE_MS", 300)) * time.Millisecond,
			PageSize:         getEnvInt("PAGE_SIZE", 10),
			BucketWidth:      float64(getEnvInt("HISTOGRAM_BUCKET_WIDTH", 500)),
			GroupLimit:       getEnvInt("GROUP_LIMIT", 15),
			CompareLimit:     getEnvInt("COMPARE_LIMIT", 6),
			TypeaheadLimit:   getEnvInt("TYPEAHEAD_LIMIT", 8),
			FetchLimit:       getEnvInt("FETCH_LIMIT", 500),
			VocabConcurrency: int64(getEnvInt("VOCAB_CONCURRENCY", 4)),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Source.Kind {
	case SourceAPI:
		if c.Source.BaseURL == "" {
			return errors.New("CONFIG_MISSING", "SOURCE_BASE_URL is required for the api source")
		}
	case SourcePostgres:
		if c.Source.DatabaseURL == "" {
			return errors.New("CONFIG_MISSING", "DATABASE_URL is required for the postgres source")
		}
	case SourceWorkbook:
		if c.Source.WorkbookPath == "" {
			return errors.New("CONFIG_MISSING", "WORKBOOK_PATH is required for the workbook source")
		}
	default:
		return errors.New("CONFIG_INVALID", "unknown SOURCE_KIND "+string(c.Source.Kind))
	}
	if c.Engine.PageSize <= 0 {
		return errors.New("CONFIG_INVALID", "PAGE_SIZE must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
