package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/dgallion1/docoutline/internal/parser"
)

type Config struct {
	Port string

	// Auth
	OutlineAPIKey string

	LogLevel slog.Level

	// Worker pool
	WorkerCount  int
	MaxQueueSize int

	// Upload limits
	MaxUploadBytes int64

	// Job state and result cache
	JobTTL         time.Duration
	ResultCacheTTL time.Duration

	RateLimitPerMinute int

	// Block sources
	PDFEngine          string
	PDFFallbackEngines []string
	PDFRowTolerance    float64
	DOCXCharsPerPage   int

	// Batch mode
	InputDir     string
	OutputDir    string
	BatchWorkers int
}

// Load reads the environment, after merging a .env file from the working
// directory if one exists. Variables already set take precedence.
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		Port: envOr("PORT", "8090"),

		OutlineAPIKey: os.Getenv("OUTLINE_API_KEY"),

		LogLevel: envLevel("LOG_LEVEL", slog.LevelInfo),

		WorkerCount:  envInt("WORKER_COUNT", 4),
		MaxQueueSize: envInt("MAX_QUEUE_SIZE", 100),

		MaxUploadBytes: envInt64("MAX_UPLOAD_BYTES", 52428800), // 50MB

		JobTTL:         envDuration("JOB_TTL", 1*time.Hour),
		ResultCacheTTL: envDuration("RESULT_CACHE_TTL", 30*time.Minute),

		RateLimitPerMinute: envInt("RATE_LIMIT_PER_MINUTE", 120),

		PDFEngine:          envOr("PDF_ENGINE", parser.EngineLedongthuc),
		PDFFallbackEngines: envList("PDF_FALLBACK_ENGINES", []string{parser.EngineTabula, parser.EngineRSC}),
		PDFRowTolerance:    envFloat("PDF_ROW_TOLERANCE", 2.0),
		DOCXCharsPerPage:   envInt("DOCX_CHARS_PER_PAGE", 3000),

		InputDir:     envOr("INPUT_DIR", "/app/input"),
		OutputDir:    envOr("OUTPUT_DIR", "/app/output"),
		BatchWorkers: envInt("BATCH_WORKERS", 4),
	}

	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = 100
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = 52428800
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = 1 * time.Hour
	}
	if cfg.ResultCacheTTL <= 0 {
		cfg.ResultCacheTTL = 30 * time.Minute
	}
	if cfg.BatchWorkers <= 0 {
		cfg.BatchWorkers = 4
	}

	return cfg
}

// Validate checks settings shared by the server and the CLI.
func (c Config) Validate() error {
	var errs []error
	for _, name := range append([]string{c.PDFEngine}, c.PDFFallbackEngines...) {
		if !parser.IsPDFEngine(name) {
			errs = append(errs, fmt.Errorf("unknown PDF engine %q (want one of %s)",
				name, strings.Join(parser.PDFEngines(), ", ")))
		}
	}
	if c.PDFRowTolerance <= 0 {
		errs = append(errs, fmt.Errorf("PDF_ROW_TOLERANCE must be positive, got %g", c.PDFRowTolerance))
	}
	if c.DOCXCharsPerPage <= 0 {
		errs = append(errs, fmt.Errorf("DOCX_CHARS_PER_PAGE must be positive, got %d", c.DOCXCharsPerPage))
	}
	if c.RateLimitPerMinute < 0 {
		errs = append(errs, fmt.Errorf("RATE_LIMIT_PER_MINUTE must not be negative, got %d", c.RateLimitPerMinute))
	}
	return errors.Join(errs...)
}

// ValidateServer additionally requires the settings only the HTTP service
// needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.OutlineAPIKey == "" {
		return fmt.Errorf("OUTLINE_API_KEY is required")
	}
	return nil
}

// ParserOptions returns the block source settings.
func (c Config) ParserOptions(log *slog.Logger) parser.Options {
	return parser.Options{
		PDFEngine:    c.PDFEngine,
		PDFFallbacks: c.PDFFallbackEngines,
		RowTolerance: c.PDFRowTolerance,
		CharsPerPage: c.DOCXCharsPerPage,
		Logger:       log,
	}
}

// ParseLevel maps debug|info|warn|error to a slog level.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envInt64(key string, fallback int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func envLevel(key string, fallback slog.Level) slog.Level {
	if v := os.Getenv(key); v != "" {
		if l, err := ParseLevel(v); err == nil {
			return l
		}
	}
	return fallback
}

// envList reads a comma-separated list. An explicitly empty value yields an
// empty list.
func envList(key string, fallback []string) []string {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
