package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/dgallion1/harvestparse/internal/harvest"
)

type Config struct {
	Port string `yaml:"port"`

	// Auth
	APIKey string `yaml:"api_key"`

	// Parsing
	Species    string `yaml:"species"`
	Verbosity  string `yaml:"verbosity"`
	SampleSize int    `yaml:"sample_size"`

	// Outputs
	OutputDir string `yaml:"output_dir"`
	WriteXLSX bool   `yaml:"write_xlsx"`
	DBPath    string `yaml:"db_path"`

	// Worker pool
	WorkerCount  int `yaml:"worker_count"`
	MaxQueueSize int `yaml:"max_queue_size"`

	// Upload limits
	MaxUploadBytes int64 `yaml:"max_upload_bytes"`

	// Job state
	JobTTL time.Duration `yaml:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `yaml:"pdf_fallback_pdftotext"`
}

func defaults() Config {
	return Config{
		Port:                 "8090",
		Species:              harvest.DefaultSpecies,
		Verbosity:            "normal",
		SampleSize:           harvest.DefaultSampleSize,
		WorkerCount:          1,
		MaxQueueSize:         100,
		MaxUploadBytes:       52428800, // 50MB
		JobTTL:               1 * time.Hour,
		PDFFallbackPdftotext: true,
	}
}

// Load builds the configuration from defaults, then the YAML file named by
// HARVEST_CONFIG (if set), then individual environment variables.
func Load() (Config, error) {
	cfg := defaults()

	if path := os.Getenv("HARVEST_CONFIG"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	cfg.Port = envOr("PORT", cfg.Port)
	cfg.APIKey = envOr("API_KEY", cfg.APIKey)

	cfg.Species = envOr("SPECIES", cfg.Species)
	cfg.Verbosity = envOr("VERBOSITY", cfg.Verbosity)
	cfg.SampleSize = envInt("SAMPLE_SIZE", cfg.SampleSize)

	cfg.OutputDir = envOr("OUTPUT_DIR", cfg.OutputDir)
	cfg.WriteXLSX = envBool("WRITE_XLSX", cfg.WriteXLSX)
	cfg.DBPath = envOr("DB_PATH", cfg.DBPath)

	cfg.WorkerCount = envInt("WORKER_COUNT", cfg.WorkerCount)
	cfg.MaxQueueSize = envInt("MAX_QUEUE_SIZE", cfg.MaxQueueSize)

	cfg.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", cfg.MaxUploadBytes)

	cfg.JobTTL = envDuration("JOB_TTL", cfg.JobTTL)

	cfg.PDFFallbackPdftotext = envBool("PDF_FALLBACK_PDFTOTEXT", cfg.PDFFallbackPdftotext)

	d := defaults()
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = d.WorkerCount
	}
	if cfg.MaxQueueSize <= 0 {
		cfg.MaxQueueSize = d.MaxQueueSize
	}
	if cfg.SampleSize <= 0 {
		cfg.SampleSize = d.SampleSize
	}
	if cfg.MaxUploadBytes <= 0 {
		cfg.MaxUploadBytes = d.MaxUploadBytes
	}
	if cfg.JobTTL <= 0 {
		cfg.JobTTL = d.JobTTL
	}

	return cfg, nil
}

func (c Config) Validate() error {
	if c.Species == "" {
		return fmt.Errorf("SPECIES must not be empty")
	}
	if _, err := harvest.ParseVerbosity(c.Verbosity); err != nil {
		return fmt.Errorf("VERBOSITY: %w", err)
	}
	return nil
}

// ValidateServer adds the checks only the HTTP server needs.
func (c Config) ValidateServer() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY is required")
	}
	return nil
}

// ParserOptions maps the parsing keys onto harvest.Options.
func (c Config) ParserOptions() harvest.Options {
	v, _ := harvest.ParseVerbosity(c.Verbosity)
	return harvest.Options{
		Species:    c.Species,
		Verbosity:  v,
		SampleSize: c.SampleSize,
	}
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

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
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
