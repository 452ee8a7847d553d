package model

import "time"

// Config holds the complete runtime configuration.
//
// Hierarchy (highest to lowest priority):
//  1. CLI flags
//  2. Environment variables (CARCHECKMATE_*)
//  3. Config file (~/.carcheckmate/config.yaml)
//  4. Defaults
type Config struct {
	OCR         OCRConfig         `yaml:"ocr" mapstructure:"ocr"`
	Extraction  ExtractionConfig  `yaml:"extraction" mapstructure:"extraction"`
	Anomaly     AnomalyConfig     `yaml:"anomaly" mapstructure:"anomaly"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimit   RateLimitConfig   `yaml:"rate_limit" mapstructure:"rate_limit"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	DB          DBConfig          `yaml:"db" mapstructure:"db"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
}

// OCRConfig configures the recognition collaborator.
type OCRConfig struct {
	PageSegMode int      `yaml:"page_seg_mode" mapstructure:"page_seg_mode"` // Tesseract PSM
	DPI         int      `yaml:"dpi" mapstructure:"dpi"`                     // rasterization DPI for PDFs
	Languages   []string `yaml:"languages" mapstructure:"languages"`
}

// ExtractionConfig configures the event segmenter.
type ExtractionConfig struct {
	WindowRadius int `yaml:"window_radius" mapstructure:"window_radius"` // lines before/after an anchor
}

// AnomalyConfig configures the detector suite.
type AnomalyConfig struct {
	MaxMonthsBetweenServices int             `yaml:"max_months_between_services" mapstructure:"max_months_between_services"`
	TrustedGarages           map[string]bool `yaml:"trusted_garages" mapstructure:"trusted_garages"`
}

// CacheConfig configures the per-file summary cache.
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
}

// ConcurrencyConfig configures batch processing.
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitConfig bounds OCR job admission so a batch cannot saturate the
// host with Tesseract processes.
type RateLimitConfig struct {
	JobsPerSecond float64 `yaml:"jobs_per_second" mapstructure:"jobs_per_second"`
	Burst         int     `yaml:"burst" mapstructure:"burst"`
}

// OutputConfig configures artifact generation.
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	SnippetLen int    `yaml:"snippet_len" mapstructure:"snippet_len"` // raw-text snippet bound in the summary
	Verbose    bool   `yaml:"verbose" mapstructure:"verbose"`
}

// DBConfig configures the persistence collaborator. An empty DSN disables
// persistence entirely.
type DBConfig struct {
	DSN string `yaml:"dsn" mapstructure:"dsn"`
}

// ServerConfig configures the upload boundary.
type ServerConfig struct {
	Port      string `yaml:"port" mapstructure:"port"`
	UploadDir string `yaml:"upload_dir" mapstructure:"upload_dir"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		OCR: OCRConfig{
			PageSegMode: 3,
			DPI:         300,
			Languages:   []string{"eng"},
		},
		Extraction: ExtractionConfig{
			WindowRadius: 3,
		},
		Anomaly: AnomalyConfig{
			MaxMonthsBetweenServices: 18,
			TrustedGarages:           DefaultTrustedGarages(),
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimit: RateLimitConfig{
			JobsPerSecond: 2,
			Burst:         4,
		},
		Output: OutputConfig{
			Dir:        "ocr_output",
			SnippetLen: 4000,
		},
		DB: DBConfig{},
		Server: ServerConfig{
			Port:      "8080",
			UploadDir: "uploads",
		},
	}
}

// DefaultTrustedGarages returns the known-authorized service-center
// substrings. Matching is case-insensitive substring containment.
func DefaultTrustedGarages() map[string]bool {
	return map[string]bool{
		"Volkswagen Service":   true,
		"V W Service":          true,
		"Authorized VW Dealer": true,
	}
}
