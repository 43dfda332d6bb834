package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// DefaultVisionEndpoint is the generateContent URL template; the model
// identifier is interpolated into the %s.
const DefaultVisionEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/%s:generateContent"

type Config struct {
	Host               string
	Port               string
	RequestTimeout     time.Duration
	ImageFetchTimeout  time.Duration
	AnalysisTimeout    time.Duration
	MaxRequestBodySize int64

	// Vision endpoint. The API key is the single server-side
	// credential; when it is empty the service runs in local
	// fallback mode only.
	VisionAPIKey   string
	VisionModel    string
	VisionEndpoint string

	// Image gathering
	MaxImagesPerSide int

	// LocalOCREnabled turns on the fallback comparator's label text
	// layer; requires a local tesseract install.
	LocalOCREnabled bool

	// Optional Azure blob source for *.blob.core.windows.net URLs.
	AzureAccountName string
	AzureAccountKey  string
}

func (c *Config) ServerAddress() string {
	host := strings.TrimSpace(c.Host)
	port := strings.TrimSpace(c.Port)
	return net.JoinHostPort(host, port)
}

// VisionConfigured reports whether remote analysis is available.
func (c *Config) VisionConfigured() bool {
	return strings.TrimSpace(c.VisionAPIKey) != ""
}

// AzureConfigured reports whether the blob image source is available.
func (c *Config) AzureConfigured() bool {
	return c.AzureAccountName != "" && c.AzureAccountKey != ""
}

func LoadFromEnv() (*Config, error) {
	// Set defaults
	cfg := &Config{
		Host:               getEnvOrDefault("HOST", "0.0.0.0"),
		Port:               getEnvOrDefault("PORT", "8080"),
		RequestTimeout:     parseDurationOrDefault("REQUEST_TIMEOUT", 60*time.Second),
		ImageFetchTimeout:  parseDurationOrDefault("IMAGE_FETCH_TIMEOUT", 15*time.Second),
		AnalysisTimeout:    parseDurationOrDefault("ANALYSIS_TIMEOUT", 45*time.Second),
		MaxRequestBodySize: parseIntOrDefault("MAX_REQUEST_BODY_SIZE", 32*1024*1024), // 32MB, images are inline
		VisionAPIKey:       os.Getenv("VISION_API_KEY"),
		VisionModel:        getEnvOrDefault("VISION_MODEL", "gemini-1.5-flash"),
		VisionEndpoint:     getEnvOrDefault("VISION_ENDPOINT", DefaultVisionEndpoint),
		MaxImagesPerSide:   int(parseIntOrDefault("MAX_IMAGES_PER_SIDE", 5)),
		LocalOCREnabled:    strings.EqualFold(os.Getenv("LOCAL_OCR_ENABLED"), "true"),
		AzureAccountName:   os.Getenv("AZURE_ACCOUNT_NAME"),
		AzureAccountKey:    os.Getenv("AZURE_ACCOUNT_KEY"),
	}

	// Validate port is numeric and in range
	p, err := strconv.Atoi(strings.TrimSpace(cfg.Port))
	if err != nil || p < 1 || p > 65535 {
		return nil, fmt.Errorf("invalid PORT: %q", cfg.Port)
	}
	if cfg.MaxRequestBodySize <= 0 {
		return nil, fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0 (got %d)", cfg.MaxRequestBodySize)
	}
	if cfg.RequestTimeout <= 0 || cfg.ImageFetchTimeout <= 0 || cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("timeouts must be > 0 (got request=%s, fetch=%s, analysis=%s)",
			cfg.RequestTimeout, cfg.ImageFetchTimeout, cfg.AnalysisTimeout)
	}
	if cfg.MaxImagesPerSide < 1 {
		return nil, fmt.Errorf("MAX_IMAGES_PER_SIDE must be >= 1 (got %d)", cfg.MaxImagesPerSide)
	}
	if !strings.Contains(cfg.VisionEndpoint, "%s") {
		return nil, fmt.Errorf("VISION_ENDPOINT must contain a %%s placeholder for the model identifier")
	}
	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(strings.TrimSpace(value)); err == nil && duration > 0 {
			return duration
		}
	}
	return defaultValue
}

func parseIntOrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}
