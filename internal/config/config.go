package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/dmorgan81/seedream/internal/request"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is read once at startup and never modified afterwards.
type Config struct {
	APIToken      string
	APITokenParam string
	ModelVersion  request.Version
	LogLevel      string
	// MaxConcurrent is declared for operators but no scheduling enforces it.
	MaxConcurrent  int
	RequestTimeout time.Duration
	OutputDir      string

	S3Bucket     string
	S3Prefix     string
	Distribution string
}

type Options struct {
	EnvFile string
}

func Load(opts Options) (*Config, error) {
	if opts.EnvFile != "" {
		_ = godotenv.Load(opts.EnvFile)
	} else {
		_ = godotenv.Load()
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	timeout, err := parseTimeout(v.GetString("seedream_request_timeout"))
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		APIToken:       strings.TrimSpace(v.GetString("replicate_api_token")),
		APITokenParam:  strings.TrimSpace(v.GetString("replicate_api_token_param")),
		ModelVersion:   request.Version(strings.ToLower(strings.TrimSpace(v.GetString("seedream_model_version")))),
		LogLevel:       v.GetString("seedream_log_level"),
		MaxConcurrent:  v.GetInt("seedream_max_concurrent"),
		RequestTimeout: timeout,
		OutputDir:      v.GetString("seedream_output_dir"),
		S3Bucket:       strings.TrimSpace(v.GetString("seedream_s3_bucket")),
		S3Prefix:       strings.Trim(v.GetString("seedream_s3_prefix"), "/"),
		Distribution:   strings.TrimSpace(v.GetString("seedream_cloudfront_distribution")),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the process cannot start with. A missing API token is
// not one of them: the server runs degraded and reports it on every call.
func (c *Config) Validate() error {
	if _, err := request.ForVersion(c.ModelVersion); err != nil {
		return fmt.Errorf("SEEDREAM_MODEL_VERSION: %w", err)
	}
	if c.MaxConcurrent < 1 {
		return fmt.Errorf("SEEDREAM_MAX_CONCURRENT must be positive, got %d", c.MaxConcurrent)
	}
	if c.RequestTimeout <= 0 {
		return errors.New("SEEDREAM_REQUEST_TIMEOUT must be positive")
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return errors.New("SEEDREAM_OUTPUT_DIR is required")
	}
	return nil
}

func (c *Config) HasCredential() bool {
	return c.APIToken != "" || c.APITokenParam != ""
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("replicate_api_token", "")
	v.SetDefault("replicate_api_token_param", "")
	v.SetDefault("seedream_model_version", string(request.V4))
	v.SetDefault("seedream_log_level", "info")
	v.SetDefault("seedream_max_concurrent", 1)
	v.SetDefault("seedream_request_timeout", "300s")
	v.SetDefault("seedream_output_dir", "./generated_images")
	v.SetDefault("seedream_s3_bucket", "")
	v.SetDefault("seedream_s3_prefix", "seedream")
	v.SetDefault("seedream_cloudfront_distribution", "")
}

// parseTimeout accepts a Go duration ("90s") or a bare number of milliseconds.
func parseTimeout(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if ms, err := strconv.Atoi(raw); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("SEEDREAM_REQUEST_TIMEOUT: %w", err)
	}
	return d, nil
}
