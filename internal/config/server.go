package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every server environment variable.
const EnvPrefix = "YTWEB_"

// Server defaults
const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 5067
	DefaultDownloadFolder = "downloads"
	DefaultServerParallel = 2
	DefaultRequestsPerSec = 10
	DefaultBurst          = 20
	DefaultAudioCodec     = "mp3"
	DefaultAudioQuality   = "192"
	DefaultOutputTemplate = "%(title)s.%(ext)s"
)

// FieldError reports an invalid configuration field.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("config: %s %s", e.Field, e.Message)
}

// ServerConfig defines configuration for yt-web-server.
type ServerConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	DownloadFolder string `yaml:"download_folder"`
	// StagingFolder holds in-flight yt-dlp output; defaults to a temp dir
	StagingFolder string `yaml:"staging_folder"`
	// BucketURL overrides DownloadFolder with any gocloud blob URL
	BucketURL           string          `yaml:"bucket_url"`
	MaxParallel         int             `yaml:"max_parallel"`
	Debug               bool            `yaml:"debug"`
	RateLimit           RateLimitConfig `yaml:"rate_limit"`
	ServeBytesPerSecond int64           `yaml:"serve_bytes_per_second"`
	YTDLP               YTDLPConfig     `yaml:"yt_dlp"`
}

// RateLimitConfig bounds API requests per client address. Zero disables it.
type RateLimitConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second"`
	Burst             int     `yaml:"burst"`
}

// YTDLPConfig tunes yt-dlp invocations.
type YTDLPConfig struct {
	FilenameTemplate string `yaml:"filename_template"`
	AudioCodec       string `yaml:"audio_codec"`
	AudioQuality     string `yaml:"audio_quality"`
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Host:           DefaultHost,
		Port:           DefaultPort,
		DownloadFolder: DefaultDownloadFolder,
		StagingFolder:  filepath.Join(os.TempDir(), "yt-web-staging"),
		MaxParallel:    DefaultServerParallel,
		RateLimit: RateLimitConfig{
			RequestsPerSecond: DefaultRequestsPerSec,
			Burst:             DefaultBurst,
		},
		YTDLP: YTDLPConfig{
			FilenameTemplate: DefaultOutputTemplate,
			AudioCodec:       DefaultAudioCodec,
			AudioQuality:     DefaultAudioQuality,
		},
	}
}

// LoadServerConfigFile loads configuration from a YAML file on top of the
// defaults. Keys absent from the file keep their default values.
func LoadServerConfigFile(path string) (ServerConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ServerConfig{}, fmt.Errorf("read config file: %w", err)
	}

	cfg := DefaultServerConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return ServerConfig{}, fmt.Errorf("parse config file: %w", err)
	}
	return cfg, nil
}

// LoadEnvFiles loads .env and then .env.local from dir when present.
// Values from .env never override the real environment; .env.local does.
func LoadEnvFiles(dir string) error {
	base := filepath.Join(dir, ".env")
	if _, err := os.Stat(base); err == nil {
		if err := godotenv.Load(base); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}

	local := filepath.Join(dir, ".env.local")
	if _, err := os.Stat(local); err == nil {
		if err := godotenv.Overload(local); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}

	return nil
}

// ApplyEnv overrides fields from YTWEB_* environment variables.
func (c *ServerConfig) ApplyEnv() error {
	if v := os.Getenv(EnvPrefix + "HOST"); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvPrefix + "PORT"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sPORT: %w", EnvPrefix, err)
		}
		c.Port = n
	}
	if v := os.Getenv(EnvPrefix + "DOWNLOAD_FOLDER"); v != "" {
		c.DownloadFolder = v
	}
	if v := os.Getenv(EnvPrefix + "STAGING_FOLDER"); v != "" {
		c.StagingFolder = v
	}
	if v := os.Getenv(EnvPrefix + "BUCKET_URL"); v != "" {
		c.BucketURL = v
	}
	if v := os.Getenv(EnvPrefix + "MAX_PARALLEL"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sMAX_PARALLEL: %w", EnvPrefix, err)
		}
		c.MaxParallel = n
	}
	if v := os.Getenv(EnvPrefix + "DEBUG"); v != "" {
		c.Debug = v == "true" || v == "1"
	}
	if v := os.Getenv(EnvPrefix + "RATE_LIMIT_RPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse %sRATE_LIMIT_RPS: %w", EnvPrefix, err)
		}
		c.RateLimit.RequestsPerSecond = f
	}
	if v := os.Getenv(EnvPrefix + "RATE_LIMIT_BURST"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse %sRATE_LIMIT_BURST: %w", EnvPrefix, err)
		}
		c.RateLimit.Burst = n
	}
	if v := os.Getenv(EnvPrefix + "SERVE_BYTES_PER_SECOND"); v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("parse %sSERVE_BYTES_PER_SECOND: %w", EnvPrefix, err)
		}
		c.ServeBytesPerSecond = n
	}
	if v := os.Getenv(EnvPrefix + "YTDLP_FILENAME_TEMPLATE"); v != "" {
		c.YTDLP.FilenameTemplate = v
	}
	if v := os.Getenv(EnvPrefix + "YTDLP_AUDIO_CODEC"); v != "" {
		c.YTDLP.AudioCodec = v
	}
	if v := os.Getenv(EnvPrefix + "YTDLP_AUDIO_QUALITY"); v != "" {
		c.YTDLP.AudioQuality = v
	}
	return nil
}

// Validate validates the configuration.
func (c *ServerConfig) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return &FieldError{Field: "port", Message: "must be between 1 and 65535"}
	}
	if c.DownloadFolder == "" && c.BucketURL == "" {
		return errors.New("config: download_folder or bucket_url is required")
	}
	if c.StagingFolder == "" {
		return &FieldError{Field: "staging_folder", Message: "is required"}
	}
	if c.MaxParallel <= 0 {
		return &FieldError{Field: "max_parallel", Message: "must be positive"}
	}
	if c.RateLimit.RequestsPerSecond < 0 {
		return &FieldError{Field: "rate_limit.requests_per_second", Message: "must not be negative"}
	}
	if c.RateLimit.RequestsPerSecond > 0 && c.RateLimit.Burst <= 0 {
		return &FieldError{Field: "rate_limit.burst", Message: "must be positive when rate limiting is enabled"}
	}
	if c.ServeBytesPerSecond < 0 {
		return &FieldError{Field: "serve_bytes_per_second", Message: "must not be negative"}
	}
	return nil
}

// Addr returns the listen address.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
