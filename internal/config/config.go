package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	StagingDir string `toml:"staging_dir"`
	LogDir     string `toml:"log_dir"`
}

// Queue contains configuration for the job queue gateway.
type Queue struct {
	DBPath            string `toml:"db_path"`
	ReceiveWait       int    `toml:"receive_wait"`
	VisibilityTimeout int    `toml:"visibility_timeout"`
	Redrive           bool   `toml:"redrive"`
}

// MatchDB contains configuration for the match document store.
type MatchDB struct {
	URI        string `toml:"uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
	Timeout    int    `toml:"timeout"`
}

// Blob contains configuration for the object storage gateway.
type Blob struct {
	Endpoint      string `toml:"endpoint"`
	AccessKey     string `toml:"access_key"`
	SecretKey     string `toml:"secret_key"`
	Bucket        string `toml:"bucket"`
	Region        string `toml:"region"`
	UseSSL        bool   `toml:"use_ssl"`
	PublicBaseURL string `toml:"public_base_url"`
}

// Fetch contains configuration for the extraction adapter.
type Fetch struct {
	Binary          string   `toml:"binary"`
	PreferredHeight int      `toml:"preferred_height"`
	FallbackHeight  int      `toml:"fallback_height"`
	AttemptTimeout  int      `toml:"attempt_timeout"`
	Retries         int      `toml:"retries"`
	CookiesPath     string   `toml:"cookies_path"`
	CookieHosts     []string `toml:"cookie_hosts"`
	UserAgent       string   `toml:"user_agent"`
	Referer         string   `toml:"referer"`
	PresetHosts     []string `toml:"preset_hosts"`
	QualityPresets  []string `toml:"quality_presets"`
	ProxyEnabled    bool     `toml:"proxy_enabled"`
	ProxyURL        string   `toml:"proxy_url"`
	ProxyTimeout    int      `toml:"proxy_timeout"`
	ProxyRetries    int      `toml:"proxy_retries"`
}

// Merge contains configuration for the video concatenation step.
type Merge struct {
	FFmpegBinary string `toml:"ffmpeg_binary"`
	Timeout      int    `toml:"timeout"`
	Threads      int    `toml:"threads"`
	VideoCodec   string `toml:"video_codec"`
	AudioCodec   string `toml:"audio_codec"`
	Preset       string `toml:"preset"`
}

// Workflow contains configuration for worker loop timing.
type Workflow struct {
	PollSleepSeconds   int `toml:"poll_sleep_seconds"`
	ErrorRetryInterval int `toml:"error_retry_interval"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for matchvault.
//
// Configuration sections by subsystem:
//   - Paths: staging and log directories
//   - Queue: job queue database, receive wait, visibility timeout
//   - MatchDB: MongoDB connection for match records
//   - Blob: S3-compatible object storage for published videos
//   - Fetch: yt-dlp binary, quality tiers, cookies, proxy
//   - Merge: ffmpeg concat settings
//   - Workflow: worker poll cadence
//   - Logging: log format and level
type Config struct {
	Paths    Paths    `toml:"paths"`
	Queue    Queue    `toml:"queue"`
	MatchDB  MatchDB  `toml:"matchdb"`
	Blob     Blob     `toml:"blob"`
	Fetch    Fetch    `toml:"fetch"`
	Merge    Merge    `toml:"merge"`
	Workflow Workflow `toml:"workflow"`
	Logging  Logging  `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/matchvault/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("matchvault.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates required directories for worker operation.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StagingDir, c.Paths.LogDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// QueueDBPath returns the job queue database location, defaulting to a file
// inside the log directory when unset.
func (c *Config) QueueDBPath() string {
	if strings.TrimSpace(c.Queue.DBPath) != "" {
		return c.Queue.DBPath
	}
	return filepath.Join(c.Paths.LogDir, "jobs.db")
}

// ReceiveWait returns the queue long-poll window.
func (c *Config) ReceiveWait() time.Duration {
	return time.Duration(c.Queue.ReceiveWait) * time.Second
}

// VisibilityTimeout returns the window during which a received message stays
// hidden from other consumers.
func (c *Config) VisibilityTimeout() time.Duration {
	return time.Duration(c.Queue.VisibilityTimeout) * time.Second
}

// PollSleep returns the fixed inter-poll sleep of the worker loop.
func (c *Config) PollSleep() time.Duration {
	return time.Duration(c.Workflow.PollSleepSeconds) * time.Second
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
