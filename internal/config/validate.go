package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateQueue(); err != nil {
		return err
	}
	if err := c.validateMatchDB(); err != nil {
		return err
	}
	if err := c.validateBlob(); err != nil {
		return err
	}
	if err := c.validateFetch(); err != nil {
		return err
	}
	if err := c.validateMerge(); err != nil {
		return err
	}
	if err := c.validateWorkflow(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateQueue() error {
	if c.Queue.ReceiveWait <= 0 {
		return errors.New("queue.receive_wait must be positive")
	}
	if c.Queue.VisibilityTimeout <= 0 {
		return errors.New("queue.visibility_timeout must be positive")
	}
	if c.Queue.VisibilityTimeout <= c.Queue.ReceiveWait {
		return errors.New("queue.visibility_timeout must be greater than queue.receive_wait")
	}
	return nil
}

func (c *Config) validateMatchDB() error {
	if c.MatchDB.URI == "" {
		return errors.New("matchdb.uri must be set")
	}
	if c.MatchDB.Database == "" {
		return errors.New("matchdb.database must be set")
	}
	if c.MatchDB.Collection == "" {
		return errors.New("matchdb.collection must be set")
	}
	if c.MatchDB.Timeout <= 0 {
		return errors.New("matchdb.timeout must be positive")
	}
	return nil
}

func (c *Config) validateBlob() error {
	if c.Blob.Endpoint == "" {
		return errors.New("blob.endpoint must be set")
	}
	if c.Blob.Bucket == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = "~/.config/matchvault/config.toml"
		}
		return fmt.Errorf("blob.bucket is required; edit %s (create with 'matchvault config init')", defaultPath)
	}
	return nil
}

func (c *Config) validateFetch() error {
	if c.Fetch.Binary == "" {
		return errors.New("fetch.binary must be set")
	}
	if err := ensurePositiveMap(map[string]int{
		"fetch.preferred_height": c.Fetch.PreferredHeight,
		"fetch.fallback_height":  c.Fetch.FallbackHeight,
		"fetch.attempt_timeout":  c.Fetch.AttemptTimeout,
		"fetch.retries":          c.Fetch.Retries,
	}); err != nil {
		return err
	}
	if c.Fetch.FallbackHeight >= c.Fetch.PreferredHeight {
		return errors.New("fetch.fallback_height must be lower than fetch.preferred_height")
	}
	if len(c.Fetch.PresetHosts) > 0 && len(c.Fetch.QualityPresets) == 0 {
		return errors.New("fetch.quality_presets must be set when fetch.preset_hosts is configured")
	}
	if len(c.Fetch.CookieHosts) > 0 && c.Fetch.CookiesPath == "" {
		return errors.New("fetch.cookies_path must be set when fetch.cookie_hosts is configured")
	}
	if c.Fetch.ProxyEnabled {
		if c.Fetch.ProxyURL == "" {
			return errors.New("fetch.proxy_url must be set when fetch.proxy_enabled is true")
		}
		if err := ensurePositiveMap(map[string]int{
			"fetch.proxy_timeout": c.Fetch.ProxyTimeout,
			"fetch.proxy_retries": c.Fetch.ProxyRetries,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateMerge() error {
	if c.Merge.FFmpegBinary == "" {
		return errors.New("merge.ffmpeg_binary must be set")
	}
	return ensurePositiveMap(map[string]int{
		"merge.timeout": c.Merge.Timeout,
		"merge.threads": c.Merge.Threads,
	})
}

func (c *Config) validateWorkflow() error {
	return ensurePositiveMap(map[string]int{
		"workflow.poll_sleep_seconds":   c.Workflow.PollSleepSeconds,
		"workflow.error_retry_interval": c.Workflow.ErrorRetryInterval,
	})
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: unsupported value %q", c.Logging.Format)
	}
	return nil
}

func ensurePositiveMap(values map[string]int) error {
	for name, value := range values {
		if value <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
