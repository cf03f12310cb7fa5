package config

import "strings"

// normalize expands filesystem paths and trims free-form string fields so the
// rest of the repository can rely on clean values.
func (c *Config) normalize() error {
	var err error
	if c.Paths.StagingDir, err = expandPath(c.Paths.StagingDir); err != nil {
		return err
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return err
	}
	if strings.TrimSpace(c.Queue.DBPath) != "" {
		if c.Queue.DBPath, err = expandPath(c.Queue.DBPath); err != nil {
			return err
		}
	}
	if strings.TrimSpace(c.Fetch.CookiesPath) != "" {
		if c.Fetch.CookiesPath, err = expandPath(c.Fetch.CookiesPath); err != nil {
			return err
		}
	}

	c.MatchDB.URI = strings.TrimSpace(c.MatchDB.URI)
	c.MatchDB.Database = strings.TrimSpace(c.MatchDB.Database)
	c.MatchDB.Collection = strings.TrimSpace(c.MatchDB.Collection)

	c.Blob.Endpoint = strings.TrimSpace(c.Blob.Endpoint)
	c.Blob.Bucket = strings.TrimSpace(c.Blob.Bucket)
	c.Blob.Region = strings.TrimSpace(c.Blob.Region)
	c.Blob.PublicBaseURL = strings.TrimRight(strings.TrimSpace(c.Blob.PublicBaseURL), "/")

	c.Fetch.Binary = strings.TrimSpace(c.Fetch.Binary)
	c.Fetch.UserAgent = strings.TrimSpace(c.Fetch.UserAgent)
	c.Fetch.Referer = strings.TrimSpace(c.Fetch.Referer)
	c.Fetch.ProxyURL = strings.TrimSpace(c.Fetch.ProxyURL)
	c.Fetch.CookieHosts = normalizeHosts(c.Fetch.CookieHosts)
	c.Fetch.PresetHosts = normalizeHosts(c.Fetch.PresetHosts)
	c.Fetch.QualityPresets = trimAll(c.Fetch.QualityPresets)

	c.Merge.FFmpegBinary = strings.TrimSpace(c.Merge.FFmpegBinary)
	c.Merge.VideoCodec = strings.TrimSpace(c.Merge.VideoCodec)
	c.Merge.AudioCodec = strings.TrimSpace(c.Merge.AudioCodec)
	c.Merge.Preset = strings.TrimSpace(c.Merge.Preset)

	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	return nil
}

func normalizeHosts(hosts []string) []string {
	out := make([]string, 0, len(hosts))
	for _, host := range hosts {
		host = strings.ToLower(strings.TrimSpace(host))
		if host == "" {
			continue
		}
		out = append(out, host)
	}
	return out
}

func trimAll(values []string) []string {
	out := make([]string, 0, len(values))
	for _, value := range values {
		value = strings.TrimSpace(value)
		if value == "" {
			continue
		}
		out = append(out, value)
	}
	return out
}
