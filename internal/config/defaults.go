package config

const (
	defaultStagingDir        = "~/.local/share/matchvault/staging"
	defaultLogDir            = "~/.local/share/matchvault/logs"
	defaultReceiveWait       = 20
	defaultVisibilityTimeout = 900
	defaultMatchDBURI        = "mongodb://localhost:27017"
	defaultMatchDBDatabase   = "matchvault"
	defaultMatchDBCollection = "mergedmatches"
	defaultMatchDBTimeout    = 10
	defaultBlobEndpoint      = "s3.amazonaws.com"
	defaultFetchBinary       = "yt-dlp"
	defaultPreferredHeight   = 1080
	defaultFallbackHeight    = 720
	defaultAttemptTimeout    = 1800
	defaultFetchRetries      = 3
	defaultProxyURL          = "socks5://127.0.0.1:9050"
	defaultProxyTimeout      = 3600
	defaultProxyRetries      = 10
	defaultFFmpegBinary      = "ffmpeg"
	defaultMergeTimeout      = 3600
	defaultMergeThreads      = 4
	defaultVideoCodec        = "libx264"
	defaultAudioCodec        = "aac"
	defaultMergePreset       = "veryfast"
	defaultPollSleepSeconds  = 900
	defaultErrorRetry        = 10
	defaultLogFormat         = "console"
	defaultLogLevel          = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StagingDir: defaultStagingDir,
			LogDir:     defaultLogDir,
		},
		Queue: Queue{
			ReceiveWait:       defaultReceiveWait,
			VisibilityTimeout: defaultVisibilityTimeout,
		},
		MatchDB: MatchDB{
			URI:        defaultMatchDBURI,
			Database:   defaultMatchDBDatabase,
			Collection: defaultMatchDBCollection,
			Timeout:    defaultMatchDBTimeout,
		},
		Blob: Blob{
			Endpoint: defaultBlobEndpoint,
			UseSSL:   true,
		},
		Fetch: Fetch{
			Binary:          defaultFetchBinary,
			PreferredHeight: defaultPreferredHeight,
			FallbackHeight:  defaultFallbackHeight,
			AttemptTimeout:  defaultAttemptTimeout,
			Retries:         defaultFetchRetries,
			PresetHosts:     []string{"ok.ru"},
			QualityPresets:  []string{"ultra", "quad", "full", "hd", "sd", "low"},
			ProxyURL:        defaultProxyURL,
			ProxyTimeout:    defaultProxyTimeout,
			ProxyRetries:    defaultProxyRetries,
		},
		Merge: Merge{
			FFmpegBinary: defaultFFmpegBinary,
			Timeout:      defaultMergeTimeout,
			Threads:      defaultMergeThreads,
			VideoCodec:   defaultVideoCodec,
			AudioCodec:   defaultAudioCodec,
			Preset:       defaultMergePreset,
		},
		Workflow: Workflow{
			PollSleepSeconds:   defaultPollSleepSeconds,
			ErrorRetryInterval: defaultErrorRetry,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
