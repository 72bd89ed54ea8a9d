package config

const (
	defaultConfigPath      = "~/.config/chorus/config.toml"
	defaultMediaDir        = "~/.local/share/chorus/media"
	defaultStateDir        = "~/.local/share/chorus"
	defaultLogDir          = "~/.local/share/chorus/logs"
	defaultAPIBind         = "127.0.0.1:8000"
	defaultYtDlpBinary     = "yt-dlp"
	defaultFFprobeBinary   = "ffprobe"
	defaultFFmpegBinary    = "ffmpeg"
	defaultURLTemplate     = "https://www.bilibili.com/video/%s"
	defaultAudioFormat     = "mp3"
	defaultAudioQuality    = "128K"
	defaultMinValidBytes   = 1000
	defaultFetchTimeout    = 300
	defaultSampleRate      = 22050
	defaultDuration        = 20.0
	defaultCacheMaxEntries = 10000
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"
	defaultLogRetention    = 30
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			MediaDir: defaultMediaDir,
			StateDir: defaultStateDir,
			LogDir:   defaultLogDir,
			APIBind:  defaultAPIBind,
		},
		Fetch: Fetch{
			YtDlpBinary:    defaultYtDlpBinary,
			FFprobeBinary:  defaultFFprobeBinary,
			URLTemplate:    defaultURLTemplate,
			AudioFormat:    defaultAudioFormat,
			AudioQuality:   defaultAudioQuality,
			MinValidBytes:  defaultMinValidBytes,
			TimeoutSeconds: defaultFetchTimeout,
			VerifyAudio:    true,
		},
		Analysis: Analysis{
			SampleRate:      defaultSampleRate,
			DefaultDuration: defaultDuration,
			FFmpegBinary:    defaultFFmpegBinary,
		},
		ResultCache: ResultCache{
			Enabled:    true,
			MaxEntries: defaultCacheMaxEntries,
		},
		Logging: Logging{
			Format:        defaultLogFormat,
			Level:         defaultLogLevel,
			RetentionDays: defaultLogRetention,
		},
	}
}
