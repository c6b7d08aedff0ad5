package config

// Switch kinds. Every enabled switch needs a formatter of the same name.
const (
	SwitchVideo   = "video"
	SwitchAudio   = "audio"
	SwitchDanmaku = "danmaku"
	SwitchCover   = "cover"
	SwitchMeta    = "meta"
)

// Kinds lists the known switch kinds in canonical order.
var Kinds = []string{SwitchVideo, SwitchAudio, SwitchDanmaku, SwitchCover, SwitchMeta}

// Audio formats produced by the audio switch.
const (
	AudioFormatM4A  = "m4a"
	AudioFormatFLAC = "flac"
	AudioFormatAIFF = "aiff"
)

const (
	defaultOutputDir      = "."
	defaultCookies        = "bilibili.com_cookies.txt"
	defaultCacheDir       = "~/.cache/bget"
	defaultHeadFile       = "head.json"
	defaultHistoryPath    = "~/.local/share/bget/history.db"
	defaultLogDir         = "~/.local/share/bget/logs"
	defaultChunkSize      = 8192
	defaultRequestTimeout = 30
	defaultItemPause      = 3
	defaultAudioFormat    = AudioFormatM4A
	defaultLogFormat      = "console"
	defaultLogLevel       = "info"
	defaultNotifyTimeout  = 10
)

// Default returns a Config populated with repository defaults. Callers build it
// once and pass it to Resolve; nothing reads defaults from package state.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir:   defaultOutputDir,
			Cookies:     defaultCookies,
			CacheDir:    defaultCacheDir,
			HeadFile:    defaultHeadFile,
			HistoryPath: defaultHistoryPath,
			LogDir:      defaultLogDir,
		},
		Network: Network{
			ChunkSize:      defaultChunkSize,
			RequestTimeout: defaultRequestTimeout,
			ItemPause:      defaultItemPause,
		},
		Switches: []string{SwitchVideo, SwitchDanmaku, SwitchMeta},
		Formatters: map[string]string{
			SwitchAudio:   "av{aid}-{p:0>3d}-{title}.{ext}",
			SwitchVideo:   "av{aid}-{p:0>3d}-{title}.mp4",
			SwitchCover:   "av{aid}.{ext}",
			SwitchDanmaku: "av{aid}-{cid}.xml",
			SwitchMeta:    "av{aid}.json",
		},
		AudioFormat: defaultAudioFormat,
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNotifyTimeout,
		},
	}
}

// clone returns a deep copy so layering never mutates the caller's defaults.
func (c Config) clone() Config {
	out := c
	out.Switches = append([]string(nil), c.Switches...)
	out.Formatters = make(map[string]string, len(c.Formatters))
	for k, v := range c.Formatters {
		out.Formatters[k] = v
	}
	return out
}
