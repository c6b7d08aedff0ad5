package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"bget/internal/services"
)

// Layer is one table of the config file: the global table or a
// [section.<name>] table. Nil fields are unset and leave earlier layers intact.
type Layer struct {
	ID           *int64            `toml:"id"`
	OutputDir    *string           `toml:"outdir"`
	Cookies      *string           `toml:"cookies"`
	CacheDir     *string           `toml:"cache_dir"`
	HeadFile     *string           `toml:"head_file"`
	HistoryPath  *string           `toml:"history_db"`
	LogDir       *string           `toml:"log_dir"`
	ChunkSize    *int              `toml:"chunk_size"`
	Host         *string           `toml:"host"`
	ItemPause    *int              `toml:"item_pause"`
	Timeout      *int              `toml:"request_timeout"`
	AudioFormat  *string           `toml:"audio_format"`
	Switches     *[]string         `toml:"switches"`
	DropSwitches []string          `toml:"drop_switches"`
	Formatters   map[string]string `toml:"formatter"`
	Logging      *Logging          `toml:"logging"`
	Notify       *Notifications    `toml:"notifications"`
}

// File is a parsed config file: the global layer plus named sections.
type File struct {
	Global   Layer
	Sections map[string]Layer
}

// dashedKeys are the hyphenated spellings used by older bget config files.
// The underscore and [formatter] forms win when both are present.
type dashedKeys struct {
	ChunkSize *int    `toml:"chunk-size"`
	Video     *string `toml:"formatter-video"`
	Audio     *string `toml:"formatter-audio"`
	Danmaku   *string `toml:"formatter-danmaku"`
	Cover     *string `toml:"formatter-cover"`
	Meta      *string `toml:"formatter-meta"`
}

func (d dashedKeys) apply(layer *Layer) {
	if layer.ChunkSize == nil {
		layer.ChunkSize = d.ChunkSize
	}
	templates := map[string]*string{
		SwitchVideo:   d.Video,
		SwitchAudio:   d.Audio,
		SwitchDanmaku: d.Danmaku,
		SwitchCover:   d.Cover,
		SwitchMeta:    d.Meta,
	}
	for kind, template := range templates {
		if template == nil {
			continue
		}
		if _, ok := layer.Formatters[kind]; ok {
			continue
		}
		if layer.Formatters == nil {
			layer.Formatters = make(map[string]string)
		}
		layer.Formatters[kind] = *template
	}
}

// ParseFile decodes TOML config data.
func ParseFile(data []byte) (*File, error) {
	file := &File{}
	if err := toml.Unmarshal(data, &file.Global); err != nil {
		return nil, err
	}
	var tables struct {
		Sections map[string]Layer `toml:"section"`
	}
	if err := toml.Unmarshal(data, &tables); err != nil {
		return nil, err
	}
	file.Sections = tables.Sections

	var global dashedKeys
	if err := toml.Unmarshal(data, &global); err != nil {
		return nil, err
	}
	global.apply(&file.Global)
	var dashed struct {
		Sections map[string]dashedKeys `toml:"section"`
	}
	if err := toml.Unmarshal(data, &dashed); err != nil {
		return nil, err
	}
	for name, keys := range dashed.Sections {
		layer := file.Sections[name]
		keys.apply(&layer)
		file.Sections[name] = layer
	}
	return file, nil
}

// Section returns the named section layer.
func (f *File) Section(name string) (Layer, bool) {
	if f == nil || f.Sections == nil {
		return Layer{}, false
	}
	layer, ok := f.Sections[name]
	return layer, ok
}

// LookupSection returns the collection id configured for a section.
func (f *File) LookupSection(name string) (int64, bool) {
	layer, ok := f.Section(strings.TrimSpace(name))
	if !ok || layer.ID == nil {
		return 0, false
	}
	return *layer.ID, true
}

// SectionNames lists configured sections in lexical order.
func (f *File) SectionNames() []string {
	if f == nil {
		return nil
	}
	names := make([]string, 0, len(f.Sections))
	for name := range f.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Overrides carries command-line values. Scalar pointers are set only when the
// flag was explicitly supplied; the booleans edit the switch set.
type Overrides struct {
	OutputDir *string
	Cookies   *string
	ChunkSize *int
	Host      *string
	HeadFile  *string

	NoMeta    bool
	NoDanmaku bool
	AudioOnly bool
	WithCover bool
}

// Resolve merges defaults, the file's global table, the optional section
// table, and command-line overrides, in that order, then normalizes and
// validates the result.
func Resolve(defaults Config, file *File, section string, overrides Overrides) (*Config, error) {
	cfg := defaults.clone()
	cfg.applyEnvironment()

	if file != nil {
		cfg.applyGlobal(file.Global)
	}

	if section = strings.TrimSpace(section); section != "" {
		layer, ok := file.Section(section)
		if !ok {
			return nil, services.Wrap(services.ErrConfiguration, "config", "section", fmt.Sprintf("section %q not found", section), nil)
		}
		cfg.applySection(layer)
	}

	cfg.applyOverrides(overrides)

	if err := cfg.normalize(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "normalize", "", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "config", "validate", "", err)
	}
	return &cfg, nil
}

// applyEnvironment lets BGET_COOKIES stand in for the built-in credentials
// path; any file or command-line value still wins.
func (c *Config) applyEnvironment() {
	if value, ok := os.LookupEnv("BGET_COOKIES"); ok && strings.TrimSpace(value) != "" {
		c.Paths.Cookies = strings.TrimSpace(value)
	}
}

func (c *Config) applyGlobal(layer Layer) {
	c.applyScalars(layer)
	if layer.Switches != nil {
		c.Switches = normalizeSwitches(*layer.Switches)
	}
	c.Switches = removeSwitches(c.Switches, layer.DropSwitches...)
}

func (c *Config) applySection(layer Layer) {
	c.applyScalars(layer)
	if layer.Switches != nil {
		c.Switches = addSwitches(c.Switches, *layer.Switches...)
	}
	c.Switches = removeSwitches(c.Switches, layer.DropSwitches...)
}

func (c *Config) applyScalars(layer Layer) {
	setString(&c.Paths.OutputDir, layer.OutputDir)
	setString(&c.Paths.Cookies, layer.Cookies)
	setString(&c.Paths.CacheDir, layer.CacheDir)
	setString(&c.Paths.HeadFile, layer.HeadFile)
	setString(&c.Paths.HistoryPath, layer.HistoryPath)
	setString(&c.Paths.LogDir, layer.LogDir)
	setString(&c.Network.Host, layer.Host)
	setString(&c.AudioFormat, layer.AudioFormat)
	setInt(&c.Network.ChunkSize, layer.ChunkSize)
	setInt(&c.Network.ItemPause, layer.ItemPause)
	setInt(&c.Network.RequestTimeout, layer.Timeout)
	for kind, template := range layer.Formatters {
		c.Formatters[strings.ToLower(strings.TrimSpace(kind))] = template
	}
	if layer.Logging != nil {
		if layer.Logging.Format != "" {
			c.Logging.Format = layer.Logging.Format
		}
		if layer.Logging.Level != "" {
			c.Logging.Level = layer.Logging.Level
		}
	}
	if layer.Notify != nil {
		if layer.Notify.NtfyTopic != "" {
			c.Notifications.NtfyTopic = layer.Notify.NtfyTopic
		}
		if layer.Notify.RequestTimeout > 0 {
			c.Notifications.RequestTimeout = layer.Notify.RequestTimeout
		}
	}
}

func (c *Config) applyOverrides(o Overrides) {
	setString(&c.Paths.OutputDir, o.OutputDir)
	setString(&c.Paths.Cookies, o.Cookies)
	setString(&c.Paths.HeadFile, o.HeadFile)
	setString(&c.Network.Host, o.Host)
	setInt(&c.Network.ChunkSize, o.ChunkSize)

	if o.NoMeta {
		c.Switches = removeSwitches(c.Switches, SwitchMeta)
	}
	if o.NoDanmaku {
		c.Switches = removeSwitches(c.Switches, SwitchDanmaku)
	}
	if o.WithCover {
		c.Switches = addSwitches(c.Switches, SwitchCover)
	}
	if o.AudioOnly {
		c.Switches = addSwitches(c.Switches, SwitchAudio)
		c.Switches = removeSwitches(c.Switches, SwitchVideo)
	}
}

func setString(dst *string, value *string) {
	if value != nil {
		*dst = *value
	}
}

func setInt(dst *int, value *int) {
	if value != nil {
		*dst = *value
	}
}
