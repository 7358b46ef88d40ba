package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"

	"github.com/rs/zerolog/log"
)

const (
	FileName = "config.json"

	DefaultMediaFolder  = "media"
	DefaultCompress     = true
	DefaultTheme        = "light"
	DefaultWindowWidth  = 1400
	DefaultWindowHeight = 900
)

// Themes lists the accepted theme keys in display order.
var Themes = []string{"light", "dark", "calm_green", "deep_ocean", "corporate"}

var ErrUnknownTheme = errors.New("unknown theme")

// Config is the persisted application configuration.
type Config struct {
	MediaFolder     string `json:"media_folder"`
	DefaultCompress bool   `json:"default_compress"`
	Theme           string `json:"theme"`
	WindowWidth     int    `json:"window_width"`
	WindowHeight    int    `json:"window_height"`
}

func Default() *Config {
	return &Config{
		MediaFolder:     DefaultMediaFolder,
		DefaultCompress: DefaultCompress,
		Theme:           DefaultTheme,
		WindowWidth:     DefaultWindowWidth,
		WindowHeight:    DefaultWindowHeight,
	}
}

// Load reads the config document at path. It never fails: a missing or
// unreadable document yields defaults, and missing keys keep their defaults.
func Load(path string) *Config {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn().Str("op", "config/load").Err(err).Msgf("Error reading %s, using defaults", path)
		}
		return cfg
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		log.Warn().Str("op", "config/load").Err(err).Msgf("Error parsing %s, using defaults", path)
		return Default()
	}
	cfg.normalize()
	log.Debug().Str("op", "config/load").Msgf("Config loaded from %s", path)
	return cfg
}

func (c *Config) normalize() {
	if !IsTheme(c.Theme) {
		log.Warn().Str("op", "config/load").Msgf("Unknown theme %q, falling back to %s", c.Theme, DefaultTheme)
		c.Theme = DefaultTheme
	}
	if c.MediaFolder == "" {
		c.MediaFolder = DefaultMediaFolder
	}
	if c.WindowWidth <= 0 {
		c.WindowWidth = DefaultWindowWidth
	}
	if c.WindowHeight <= 0 {
		c.WindowHeight = DefaultWindowHeight
	}
}

// Save writes the whole document with 4-space indentation.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("error creating config directory: %v", err)
	}
	data, err := json.MarshalIndent(c, "", "    ")
	if err != nil {
		return fmt.Errorf("error encoding config: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("error writing config: %v", err)
	}
	log.Debug().Str("op", "config/save").Msgf("Config saved to %s", path)
	return nil
}

func IsTheme(name string) bool {
	return slices.Contains(Themes, name)
}

func (c *Config) SetTheme(name string) error {
	if !IsTheme(name) {
		return fmt.Errorf("%w: %s", ErrUnknownTheme, name)
	}
	c.Theme = name
	return nil
}

func (c *Config) SetMediaFolder(dir string) error {
	if dir == "" {
		return errors.New("media folder cannot be empty")
	}
	c.MediaFolder = dir
	return nil
}

func (c *Config) SetDefaultCompress(enabled bool) {
	c.DefaultCompress = enabled
}

func (c *Config) SetWindowSize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("invalid window size %dx%d", width, height)
	}
	c.WindowWidth = width
	c.WindowHeight = height
	return nil
}

// ResolveMediaFolder returns the absolute media folder, resolving relative
// paths against home.
func (c *Config) ResolveMediaFolder(home string) string {
	folder := c.MediaFolder
	if !filepath.IsAbs(folder) {
		folder = filepath.Join(home, folder)
	}
	if abs, err := filepath.Abs(folder); err == nil {
		return abs
	}
	return folder
}
