// Package board holds the forum-wide configuration consulted while rendering:
// access gates, titles, theme selection and debug output.
package board

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// TitleMode selects how page titles combine the screen title with the site
// name and board title.
type TitleMode int

const (
	// TitleModeBoard renders "title - board".
	TitleModeBoard TitleMode = 0
	// TitleModeSiteFirst renders "site | title - board".
	TitleModeSiteFirst TitleMode = 1
	// TitleModeSiteLast renders "title - board | site", dropping the site name
	// when it equals the board title.
	TitleModeSiteLast TitleMode = 2
)

// Config mirrors the board settings document.
type Config struct {
	BoardTitle     string    `yaml:"board_title" mapstructure:"board_title" json:"board_title"`
	SiteName       string    `yaml:"site_name" mapstructure:"site_name" json:"site_name"`
	Offline        bool      `yaml:"board_offline" mapstructure:"board_offline" json:"board_offline"`
	OfflineMessage string    `yaml:"offline_message" mapstructure:"offline_message" json:"offline_message"`
	RegisteredOnly bool      `yaml:"regonly" mapstructure:"regonly" json:"regonly"`
	PageTitleMode  TitleMode `yaml:"sitename_pagetitles" mapstructure:"sitename_pagetitles" json:"sitename_pagetitles"`
	Debug          bool      `yaml:"debug" mapstructure:"debug" json:"debug"`
	Locale         string    `yaml:"locale" mapstructure:"locale" json:"locale"`
	Theme          string    `yaml:"template" mapstructure:"template" json:"template"`
	ThemeVariant   string    `yaml:"template_variant" mapstructure:"template_variant" json:"template_variant"`
	SiteTemplate   string    `yaml:"site_template" mapstructure:"site_template" json:"site_template"`
	// Root is stripped from template paths in debug markers.
	Root string `yaml:"root" mapstructure:"root" json:"root"`
}

// Default returns the configuration used when no document is supplied.
func Default() Config {
	return Config{
		BoardTitle:     "Forum",
		SiteName:       "Forum",
		OfflineMessage: "<p>The forum is down for maintenance. Please check back soon.</p>",
		PageTitleMode:  TitleModeBoard,
		Locale:         "en-GB",
		Theme:          "default",
	}
}

// Normalize trims string fields and restores defaults for empty required
// values.
func (c Config) Normalize() Config {
	def := Default()
	c.BoardTitle = strings.TrimSpace(c.BoardTitle)
	c.SiteName = strings.TrimSpace(c.SiteName)
	c.Locale = strings.TrimSpace(c.Locale)
	c.Theme = strings.TrimSpace(c.Theme)
	c.ThemeVariant = strings.TrimSpace(c.ThemeVariant)
	c.SiteTemplate = strings.TrimSpace(c.SiteTemplate)
	if c.Locale == "" {
		c.Locale = def.Locale
	}
	if c.Theme == "" {
		c.Theme = def.Theme
	}
	switch c.PageTitleMode {
	case TitleModeBoard, TitleModeSiteFirst, TitleModeSiteLast:
	default:
		c.PageTitleMode = TitleModeBoard
	}
	return c
}

// Load decodes a YAML document on top of Default.
func Load(r io.Reader) (Config, error) {
	if r == nil {
		return Config{}, errors.New("board: reader is required")
	}
	cfg := Default()
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("board: decode config: %w", err)
	}
	return cfg.Normalize(), nil
}

// LoadFile reads a YAML configuration file from disk.
func LoadFile(path string) (Config, error) {
	if strings.TrimSpace(path) == "" {
		return Config{}, errors.New("board: config path is required")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("board: read config: %w", err)
	}
	return Load(bytes.NewReader(data))
}
