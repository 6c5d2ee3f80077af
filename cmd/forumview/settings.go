package main

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/goliatone/go-forumview/pkg/board"
)

// settings is the merged result of defaults, config file, FORUMVIEW_*
// environment variables and flags, in increasing precedence.
type settings struct {
	Config    string `mapstructure:"config"`
	BoardFile string `mapstructure:"board"`
	Screen    string `mapstructure:"screen"`
	Layout    string `mapstructure:"layout"`
	Template  string `mapstructure:"tpl"`
	Theme     string `mapstructure:"theme"`
	Variant   string `mapstructure:"variant"`
	ThemesDir string `mapstructure:"themes-dir"`
	Templates string `mapstructure:"templates-dir"`
	Data      string `mapstructure:"data"`
	Output    string `mapstructure:"output"`
	Serve     string `mapstructure:"serve"`
	LogLevel  string `mapstructure:"log-level"`
	Embedded  bool   `mapstructure:"embedded"`
	Teaser    bool   `mapstructure:"teaser"`
	Profile   bool   `mapstructure:"profile"`

	Forum board.Config `mapstructure:"forum"`
}

func newFlagSet() *pflag.FlagSet {
	flagSet := pflag.NewFlagSet("forumview", pflag.ContinueOnError)
	flagSet.StringP("config", "c", "", "settings file (yaml)")
	flagSet.String("board", "", "board configuration file (yaml); replaces the forum section of --config")
	flagSet.StringP("screen", "s", "", "screen to render (prompted when empty on a terminal)")
	flagSet.StringP("layout", "l", "", "layout of the screen")
	flagSet.String("tpl", "", "sub-template appended to the layout")
	flagSet.String("theme", "", "theme override")
	flagSet.String("variant", "", "theme variant override")
	flagSet.String("themes-dir", "", "directory of theme manifests (*.yaml)")
	flagSet.String("templates-dir", "", "template tree replacing the embedded themes")
	flagSet.String("data", "", "screen data file (yaml)")
	flagSet.StringP("output", "o", "", "output file (stdout if empty)")
	flagSet.String("serve", "", "serve screens over HTTP on this address instead of rendering once")
	flagSet.String("log-level", "info", "log level: debug, info, warn, error")
	flagSet.Bool("embedded", false, "render as embedded in another page")
	flagSet.Bool("teaser", false, "render as a teaser for guests")
	flagSet.Bool("profile", false, "log profiler spans")
	flagSet.BoolP("help", "h", false, "show help")
	return flagSet
}

func loadSettings(flagSet *pflag.FlagSet) (settings, error) {
	v := viper.New()

	def := board.Default()
	v.SetDefault("forum.board_title", def.BoardTitle)
	v.SetDefault("forum.site_name", def.SiteName)
	v.SetDefault("forum.board_offline", def.Offline)
	v.SetDefault("forum.offline_message", def.OfflineMessage)
	v.SetDefault("forum.regonly", def.RegisteredOnly)
	v.SetDefault("forum.sitename_pagetitles", int(def.PageTitleMode))
	v.SetDefault("forum.debug", def.Debug)
	v.SetDefault("forum.locale", def.Locale)
	v.SetDefault("forum.template", def.Theme)
	v.SetDefault("forum.template_variant", def.ThemeVariant)
	v.SetDefault("forum.site_template", def.SiteTemplate)
	v.SetDefault("forum.root", def.Root)

	if err := v.BindPFlags(flagSet); err != nil {
		return settings{}, fmt.Errorf("bind flags: %w", err)
	}

	v.SetEnvPrefix("FORUMVIEW")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path := v.GetString("config"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return settings{}, fmt.Errorf("read config: %w", err)
		}
	}

	var s settings
	if err := v.Unmarshal(&s); err != nil {
		return settings{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if s.BoardFile != "" {
		cfg, err := board.LoadFile(s.BoardFile)
		if err != nil {
			return settings{}, err
		}
		s.Forum = cfg
	}
	s.Forum = s.Forum.Normalize()
	return s, nil
}

func parseLevel(raw string) slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(raw))); err != nil {
		return slog.LevelInfo
	}
	return level
}
