// Package config implements application settings persistence
// (appsettings.json, spec.md §6.2) on top of Viper, with live reload via
// fsnotify and CLI-flag overrides via pflag -- the three dependencies the
// teacher's go.mod declares but never imports (backend/go.mod lists
// spf13/viper, spf13/pflag, fsnotify/fsnotify as direct/indirect
// requirements with zero call sites in its source tree).
package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// WindowGeometry is the persisted window position/size (spec.md §6.2).
type WindowGeometry struct {
	X, Y, Width, Height int
}

// Settings mirrors spec.md §6.2's appsettings.json object.
type Settings struct {
	LastUsedProfileID          string
	AutoLoad                   bool
	Theme                      string
	FontSizeScale              float64
	LastScExportProfileName    string
	LastScExportPerEnvironment map[string]string
	Window                     WindowGeometry
	CloseToTray                bool
	TrayIconKind               string
	SlotSilhouetteOverrides    map[string]string // virtual slot id -> device-map key
}

func defaults() Settings {
	return Settings{
		AutoLoad:      true,
		Theme:         "dark",
		FontSizeScale: 1.0,
		TrayIconKind:  "default",
	}
}

// Store wraps a Viper instance bound to appsettings.json, with file
// watching and pflag-sourced overrides (e.g. --theme, --auto-load).
type Store struct {
	v *viper.Viper
}

// New creates a Store rooted at dir (appsettings.json lives at
// <dir>/appsettings.json), registers fs, and binds flags if non-nil so CLI
// overrides take precedence over the file.
func New(dir string, flags *pflag.FlagSet) (*Store, error) {
	v := viper.New()
	v.SetConfigName("appsettings")
	v.SetConfigType("json")
	v.AddConfigPath(dir)

	d := defaults()
	v.SetDefault("autoload", d.AutoLoad)
	v.SetDefault("theme", d.Theme)
	v.SetDefault("fontsizescale", d.FontSizeScale)
	v.SetDefault("trayiconkind", d.TrayIconKind)

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("config: bind flags: %w", err)
		}
		// BindPFlags keys each flag by its own name; the hyphenated flags
		// from Flags are also bound to the settings keys Get reads.
		for key, name := range map[string]string{
			"autoload":      "auto-load",
			"fontsizescale": "font-size-scale",
			"closetotray":   "close-to-tray",
		} {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("config: bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("config: read appsettings.json: %w", err)
		}
		// First run: no settings file yet, defaults stand until Save.
	}

	return &Store{v: v}, nil
}

// Watch registers onChange to be called whenever appsettings.json changes
// on disk, via Viper's fsnotify-backed WatchConfig.
func (s *Store) Watch(onChange func(Settings)) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		onChange(s.Get())
	})
	s.v.WatchConfig()
}

// Get decodes the current settings.
func (s *Store) Get() Settings {
	var out Settings
	out.LastUsedProfileID = s.v.GetString("lastusedprofileid")
	out.AutoLoad = s.v.GetBool("autoload")
	out.Theme = s.v.GetString("theme")
	out.FontSizeScale = s.v.GetFloat64("fontsizescale")
	out.LastScExportProfileName = s.v.GetString("lastscexportprofilename")
	out.LastScExportPerEnvironment = s.v.GetStringMapString("lastscexportperenvironment")
	out.CloseToTray = s.v.GetBool("closetotray")
	out.TrayIconKind = s.v.GetString("trayiconkind")
	out.SlotSilhouetteOverrides = s.v.GetStringMapString("slotsilhouetteoverrides")
	out.Window = WindowGeometry{
		X:      s.v.GetInt("window.x"),
		Y:      s.v.GetInt("window.y"),
		Width:  s.v.GetInt("window.width"),
		Height: s.v.GetInt("window.height"),
	}
	return out
}

// Save writes settings to appsettings.json, creating the file on first run.
func (s *Store) Save(settings Settings) error {
	s.v.Set("lastusedprofileid", settings.LastUsedProfileID)
	s.v.Set("autoload", settings.AutoLoad)
	s.v.Set("theme", settings.Theme)
	s.v.Set("fontsizescale", settings.FontSizeScale)
	s.v.Set("lastscexportprofilename", settings.LastScExportProfileName)
	s.v.Set("lastscexportperenvironment", settings.LastScExportPerEnvironment)
	s.v.Set("closetotray", settings.CloseToTray)
	s.v.Set("trayiconkind", settings.TrayIconKind)
	s.v.Set("slotsilhouetteoverrides", settings.SlotSilhouetteOverrides)
	s.v.Set("window.x", settings.Window.X)
	s.v.Set("window.y", settings.Window.Y)
	s.v.Set("window.width", settings.Window.Width)
	s.v.Set("window.height", settings.Window.Height)

	if err := s.v.WriteConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			return s.v.SafeWriteConfig()
		}
		return fmt.Errorf("config: write appsettings.json: %w", err)
	}
	return nil
}

// Flags registers the CLI flags cmd/asteriqd binds settings overrides to,
// via pflag (declared in the teacher's go.mod, never previously wired).
func Flags(fs *pflag.FlagSet) {
	fs.String("theme", "dark", "UI theme name")
	fs.Bool("auto-load", true, "auto-load the last-used profile on startup")
	fs.Float64("font-size-scale", 1.0, "UI font size scale")
	fs.Bool("close-to-tray", false, "minimize to tray instead of exiting")
}
