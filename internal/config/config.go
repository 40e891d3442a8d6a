package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gdamore/tcell/v2"
	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/glebovdev/radioalarm/internal/station"
	"gopkg.in/yaml.v3"
)

const (
	AppName           = "Radio Alarm"
	AppTagline        = "Terminal radio alarm clock"
	AppDescription    = "Wakes you up with an internet radio stream"
	AppAuthor         = "Ilya Glebov"
	AppAuthorURLShort = "ilyaglebov.dev"
	AppProjectURL     = "https://github.com/glebovdev/radioalarm"
	AppProjectShort   = "github.com/glebovdev/radioalarm"

	ConfigDir      = ".config/radioalarm"
	ConfigFileName = "config.yml"
	CacheDirName   = "radioalarm"
	DefaultVolume  = 70
	MinVolume      = 0
	MaxVolume      = 100

	// NoAlarmTime marks an alarm hour or minute that was never set.
	NoAlarmTime = alarm.NoTime
)

// ClampVolume ensures volume is within the valid range [0, 100].
func ClampVolume(volume int) int {
	if volume < MinVolume {
		return MinVolume
	}
	if volume > MaxVolume {
		return MaxVolume
	}
	return volume
}

// AppVersion can be overridden at build time using ldflags:
// go build -ldflags "-X github.com/glebovdev/radioalarm/internal/config.AppVersion=1.0.0"
var AppVersion = "dev"

// UserAgent identifies the application on outgoing HTTP requests.
func UserAgent() string {
	return fmt.Sprintf("RadioAlarm/%s", AppVersion)
}

type Theme struct {
	Background       string `yaml:"background"`
	Foreground       string `yaml:"foreground"`
	Borders          string `yaml:"borders"`
	Highlight        string `yaml:"highlight"`
	HeaderBackground string `yaml:"header_background"`
	HelpBackground   string `yaml:"help_background"`
	HelpForeground   string `yaml:"help_foreground"`
	HelpHotkey       string `yaml:"help_hotkey"`
	ModalBackground  string `yaml:"modal_background"`
}

type Config struct {
	Volume       int               `yaml:"volume"`
	RadioURL     string            `yaml:"radio_url"`
	AlarmHour    int               `yaml:"alarm_hour"`
	AlarmMinute  int               `yaml:"alarm_minute"`
	AlarmEnabled bool              `yaml:"alarm_enabled"`
	Autostart    bool              `yaml:"autostart"`
	Listen       string            `yaml:"listen"`
	Stations     []station.Station `yaml:"stations"`
	Theme        Theme             `yaml:"theme"`
}

func GetConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}

	configPath := filepath.Join(home, ConfigDir, ConfigFileName)
	return configPath, nil
}

// GetLogDir returns the platform-specific directory for debug logs.
func GetLogDir() (string, error) {
	userCacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user cache directory: %w", err)
	}
	return filepath.Join(userCacheDir, CacheDirName), nil
}

func Load() (*Config, error) {
	configPath, err := GetConfigPath()
	if err != nil {
		return DefaultConfig(), err
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return DefaultConfig(), fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return DefaultConfig(), fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.normalize()

	return cfg, nil
}

func (c *Config) normalize() {
	c.Volume = ClampVolume(c.Volume)

	if c.AlarmHour < 0 || c.AlarmHour > 23 {
		c.AlarmHour = NoAlarmTime
	}
	if c.AlarmMinute < 0 || c.AlarmMinute > 59 {
		c.AlarmMinute = NoAlarmTime
	}
	if c.AlarmHour == NoAlarmTime {
		c.AlarmEnabled = false
	}
	if c.RadioURL == "" {
		c.RadioURL = station.FM4URL
	}
}

// Save writes the configuration to disk atomically using temp file + rename.
func (c *Config) Save() error {
	configPath, err := GetConfigPath()
	if err != nil {
		return err
	}

	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	tmpFile, err := os.CreateTemp(configDir, ".config-*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	defer func() {
		if tmpPath != "" {
			os.Remove(tmpPath)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, configPath); err != nil {
		return fmt.Errorf("failed to rename config file: %w", err)
	}

	tmpPath = "" // Prevent defer from removing the final file
	return nil
}

func DefaultConfig() *Config {
	return &Config{
		Volume:       DefaultVolume,
		RadioURL:     station.FM4URL,
		AlarmHour:    NoAlarmTime,
		AlarmMinute:  NoAlarmTime,
		AlarmEnabled: false,
		Autostart:    false,
		Listen:       "",
		Stations:     []station.Station{},
		Theme: Theme{
			Background:       "#1a1b25",
			Foreground:       "#a3aacb",
			Borders:          "#40445b",
			Highlight:        "#ff9d65",
			HeaderBackground: "#473533",
			HelpBackground:   "#322f45",
			HelpForeground:   "#9aa3c6",
			HelpHotkey:       "#ff9d65",
			ModalBackground:  "#282a36",
		},
	}
}

// AllStations returns the built-in stations followed by the configured ones.
func (c *Config) AllStations() []station.Station {
	return station.Merge(station.Defaults(), c.Stations)
}

func GetColor(colorStr string) tcell.Color {
	if colorStr == "" || colorStr == "default" {
		return tcell.ColorDefault
	}
	return tcell.GetColor(colorStr)
}
