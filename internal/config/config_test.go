package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/glebovdev/radioalarm/internal/station"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Volume != DefaultVolume {
		t.Errorf("DefaultConfig().Volume = %d, want %d", cfg.Volume, DefaultVolume)
	}

	if cfg.RadioURL != station.FM4URL {
		t.Errorf("DefaultConfig().RadioURL = %q, want %q", cfg.RadioURL, station.FM4URL)
	}

	if cfg.AlarmHour != NoAlarmTime || cfg.AlarmMinute != NoAlarmTime {
		t.Errorf("DefaultConfig() alarm = %d:%d, want unset", cfg.AlarmHour, cfg.AlarmMinute)
	}

	if cfg.AlarmEnabled {
		t.Error("DefaultConfig().AlarmEnabled = true, want false")
	}

	if cfg.Autostart != false {
		t.Errorf("DefaultConfig().Autostart = %v, want false", cfg.Autostart)
	}
}

func TestConfigSaveAndLoad(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	testCfg := DefaultConfig()
	testCfg.Volume = 85
	testCfg.RadioURL = station.BBC6MusicURL
	testCfg.AlarmHour = 7
	testCfg.AlarmMinute = 30
	testCfg.AlarmEnabled = true

	err := testCfg.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	configPath := filepath.Join(tmpDir, ConfigDir, ConfigFileName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		t.Fatalf("Config file was not created at %s", configPath)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loadedCfg.Volume != testCfg.Volume {
		t.Errorf("Load().Volume = %d, want %d", loadedCfg.Volume, testCfg.Volume)
	}

	if loadedCfg.RadioURL != testCfg.RadioURL {
		t.Errorf("Load().RadioURL = %q, want %q", loadedCfg.RadioURL, testCfg.RadioURL)
	}

	if loadedCfg.AlarmHour != 7 || loadedCfg.AlarmMinute != 30 || !loadedCfg.AlarmEnabled {
		t.Errorf("Load() alarm = %d:%d enabled=%v, want 7:30 enabled",
			loadedCfg.AlarmHour, loadedCfg.AlarmMinute, loadedCfg.AlarmEnabled)
	}
}

func TestLoadNonExistentConfig(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	cfg, err := Load()
	if err != nil {
		t.Logf("Load() error (expected): %v", err)
	}

	if cfg.Volume != DefaultVolume {
		t.Errorf("Load() with non-existent file returned Volume = %d, want %d", cfg.Volume, DefaultVolume)
	}

	if cfg.AlarmHour != NoAlarmTime {
		t.Errorf("Load() with non-existent file returned AlarmHour = %d, want %d", cfg.AlarmHour, NoAlarmTime)
	}
}

func TestVolumeValidation(t *testing.T) {
	tests := []struct {
		name           string
		inputVolume    int
		expectedVolume int
	}{
		{"valid volume 50", 50, 50},
		{"valid volume 0", 0, 0},
		{"valid volume 100", 100, 100},
		{"negative volume", -10, 0},
		{"volume over 100", 150, 100},
		{"volume way over 100", 1000, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("HOME", tmpDir)

			testCfg := DefaultConfig()
			testCfg.Volume = tt.inputVolume

			err := testCfg.Save()
			if err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loadedCfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if loadedCfg.Volume != tt.expectedVolume {
				t.Errorf("Load().Volume = %d, want %d", loadedCfg.Volume, tt.expectedVolume)
			}
		})
	}
}

func TestAlarmTimeValidation(t *testing.T) {
	tests := []struct {
		name            string
		hour, minute    int
		enabled         bool
		expectedHour    int
		expectedMinute  int
		expectedEnabled bool
	}{
		{"valid time", 6, 45, true, 6, 45, true},
		{"midnight", 0, 0, true, 0, 0, true},
		{"hour out of range", 24, 0, true, NoAlarmTime, 0, false},
		{"minute out of range", 7, 60, true, 7, NoAlarmTime, true},
		{"negative hour", -5, 10, true, NoAlarmTime, 10, false},
		{"unset stays disabled", NoAlarmTime, NoAlarmTime, false, NoAlarmTime, NoAlarmTime, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			t.Setenv("HOME", tmpDir)

			testCfg := DefaultConfig()
			testCfg.AlarmHour = tt.hour
			testCfg.AlarmMinute = tt.minute
			testCfg.AlarmEnabled = tt.enabled

			if err := testCfg.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}

			loadedCfg, err := Load()
			if err != nil {
				t.Fatalf("Load() error = %v", err)
			}

			if loadedCfg.AlarmHour != tt.expectedHour {
				t.Errorf("Load().AlarmHour = %d, want %d", loadedCfg.AlarmHour, tt.expectedHour)
			}
			if loadedCfg.AlarmMinute != tt.expectedMinute {
				t.Errorf("Load().AlarmMinute = %d, want %d", loadedCfg.AlarmMinute, tt.expectedMinute)
			}
			if loadedCfg.AlarmEnabled != tt.expectedEnabled {
				t.Errorf("Load().AlarmEnabled = %v, want %v", loadedCfg.AlarmEnabled, tt.expectedEnabled)
			}
		})
	}
}

func TestPartialConfigKeepsDefaults(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ConfigDir)
	_ = os.MkdirAll(configDir, 0755)
	configPath := filepath.Join(configDir, ConfigFileName)
	_ = os.WriteFile(configPath, []byte("volume: 40\n"), 0644)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Volume != 40 {
		t.Errorf("Load().Volume = %d, want 40", cfg.Volume)
	}
	if cfg.AlarmHour != NoAlarmTime {
		t.Errorf("missing alarm_hour should stay unset, got %d", cfg.AlarmHour)
	}
	if cfg.RadioURL != station.FM4URL {
		t.Errorf("missing radio_url should default to FM4, got %q", cfg.RadioURL)
	}
	if cfg.Theme.Highlight != "#ff9d65" {
		t.Errorf("Theme.Highlight = %q, want default", cfg.Theme.Highlight)
	}
}

func TestThemePersistence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	testCfg := DefaultConfig()
	testCfg.Theme = Theme{
		Background: "black",
		Foreground: "yellow",
		Borders:    "blue",
		Highlight:  "red",
	}

	err := testCfg.Save()
	if err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if loadedCfg.Theme.Background != "black" {
		t.Errorf("Theme.Background = %q, want %q", loadedCfg.Theme.Background, "black")
	}
	if loadedCfg.Theme.Foreground != "yellow" {
		t.Errorf("Theme.Foreground = %q, want %q", loadedCfg.Theme.Foreground, "yellow")
	}
	if loadedCfg.Theme.Borders != "blue" {
		t.Errorf("Theme.Borders = %q, want %q", loadedCfg.Theme.Borders, "blue")
	}
	if loadedCfg.Theme.Highlight != "red" {
		t.Errorf("Theme.Highlight = %q, want %q", loadedCfg.Theme.Highlight, "red")
	}
}

func TestStationsPersistence(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	testCfg := DefaultConfig()
	testCfg.Stations = []station.Station{
		{Name: "Jazz", URL: "http://example.com/jazz.pls"},
	}

	if err := testCfg.Save(); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loadedCfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	all := loadedCfg.AllStations()
	if len(all) != 3 {
		t.Fatalf("AllStations() returned %d stations, want 3", len(all))
	}
	if all[2].Name != "Jazz" || !all[2].IsPlaylist() {
		t.Errorf("AllStations()[2] = %+v, want the Jazz playlist", all[2])
	}
}

func TestLoadInvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	configDir := filepath.Join(tmpDir, ConfigDir)
	_ = os.MkdirAll(configDir, 0755)
	configPath := filepath.Join(configDir, ConfigFileName)

	invalidYAML := []byte("this is not: valid: yaml: [")
	_ = os.WriteFile(configPath, invalidYAML, 0644)

	cfg, err := Load()
	if err == nil {
		t.Log("Load() returned no error for invalid YAML, but returned default config")
	}

	if cfg.Volume != DefaultVolume {
		t.Errorf("Load() with invalid YAML returned Volume = %d, want default %d", cfg.Volume, DefaultVolume)
	}
}

func TestGetColor(t *testing.T) {
	tests := []struct {
		name     string
		colorStr string
	}{
		{"empty string returns default", ""},
		{"default keyword returns default", "default"},
		{"named color white", "white"},
		{"hex color", "#FF0000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := GetColor(tt.colorStr)
			if tt.colorStr == "" || tt.colorStr == "default" {
				if result != 0 {
					t.Errorf("GetColor(%q) = %v, want ColorDefault (0)", tt.colorStr, result)
				}
			}
		})
	}
}

func TestGetConfigPath(t *testing.T) {
	path, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if path == "" {
		t.Error("GetConfigPath() returned empty string")
	}

	if !filepath.IsAbs(path) {
		t.Errorf("GetConfigPath() = %q, want absolute path", path)
	}
}

func TestUserAgent(t *testing.T) {
	if got := UserAgent(); got != "RadioAlarm/"+AppVersion {
		t.Errorf("UserAgent() = %q", got)
	}
}
