package config

import (
	"errors"
	"testing"

	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/glebovdev/radioalarm/internal/station"
)

func TestPrefsDefaults(t *testing.T) {
	p := NewPrefs(DefaultConfig())

	if got := p.GetInt(alarm.KeyAlarmHour, -1); got != -1 {
		t.Errorf("GetInt(hour) = %d, want -1", got)
	}
	if got := p.GetInt(alarm.KeyAlarmMinute, -1); got != -1 {
		t.Errorf("GetInt(minute) = %d, want -1", got)
	}
	if got := p.GetBool(alarm.KeyAlarmEnabled, true); got {
		t.Error("GetBool(enabled) = true, want stored false")
	}
	if got := p.GetString(alarm.KeyRadioURL, "fallback"); got != station.FM4URL {
		t.Errorf("GetString(url) = %q, want %q", got, station.FM4URL)
	}
	if got := p.GetString("unknown", "fallback"); got != "fallback" {
		t.Errorf("GetString(unknown) = %q, want fallback", got)
	}
	if got := p.GetInt("unknown", 42); got != 42 {
		t.Errorf("GetInt(unknown) = %d, want 42", got)
	}
	if got := p.GetBool("unknown", true); !got {
		t.Error("GetBool(unknown) should return the default")
	}
}

func TestPrefsPutAndGet(t *testing.T) {
	p := NewPrefs(DefaultConfig())

	p.PutInt(alarm.KeyAlarmHour, 6)
	p.PutInt(alarm.KeyAlarmMinute, 15)
	p.PutBool(alarm.KeyAlarmEnabled, true)
	p.PutString(alarm.KeyRadioURL, station.BBC6MusicURL)
	p.PutInt(alarm.KeyVolume, 250)

	if got := p.GetInt(alarm.KeyAlarmHour, -1); got != 6 {
		t.Errorf("GetInt(hour) = %d, want 6", got)
	}
	if got := p.GetInt(alarm.KeyAlarmMinute, -1); got != 15 {
		t.Errorf("GetInt(minute) = %d, want 15", got)
	}
	if !p.GetBool(alarm.KeyAlarmEnabled, false) {
		t.Error("GetBool(enabled) = false, want true")
	}
	if got := p.GetString(alarm.KeyRadioURL, ""); got != station.BBC6MusicURL {
		t.Errorf("GetString(url) = %q", got)
	}
	if got := p.GetInt(alarm.KeyVolume, 0); got != MaxVolume {
		t.Errorf("GetInt(volume) = %d, want clamped %d", got, MaxVolume)
	}

	p.PutString("unknown", "x")
	p.PutInt("unknown", 1)
	p.PutBool("unknown", true)

	cfg := p.Config()
	if cfg.AlarmHour != 6 || cfg.AlarmMinute != 15 || !cfg.AlarmEnabled {
		t.Errorf("Config() = %+v, unexpected alarm fields", cfg)
	}
}

func TestPrefsCommitPersists(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	p := NewPrefs(DefaultConfig())
	p.PutInt(alarm.KeyAlarmHour, 8)
	p.PutInt(alarm.KeyAlarmMinute, 0)
	p.PutBool(alarm.KeyAlarmEnabled, true)

	if err := p.Commit(); err != nil {
		t.Fatalf("Commit() error = %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if loaded.AlarmHour != 8 || loaded.AlarmMinute != 0 || !loaded.AlarmEnabled {
		t.Errorf("Load() alarm = %d:%d enabled=%v, want 8:00 enabled",
			loaded.AlarmHour, loaded.AlarmMinute, loaded.AlarmEnabled)
	}
}

func TestPrefsCommitError(t *testing.T) {
	p := NewPrefs(DefaultConfig())
	want := errors.New("disk full")
	p.save = func(*Config) error { return want }

	if err := p.Commit(); !errors.Is(err, want) {
		t.Errorf("Commit() error = %v, want %v", err, want)
	}
}
