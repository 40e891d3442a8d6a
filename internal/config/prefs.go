package config

import (
	"sync"

	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/rs/zerolog/log"
)

// Prefs exposes a Config as a small key-value store. Writes stay in memory
// until Commit persists them.
type Prefs struct {
	mu   sync.RWMutex
	cfg  *Config
	save func(*Config) error
}

// NewPrefs wraps cfg. Commit writes it with Config.Save.
func NewPrefs(cfg *Config) *Prefs {
	return &Prefs{
		cfg:  cfg,
		save: (*Config).Save,
	}
}

// Config returns a copy of the current configuration.
func (p *Prefs) Config() Config {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return *p.cfg
}

func (p *Prefs) GetString(key, def string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch key {
	case alarm.KeyRadioURL:
		if p.cfg.RadioURL != "" {
			return p.cfg.RadioURL
		}
	}
	return def
}

func (p *Prefs) GetInt(key string, def int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch key {
	case alarm.KeyAlarmHour:
		if p.cfg.AlarmHour != NoAlarmTime {
			return p.cfg.AlarmHour
		}
	case alarm.KeyAlarmMinute:
		if p.cfg.AlarmMinute != NoAlarmTime {
			return p.cfg.AlarmMinute
		}
	case alarm.KeyVolume:
		return p.cfg.Volume
	}
	return def
}

func (p *Prefs) GetBool(key string, def bool) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()

	switch key {
	case alarm.KeyAlarmEnabled:
		return p.cfg.AlarmEnabled
	}
	return def
}

func (p *Prefs) PutString(key, value string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch key {
	case alarm.KeyRadioURL:
		p.cfg.RadioURL = value
	default:
		log.Warn().Str("key", key).Msg("Ignoring unknown string preference")
	}
}

func (p *Prefs) PutInt(key string, value int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch key {
	case alarm.KeyAlarmHour:
		p.cfg.AlarmHour = value
	case alarm.KeyAlarmMinute:
		p.cfg.AlarmMinute = value
	case alarm.KeyVolume:
		p.cfg.Volume = ClampVolume(value)
	default:
		log.Warn().Str("key", key).Msg("Ignoring unknown int preference")
	}
}

func (p *Prefs) PutBool(key string, value bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch key {
	case alarm.KeyAlarmEnabled:
		p.cfg.AlarmEnabled = value
	default:
		log.Warn().Str("key", key).Msg("Ignoring unknown bool preference")
	}
}

// Commit persists all pending writes.
func (p *Prefs) Commit() error {
	p.mu.RLock()
	snapshot := *p.cfg
	p.mu.RUnlock()

	return p.save(&snapshot)
}
