// Package alarm computes when the radio alarm should fire next and keeps
// the wake-up registration in line with the stored alarm settings.
package alarm

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	// NoTime is the stored value of an alarm hour or minute that was never set.
	NoTime = -1
	// RequestID identifies the single alarm wake-up registration.
	RequestID = 1
)

// Keys of the preference store.
const (
	KeyAlarmHour    = "alarm-hour"
	KeyAlarmMinute  = "alarm-min"
	KeyAlarmEnabled = "alarm-enabled"
	KeyRadioURL     = "radio-url"
	KeyVolume       = "volume"
)

// Store is the key-value preference store holding the alarm settings.
type Store interface {
	GetString(key, def string) string
	GetInt(key string, def int) int
	GetBool(key string, def bool) bool
	PutString(key, value string)
	PutInt(key string, value int)
	PutBool(key string, value bool)
	Commit() error
}

// Waker asks the system to call back at a given instant. Scheduling an id
// that is already pending replaces the earlier registration.
type Waker interface {
	ScheduleWakeup(at time.Time, id int)
	CancelWakeup(id int)
}

// NextTrigger returns the next instant at hour:minute:00 after now.
//
// The day is advanced only when both the current hour is at or past hour and
// the current minute is at or past minute. At 08:15 with an 08:30 alarm this
// yields today 08:30, and at 09:10 with an 08:30 alarm it also yields today
// 08:30, which is already in the past.
func NextTrigger(hour, minute int, now time.Time) (time.Time, bool) {
	if hour == NoTime {
		return time.Time{}, false
	}

	day := now.Day()
	if now.Hour() >= hour && now.Minute() >= minute {
		day++
	}

	return time.Date(now.Year(), now.Month(), day, hour, minute, 0, 0, now.Location()), true
}

// Status describes the alarm for display.
type Status struct {
	Enabled bool
	Set     bool
	Next    time.Time
}

func (s Status) String() string {
	switch {
	case !s.Set:
		return "Alarm not set"
	case !s.Enabled:
		return "Alarm disabled"
	default:
		return fmt.Sprintf("Alarm scheduled at %s on %s.",
			s.Next.Format("15:04"), s.Next.Format("Monday, January 2, 2006"))
	}
}

// Scheduler applies the stored alarm settings to a Waker.
type Scheduler struct {
	store Store
	waker Waker
	now   func() time.Time
	mu    sync.Mutex
}

// NewScheduler creates a Scheduler reading settings from store.
func NewScheduler(store Store, waker Waker) *Scheduler {
	return &Scheduler{
		store: store,
		waker: waker,
		now:   time.Now,
	}
}

// SetClock replaces the time source. Call it before the scheduler is used.
func (s *Scheduler) SetClock(now func() time.Time) {
	s.now = now
}

// Time returns the stored alarm hour and minute, NoTime when unset.
func (s *Scheduler) Time() (hour, minute int) {
	return s.store.GetInt(KeyAlarmHour, NoTime), s.store.GetInt(KeyAlarmMinute, NoTime)
}

// IsEnabled reports the stored alarm-enabled flag.
func (s *Scheduler) IsEnabled() bool {
	return s.store.GetBool(KeyAlarmEnabled, false)
}

// Next returns the next trigger for the stored alarm time.
func (s *Scheduler) Next() (time.Time, bool) {
	hour, minute := s.Time()
	return NextTrigger(hour, minute, s.now())
}

// Status reports the alarm state without touching the wake-up registration.
func (s *Scheduler) Status() Status {
	next, ok := s.Next()
	return Status{Enabled: s.IsEnabled(), Set: ok, Next: next}
}

// EnableNextAlarm registers a wake-up for the next trigger when the alarm is
// enabled and cancels it otherwise. An alarm without a stored time is forced
// to disabled.
func (s *Scheduler) EnableNextAlarm() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, ok := s.Next()
	enabled := s.IsEnabled()

	switch {
	case !ok:
		s.store.PutBool(KeyAlarmEnabled, false)
		if err := s.store.Commit(); err != nil {
			log.Error().Err(err).Msg("Failed to store alarm state")
		}
		return Status{}
	case !enabled:
		s.waker.CancelWakeup(RequestID)
		log.Debug().Msg("Alarm disabled, wake-up cancelled")
		return Status{Set: true, Next: next}
	case !next.After(s.now()):
		// NextTrigger can land earlier today; a past instant would fire at once.
		s.waker.CancelWakeup(RequestID)
		log.Debug().Time("at", next).Msg("Alarm time already passed, no wake-up registered")
		return Status{Enabled: true, Set: true, Next: next}
	default:
		s.waker.ScheduleWakeup(next, RequestID)
		log.Info().Time("at", next).Msg("Radio alarm set")
		return Status{Enabled: true, Set: true, Next: next}
	}
}

// SetAlarm stores a new alarm time, enables the alarm and re-arms it.
func (s *Scheduler) SetAlarm(hour, minute int) (Status, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return s.Status(), fmt.Errorf("invalid alarm time %02d:%02d", hour, minute)
	}

	s.store.PutInt(KeyAlarmHour, hour)
	s.store.PutInt(KeyAlarmMinute, minute)
	s.store.PutBool(KeyAlarmEnabled, true)
	if err := s.store.Commit(); err != nil {
		log.Error().Err(err).Msg("Failed to store alarm time")
	}

	return s.EnableNextAlarm(), nil
}

// SetEnabled stores the alarm-enabled flag and re-arms the alarm.
func (s *Scheduler) SetEnabled(enabled bool) Status {
	s.store.PutBool(KeyAlarmEnabled, enabled)
	if err := s.store.Commit(); err != nil {
		log.Error().Err(err).Msg("Failed to store alarm state")
	}
	return s.EnableNextAlarm()
}
