// Package service ties the playback controller, the alarm scheduler and the
// stored preferences together for the UI and the control API.
package service

import (
	"errors"
	"sync"
	"time"

	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/glebovdev/radioalarm/internal/config"
	"github.com/glebovdev/radioalarm/internal/player"
	"github.com/glebovdev/radioalarm/internal/station"
	"github.com/rs/zerolog/log"
)

// RefreshInterval keeps the "scheduled at" text current across midnight.
const RefreshInterval = 30 * time.Second

var ErrNoStation = errors.New("station URL must not be empty")

// Snapshot is the state shown by the UI and returned by the control API.
type Snapshot struct {
	State        string     `json:"state"`
	Playing      bool       `json:"playing"`
	URL          string     `json:"url"`
	Station      string     `json:"station"`
	Track        string     `json:"track,omitempty"`
	Volume       int        `json:"volume"`
	Muted        bool       `json:"muted"`
	AlarmHour    int        `json:"alarm_hour"`
	AlarmMinute  int        `json:"alarm_minute"`
	AlarmSet     bool       `json:"alarm_set"`
	AlarmEnabled bool       `json:"alarm_enabled"`
	NextAlarm    *time.Time `json:"next_alarm,omitempty"`
	AlarmStatus  string     `json:"alarm_status"`
}

// Options configures an AlarmService.
type Options struct {
	Store    alarm.Store
	Waker    alarm.Waker
	Audio    player.Audio
	Resolver player.Resolver
	Stations []station.Station
	// Now overrides the clock used for alarm triggers.
	Now func() time.Time
}

type trackSource interface {
	CurrentTrack() string
}

type volumeSetter interface {
	SetVolume(volumePercent int)
}

// AlarmService owns the radio player and the alarm.
type AlarmService struct {
	store      alarm.Store
	scheduler  *alarm.Scheduler
	controller *player.Controller
	audio      player.Audio
	stations   []station.Station

	mu              sync.RWMutex
	subscribers     []func(Snapshot)
	refreshInterval time.Duration
	stopRefresh     chan struct{}
	muted           bool

	changed chan struct{}
}

// NewAlarmService creates the service. The player starts idle; call Start to
// arm the alarm and begin publishing snapshots.
func NewAlarmService(opts Options) *AlarmService {
	stations := opts.Stations
	if len(stations) == 0 {
		stations = station.Defaults()
	}

	s := &AlarmService{
		store:           opts.Store,
		scheduler:       alarm.NewScheduler(opts.Store, opts.Waker),
		audio:           opts.Audio,
		stations:        stations,
		refreshInterval: RefreshInterval,
		changed:         make(chan struct{}, 1),
	}

	if opts.Now != nil {
		s.scheduler.SetClock(opts.Now)
	}

	url := opts.Store.GetString(alarm.KeyRadioURL, stations[0].URL)
	s.controller = player.NewController(opts.Audio, opts.Resolver, url, s.onPlayingChanged)

	if v, ok := opts.Audio.(volumeSetter); ok {
		v.SetVolume(opts.Store.GetInt(alarm.KeyVolume, config.DefaultVolume))
	}

	return s
}

// Start arms the alarm and starts publishing snapshots. Playback starts when
// the alarm is enabled or wake is set.
func (s *AlarmService) Start(wake bool) {
	status := s.scheduler.EnableNextAlarm()
	log.Info().Msg(status.String())

	s.startRefresh()

	if wake || status.Enabled {
		s.controller.Play()
	}
	s.publish()
}

// OnWake handles a fired wake-up: the alarm is re-armed for its next trigger
// and the radio starts.
func (s *AlarmService) OnWake(id int) {
	if id != alarm.RequestID {
		log.Debug().Int("id", id).Msg("Ignoring unknown wake-up")
		return
	}

	log.Info().Msg("Radio alarm fired")
	s.scheduler.EnableNextAlarm()
	s.controller.Play()
	s.publish()
}

func (s *AlarmService) Play() {
	s.controller.Play()
	s.publish()
}

func (s *AlarmService) Pause() {
	s.controller.Pause()
	s.publish()
}

// TogglePlay pauses a playing radio and starts it otherwise.
func (s *AlarmService) TogglePlay() {
	if s.controller.IsPlaying() {
		s.Pause()
		return
	}
	s.Play()
}

func (s *AlarmService) Stop() {
	s.controller.Stop()
	s.publish()
}

// SelectStation stores url as the radio station and restarts playback with it.
func (s *AlarmService) SelectStation(url string) error {
	if url == "" {
		return ErrNoStation
	}

	s.store.PutString(alarm.KeyRadioURL, url)
	if err := s.store.Commit(); err != nil {
		log.Error().Err(err).Msg("Failed to store radio station")
	}

	s.controller.Stop()
	s.controller.SetURL(url)
	s.controller.Play()
	s.publish()
	return nil
}

func (s *AlarmService) SetAlarm(hour, minute int) (alarm.Status, error) {
	status, err := s.scheduler.SetAlarm(hour, minute)
	if err != nil {
		return status, err
	}
	s.publish()
	return status, nil
}

func (s *AlarmService) SetAlarmEnabled(enabled bool) alarm.Status {
	status := s.scheduler.SetEnabled(enabled)
	s.publish()
	return status
}

func (s *AlarmService) AlarmStatus() alarm.Status {
	return s.scheduler.Status()
}

// AlarmTime returns the stored alarm time, alarm.NoTime when unset.
func (s *AlarmService) AlarmTime() (hour, minute int) {
	return s.scheduler.Time()
}

// SetVolume stores the volume and applies it to the audio output.
func (s *AlarmService) SetVolume(volumePercent int) int {
	volumePercent = config.ClampVolume(volumePercent)

	s.store.PutInt(alarm.KeyVolume, volumePercent)
	if err := s.store.Commit(); err != nil {
		log.Error().Err(err).Msg("Failed to store volume")
	}

	s.mu.Lock()
	s.muted = false
	s.mu.Unlock()

	if v, ok := s.audio.(volumeSetter); ok {
		v.SetVolume(volumePercent)
	}
	s.publish()
	return volumePercent
}

// SetMuted silences the audio output without touching the stored volume.
func (s *AlarmService) SetMuted(muted bool) {
	s.mu.Lock()
	s.muted = muted
	s.mu.Unlock()

	volume := s.Volume()
	if muted {
		volume = 0
	}
	if v, ok := s.audio.(volumeSetter); ok {
		v.SetVolume(volume)
	}
	log.Debug().Bool("muted", muted).Msg("Mute changed")
	s.publish()
}

func (s *AlarmService) IsMuted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.muted
}

func (s *AlarmService) Volume() int {
	return s.store.GetInt(alarm.KeyVolume, config.DefaultVolume)
}

// Stations returns a copy of the selectable stations.
func (s *AlarmService) Stations() []station.Station {
	result := make([]station.Station, len(s.stations))
	copy(result, s.stations)
	return result
}

func (s *AlarmService) StationURL() string {
	return s.controller.URL()
}

func (s *AlarmService) State() player.State {
	return s.controller.State()
}

func (s *AlarmService) IsPlaying() bool {
	return s.controller.IsPlaying()
}

func (s *AlarmService) Snapshot() Snapshot {
	url := s.controller.URL()
	state := s.controller.State()
	hour, minute := s.scheduler.Time()
	status := s.scheduler.Status()

	snap := Snapshot{
		State:        state.String(),
		Playing:      state == player.StatePlaying,
		URL:          url,
		Station:      url,
		Volume:       s.Volume(),
		Muted:        s.IsMuted(),
		AlarmHour:    hour,
		AlarmMinute:  minute,
		AlarmSet:     status.Set,
		AlarmEnabled: status.Enabled,
		AlarmStatus:  status.String(),
	}

	if i := station.IndexOf(s.stations, url); i >= 0 {
		snap.Station = s.stations[i].Name
	}
	if status.Set {
		next := status.Next
		snap.NextAlarm = &next
	}
	if t, ok := s.audio.(trackSource); ok && snap.Playing {
		snap.Track = t.CurrentTrack()
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every change. fn runs on
// the service's refresh goroutine.
func (s *AlarmService) Subscribe(fn func(Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Close stops the refresh goroutine and releases the player.
func (s *AlarmService) Close() {
	s.stopRefreshLoop()
	s.controller.Close()
	log.Debug().Msg("Alarm service closed")
}

func (s *AlarmService) onPlayingChanged(playing bool) {
	log.Debug().Bool("playing", playing).Msg("Playing state changed")
	s.publish()
}

// publish schedules a snapshot for subscribers without blocking the caller.
func (s *AlarmService) publish() {
	select {
	case s.changed <- struct{}{}:
	default:
	}
}

func (s *AlarmService) startRefresh() {
	s.stopRefreshLoop()

	s.mu.Lock()
	s.stopRefresh = make(chan struct{})
	stopCh := s.stopRefresh
	ticker := time.NewTicker(s.refreshInterval)
	s.mu.Unlock()

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				s.deliver()
			case <-s.changed:
				s.deliver()
			case <-stopCh:
				return
			}
		}
	}()

	log.Debug().Dur("interval", s.refreshInterval).Msg("Started periodic status refresh")
}

func (s *AlarmService) stopRefreshLoop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopRefresh != nil {
		close(s.stopRefresh)
		s.stopRefresh = nil
	}
}

func (s *AlarmService) deliver() {
	s.mu.RLock()
	subscribers := make([]func(Snapshot), len(s.subscribers))
	copy(subscribers, s.subscribers)
	s.mu.RUnlock()

	if len(subscribers) == 0 {
		return
	}

	snap := s.Snapshot()
	for _, fn := range subscribers {
		fn(snap)
	}
}
