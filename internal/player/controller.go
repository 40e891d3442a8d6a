package player

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/glebovdev/radioalarm/internal/playlist"
	"github.com/rs/zerolog/log"
)

const (
	ResolveTimeout = 15 * time.Second
	messageBuffer  = 16
)

var errNoSource = errors.New("no stream URL configured")

type msgKind int

const (
	msgPlay msgKind = iota
	msgPause
	msgStop
	msgSetURL
	msgClose
	msgResolved
	msgResolutionEmpty
	msgPrepareOK
	msgPrepareFailed
	msgPlaybackComplete
)

func (k msgKind) String() string {
	switch k {
	case msgPlay:
		return "play"
	case msgPause:
		return "pause"
	case msgStop:
		return "stop"
	case msgSetURL:
		return "set-url"
	case msgClose:
		return "close"
	case msgResolved:
		return "resolved"
	case msgResolutionEmpty:
		return "resolution-empty"
	case msgPrepareOK:
		return "prepare-ok"
	case msgPrepareFailed:
		return "prepare-failed"
	case msgPlaybackComplete:
		return "playback-complete"
	default:
		return "unknown"
	}
}

type message struct {
	kind msgKind
	// gen is the sequence number of the play attempt an async result belongs to.
	gen uint64
	// target is the configured source the attempt was started for.
	target string
	url    string
	err    error
	ack    chan struct{}
}

// Controller drives one audio player through resolving, preparing, playing
// and pausing. Commands and asynchronous results are applied one at a time
// on a single control goroutine, which is also where onPlayingChanged runs.
// onPlayingChanged must not call back into the Controller.
type Controller struct {
	audio     Audio
	resolver  Resolver
	onPlaying func(playing bool)

	msgs     chan message
	loopDone chan struct{}
	closing  sync.Once

	// Owned by the control goroutine.
	handle Handle
	cancel context.CancelFunc
	gen    uint64
	target string

	stateMu sync.RWMutex
	state   State
	url     string
}

// NewController starts a controller that will play url.
func NewController(audio Audio, resolver Resolver, url string, onPlayingChanged func(playing bool)) *Controller {
	c := &Controller{
		audio:     audio,
		resolver:  resolver,
		onPlaying: onPlayingChanged,
		msgs:      make(chan message, messageBuffer),
		loopDone:  make(chan struct{}),
		state:     StateIdle,
		url:       url,
	}
	go c.run()
	return c
}

// Play starts playback of the configured URL, resumes it when paused and
// only re-announces "playing" when already playing.
func (c *Controller) Play() { c.command(message{kind: msgPlay}) }

// Pause pauses playback so that Play can resume it.
func (c *Controller) Pause() { c.command(message{kind: msgPause}) }

// Stop releases the player. It is safe to call in any state.
func (c *Controller) Stop() { c.command(message{kind: msgStop}) }

// SetURL changes the source used by the next Play. Current playback continues.
func (c *Controller) SetURL(url string) { c.command(message{kind: msgSetURL, url: url}) }

// Close releases the player and stops the control goroutine.
func (c *Controller) Close() {
	c.closing.Do(func() {
		c.command(message{kind: msgClose})
	})
}

// State returns the current playback state.
func (c *Controller) State() State {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.state
}

// IsPlaying reports whether the stream is audible.
func (c *Controller) IsPlaying() bool {
	return c.State() == StatePlaying
}

// URL returns the configured station URL.
func (c *Controller) URL() string {
	c.stateMu.RLock()
	defer c.stateMu.RUnlock()
	return c.url
}

// command hands m to the control goroutine and waits until it was applied.
func (c *Controller) command(m message) {
	m.ack = make(chan struct{})
	select {
	case c.msgs <- m:
	case <-c.loopDone:
		return
	}
	select {
	case <-m.ack:
	case <-c.loopDone:
	}
}

// post delivers an asynchronous result without waiting for it to be applied.
func (c *Controller) post(m message) {
	select {
	case c.msgs <- m:
	case <-c.loopDone:
	}
}

func (c *Controller) run() {
	defer close(c.loopDone)

	for m := range c.msgs {
		if m.kind == msgClose {
			c.releaseHandle()
			c.setState(StateIdle)
			close(m.ack)
			log.Debug().Msg("Playback controller closed")
			return
		}

		c.apply(m)

		if m.ack != nil {
			close(m.ack)
		}
	}
}

func (c *Controller) apply(m message) {
	switch m.kind {
	case msgPlay:
		c.onPlay()
	case msgPause:
		c.onPause()
	case msgStop:
		c.onStop()
	case msgSetURL:
		c.stateMu.Lock()
		c.url = m.url
		c.stateMu.Unlock()
		log.Debug().Str("url", m.url).Msg("Stream URL changed")
	case msgResolved:
		c.onResolved(m)
	case msgResolutionEmpty:
		c.onResolutionEmpty(m)
	case msgPrepareOK:
		c.onPrepared(m)
	case msgPrepareFailed:
		c.onPrepareFailed(m)
	case msgPlaybackComplete:
		c.onComplete(m)
	}
}

func (c *Controller) onPlay() {
	switch c.State() {
	case StatePlaying:
		c.notify(true)
	case StatePaused:
		if err := guard(c.handle.Start); err != nil {
			c.fail(fmt.Errorf("failed to resume player: %w", err))
			return
		}
		c.setState(StatePlaying)
		c.notify(true)
	case StateResolving, StatePreparing:
		if c.target == c.URL() {
			log.Debug().Msg("Playback already starting")
			return
		}
		c.launch()
	default:
		c.launch()
	}
}

func (c *Controller) onPause() {
	if c.State() != StatePlaying {
		return
	}
	if err := guard(c.handle.Pause); err != nil {
		c.fail(fmt.Errorf("failed to pause player: %w", err))
		return
	}
	c.setState(StatePaused)
}

func (c *Controller) onStop() {
	state := c.State()
	if state == StateIdle || state == StateStopped {
		return
	}

	c.releaseHandle()
	c.gen++
	c.setState(StateStopped)

	if state == StatePlaying || state == StatePaused {
		c.notify(false)
	}
}

// launch starts a new play attempt for the configured URL.
func (c *Controller) launch() {
	c.releaseHandle()
	c.gen++
	c.target = c.URL()

	if c.target == "" {
		c.fail(errNoSource)
		return
	}

	if !playlist.IsPlaylist(c.target) {
		c.prepare(c.target)
		return
	}

	c.setState(StateResolving)
	log.Debug().Str("url", c.target).Msg("Looking for a stream in the playlist")

	ctx, cancel := context.WithTimeout(context.Background(), ResolveTimeout)
	c.cancel = cancel

	gen, target := c.gen, c.target
	go func() {
		defer cancel()
		stream, ok := c.resolver.Resolve(ctx, target)
		if !ok {
			c.post(message{kind: msgResolutionEmpty, gen: gen, target: target})
			return
		}
		c.post(message{kind: msgResolved, gen: gen, target: target, url: stream})
	}()
}

// prepare acquires a new handle for stream and prepares it off the control goroutine.
func (c *Controller) prepare(stream string) {
	c.releaseHandle()

	gen, target := c.gen, c.target

	h, err := c.newHandle(stream, gen)
	if err != nil {
		c.fail(fmt.Errorf("failed to init player %s: %w", stream, err))
		return
	}

	c.handle = h
	c.setState(StatePreparing)
	log.Debug().Str("url", stream).Msg("Preparing stream")

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	go func() {
		err := guard(func() error { return h.Prepare(ctx) })
		if err != nil {
			c.post(message{kind: msgPrepareFailed, gen: gen, target: target, url: stream, err: err})
			return
		}
		c.post(message{kind: msgPrepareOK, gen: gen, target: target, url: stream})
	}()
}

func (c *Controller) newHandle(stream string, gen uint64) (h Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, fmt.Errorf("player panic: %v", r)
		}
	}()

	h, err = c.audio.NewHandle()
	if err != nil {
		return nil, err
	}

	h.OnCompletion(func() {
		go c.post(message{kind: msgPlaybackComplete, gen: gen})
	})

	if err := h.SetSource(stream); err != nil {
		_ = guard(h.Stop)
		return nil, err
	}
	return h, nil
}

func (c *Controller) onResolved(m message) {
	if !c.expects(m, StateResolving) {
		return
	}
	if m.target != c.URL() {
		log.Debug().Str("url", m.target).Msg("Dropping playlist for a replaced station")
		c.releaseHandle()
		c.setState(StateIdle)
		return
	}

	log.Debug().Str("stream", m.url).Msg("Got stream")
	c.prepare(m.url)
}

func (c *Controller) onResolutionEmpty(m message) {
	if !c.expects(m, StateResolving) {
		return
	}
	log.Warn().Str("url", m.target).Msg("No stream found in playlist")
	c.releaseHandle()
	c.setState(StateIdle)
	c.notify(false)
}

func (c *Controller) onPrepared(m message) {
	if !c.expects(m, StatePreparing) {
		return
	}
	if m.target != c.URL() {
		log.Debug().Str("url", m.target).Msg("Dropping prepared stream for a replaced station")
		c.releaseHandle()
		c.setState(StateIdle)
		return
	}

	if err := guard(c.handle.Start); err != nil {
		c.fail(fmt.Errorf("failed to start player %s: %w", m.url, err))
		return
	}

	c.setState(StatePlaying)
	log.Info().Str("url", m.url).Msg("Playing")
	c.notify(true)
}

func (c *Controller) onPrepareFailed(m message) {
	if !c.expects(m, StatePreparing) {
		return
	}
	c.fail(fmt.Errorf("failed to prepare %s: %w", m.url, m.err))
}

func (c *Controller) onComplete(m message) {
	if m.gen != c.gen {
		return
	}
	state := c.State()
	if state != StatePlaying && state != StatePaused {
		return
	}

	log.Debug().Msg("Playback complete")
	c.releaseHandle()
	c.gen++
	c.setState(StateIdle)
	c.notify(false)
}

// expects reports whether m is a current result the controller is waiting for.
func (c *Controller) expects(m message, state State) bool {
	if m.gen != c.gen || c.State() != state {
		log.Debug().
			Str("msg", m.kind.String()).
			Uint64("gen", m.gen).
			Uint64("current", c.gen).
			Str("state", c.State().String()).
			Msg("Dropping stale player result")
		return false
	}
	return true
}

// fail absorbs err: the player is released and reported as not playing.
func (c *Controller) fail(err error) {
	log.Error().Err(err).Msg("Playback failed")
	c.releaseHandle()
	c.gen++
	c.setState(StateIdle)
	c.notify(false)
}

// releaseHandle aborts pending work and stops the current handle, if any.
func (c *Controller) releaseHandle() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	if c.handle == nil {
		return
	}
	if err := guard(c.handle.Stop); err != nil {
		log.Debug().Err(err).Msg("Error while releasing player")
	}
	c.handle = nil
}

func (c *Controller) setState(state State) {
	c.stateMu.Lock()
	defer c.stateMu.Unlock()
	if c.state != state {
		log.Debug().Msgf("Player state: %s -> %s", c.state.String(), state.String())
		c.state = state
	}
}

func (c *Controller) notify(playing bool) {
	if c.onPlaying != nil {
		c.onPlaying(playing)
	}
}

// guard runs fn and turns a panic into an error.
func guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("player panic: %v", r)
		}
	}()
	return fn()
}
