package player

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/glebovdev/radioalarm/internal/config"
	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"
	"github.com/gopxl/beep/v2/mp3"
	"github.com/gopxl/beep/v2/speaker"
	"github.com/rs/zerolog/log"
)

const (
	DefaultSampleRate   = beep.SampleRate(44100)
	SpeakerBufferSize   = time.Millisecond * 250
	NetworkReadSize     = 4096
	SampleChannelSize   = 8192
	VolumeCurveExponent = 0.5
	MinVolumeDB         = -10.0
	ReadTimeout         = 5 * time.Second
	MaxICYMetadataSize  = 4080
)

var errNotPrepared = errors.New("player is not prepared")

// Relies on context cancellation to clean up the spawned read goroutine.
type contextReader struct {
	reader  io.Reader
	ctx     context.Context
	timeout time.Duration
}

func (cr *contextReader) Read(p []byte) (n int, err error) {
	select {
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	default:
	}

	timer := time.NewTimer(cr.timeout)
	defer timer.Stop()

	type result struct {
		n   int
		err error
	}
	done := make(chan result, 1)

	go func() {
		n, err := cr.reader.Read(p)
		select {
		case done <- result{n, err}:
		case <-cr.ctx.Done():
		}
	}()

	select {
	case res := <-done:
		return res.n, res.err
	case <-timer.C:
		return 0, fmt.Errorf("read timeout: no data received for %v", cr.timeout)
	case <-cr.ctx.Done():
		return 0, cr.ctx.Err()
	}
}

type httpStatusError struct {
	StatusCode int
	Status     string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("stream returned status %d: %s", e.StatusCode, e.Status)
}

// StreamAudio plays MP3 internet radio streams on the default audio device.
type StreamAudio struct {
	httpClient *http.Client

	mu            sync.Mutex
	speakerInit   bool
	sampleRate    beep.SampleRate
	volumePercent int
	current       *streamHandle

	trackMu      sync.RWMutex
	currentTrack string
}

func NewStreamAudio() *StreamAudio {
	httpClient := &http.Client{
		Timeout: 0, // streams are long-lived
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout: 10 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ResponseHeaderTimeout: 15 * time.Second,
			MaxIdleConns:          10,
			IdleConnTimeout:       90 * time.Second,
			DisableCompression:    true,
		},
	}

	return &StreamAudio{
		httpClient:    httpClient,
		sampleRate:    DefaultSampleRate,
		volumePercent: config.DefaultVolume,
	}
}

func (a *StreamAudio) NewHandle() (Handle, error) {
	return &streamHandle{audio: a}, nil
}

func (a *StreamAudio) initSpeaker(sampleRate beep.SampleRate) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	if !a.speakerInit || sampleRate != a.sampleRate {
		err := speaker.Init(sampleRate, sampleRate.N(SpeakerBufferSize))
		if err != nil {
			return fmt.Errorf("failed to initialize speaker: %w", err)
		}
		a.sampleRate = sampleRate
		a.speakerInit = true
		log.Debug().Msgf("Speaker initialized with sample rate: %d Hz, buffer: %v", sampleRate, SpeakerBufferSize)
	}
	return nil
}

// SetVolume sets the output volume in percent. It applies to the current
// stream and to every stream prepared afterwards.
func (a *StreamAudio) SetVolume(volumePercent int) {
	volumePercent = config.ClampVolume(volumePercent)

	a.mu.Lock()
	a.volumePercent = volumePercent
	current := a.current
	a.mu.Unlock()

	if current != nil {
		current.applyVolume(volumePercent)
	}
	log.Debug().Msgf("Volume set to %d%% (%.2f dB)", volumePercent, percentToExponent(float64(volumePercent)))
}

func (a *StreamAudio) Volume() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.volumePercent
}

// CurrentTrack returns the last ICY stream title, or "" when none was sent.
func (a *StreamAudio) CurrentTrack() string {
	a.trackMu.RLock()
	defer a.trackMu.RUnlock()
	return a.currentTrack
}

func (a *StreamAudio) setCurrentTrack(track string) {
	a.trackMu.Lock()
	defer a.trackMu.Unlock()

	if track != a.currentTrack {
		a.currentTrack = track
		log.Debug().Msgf("Now playing: %s", track)
	}
}

func (a *StreamAudio) setCurrent(h *streamHandle) {
	a.mu.Lock()
	a.current = h
	a.mu.Unlock()
	a.setCurrentTrack("")
}

func (a *StreamAudio) clearCurrent(h *streamHandle) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.current == h {
		a.current = nil
	}
}

func percentToExponent(p float64) float64 {
	if p <= 0 {
		return MinVolumeDB
	}
	if p >= 100 {
		return 0
	}

	normalized := p / 100.0
	adjusted := math.Pow(normalized, VolumeCurveExponent)
	return (1.0 - adjusted) * MinVolumeDB
}

// streamHandle is one connection to one stream URL.
type streamHandle struct {
	audio *StreamAudio
	url   string

	mu         sync.Mutex
	cancel     context.CancelFunc
	ctrl       *beep.Ctrl
	volume     *effects.Volume
	started    bool
	stopped    bool
	onComplete func()

	sampleCh       chan [2]float64
	streamDone     chan struct{}
	streamDoneOnce sync.Once
	completeOnce   sync.Once
}

func (h *streamHandle) SetSource(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return fmt.Errorf("unsupported stream URL: %q", url)
	}
	h.url = url
	return nil
}

func (h *streamHandle) OnCompletion(fn func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onComplete = fn
}

// Prevents panics from double-close when multiple goroutines signal completion.
func (h *streamHandle) closeStreamDone() {
	h.streamDoneOnce.Do(func() {
		close(h.streamDone)
	})
}

func (h *streamHandle) Prepare(ctx context.Context) error {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return context.Canceled
	}
	if h.url == "" {
		h.mu.Unlock()
		return errors.New("no source set")
	}
	ctx, cancel := context.WithCancel(ctx)
	h.cancel = cancel
	h.sampleCh = make(chan [2]float64, SampleChannelSize)
	h.streamDone = make(chan struct{})
	h.mu.Unlock()

	log.Debug().Msgf("Connecting to stream: %s", h.url)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", config.UserAgent())
	req.Header.Set("Icy-MetaData", "1")

	resp, err := h.audio.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to fetch MP3 stream: %w", err)
	}

	log.Debug().Msgf("Stream response status: %d, Content-Type: %s", resp.StatusCode, resp.Header.Get("Content-Type"))

	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return &httpStatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var icyMetaint int
	if val := resp.Header.Get("icy-metaint"); val != "" {
		_, _ = fmt.Sscanf(val, "%d", &icyMetaint)
		log.Debug().Msgf("ICY metadata interval: %d bytes", icyMetaint)
	}

	pipeReader, pipeWriter := io.Pipe()

	timeoutBody := &contextReader{
		reader:  resp.Body,
		ctx:     ctx,
		timeout: ReadTimeout,
	}

	go h.readNetworkStream(ctx, resp.Body, timeoutBody, pipeWriter, icyMetaint)

	log.Debug().Msg("Decoding MP3 stream...")
	streamer, format, err := mp3.Decode(pipeReader)
	if err != nil {
		cancel()
		pipeReader.Close()
		return fmt.Errorf("failed to decode MP3 stream: %w", err)
	}

	log.Debug().Msgf("Initializing audio output (sample rate: %d Hz)...", format.SampleRate)
	if err := h.audio.initSpeaker(format.SampleRate); err != nil {
		cancel()
		streamer.Close()
		pipeReader.Close()
		return fmt.Errorf("failed to initialize audio output: %w", err)
	}

	go h.decodeAndBuffer(ctx, streamer, pipeReader)

	volumePercent := h.audio.Volume()
	fadeInSamples := int(format.SampleRate.N(fadeInDuration))
	buffered := &bufferedStreamerWrapper{
		handle:          h,
		fadeInRemaining: fadeInSamples,
		fadeInTotal:     fadeInSamples,
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return context.Canceled
	}

	h.volume = &effects.Volume{
		Streamer: buffered,
		Base:     2,
		Volume:   percentToExponent(float64(volumePercent)),
		Silent:   volumePercent == 0,
	}
	h.ctrl = &beep.Ctrl{
		Streamer: h.volume,
		Paused:   true,
	}
	h.audio.setCurrent(h)

	log.Debug().Msgf("Stream prepared: %s", h.url)
	return nil
}

func (h *streamHandle) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctrl == nil || h.stopped {
		return errNotPrepared
	}

	if !h.started {
		speaker.Play(h.ctrl)
		h.started = true
	}

	speaker.Lock()
	h.ctrl.Paused = false
	speaker.Unlock()

	log.Debug().Msg("Playback started")
	return nil
}

func (h *streamHandle) Pause() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.ctrl == nil || h.stopped {
		return errNotPrepared
	}

	speaker.Lock()
	h.ctrl.Paused = true
	speaker.Unlock()

	log.Debug().Msg("Playback paused")
	return nil
}

func (h *streamHandle) Stop() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.stopped {
		return nil
	}
	h.stopped = true

	if h.cancel != nil {
		h.cancel()
	}
	if h.streamDone != nil {
		h.closeStreamDone()
	}

	if h.ctrl != nil {
		// A Ctrl without a streamer reports drained, so the mixer drops it.
		speaker.Lock()
		h.ctrl.Streamer = nil
		speaker.Unlock()
	}

	h.audio.clearCurrent(h)
	log.Debug().Msg("Playback stopped")
	return nil
}

func (h *streamHandle) applyVolume(volumePercent int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.volume == nil {
		return
	}

	speaker.Lock()
	h.volume.Volume = percentToExponent(float64(volumePercent))
	h.volume.Silent = volumePercent == 0
	speaker.Unlock()
}

// finish reports a stream that ended on its own after playback had started.
func (h *streamHandle) finish() {
	h.mu.Lock()
	started, stopped, fn := h.started, h.stopped, h.onComplete
	h.mu.Unlock()

	if !started || stopped || fn == nil {
		return
	}
	h.completeOnce.Do(fn)
}

func (h *streamHandle) readNetworkStream(ctx context.Context, respBody io.ReadCloser, bodyReader io.Reader, pipeWriter *io.PipeWriter, icyMetaint int) {
	var exitErr error

	defer func() {
		respBody.Close()
		if exitErr != nil {
			pipeWriter.CloseWithError(exitErr)
		} else {
			pipeWriter.Close()
		}
		log.Debug().Msg("Network stream reader stopped")
	}()

	chunkSize := int64(icyMetaint)
	if chunkSize == 0 {
		chunkSize = NetworkReadSize
	}

	bufReader := bufio.NewReader(bodyReader)

	for {
		select {
		case <-ctx.Done():
			log.Debug().Msg("Network reader context cancelled")
			return
		case <-h.streamDone:
			return
		default:
		}

		_, err := io.CopyN(pipeWriter, bufReader, chunkSize)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, io.ErrClosedPipe) {
				return
			}
			if err != io.EOF {
				log.Error().Err(err).Msg("Error reading audio data from stream")
				exitErr = fmt.Errorf("network read error: %w", err)
			}
			return
		}

		if icyMetaint == 0 {
			continue
		}

		metaLenByte, err := bufReader.ReadByte()
		if err != nil {
			if ctx.Err() == nil && err != io.EOF {
				log.Error().Err(err).Msg("Error reading metadata length")
				exitErr = fmt.Errorf("metadata read error: %w", err)
			}
			return
		}

		metaLen := int(metaLenByte) * 16
		if metaLen == 0 {
			continue
		}
		if metaLen > MaxICYMetadataSize {
			log.Warn().Int("metaLen", metaLen).Msg("ICY metadata too large, skipping")
			if _, err := io.CopyN(io.Discard, bufReader, int64(metaLen)); err != nil {
				return
			}
			continue
		}

		metaData := make([]byte, metaLen)
		n, err := io.ReadFull(bufReader, metaData)
		if err != nil {
			if ctx.Err() == nil {
				log.Error().Err(err).Msg("Error reading metadata content")
				exitErr = fmt.Errorf("metadata content error: %w", err)
			}
			return
		}

		if title, ok := parseStreamTitle(string(metaData[:n])); ok {
			h.audio.setCurrentTrack(title)
		}
	}
}

func parseStreamTitle(meta string) (string, bool) {
	const prefix = "StreamTitle='"
	start := strings.Index(meta, prefix)
	if start < 0 {
		return "", false
	}
	start += len(prefix)
	end := strings.Index(meta[start:], "';")
	if end <= 0 {
		return "", false
	}
	return meta[start : start+end], true
}

func (h *streamHandle) decodeAndBuffer(ctx context.Context, streamer beep.StreamSeekCloser, pipeReader *io.PipeReader) {
	defer func() {
		streamer.Close()
		pipeReader.Close()
		close(h.sampleCh)
		log.Debug().Msg("Decoder and buffer goroutine stopped")

		if ctx.Err() == nil {
			h.closeStreamDone()
			h.finish()
		}
	}()

	decodedSamples := make([][2]float64, 4096)

	for {
		select {
		case <-ctx.Done():
			return
		case <-h.streamDone:
			return
		default:
		}

		n, ok := streamer.Stream(decodedSamples)
		if !ok {
			if err := streamer.Err(); err != nil {
				log.Error().Err(err).Msg("Stream decoding error")
			}
			return
		}

		for i := 0; i < n; i++ {
			select {
			case <-ctx.Done():
				return
			case <-h.streamDone:
				return
			case h.sampleCh <- decodedSamples[i]:
			}
		}
	}
}

const fadeInDuration = 50 * time.Millisecond

type bufferedStreamerWrapper struct {
	handle          *streamHandle
	fadeInRemaining int
	fadeInTotal     int
	done            bool
}

// Stream never blocks: an empty buffer yields silence so a stalled network
// does not hold the speaker lock.
func (b *bufferedStreamerWrapper) Stream(samples [][2]float64) (n int, ok bool) {
	h := b.handle
	audioEnd := 0

	if !b.done {
	fill:
		for i := range samples {
			select {
			case sample, more := <-h.sampleCh:
				if !more {
					b.done = true
					break fill
				}
				samples[i] = sample
				audioEnd = i + 1
			default:
				break fill
			}
		}
	}

	if b.done {
		audioEnd = 0
	}

	for i := audioEnd; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}

	if b.fadeInRemaining > 0 {
		for i := 0; i < audioEnd && b.fadeInRemaining > 0; i++ {
			pos := b.fadeInTotal - b.fadeInRemaining
			scale := float64(pos) / float64(b.fadeInTotal)
			samples[i][0] *= scale
			samples[i][1] *= scale
			b.fadeInRemaining--
		}
	}

	return len(samples), true
}

func (b *bufferedStreamerWrapper) Err() error {
	return nil
}
