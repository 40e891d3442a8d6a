package player

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/glebovdev/radioalarm/internal/config"
)

func TestPercentToExponent(t *testing.T) {
	tests := []struct {
		percent  float64
		expected float64
	}{
		{0, MinVolumeDB},
		{100, 0},
		{-10, MinVolumeDB},
		{150, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("percent_%v", tt.percent), func(t *testing.T) {
			result := percentToExponent(tt.percent)
			if result != tt.expected {
				t.Errorf("percentToExponent(%v) = %v, want %v", tt.percent, result, tt.expected)
			}
		})
	}
}

func TestPercentToExponentCurve(t *testing.T) {
	p25 := percentToExponent(25)
	p50 := percentToExponent(50)
	p75 := percentToExponent(75)

	if p25 >= p50 || p50 >= p75 {
		t.Error("Volume curve should be monotonically increasing")
	}

	if p25 <= MinVolumeDB || p75 >= 0 {
		t.Error("Mid-range volumes should be between min and max")
	}
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state    State
		expected string
	}{
		{StateIdle, "IDLE"},
		{StateResolving, "RESOLVING"},
		{StatePreparing, "PREPARING"},
		{StatePlaying, "LIVE"},
		{StatePaused, "PAUSED"},
		{StateStopped, "STOPPED"},
		{State(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			result := tt.state.String()
			if result != tt.expected {
				t.Errorf("State(%d).String() = %q, want %q", tt.state, result, tt.expected)
			}
		})
	}
}

func TestParseStreamTitle(t *testing.T) {
	tests := []struct {
		meta     string
		expected string
		ok       bool
	}{
		{"StreamTitle='Artist - Song';StreamUrl='';", "Artist - Song", true},
		{"StreamTitle='';", "", false},
		{"StreamUrl='http://x';", "", false},
		{"StreamTitle='unterminated", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.meta, func(t *testing.T) {
			got, ok := parseStreamTitle(tt.meta)
			if got != tt.expected || ok != tt.ok {
				t.Errorf("parseStreamTitle(%q) = %q, %v, want %q, %v", tt.meta, got, ok, tt.expected, tt.ok)
			}
		})
	}
}

func TestStreamAudioVolume(t *testing.T) {
	a := NewStreamAudio()

	if got := a.Volume(); got != config.DefaultVolume {
		t.Errorf("Volume() = %d, want %d", got, config.DefaultVolume)
	}

	a.SetVolume(150)
	if got := a.Volume(); got != config.MaxVolume {
		t.Errorf("Volume() = %d, want %d", got, config.MaxVolume)
	}

	a.SetVolume(-5)
	if got := a.Volume(); got != config.MinVolume {
		t.Errorf("Volume() = %d, want %d", got, config.MinVolume)
	}
}

func TestStreamAudioTrack(t *testing.T) {
	a := NewStreamAudio()

	if a.CurrentTrack() != "" {
		t.Error("Initial track should be empty")
	}

	a.setCurrentTrack("Test Artist - Test Song")
	if got := a.CurrentTrack(); got != "Test Artist - Test Song" {
		t.Errorf("CurrentTrack() = %q", got)
	}

	h, _ := a.NewHandle()
	a.setCurrent(h.(*streamHandle))
	if a.CurrentTrack() != "" {
		t.Error("A new stream should reset the track")
	}
}

func TestStreamHandleSetSource(t *testing.T) {
	h, _ := NewStreamAudio().NewHandle()

	if err := h.SetSource("ftp://example.com/stream"); err == nil {
		t.Error("Expected error for non-HTTP source")
	}
	if err := h.SetSource("http://example.com/stream.mp3"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestStreamHandleNotPrepared(t *testing.T) {
	h, _ := NewStreamAudio().NewHandle()

	if err := h.Start(); !errors.Is(err, errNotPrepared) {
		t.Errorf("Start() error = %v, want %v", err, errNotPrepared)
	}
	if err := h.Pause(); !errors.Is(err, errNotPrepared) {
		t.Errorf("Pause() error = %v, want %v", err, errNotPrepared)
	}
	if err := h.Stop(); err != nil {
		t.Errorf("Stop() error = %v", err)
	}
	if err := h.Stop(); err != nil {
		t.Errorf("second Stop() error = %v", err)
	}
}

func TestStreamHandlePrepareAfterStop(t *testing.T) {
	h, _ := NewStreamAudio().NewHandle()
	_ = h.SetSource("http://example.com/stream.mp3")
	_ = h.Stop()

	if err := h.Prepare(context.Background()); !errors.Is(err, context.Canceled) {
		t.Errorf("Prepare() error = %v, want context.Canceled", err)
	}
}

func TestStreamHandlePrepareWithoutSource(t *testing.T) {
	h, _ := NewStreamAudio().NewHandle()

	if err := h.Prepare(context.Background()); err == nil {
		t.Error("Expected error without a source")
	}
}

func TestStreamHandlePrepareHTTPError(t *testing.T) {
	var userAgent, icy string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userAgent = r.Header.Get("User-Agent")
		icy = r.Header.Get("Icy-MetaData")
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	h, _ := NewStreamAudio().NewHandle()
	_ = h.SetSource(server.URL + "/stream.mp3")

	err := h.Prepare(context.Background())

	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("Prepare() error = %v, want httpStatusError", err)
	}
	if statusErr.StatusCode != http.StatusNotFound {
		t.Errorf("StatusCode = %d, want %d", statusErr.StatusCode, http.StatusNotFound)
	}
	if userAgent != config.UserAgent() {
		t.Errorf("User-Agent = %q, want %q", userAgent, config.UserAgent())
	}
	if icy != "1" {
		t.Errorf("Icy-MetaData = %q, want 1", icy)
	}
}

func TestStreamHandlePrepareCancelled(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	h, _ := NewStreamAudio().NewHandle()
	_ = h.SetSource(server.URL)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Prepare(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err == nil {
			t.Error("Expected error after cancellation")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Prepare() did not return after cancellation")
	}
}

func TestContextReader(t *testing.T) {
	t.Run("successful read", func(t *testing.T) {
		reader := strings.NewReader("test data")
		ctx := context.Background()
		cr := &contextReader{reader: reader, ctx: ctx, timeout: time.Second}

		buf := make([]byte, 100)
		n, err := cr.Read(buf)

		if err != nil {
			t.Errorf("Unexpected error: %v", err)
		}
		if n != 9 {
			t.Errorf("Read %d bytes, want 9", n)
		}
		if string(buf[:n]) != "test data" {
			t.Errorf("Data = %q, want 'test data'", string(buf[:n]))
		}
	})

	t.Run("timeout", func(t *testing.T) {
		cr := &contextReader{reader: &blockingReader{}, ctx: context.Background(), timeout: 10 * time.Millisecond}

		buf := make([]byte, 100)
		_, err := cr.Read(buf)

		if err == nil {
			t.Fatal("Expected timeout error")
		}
		if !strings.Contains(err.Error(), "timeout") {
			t.Errorf("Error = %q, expected to contain 'timeout'", err.Error())
		}
	})

	t.Run("context cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cr := &contextReader{reader: &blockingReader{}, ctx: ctx, timeout: time.Hour}

		cancel()

		buf := make([]byte, 100)
		_, err := cr.Read(buf)

		if !errors.Is(err, context.Canceled) {
			t.Errorf("Error = %v, expected context.Canceled", err)
		}
	})
}

type blockingReader struct{}

func (b *blockingReader) Read(p []byte) (int, error) {
	time.Sleep(time.Hour)
	return 0, nil
}
