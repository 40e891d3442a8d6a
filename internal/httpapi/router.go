// Package httpapi exposes the radio alarm over a small JSON control API.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/glebovdev/radioalarm/internal/service"
	"github.com/glebovdev/radioalarm/internal/station"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
)

const (
	defaultRequestTimeout = 30 * time.Second
	shutdownTimeout       = 5 * time.Second
)

// Radio is the part of the alarm service the API drives.
type Radio interface {
	Snapshot() service.Snapshot
	Play()
	Pause()
	Stop()
	SelectStation(url string) error
	Stations() []station.Station
	SetAlarm(hour, minute int) (alarm.Status, error)
	SetAlarmEnabled(enabled bool) alarm.Status
	AlarmStatus() alarm.Status
	SetVolume(volumePercent int) int
}

type Server struct {
	logger  zerolog.Logger
	radio   Radio
	version string
}

func NewServer(logger zerolog.Logger, radio Radio, version string) *Server {
	return &Server{logger: logger, radio: radio, version: version}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(defaultRequestTimeout))
	r.Use(hlog.NewHandler(s.logger))
	r.Use(hlog.RequestIDHandler("request_id", "Request-Id"))
	r.Use(hlog.RemoteAddrHandler("remote_ip"))
	r.Use(hlog.UserAgentHandler("user_agent"))
	r.Use(hlog.AccessHandler(accessLogFn))

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/health", s.handleHealth)
		r.Get("/version", s.handleVersion)
		r.Get("/status", s.handleStatus)

		r.Post("/play", s.handlePlay)
		r.Post("/pause", s.handlePause)
		r.Post("/stop", s.handleStop)

		r.Get("/stations", s.handleStations)
		r.Put("/station", s.handleSelectStation)

		r.Get("/alarm", s.handleGetAlarm)
		r.Put("/alarm", s.handlePutAlarm)

		r.Put("/volume", s.handleVolume)
	})

	return r
}

// ListenAndServe serves the API on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Msg("Control API listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return err
	}
	s.logger.Debug().Msg("Control API stopped")
	return nil
}

func accessLogFn(r *http.Request, status, size int, duration time.Duration) {
	logger := hlog.FromRequest(r)
	logger.Info().
		Int("status", status).
		Int("size", size).
		Dur("duration", duration).
		Str("method", r.Method).
		Str("path", r.URL.Path).
		Msg("http")
}
