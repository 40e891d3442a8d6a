package httpapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/glebovdev/radioalarm/internal/alarm"
	"github.com/rs/zerolog/hlog"
)

type alarmRequest struct {
	Hour    *int  `json:"hour"`
	Minute  *int  `json:"minute"`
	Enabled *bool `json:"enabled"`
}

type alarmResponse struct {
	Hour    int        `json:"hour"`
	Minute  int        `json:"minute"`
	Set     bool       `json:"set"`
	Enabled bool       `json:"enabled"`
	Next    *time.Time `json:"next,omitempty"`
	Status  string     `json:"status"`
}

type stationRequest struct {
	URL string `json:"url"`
}

type volumeRequest struct {
	Volume *int `json:"volume"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": s.version})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.radio.Snapshot())
}

func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	s.radio.Play()
	writeJSON(w, http.StatusAccepted, s.radio.Snapshot())
}

func (s *Server) handlePause(w http.ResponseWriter, r *http.Request) {
	s.radio.Pause()
	writeJSON(w, http.StatusOK, s.radio.Snapshot())
}

func (s *Server) handleStop(w http.ResponseWriter, r *http.Request) {
	s.radio.Stop()
	writeJSON(w, http.StatusOK, s.radio.Snapshot())
}

func (s *Server) handleStations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.radio.Stations())
}

func (s *Server) handleSelectStation(w http.ResponseWriter, r *http.Request) {
	var req stationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	if err := s.radio.SelectStation(req.URL); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	hlog.FromRequest(r).Info().Str("url", req.URL).Msg("Station selected")
	writeJSON(w, http.StatusAccepted, s.radio.Snapshot())
}

func (s *Server) handleGetAlarm(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.alarmResponse(s.radio.AlarmStatus()))
}

func (s *Server) handlePutAlarm(w http.ResponseWriter, r *http.Request) {
	var req alarmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}

	if (req.Hour == nil) != (req.Minute == nil) {
		writeError(w, http.StatusBadRequest, "hour and minute must be given together")
		return
	}
	if req.Hour == nil && req.Enabled == nil {
		writeError(w, http.StatusBadRequest, "nothing to update")
		return
	}
	if req.Hour != nil {
		if err := validateAlarmTime(*req.Hour, *req.Minute); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	status := s.radio.AlarmStatus()
	if req.Hour != nil {
		var err error
		if status, err = s.radio.SetAlarm(*req.Hour, *req.Minute); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Enabled != nil {
		status = s.radio.SetAlarmEnabled(*req.Enabled)
	}

	hlog.FromRequest(r).Info().Msg(status.String())
	writeJSON(w, http.StatusOK, s.alarmResponse(status))
}

func (s *Server) handleVolume(w http.ResponseWriter, r *http.Request) {
	var req volumeRequest
	if err := decodeJSON(r, &req); err != nil || req.Volume == nil {
		writeError(w, http.StatusBadRequest, "invalid json")
		return
	}
	volume := s.radio.SetVolume(*req.Volume)
	writeJSON(w, http.StatusOK, map[string]int{"volume": volume})
}

func (s *Server) alarmResponse(status alarm.Status) alarmResponse {
	snap := s.radio.Snapshot()
	resp := alarmResponse{
		Hour:    snap.AlarmHour,
		Minute:  snap.AlarmMinute,
		Set:     status.Set,
		Enabled: status.Enabled,
		Status:  status.String(),
	}
	if status.Set {
		next := status.Next
		resp.Next = &next
	}
	return resp
}

func validateAlarmTime(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour must be between 0 and 23, got %d", hour)
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute must be between 0 and 59, got %d", minute)
	}
	return nil
}
