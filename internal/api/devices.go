package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/fieldsense/fieldsense/internal/query"
)

// handleStatus returns a device's current liveness flag.
//
// GET /api/status/{device} → {"status": 0|1}
//
// A device with no record anywhere reads as 0; only store failures
// produce an error response.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	device := chi.URLParam(r, "device")

	status, err := s.queries.GetStatus(r.Context(), device)
	if err != nil {
		s.logger.Error("status query failed", "device", device, "error", err)
		writeStoreError(w, "could not read device status from the time-series store")
		return
	}

	writeJSON(w, http.StatusOK, map[string]int{"status": status})
}

// handleLastData returns the most recent value of every telemetry field
// for a device.
//
// GET /api/last-data/{device} → {"temperature": 22.5, ...}
//
// The mapping is empty when the device has no recent telemetry.
func (s *Server) handleLastData(w http.ResponseWriter, r *http.Request) {
	device := chi.URLParam(r, "device")

	reading, err := s.queries.GetLastReading(r.Context(), device)
	if err != nil {
		s.logger.Error("last-data query failed", "device", device, "error", err)
		writeStoreError(w, "could not read device telemetry from the time-series store")
		return
	}

	writeJSON(w, http.StatusOK, reading)
}

// handleHistory returns a downsampled history series and raw-sample
// summary for one field of a device.
//
// GET /api/history/{device}?field=temperature&start=-24h
//
// field is required; start defaults to one day back.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	device := chi.URLParam(r, "device")
	field := r.URL.Query().Get("field")
	start := r.URL.Query().Get("start")

	history, err := s.queries.GetHistory(r.Context(), device, field, start)
	if err != nil {
		switch {
		case errors.Is(err, query.ErrFieldRequired):
			writeBadRequest(w, "field query parameter is required")
		case errors.Is(err, query.ErrInvalidRange):
			writeBadRequest(w, "start must be a negative offset such as -24h or -7d")
		default:
			s.logger.Error("history query failed", "device", device, "field", field, "error", err)
			writeStoreError(w, "could not read device history from the time-series store")
		}
		return
	}

	writeJSON(w, http.StatusOK, history)
}
