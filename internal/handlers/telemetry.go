package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"folio.dev/internal/analytics"
	"folio.dev/internal/models"
	"folio.dev/internal/perf"
)

// Telemetry request limits.
const (
	maxTelemetryBody = 64 << 10
	maxBatch         = 50
)

// TelemetryHandler accepts analytics events and performance samples from
// the page.
type TelemetryHandler struct {
	reporter *analytics.Reporter
	monitor  *perf.Monitor
	now      func() time.Time
}

// NewTelemetryHandler creates a new TelemetryHandler
func NewTelemetryHandler(r *analytics.Reporter, m *perf.Monitor) *TelemetryHandler {
	return &TelemetryHandler{reporter: r, monitor: m, now: time.Now}
}

type eventsResponse struct {
	Accepted int `json:"accepted"`
	Dropped  int `json:"dropped"`
}

// Events handles POST /api/analytics/events. The body is one event or an
// array of up to maxBatch events. Forwarding is best effort, so the
// response always reports how many were queued.
func (h *TelemetryHandler) Events(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}

	var events []analytics.Event
	if trimmed := bytes.TrimSpace(body); len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &events); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "body must be an event or an array of events")
			return
		}
	} else {
		var e analytics.Event
		if err := json.Unmarshal(trimmed, &e); err != nil {
			respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "body must be an event or an array of events")
			return
		}
		events = []analytics.Event{e}
	}
	if len(events) > maxBatch {
		respondError(w, r, http.StatusRequestEntityTooLarge, "TOO_MANY_EVENTS", "too many events in one request")
		return
	}
	for _, e := range events {
		if e.Name == "" {
			respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "every event needs a name")
			return
		}
	}

	var res eventsResponse
	for _, e := range events {
		if h.reporter.Track(e) {
			res.Accepted++
		} else {
			res.Dropped++
		}
	}
	respondJSON(w, r, http.StatusAccepted, res)
}

// Perf handles POST /api/perf
func (h *TelemetryHandler) Perf(w http.ResponseWriter, r *http.Request) {
	body, ok := readBody(w, r)
	if !ok {
		return
	}
	var s models.PerformanceSample
	if err := json.Unmarshal(body, &s); err != nil {
		respondError(w, r, http.StatusBadRequest, "INVALID_BODY", "body must be a performance sample")
		return
	}
	if s.SampledAt.IsZero() {
		s.SampledAt = h.now()
	}
	h.monitor.Record(s)
	w.WriteHeader(http.StatusNoContent)
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	var buf bytes.Buffer
	_, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, maxTelemetryBody))
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		respondError(w, r, http.StatusRequestEntityTooLarge, "BODY_TOO_LARGE", "request body too large")
		return nil, false
	case err != nil:
		respondError(w, r, http.StatusBadRequest, "BAD_REQUEST", "bad request")
		return nil, false
	}
	return buf.Bytes(), true
}
