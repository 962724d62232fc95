package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

const defaultEventLimit = 50

// /api/v1/health
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	stale := 0
	for _, st := range s.reg.List() {
		if st.Stale {
			stale++
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ok":     stale == 0,
		"stale":  stale,
		"uptime": time.Since(s.start).Round(time.Second).String(),
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

// /api/v1/sensors
func (s *Server) handleSensors(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": s.reg.List()})
}

// /api/v1/sensors/{kind}/{leaf}
func (s *Server) handleSensor(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	st, ok := s.reg.Get(name)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"ok": false, "error": "sensor not found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": st})
}

// /api/v1/events?limit=N
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	limit := defaultEventLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]any{"ok": false, "error": "limit must be a positive integer"})
			return
		}
		limit = n
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "data": s.evbuf.Pull(time.Time{}, limit)})
}
