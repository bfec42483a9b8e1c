package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/ebph-project/ebphd/internal/domain"
	"github.com/ebph-project/ebphd/internal/profile"
	"github.com/ebph-project/ebphd/internal/settings"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	if s.checker != nil && !s.checker.IsHealthy() {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, map[string]any{"status": statusString(status)})
}

func statusString(code int) string {
	if code == http.StatusOK {
		return "ok"
	}
	return "degraded"
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := s.stg.Get()
	writeJSON(w, http.StatusOK, map[string]any{
		"monitoring":    snap.Monitoring,
		"enforcing":     snap.Enforcing,
		"profiles":      s.reg.Count(),
		"tasks":         s.reg.TaskCount(),
		"events_dropped": s.bus.Dropped(),
	})
}

func (s *Server) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// ─── Profiles ───────────────────────────────────────────────────────────────

func parseProfileKey(r *http.Request) (profile.ProfileKey, error) {
	raw := chi.URLParam(r, "key")
	v, err := strconv.ParseUint(raw, 16, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid profile key %q: %w", raw, err)
	}
	return profile.ProfileKey(v), nil
}

type profileSummary struct {
	Key         string `json:"key"`
	ExePath     string `json:"exe_path"`
	Status      string `json:"status"`
	TrainCount  uint64 `json:"train_count"`
	NormalCount uint64 `json:"normal_count"`
	Anomalies   uint64 `json:"anomalies"`
	Sequences   uint64 `json:"sequences"`
}

func (s *Server) handleProfileList(w http.ResponseWriter, r *http.Request) {
	profiles := s.reg.All()
	out := make([]profileSummary, 0, len(profiles))
	for _, p := range profiles {
		p.Lock()
		out = append(out, profileSummary{
			Key:         fmt.Sprintf("%016x", uint64(p.Key)),
			ExePath:     p.ExePath,
			Status:      p.Status.String(),
			TrainCount:  p.TrainCount,
			NormalCount: p.NormalCount,
			Anomalies:   p.Anomalies,
			Sequences:   p.Sequences,
		})
		p.Unlock()
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleProfileForget(w http.ResponseWriter, r *http.Request) {
	key, err := parseProfileKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.reg.Forget(key)
	if err := s.store.Forget(key); err != nil && err != domain.ErrProfileNotFound {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "forgotten"})
}

func (s *Server) profileTransition(w http.ResponseWriter, r *http.Request, apply func(*profile.Profile) profile.Transition) {
	key, err := parseProfileKey(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, ok := s.reg.Lookup(key)
	if !ok {
		writeError(w, http.StatusNotFound, domain.ErrProfileNotFound)
		return
	}
	p.Lock()
	wasTraining := p.Status == profile.StatusTraining
	anomalies := p.Anomalies
	tr := apply(p)
	status := p.Status.String()
	var ev domain.Event
	switch {
	case tr == profile.TransitionToFrozen:
		ev = domain.StartNormalEvent{Key: key, TrainCount: p.TrainCount, LastModCount: p.LastModCount, ProfileCount: p.TrainCount, Sequences: p.Sequences}
	case tr == profile.TransitionToTraining && !wasTraining:
		ev = domain.StopNormalEvent{Key: key, Anomalies: anomalies, AnomalyLimit: s.stg.Get().AnomalyLimit}
	}
	p.Unlock()
	if ev != nil {
		s.bus.Publish(ev)
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status":     status,
		"transition": tr != profile.NoTransition,
	})
}

func (s *Server) handleProfileNormalize(w http.ResponseWriter, r *http.Request) {
	s.profileTransition(w, r, (*profile.Profile).Normalize)
}

func (s *Server) handleProfileSensitize(w http.ResponseWriter, r *http.Request) {
	s.profileTransition(w, r, (*profile.Profile).Sensitize)
}

func (s *Server) handleProfileTolerize(w http.ResponseWriter, r *http.Request) {
	s.profileTransition(w, r, (*profile.Profile).Tolerize)
}

// ─── Settings ───────────────────────────────────────────────────────────────

// handleSettingsSet mirrors original_source/ebph/commands/ebph_admin.py's
// `requests.put(.../settings/{name}/{value})` wire contract.
func (s *Server) handleSettingsSet(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	raw := chi.URLParam(r, "value")

	value, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Errorf("invalid value %q: %w", raw, err))
		return
	}

	result, err := s.stg.Set(name, value)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, err)
		return
	}

	msg := "changed"
	if result == settings.Unchanged {
		msg = "unchanged"
	}
	writeJSON(w, http.StatusOK, map[string]string{"result": msg})
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

type taskSummary struct {
	Tid        int32  `json:"tid"`
	Pid        int32  `json:"pid"`
	ProfileKey string `json:"profile_key"`
	Count      uint64 `json:"count"`
}

func (s *Server) handleTasks(w http.ResponseWriter, r *http.Request) {
	tasks := s.reg.Tasks()
	out := make([]taskSummary, 0, len(tasks))
	for _, ts := range tasks {
		out = append(out, taskSummary{
			Tid:        ts.Tid,
			Pid:        ts.Pid,
			ProfileKey: fmt.Sprintf("%016x", uint64(ts.ProfileKey)),
			Count:      ts.Window.Count(),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

// ─── Events (SSE) ───────────────────────────────────────────────────────────

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, fmt.Errorf("streaming unsupported"))
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-s.bus.Events():
			if !ok {
				return
			}
			payload, err := json.Marshal(ev)
			if err != nil {
				continue
			}
			id := uuid.New().String()[:8]
			fmt.Fprintf(w, "id: %s\nevent: %s\ndata: %s\n\n", id, ev.EventKind(), payload)
			flusher.Flush()
		}
	}
}
