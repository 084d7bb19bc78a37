package http

import (
	"net/http"

	"lifeadmin/internal/views"
)

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, views.BuildDashboard(st, s.session.get(), s.now()))
}

// handleDismiss hides a dashboard task until restart.
func (s *Server) handleDismiss(w http.ResponseWriter, r *http.Request) {
	id := pathValue(r, "id")
	if id == "" {
		UnprocessableEntityError("task id is required").Write(w)
		return
	}
	ts := s.now().UnixMilli()
	s.session.update(func(sess views.Session) views.Session { return sess.Dismiss(id, ts) })
	noContent(w)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, st.Settings)
}

// handleUpdateSettings merges a partial settings object; unknown or invalid
// values fall back to defaults.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch map[string]any
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	set, err := s.svc.UpdateSettings(r.Context(), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, set)
}
