package http

import (
	"net/http"
	"time"

	"lifeadmin/internal/cache"
	"lifeadmin/internal/core"
	"lifeadmin/internal/services"
	"lifeadmin/internal/views"
)

func (s *Server) now() time.Time { return s.store.Now()() }

// cachedView memoizes a session-independent view per store fingerprint and
// day. Before the first load there is no fingerprint and nothing is cached.
func (s *Server) cachedView(view string, fn func() (any, error), params ...string) (any, error) {
	fp := s.store.Fingerprint()
	if fp == "" {
		return fn()
	}
	params = append(params, core.TodayISO(s.now()))
	return s.views.GetOrCompute(cache.ViewKey(fp, view, params...), fn)
}

func (s *Server) handleAdminList(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	q, sess := ParseAdminQuery(r.URL.Query(), s.session.get())
	ok(w, views.BuildAdminList(st.LifeAdmin.Items, q, st.Settings, sess, s.now()))
}

func (s *Server) handleAdminAlerts(w http.ResponseWriter, r *http.Request) {
	v, err := s.cachedView("alerts", func() (any, error) {
		st, err := s.store.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return views.SmartAlerts(st.LifeAdmin.Items, s.now()), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, map[string]any{"alerts": v})
}

func (s *Server) handleAdminNext(w http.ResponseWriter, r *http.Request) {
	v, err := s.cachedView("next", func() (any, error) {
		st, err := s.store.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return views.BuildNextSteps(st.LifeAdmin.Items, s.now()), nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, v)
}

type calmResponse struct {
	On     bool `json:"on"`
	Manual bool `json:"manual"`
	Urgent int  `json:"urgent"`
}

func (s *Server) calmState(r *http.Request) (calmResponse, error) {
	st, err := s.store.Snapshot(r.Context())
	if err != nil {
		return calmResponse{}, err
	}
	now := s.now()
	on, manual := views.CalmMode(st.LifeAdmin.Items, st.Settings, s.session.get(), now)
	return calmResponse{On: on, Manual: manual, Urgent: views.UrgentCount(st.LifeAdmin.Items, now)}, nil
}

func (s *Server) handleCalm(w http.ResponseWriter, r *http.Request) {
	resp, err := s.calmState(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, resp)
}

// handleSetCalm sets the manual override; {"on": null} returns to auto mode.
func (s *Server) handleSetCalm(w http.ResponseWriter, r *http.Request) {
	var body struct {
		On *bool `json:"on"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	s.session.update(func(sess views.Session) views.Session {
		sess.CalmOverride = body.On
		return sess
	})
	s.handleCalm(w, r)
}

func (s *Server) handleNudge(w http.ResponseWriter, r *http.Request) {
	st, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	id := pathValue(r, "id")
	i := st.FindItem(id)
	if i < 0 {
		NotFoundError("item not found").Write(w)
		return
	}
	it := st.LifeAdmin.Items[i]
	view := views.Describe(it, s.now())
	ok(w, map[string]any{
		"item":    view,
		"due":     views.NudgeDue(it, view.DaysUntil),
		"message": view.Nudge,
	})
}

func (s *Server) handleTemplates(w http.ResponseWriter, r *http.Request) {
	ok(w, map[string]any{"templates": services.TemplateKeys()})
}

func (s *Server) handleAddFromTemplate(w http.ResponseWriter, r *http.Request) {
	it, err := s.svc.AddFromTemplate(r.Context(), pathValue(r, "key"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, it)
}

func (s *Server) handleAddItem(w http.ResponseWriter, r *http.Request) {
	var in services.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.svc.AddItem(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, it)
}

func (s *Server) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	var in services.ItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.svc.UpdateItem(r.Context(), pathValue(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, it)
}

func (s *Server) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteItem(r.Context(), pathValue(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleMarkDone(w http.ResponseWriter, r *http.Request) {
	it, err := s.svc.MarkDone(r.Context(), pathValue(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, it)
}

// handleArchive archives by default; {"archived": false} restores the item.
func (s *Server) handleArchive(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Archived *bool `json:"archived"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	archived := body.Archived == nil || *body.Archived
	it, err := s.svc.SetArchived(r.Context(), pathValue(r, "id"), archived)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, it)
}
