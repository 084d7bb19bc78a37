package http

import (
	"net/http"
	"strconv"

	"lifeadmin/internal/core"
	"lifeadmin/internal/services"
	"lifeadmin/internal/views"
)

type homeResponse struct {
	Stats    views.HomeStats    `json:"stats"`
	Shopping views.ShoppingList `json:"shopping"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	q := ParseShoppingQuery(r.URL.Query())
	v, err := s.cachedView("home", func() (any, error) {
		st, err := s.store.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return homeResponse{Stats: views.Home(st.Home), Shopping: views.Shopping(st.Home, q)}, nil
	}, strconv.FormatBool(q.NextOnly), strconv.FormatBool(q.EssentialsOnly), string(q.Sort))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, v)
}

// handleAddRoomItem adds to the essentials list unless ?list=extras.
func (s *Server) handleAddRoomItem(w http.ResponseWriter, r *http.Request) {
	var in services.RoomItemInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	list := queryString(r.URL.Query(), "list")
	if list == "" {
		list = services.ListEssentials
	}
	it, err := s.svc.AddRoomItem(r.Context(), pathValue(r, "room"), list, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, it)
}

func (s *Server) handleSetRoomItem(w http.ResponseWriter, r *http.Request) {
	var patch services.RoomItemPatch
	if err := decodeJSON(w, r, &patch); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.svc.SetRoomItem(r.Context(), pathValue(r, "room"), pathValue(r, "id"), patch)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, it)
}

func (s *Server) handleDeleteRoomItem(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteRoomItem(r.Context(), pathValue(r, "room"), pathValue(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleRoomNotes(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Notes string `json:"notes"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.SetRoomNotes(r.Context(), pathValue(r, "room"), body.Notes); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

type skillsResponse struct {
	Stats      views.SkillStats              `json:"stats"`
	Categories map[string]core.SkillCategory `json:"categories"`
}

func (s *Server) handleSkills(w http.ResponseWriter, r *http.Request) {
	v, err := s.cachedView("skills", func() (any, error) {
		st, err := s.store.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return skillsResponse{Stats: views.Skills(st.Skills), Categories: st.Skills.Categories}, nil
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, v)
}

func (s *Server) handleAddSkill(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Category string `json:"category"`
		Name     string `json:"name"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	sk, err := s.svc.AddSkill(r.Context(), body.Category, body.Name)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, sk)
}

func (s *Server) handleSkillLevel(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Level core.SkillLevel `json:"level"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	sk, err := s.svc.SetSkillLevel(r.Context(), pathValue(r, "category"), pathValue(r, "id"), body.Level)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, sk)
}

func (s *Server) handleDeleteSkill(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteSkill(r.Context(), pathValue(r, "category"), pathValue(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleWins(w http.ResponseWriter, r *http.Request) {
	month := ParseMonthParam(r.URL.Query(), s.now())
	v, err := s.cachedView("wins", func() (any, error) {
		st, err := s.store.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return views.MonthlyWins(st, month), nil
	}, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, v)
}

func (s *Server) handleLogWin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type  string         `json:"type"`
		Label string         `json:"label"`
		Delta float64        `json:"delta"`
		Meta  map[string]any `json:"meta"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	ev, err := s.svc.LogWin(r.Context(), body.Type, body.Label, body.Delta, body.Meta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, ev)
}
