package http

import (
	"net/http"

	"lifeadmin/internal/groceries"
)

type groceriesResponse struct {
	Items      []groceries.Item     `json:"items"`
	Meta       groceries.Meta       `json:"meta"`
	Active     int                  `json:"active"`
	Categories []groceries.Category `json:"categories"`
}

func (s *Server) handleGroceries(w http.ResponseWriter, r *http.Request) {
	l, err := s.groceries.Load(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	mode, cat := ParseGroceryQuery(r.URL.Query())
	ok(w, groceriesResponse{
		Items:      l.Sorted(mode, cat),
		Meta:       l.Meta,
		Active:     l.Active(),
		Categories: groceries.Categories,
	})
}

func (s *Server) handleAddGrocery(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string             `json:"name"`
		Category groceries.Category `json:"category"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	it, err := s.groceries.Add(r.Context(), body.Name, body.Category)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, it)
}

func (s *Server) handleToggleGrocery(w http.ResponseWriter, r *http.Request) {
	it, err := s.groceries.Toggle(r.Context(), pathValue(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, it)
}

func (s *Server) handleRepeatGrocery(w http.ResponseWriter, r *http.Request) {
	it, err := s.groceries.Repeat(r.Context(), pathValue(r, "id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, it)
}

func (s *Server) handleRemoveGrocery(w http.ResponseWriter, r *http.Request) {
	if err := s.groceries.Remove(r.Context(), pathValue(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleClearBought(w http.ResponseWriter, r *http.Request) {
	n, err := s.groceries.ClearBought(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, map[string]int{"removed": n})
}

func (s *Server) handleResetGroceries(w http.ResponseWriter, r *http.Request) {
	if err := s.groceries.Reset(r.Context()); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleGroceryMeta(w http.ResponseWriter, r *http.Request) {
	var meta groceries.Meta
	if err := decodeJSON(w, r, &meta); err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := s.groceries.SetMeta(r.Context(), meta)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, out)
}
