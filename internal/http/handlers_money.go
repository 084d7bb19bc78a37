package http

import (
	"net/http"

	"lifeadmin/internal/services"
	"lifeadmin/internal/views"
)

func (s *Server) handleMoney(w http.ResponseWriter, r *http.Request) {
	month := ParseMonthParam(r.URL.Query(), s.now())
	v, err := s.cachedView("money", func() (any, error) {
		st, err := s.store.Snapshot(r.Context())
		if err != nil {
			return nil, err
		}
		return views.BuildMoney(st.Money, st.Settings, month), nil
	}, month)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, v)
}

func (s *Server) handleSetPayday(w http.ResponseWriter, r *http.Request) {
	var body struct {
		DateISO *string `json:"dateISO"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := s.svc.SetPayday(r.Context(), body.DateISO); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleAddFund(w http.ResponseWriter, r *http.Request) {
	var in services.FundInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.svc.AddFund(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, f)
}

func (s *Server) handleUpdateFund(w http.ResponseWriter, r *http.Request) {
	var in services.FundInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.svc.UpdateFund(r.Context(), pathValue(r, "id"), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, f)
}

func (s *Server) handleDeleteFund(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteFund(r.Context(), pathValue(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleContribute(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Amount float64 `json:"amount"`
	}
	if err := decodeJSON(w, r, &body); err != nil {
		s.writeError(w, r, err)
		return
	}
	f, err := s.svc.ContributeToFund(r.Context(), pathValue(r, "id"), body.Amount)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	ok(w, f)
}

func (s *Server) handleAddBudget(w http.ResponseWriter, r *http.Request) {
	var in services.BudgetInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	b, err := s.svc.AddBudget(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, b)
}

func (s *Server) handleDeleteBudget(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteBudget(r.Context(), pathValue(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}

func (s *Server) handleAddTxn(w http.ResponseWriter, r *http.Request) {
	var in services.TxnInput
	if err := decodeJSON(w, r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	t, err := s.svc.AddTransaction(r.Context(), in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	created(w, t)
}

func (s *Server) handleDeleteTxn(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.DeleteTransaction(r.Context(), pathValue(r, "id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	noContent(w)
}
