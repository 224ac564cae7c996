package adapthttp

import (
	"net/http"
)

const riskHistoryLimit = 20

func (s *Server) handleGetRisk(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if _, err := s.patients.Get(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	current, err := s.risk.Current(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	history, err := s.risk.History(r.Context(), id, intQuery(r, "limit", riskHistoryLimit))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"current": current, "history": history})
}

func (s *Server) handleReassess(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if _, err := s.patients.Get(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	a, err := s.risk.Reassess(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"assessment": a})
}

func (s *Server) handleDueAssessments(w http.ResponseWriter, r *http.Request) {
	items, err := s.risk.Due(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}
