package adapthttp

import (
	"net/http"

	"healthtracker/internal/domain"
)

func (s *Server) handleListScreenings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	items, err := s.screenings.List(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateScreening(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var in domain.ScreeningInput
	if err := parseJSON(r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.PatientID = id
	sc, err := s.screenings.Record(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"screening": sc})
}

func (s *Server) handleListDiabetesMetrics(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	items, err := s.diabetes.List(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreateDiabetesMetric(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var in domain.DiabetesMetricInput
	if err := parseJSON(r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.PatientID = id
	m, err := s.diabetes.Record(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"metric": m})
}
