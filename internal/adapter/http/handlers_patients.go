package adapthttp

import (
	"net/http"

	"healthtracker/internal/domain"
)

func (s *Server) handleListPatients(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	items, err := s.patients.List(r.Context(), q.Get("sort"), q.Get("risk"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleSearchPatients(w http.ResponseWriter, r *http.Request) {
	items, err := s.patients.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (s *Server) handleCreatePatient(w http.ResponseWriter, r *http.Request) {
	var in domain.PatientInput
	if err := parseJSON(r, &in); err != nil {
		fail(w, r, err)
		return
	}
	p, err := s.patients.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"patient": p})
}

func (s *Server) handleGetPatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := s.patients.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patient": p})
}

func (s *Server) handleUpdatePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var patch domain.PatientPatch
	if err := parseJSON(r, &patch); err != nil {
		fail(w, r, err)
		return
	}
	p, err := s.patients.Update(r.Context(), id, patch)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"patient": p})
}

func (s *Server) handleDeletePatient(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	if err := s.patients.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	s.risk.Forget(id)
	w.WriteHeader(http.StatusNoContent)
}
