package adapthttp

import (
	"errors"
	"net/http"

	"healthtracker/internal/domain"
)

func (s *Server) handleListHealthRecords(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	items, err := s.records.History(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

// handleCreateHealthRecord stores a reading and returns it with the
// assessment it triggered. A failed assessment does not undo the reading:
// the response is still 201, with assessment null and assessmentError set.
func (s *Server) handleCreateHealthRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	var in domain.HealthReadingInput
	if err := parseJSON(r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.PatientID = id

	reading, assessment, err := s.records.Record(r.Context(), in)
	if err != nil && !errors.Is(err, domain.ErrAssessmentFailed) {
		fail(w, r, err)
		return
	}

	body := map[string]any{"reading": reading, "assessment": assessment}
	if err != nil {
		body["assessmentError"] = domain.ErrAssessmentFailed.Error()
	}
	writeJSON(w, http.StatusCreated, body)
}

func (s *Server) handleHealthRecordOverview(w http.ResponseWriter, r *http.Request) {
	rows, err := s.records.Overview(r.Context())
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": rows})
}
