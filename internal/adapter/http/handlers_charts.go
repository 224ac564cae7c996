package adapthttp

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
)

func (s *Server) handlePatientCharts(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	unit := r.URL.Query().Get("unit")
	if unit == "" {
		unit = "kg"
	}

	points, err := s.charts.PatientHistory(r.Context(), id, unit)
	if err != nil {
		fail(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"patientId": id,
		"unit":      unit,
		"items":     points,
	})
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		fail(w, r, err)
		return
	}

	// Buffered so a failure mid-export still yields a proper error response.
	var buf bytes.Buffer
	if err := s.export.WriteHealthRecordsCSV(r.Context(), id, &buf); err != nil {
		fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="patient-%s-health-records.csv"`, strconv.FormatInt(id, 10)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}
