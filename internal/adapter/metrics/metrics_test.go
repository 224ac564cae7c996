package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"healthtracker/internal/domain"
)

func TestObserveAssessment(t *testing.T) {
	m := New()
	m.ObserveAssessment(domain.RiskAssessment{RiskLevel: domain.RiskHigh, CalculatedScore: 5})
	m.ObserveAssessment(domain.RiskAssessment{RiskLevel: domain.RiskHigh, CalculatedScore: 4})
	m.ObserveAssessment(domain.RiskAssessment{RiskLevel: domain.RiskLow, CalculatedScore: 0})

	assert.Equal(t, 2.0, testutil.ToFloat64(m.assessments.WithLabelValues("HIGH")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.assessments.WithLabelValues("LOW")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.assessments.WithLabelValues("MEDIUM")))
}

func TestObserveRequestAndHandler(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/patients", http.StatusOK, 12*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/patients", "200")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthtracker_http_requests_total")
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
