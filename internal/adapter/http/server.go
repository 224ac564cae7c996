package adapthttp

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"healthtracker/internal/app"
)

// Services bundles the application services the adapter drives.
type Services struct {
	Patients   *app.PatientService
	Records    *app.HealthRecordService
	Risk       *app.RiskService
	Screenings *app.ScreeningService
	Diabetes   *app.DiabetesService
	Charts     *app.ChartsService
	Export     *app.ExportService
	Auth       *app.AuthService
}

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RequestObserver records served requests (metrics).
type RequestObserver interface {
	ObserveRequest(method, route string, status int, elapsed time.Duration)
}

// Server is the driving HTTP adapter that routes requests to application
// services.
type Server struct {
	patients   *app.PatientService
	records    *app.HealthRecordService
	risk       *app.RiskService
	screenings *app.ScreeningService
	diabetes   *app.DiabetesService
	charts     *app.ChartsService
	export     *app.ExportService
	authSvc    *app.AuthService
	webDir     string

	log            zerolog.Logger
	observer       RequestObserver
	metricsHandler http.Handler
	pinger         Pinger
	oidcConfig     OIDCConfig
	disableAuth    bool
	forwardAuth    bool
}

// New creates a Server wired to the given application services.
func New(svc Services, webDir string) *Server {
	return &Server{
		patients:   svc.Patients,
		records:    svc.Records,
		risk:       svc.Risk,
		screenings: svc.Screenings,
		diabetes:   svc.Diabetes,
		charts:     svc.Charts,
		export:     svc.Export,
		authSvc:    svc.Auth,
		webDir:     webDir,
		log:        zerolog.Nop(),
	}
}

// WithLogger sets the request logger.
func (s *Server) WithLogger(l zerolog.Logger) *Server {
	s.log = l
	return s
}

// WithMetrics records every API request on o and serves h at /metrics.
func (s *Server) WithMetrics(o RequestObserver, h http.Handler) *Server {
	s.observer = o
	s.metricsHandler = h
	return s
}

// WithPinger includes the store in /api/health.
func (s *Server) WithPinger(p Pinger) *Server {
	s.pinger = p
	return s
}

// WithOIDC enables SSO login.
func (s *Server) WithOIDC(cfg OIDCConfig) *Server {
	s.oidcConfig = cfg
	return s
}

// WithForwardAuth trusts the Remote-User header of an authenticating proxy.
func (s *Server) WithForwardAuth() *Server {
	s.forwardAuth = true
	return s
}

// WithoutAuth disables authentication (tests and local development).
func (s *Server) WithoutAuth() *Server {
	s.disableAuth = true
	return s
}

// Handler returns the root http.Handler for the application.
func (s *Server) Handler() http.Handler {
	api := http.NewServeMux()
	s.route(api, "GET /health", s.handleHealth)
	s.route(api, "POST /auth/login", s.handleLogin)
	s.route(api, "POST /auth/logout", s.handleLogout)
	s.route(api, "POST /auth/setup", s.handleSetupUser)
	s.route(api, "GET /auth/config", s.handleConfig)
	s.route(api, "GET /auth/sso/login", s.handleSSOLogin)
	s.route(api, "GET /auth/sso/callback", s.handleSSOCallback)

	protected := http.NewServeMux()
	s.route(protected, "GET /auth/me", s.handleMe)

	s.route(protected, "GET /patients", s.handleListPatients)
	s.route(protected, "POST /patients", s.handleCreatePatient)
	s.route(protected, "GET /patients/search", s.handleSearchPatients)
	s.route(protected, "GET /patients/{id}", s.handleGetPatient)
	s.route(protected, "PUT /patients/{id}", s.handleUpdatePatient)
	s.route(protected, "DELETE /patients/{id}", s.handleDeletePatient)

	s.route(protected, "GET /patients/{id}/health-records", s.handleListHealthRecords)
	s.route(protected, "POST /patients/{id}/health-records", s.handleCreateHealthRecord)
	s.route(protected, "GET /health-records", s.handleHealthRecordOverview)

	s.route(protected, "GET /patients/{id}/risk", s.handleGetRisk)
	s.route(protected, "POST /patients/{id}/risk/reassess", s.handleReassess)
	s.route(protected, "GET /risk/due", s.handleDueAssessments)

	s.route(protected, "GET /patients/{id}/screenings", s.handleListScreenings)
	s.route(protected, "POST /patients/{id}/screenings", s.handleCreateScreening)
	s.route(protected, "GET /patients/{id}/diabetes-metrics", s.handleListDiabetesMetrics)
	s.route(protected, "POST /patients/{id}/diabetes-metrics", s.handleCreateDiabetesMetric)

	s.route(protected, "GET /patients/{id}/charts", s.handlePatientCharts)
	s.route(protected, "GET /patients/{id}/export.csv", s.handleExportCSV)

	api.Handle("/", s.authMiddleware(protected))

	root := http.NewServeMux()
	root.Handle("/api/", http.StripPrefix("/api", limitBody(MaxBodyBytes, api)))
	if s.metricsHandler != nil {
		root.Handle("GET /metrics", s.metricsHandler)
	}
	root.Handle("/", spaFromDisk(s.webDir))

	return s.recoverMiddleware(s.loggingMiddleware(withNoCache(root)))
}

// route registers h under pattern, labelled with the pattern for metrics.
func (s *Server) route(mux *http.ServeMux, pattern string, h http.HandlerFunc) {
	if s.observer == nil {
		mux.HandleFunc(pattern, h)
		return
	}
	mux.Handle(pattern, s.metricsMiddleware(pattern, h))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.pinger == nil {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()
	if err := s.pinger.Ping(ctx); err != nil {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("health check: store unreachable")
		writeJSON(w, http.StatusServiceUnavailable, map[string]any{"ok": false, "db": "unreachable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "db": "ok"})
}
