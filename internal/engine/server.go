package engine

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/projektcopilot/backend/internal/model"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Server sets up routing and middleware for the REST API.
type Server struct {
	engine  *Engine
	router  *mux.Router
	handler http.Handler
}

// NewServer creates the HTTP server for the engine.
func NewServer(engine *Engine) *Server {
	s := &Server{
		engine: engine,
		router: mux.NewRouter(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	// CORS wraps outside route matching so preflight requests get
	// answered even though no OPTIONS routes are registered.
	s.handler = s.corsMiddleware(s.router)
	return s
}

// Router returns the fully wired HTTP handler.
func (s *Server) Router() http.Handler {
	return s.handler
}

func (s *Server) setupMiddleware() {
	s.router.Use(s.loggingMiddleware)
	s.router.Use(s.metricsMiddleware)
}

func (s *Server) setupRoutes() {
	s.router.HandleFunc("/", s.handleRoot).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := s.router.PathPrefix("/api/v1").Subrouter()

	// Project listing filters by id so a client can fetch a known
	// subset with the same query shape as the child resources.
	s.registerResource(api, "projects", NewResourceHandlers(s.engine, model.Project, []filterSpec{
		{param: "project_id", column: "id"},
	}))
	s.registerResource(api, "scenarios", NewResourceHandlers(s.engine, model.Scenario, []filterSpec{
		{param: "project_id", column: "project_id"},
	}))
	s.registerResource(api, "analyses", NewResourceHandlers(s.engine, model.Analysis, []filterSpec{
		{param: "scenario_id", column: "scenario_id"},
	}))
	s.registerResource(api, "sessions", NewResourceHandlers(s.engine, model.Session, []filterSpec{
		{param: "project_id", column: "project_id"},
		{param: "analysis_id", column: "analysis_id"},
	}))
	s.registerResource(api, "requirements", NewResourceHandlers(s.engine, model.Requirement, []filterSpec{
		{param: "project_id", column: "project_id"},
		{param: "session_id", column: "session_id"},
		{param: "classification", column: "classification"},
	}))
	s.registerResource(api, "wricef-items", NewResourceHandlers(s.engine, model.WricefItem, []filterSpec{
		{param: "project_id", column: "project_id"},
	}))
	s.registerResource(api, "config-items", NewResourceHandlers(s.engine, model.ConfigItem, []filterSpec{
		{param: "project_id", column: "project_id"},
	}))
	s.registerResource(api, "tests", NewResourceHandlers(s.engine, model.TestManagement, []filterSpec{
		{param: "project_id", column: "project_id"},
		{param: "test_type", column: "test_type"},
	}))
	s.registerResource(api, "test-cycles", NewResourceHandlers(s.engine, model.TestCycle, []filterSpec{
		{param: "project_id", column: "project_id"},
	}))
	s.registerResource(api, "test-executions", NewResourceHandlers(s.engine, model.TestExecution, []filterSpec{
		{param: "test_cycle_id", column: "test_cycle_id"},
	}))

	ch := NewConversionHandlers(s.engine)
	api.HandleFunc("/requirements/{item_id}/convert", ch.ConvertRequirement).Methods("POST")
	api.HandleFunc("/config-items/{item_id}/convert-to-test", ch.ConvertConfigItemToTest).Methods("POST")
	api.HandleFunc("/wricef-items/{item_id}/convert-to-test", ch.ConvertWricefItemToTest).Methods("POST")

	dh := NewDashboardHandlers(s.engine)
	api.HandleFunc("/dashboard/stats", dh.Stats).Methods("GET")

	// Session working documents live under the owning session for
	// reads and creates, and at the top level for edits and deletes.
	s.registerSessionResource(api, "questions", NewSessionResourceHandlers(s.engine, model.Question))
	s.registerSessionResource(api, "fitgap", NewSessionResourceHandlers(s.engine, model.FitGap))
	s.registerSessionResource(api, "decisions", NewSessionResourceHandlers(s.engine, model.Decision))
	s.registerSessionResource(api, "risks", NewSessionResourceHandlers(s.engine, model.Risk))
	s.registerSessionResource(api, "actions", NewSessionResourceHandlers(s.engine, model.Action))
	s.registerSessionResource(api, "attendees", NewSessionResourceHandlers(s.engine, model.Attendee))
	s.registerSessionResource(api, "agenda", NewSessionResourceHandlers(s.engine, model.Agenda))
}

func (s *Server) registerResource(api *mux.Router, path string, h *ResourceHandlers) {
	api.HandleFunc("/"+path, h.List).Methods("GET")
	api.HandleFunc("/"+path, h.Create).Methods("POST")
	api.HandleFunc("/"+path+"/{item_id}", h.GetByID).Methods("GET")
	api.HandleFunc("/"+path+"/{item_id}", h.Update).Methods("PUT")
	api.HandleFunc("/"+path+"/{item_id}", h.Delete).Methods("DELETE")
}

func (s *Server) registerSessionResource(api *mux.Router, path string, h *ResourceHandlers) {
	api.HandleFunc("/sessions/{session_id}/"+path, h.ListByParent).Methods("GET")
	api.HandleFunc("/sessions/{session_id}/"+path, h.CreateUnderParent).Methods("POST")
	api.HandleFunc("/"+path+"/{item_id}", h.Update).Methods("PUT")
	api.HandleFunc("/"+path+"/{item_id}", h.Delete).Methods("DELETE")
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	s.engine.writeJSONResponse(w, http.StatusOK, RootResponse{
		Message: ServiceName + " API",
		Version: Version,
		Health:  "/health",
		Metrics: "/metrics",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	for name, check := range s.engine.HealthChecks() {
		s.engine.checker.RunCheck(name, check)
	}
	s.engine.writeJSONResponse(w, http.StatusOK, HealthResponse{
		Status:  string(s.engine.checker.GetOverallStatus()),
		Version: Version,
	})
}

func (s *Server) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		for _, allowed := range s.engine.config.CORS.AllowedOrigins {
			if allowed == "*" || allowed == origin {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
				break
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()[:8]
		start := time.Now()

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		if log := s.engine.logger; log != nil {
			log.Debugf("[%s] %s %s -> %d (%s)",
				requestID, r.Method, r.URL.Path, recorder.status, time.Since(start))
		}
	})
}

func (s *Server) metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := r.URL.Path
		if current := mux.CurrentRoute(r); current != nil {
			if tmpl, err := current.GetPathTemplate(); err == nil {
				route = tmpl
			}
		}

		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		observeRequest(r.Method, route, recorder.status, time.Since(start))
	})
}
