// internal/api/server.go
package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/v-i-n-a-y-29/HackVeda/internal/common/errors"
	"github.com/v-i-n-a-y-29/HackVeda/internal/common/logger"
	"github.com/v-i-n-a-y-29/HackVeda/internal/models"
	buildoverfishingchart "github.com/v-i-n-a-y-29/HackVeda/internal/workers/overfishing/build-overfishing-chart"
	routemarineinput "github.com/v-i-n-a-y-29/HackVeda/internal/workers/orchestration/route-marine-input"
)

const (
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 10 << 20
)

// Router is the orchestration surface the API forwards to.
type Router interface {
	Route(ctx context.Context, inputType models.InputType, data map[string]interface{}) models.RoutedResponse
	AutoRoute(ctx context.Context, data map[string]interface{}) models.RoutedResponse
}

// ReadinessCheck reports whether a dependency can serve traffic.
type ReadinessCheck func(ctx context.Context) error

type Options struct {
	Router Router
	Checks map[string]ReadinessCheck
	Logger logger.Logger
}

type Server struct {
	router Router
	checks map[string]ReadinessCheck
	logger logger.Logger
}

func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Server{
		router: opts.Router,
		checks: opts.Checks,
		logger: logger.Named(log, "api"),
	}
}

// Handler returns the mux serving the analysis API, probes and metrics.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/route", s.handleRoute)
	mux.HandleFunc("POST /api/v1/overfishing/chart", s.handleChart)
	mux.HandleFunc("GET /api/v1/overfishing/chart/sample", s.handleSampleChart)
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.Handler())
	return s.withRequestID(mux)
}

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r)
	})
}

// handleRoute always answers 200 with the routed envelope; input problems are
// reported inside it. Only an unreadable body is a 400.
func (s *Server) handleRoute(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	input := routemarineinput.InputFromMap(body)
	var resp models.RoutedResponse
	if input.InputType == "" {
		resp = s.router.AutoRoute(r.Context(), input.Data)
	} else {
		resp = s.router.Route(r.Context(), input.InputType, input.Data)
	}

	s.logger.Info("route request served", map[string]interface{}{
		"requestId": w.Header().Get(RequestIDHeader),
		"inputType": string(resp.InputType),
		"error":     resp.Error,
	})
	writeJSON(w, http.StatusOK, resp)
}

// handleChart accepts {"csv": "..."} or {"telemetry_list": [...]}.
func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	body, err := decodeBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var chart *buildoverfishingchart.Chart
	if csvText, ok := body["csv"].(string); ok {
		chart, err = buildoverfishingchart.BuildFromCSV(csvText)
	} else {
		var readings []models.TelemetryReading
		readings, err = models.ReadingsFromList(body["telemetry_list"])
		if err == nil {
			chart, err = buildoverfishingchart.Build(readings)
		}
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, buildoverfishingchart.Output{Chart: chart})
}

func (s *Server) handleSampleChart(w http.ResponseWriter, r *http.Request) {
	chart, err := buildoverfishingchart.Build(buildoverfishingchart.SampleReadings())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, buildoverfishingchart.Output{Chart: chart})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	failures := map[string]string{}
	for name, check := range s.checks {
		if err := check(ctx); err != nil {
			failures[name] = err.Error()
		}
	}

	if len(failures) > 0 {
		s.logger.Warn("readiness check failed", map[string]interface{}{"failures": failures})
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":   "not_ready",
			"failures": failures,
			"time":     time.Now().Format(time.RFC3339),
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
		"time":   time.Now().Format(time.RFC3339),
	})
}

func decodeBody(w http.ResponseWriter, r *http.Request) (map[string]interface{}, error) {
	var body map[string]interface{}
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		return nil, errors.NewInvalidInputError("request body must be a JSON object: " + err.Error())
	}
	if body == nil {
		body = map[string]interface{}{}
	}
	return body, nil
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	stdErr, ok := errors.AsStandard(err)
	if !ok {
		stdErr = errors.NewInternalError(err)
	}

	status := http.StatusInternalServerError
	if errors.IsInputError(stdErr) {
		status = http.StatusBadRequest
	}

	s.logger.Warn("request failed", map[string]interface{}{
		"requestId": w.Header().Get(RequestIDHeader),
		"path":      r.URL.Path,
		"errorCode": string(stdErr.Code),
	})
	writeJSON(w, status, map[string]interface{}{"error": stdErr})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
