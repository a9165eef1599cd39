// Package server exposes composition search runs over HTTP. Each run is a
// job: submitted, polled, optionally cancelled. Results live in memory only.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"

	"github.com/crucible-opt/crucible/internal/composition"
	"github.com/crucible-opt/crucible/internal/config"
	"github.com/crucible-opt/crucible/internal/dataset"
	"github.com/crucible-opt/crucible/internal/logging"
	"github.com/crucible-opt/crucible/internal/optimization"
	"github.com/crucible-opt/crucible/internal/search"
)

// Logger is the logging interface used by the server.
type Logger interface {
	Debug(msg string, fields ...map[string]interface{})
	Info(msg string, fields ...map[string]interface{})
	Warn(msg string, fields ...map[string]interface{})
	Error(msg string, fields ...map[string]interface{})
	Fatal(msg string, fields ...map[string]interface{})
	WithFields(fields map[string]interface{}) *logging.Logger
}

// SearchState tracks one search job. Access is guarded by the server mutex.
type SearchState struct {
	ID          string
	Status      string // "pending", "running", "completed", "failed", "cancelled"
	StartTime   time.Time
	EndTime     *time.Time
	Result      *optimization.Result
	Error       string
	CancelFunc  context.CancelFunc
	LastUpdated time.Time
}

// Server manages search jobs and their HTTP surface.
type Server struct {
	cfg    *config.Config
	logger Logger

	searches   map[string]*SearchState
	searchesMu sync.RWMutex

	// zapLogger feeds the numeric packages' zap output into the service
	// log stream.
	zapLogger *zap.Logger

	started  prometheus.Counter
	finished *prometheus.CounterVec
	duration prometheus.Histogram
}

// NewServer creates a server instance with the given config and logger.
// Metrics are registered on reg.
func NewServer(cfg *config.Config, logger Logger, reg prometheus.Registerer) *Server {
	metrics := promauto.With(reg)
	return &Server{
		cfg:       cfg,
		logger:    logger,
		searches:  make(map[string]*SearchState),
		zapLogger: logging.NewZapLogger(logger.WithFields(map[string]interface{}{"subsystem": "search"})),
		started: metrics.NewCounter(prometheus.CounterOpts{
			Name: "crucible_searches_started_total",
			Help: "Number of search jobs accepted.",
		}),
		finished: metrics.NewCounterVec(prometheus.CounterOpts{
			Name: "crucible_searches_finished_total",
			Help: "Number of search jobs finished, by terminal status.",
		}, []string{"status"}),
		duration: metrics.NewHistogram(prometheus.HistogramOpts{
			Name:    "crucible_search_duration_seconds",
			Help:    "Wall-clock duration of completed search jobs.",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12),
		}),
	}
}

// RegisterRoutes mounts the API.
func (s *Server) RegisterRoutes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleStart)
		r.Get("/search/{id}", s.handleStatus)
		r.Delete("/search/{id}", s.handleCancel)
	})
}

// searchRequest is the submission body. Every field is optional; omitted
// fields fall back to the configured defaults.
type searchRequest struct {
	Budget        *int     `json:"budget,omitempty"`
	InitialPoints *int     `json:"initial_points,omitempty"`
	Seed          *int64   `json:"seed,omitempty"`
	Penalty       *float64 `json:"penalty,omitempty"`
	Bounds        *struct {
		ALo float64 `json:"a_lo"`
		AHi float64 `json:"a_hi"`
		BLo float64 `json:"b_lo"`
		BHi float64 `json:"b_hi"`
	} `json:"bounds,omitempty"`
	Dataset *struct {
		Samples int     `json:"samples"`
		Noise   float64 `json:"noise"`
		Seed    int64   `json:"seed"`
	} `json:"dataset,omitempty"`
}

func (s *Server) handleStart(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}

	params := search.Params{
		Space:         s.cfg.SearchSpace(),
		Budget:        s.cfg.Search.Budget,
		InitialPoints: s.cfg.Search.InitialPoints,
		Seed:          s.cfg.Search.Seed,
		Penalty:       s.cfg.Search.Penalty,
	}
	dsCfg := s.cfg.DatasetConfig()

	if req.Budget != nil {
		params.Budget = *req.Budget
	}
	if req.InitialPoints != nil {
		params.InitialPoints = *req.InitialPoints
	}
	if req.Seed != nil {
		params.Seed = *req.Seed
	}
	if req.Penalty != nil {
		params.Penalty = *req.Penalty
	}
	if req.Bounds != nil {
		params.Space = composition.SearchSpace{
			A: composition.Bounds{Lo: req.Bounds.ALo, Hi: req.Bounds.AHi},
			B: composition.Bounds{Lo: req.Bounds.BLo, Hi: req.Bounds.BHi},
		}
	}
	if req.Dataset != nil {
		dsCfg.Samples = req.Dataset.Samples
		dsCfg.Noise = req.Dataset.Noise
		dsCfg.Seed = req.Dataset.Seed
	}
	dsCfg.Space = params.Space

	// Bound violations are configuration errors: reject before accepting
	// the job.
	if err := params.Space.Validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := fmt.Sprintf("search_%d", time.Now().UnixNano())
	ctx, cancel := context.WithCancel(context.Background())

	state := &SearchState{
		ID:          id,
		Status:      "pending",
		StartTime:   time.Now(),
		CancelFunc:  cancel,
		LastUpdated: time.Now(),
	}

	s.searchesMu.Lock()
	s.searches[id] = state
	s.searchesMu.Unlock()

	s.started.Inc()
	go s.runSearch(ctx, state, dsCfg, params)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{
		"search_id": id,
		"status":    "pending",
	})
}

// runSearch executes one job: synthesize observations, fit, optimize.
func (s *Server) runSearch(ctx context.Context, state *SearchState, dsCfg dataset.Config, params search.Params) {
	start := time.Now()

	s.setStatus(state, "running", nil, "")

	observations, err := dataset.Generate(dsCfg)
	if err != nil {
		s.finish(state, nil, err, start)
		return
	}

	params.Logger = s.zapLogger
	result, err := search.Run(ctx, observations, s.cfg.SurrogateConfig(), params)
	s.finish(state, result, err, start)
}

func (s *Server) setStatus(state *SearchState, status string, result *optimization.Result, errMsg string) {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()
	state.Status = status
	state.Result = result
	state.Error = errMsg
	state.LastUpdated = time.Now()
}

func (s *Server) finish(state *SearchState, result *optimization.Result, err error, start time.Time) {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now

	switch {
	case err == context.Canceled || state.Status == "cancelled":
		state.Status = "cancelled"
	case err != nil:
		state.Status = "failed"
		state.Error = err.Error()
		s.logger.Error("Search failed", map[string]interface{}{
			"search_id": state.ID,
			"error":     err.Error(),
		})
	default:
		state.Status = "completed"
		state.Result = result
		s.logger.Info("Search completed", map[string]interface{}{
			"search_id": state.ID,
			"result":    result.String(),
		})
	}

	s.finished.WithLabelValues(state.Status).Inc()
	s.duration.Observe(time.Since(start).Seconds())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "missing search ID")
		return
	}

	s.searchesMu.RLock()
	state, exists := s.searches[id]
	if !exists {
		s.searchesMu.RUnlock()
		s.respondError(w, http.StatusNotFound, "search not found")
		return
	}

	response := map[string]interface{}{
		"search_id":   state.ID,
		"status":      state.Status,
		"start_time":  state.StartTime.Format(time.RFC3339),
		"last_update": state.LastUpdated.Format(time.RFC3339),
	}
	if state.EndTime != nil {
		response["end_time"] = state.EndTime.Format(time.RFC3339)
	}
	if state.Error != "" {
		response["error"] = state.Error
	}
	if state.Result != nil {
		bl, err := composition.FromVector(state.Result.Best.Params)
		if err == nil {
			response["result"] = map[string]interface{}{
				"a":           bl.A,
				"b":           bl.B,
				"c":           bl.Derived(),
				"score":       state.Result.Best.Score(),
				"evaluations": state.Result.Evaluations,
				"trace":       state.Result.Trace,
			}
		}
	}
	s.searchesMu.RUnlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		s.respondError(w, http.StatusBadRequest, "missing search ID")
		return
	}

	s.searchesMu.Lock()
	state, exists := s.searches[id]
	if !exists {
		s.searchesMu.Unlock()
		s.respondError(w, http.StatusNotFound, "search not found")
		return
	}

	switch state.Status {
	case "completed", "failed", "cancelled":
		status := state.Status
		s.searchesMu.Unlock()
		s.respondError(w, http.StatusConflict, fmt.Sprintf("cannot cancel search with status: %s", status))
		return
	}

	if state.CancelFunc != nil {
		state.CancelFunc()
	}
	state.Status = "cancelled"
	now := time.Now()
	state.EndTime = &now
	state.LastUpdated = now
	s.searchesMu.Unlock()

	s.logger.Info("Search cancelled", map[string]interface{}{
		"search_id": id,
	})

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "cancellation requested",
	})
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.logger.Error("Request error", map[string]interface{}{
		"status":  status,
		"message": message,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error": message,
	})
}

// Close cancels all running searches.
func (s *Server) Close() error {
	s.searchesMu.Lock()
	defer s.searchesMu.Unlock()

	for _, st := range s.searches {
		if st.CancelFunc != nil {
			st.CancelFunc()
		}
	}
	return nil
}
