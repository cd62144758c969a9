package main

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/liamcoop/bpmnconstraints/bpmn"
	"github.com/liamcoop/bpmnconstraints/compiler"
	"github.com/liamcoop/bpmnconstraints/engine"
	"github.com/liamcoop/bpmnconstraints/filter"
	"github.com/liamcoop/bpmnconstraints/internal/logger"
	"github.com/liamcoop/bpmnconstraints/store"
)

// maxDiagramSize bounds the request body of a compile call.
const maxDiagramSize = 10 << 20

type Server struct {
	engine *engine.Engine
	db     *sql.DB // nil with the in-memory store
	router *chi.Mux
}

func NewServer(en *engine.Engine, db *sql.DB) *Server {
	s := &Server{engine: en, db: db}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/api/v1/health", s.handleHealth)
	r.Post("/api/v1/compile", s.handleCompile)

	r.Route("/api/v1/models", func(r chi.Router) {
		r.Get("/", s.handleListModels)
		r.Get("/{modelId}", s.handleGetModel)
		r.Delete("/{modelId}", s.handleDeleteModel)
	})

	s.router = r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.db != nil {
		if err := s.db.PingContext(r.Context()); err != nil {
			respondJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unhealthy", Error: err.Error()})
			return
		}
	}
	respondJSON(w, http.StatusOK, HealthResponse{Status: "healthy", Counters: logger.Snapshot()})
}

// handleCompile compiles the BPMN document in the request body.
func (s *Server) handleCompile(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	req := engine.Request{
		Name:    q.Get("name"),
		Options: s.engine.Defaults(),
		Filter:  q.Get("filter"),
	}

	var err error
	flags := []struct {
		key string
		dst *bool
	}{
		{"transitivity", &req.Options.Transitivity},
		{"skip_named_gateways", &req.Options.SkipNamedGateways},
		{"persist", &req.Persist},
	}
	for _, f := range flags {
		v := q.Get(f.key)
		if v == "" {
			continue
		}
		if *f.dst, err = strconv.ParseBool(v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid "+f.key+" parameter", err)
			return
		}
	}
	if v := q.Get("precedence_order"); v != "" {
		if req.Options.Order, err = compiler.ParseOrder(v); err != nil {
			respondError(w, http.StatusBadRequest, "invalid precedence_order parameter", err)
			return
		}
	}

	body := http.MaxBytesReader(w, r.Body, maxDiagramSize)
	m, err := s.engine.CompileReader(r.Context(), body, req)
	if err != nil {
		respondError(w, statusFor(err), "failed to compile diagram", err)
		return
	}

	status := http.StatusOK
	if req.Persist {
		status = http.StatusCreated
	}
	respondJSON(w, status, CompileResponse{Model: m, Export: store.NewExport(m)})
}

func (s *Server) handleListModels(w http.ResponseWriter, r *http.Request) {
	models, err := s.engine.List(r.Context())
	if err != nil {
		respondError(w, statusFor(err), "failed to list models", err)
		return
	}
	summaries := make([]ModelSummary, 0, len(models))
	for _, m := range models {
		summaries = append(summaries, ModelSummary{
			ID:          m.ID,
			Name:        m.Name,
			Digest:      m.Digest,
			Constraints: len(m.Constraints),
			CreatedAt:   m.CreatedAt,
		})
	}
	respondJSON(w, http.StatusOK, ModelsListResponse{Models: summaries})
}

func (s *Server) handleGetModel(w http.ResponseWriter, r *http.Request) {
	m, err := s.engine.Get(r.Context(), chi.URLParam(r, "modelId"))
	if err != nil {
		respondError(w, statusFor(err), "model not found", err)
		return
	}
	respondJSON(w, http.StatusOK, CompileResponse{Model: m, Export: store.NewExport(m)})
}

func (s *Server) handleDeleteModel(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.Delete(r.Context(), chi.URLParam(r, "modelId")); err != nil {
		respondError(w, statusFor(err), "failed to delete model", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var pe *bpmn.ParseError
	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &pe), errors.Is(err, filter.ErrInvalidExpression):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrAlreadyExists):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	response := ErrorResponse{Error: message}
	if err != nil {
		response.Details = err.Error()
	}

	if status >= 500 {
		logger.ErrorHttp5xx()
		logger.Logger.Error(message, "status", status, "error", err)
	} else {
		logger.WarnHttp4xx(status)
		logger.Debug(message, "status", status, "error", err)
	}
	respondJSON(w, status, response)
}
