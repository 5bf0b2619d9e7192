// Package server exposes the comparison pipeline over HTTP. Runs are
// recorded in a history store so past comparisons can be listed and
// fetched.
package server

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	apperrors "github.com/kastman/sbml-diff/pkg/errors"
	"github.com/kastman/sbml-diff/pkg/pipeline"
)

// Server handles comparison requests.
type Server struct {
	runner *pipeline.Runner
	store  Store
	logger *log.Logger
	router chi.Router
}

// New creates a server around a pipeline runner and a history store.
func New(runner *pipeline.Runner, store Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	s := &Server{runner: runner, store: store, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Get("/healthz", s.handleHealth)
	r.Route("/api", func(r chi.Router) {
		r.Post("/compare", s.handleCompare)
		r.Get("/runs", s.handleListRuns)
		r.Get("/runs/{id}", s.handleGetRun)
	})

	s.router = r
	return s
}

// Handler returns the HTTP handler for mounting or serving.
func (s *Server) Handler() http.Handler { return s.router }

type documentPayload struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

type compareRequest struct {
	Documents []documentPayload `json:"documents"`
	Options   pipeline.Options  `json:"options"`
}

type compareResponse struct {
	ID             string            `json:"id"`
	HasDifferences bool              `json:"has_differences"`
	Renamed        int               `json:"renamed,omitempty"`
	Artifacts      map[string]string `json:"artifacts"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompare(w http.ResponseWriter, r *http.Request) {
	var req compareRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "invalid request body")
		return
	}
	if len(req.Documents) == 0 {
		writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "no documents provided")
		return
	}

	docs := make([]pipeline.Document, len(req.Documents))
	names := make([]string, len(req.Documents))
	for i, d := range req.Documents {
		if err := apperrors.ValidateDocumentName(d.Name); err != nil {
			writeError(w, http.StatusBadRequest, apperrors.GetCode(err), apperrors.UserMessage(err))
			return
		}
		docs[i] = pipeline.Document{Name: d.Name, Data: []byte(d.Content)}
		names[i] = d.Name
	}

	result, err := s.runner.Execute(r.Context(), docs, req.Options)
	if err != nil {
		s.logger.Error("comparison failed", "err", err)
		writeError(w, http.StatusUnprocessableEntity, apperrors.ErrCodeInvalidDocument, err.Error())
		return
	}

	run := Run{
		ID:             uuid.NewString(),
		CreatedAt:      time.Now().UTC(),
		ModelNames:     names,
		Options:        req.Options,
		HasDifferences: result.Comparison.HasDifferences,
		Renamed:        result.Renamed,
	}
	if err := s.store.Insert(r.Context(), run); err != nil {
		s.logger.Error("run history write failed", "err", err)
		writeError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "failed to record run")
		return
	}

	s.logger.Info("comparison run",
		"id", run.ID,
		"models", len(names),
		"differences", run.HasDifferences)

	writeJSON(w, http.StatusOK, compareResponse{
		ID:             run.ID,
		HasDifferences: run.HasDifferences,
		Renamed:        run.Renamed,
		Artifacts:      encodeArtifacts(result.Artifacts),
	})
}

// encodeArtifacts maps rendered outputs to strings: binary formats are
// base64, text formats pass through.
func encodeArtifacts(artifacts map[string][]byte) map[string]string {
	out := make(map[string]string, len(artifacts))
	for format, data := range artifacts {
		if format == pipeline.FormatPNG {
			out[format] = base64.StdEncoding.EncodeToString(data)
		} else {
			out[format] = string(data)
		}
	}
	return out
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			writeError(w, http.StatusBadRequest, apperrors.ErrCodeInvalidInput, "invalid limit")
			return
		}
		limit = n
	}

	runs, err := s.store.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("run history read failed", "err", err)
		writeError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "failed to list runs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": runs})
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	run, err := s.store.Get(r.Context(), id)
	if errors.Is(err, ErrRunNotFound) {
		writeError(w, http.StatusNotFound, apperrors.ErrCodeRunNotFound, "run not found")
		return
	}
	if err != nil {
		s.logger.Error("run history read failed", "err", err)
		writeError(w, http.StatusInternalServerError, apperrors.ErrCodeInternal, "failed to load run")
		return
	}
	writeJSON(w, http.StatusOK, run)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, code apperrors.Code, msg string) {
	writeJSON(w, status, map[string]string{
		"error": msg,
		"code":  string(code),
	})
}
