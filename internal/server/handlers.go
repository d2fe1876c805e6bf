package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// reportIDHeader names each scored response for log correlation.
const reportIDHeader = "X-Report-Id"

const maxBodyBytes = 1 << 20

type scoreRequest struct {
	Transcript string `json:"transcript"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid JSON body: " + err.Error()})
		return
	}
	report, err := s.opts.Scorer.Score(r.Context(), req.Transcript)
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	reportID := uuid.NewString()
	w.Header().Set(reportIDHeader, reportID)
	s.logger.Info("transcript scored",
		"request_id", middleware.GetReqID(r.Context()),
		"report_id", reportID,
		"overall_score", report.OverallScore,
		"word_count", report.WordCount,
	)
	respondJSON(w, http.StatusOK, report)
}

func (s *Server) handleRubric(w http.ResponseWriter, r *http.Request) {
	criteria, err := s.opts.Scorer.Rubric(r.Context())
	if err != nil {
		respondJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"criteria": criteria})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	semantic := false
	if s.opts.SemanticReady != nil {
		semantic = s.opts.SemanticReady()
	}
	respondJSON(w, http.StatusOK, map[string]any{"status": "ok", "semantic": semantic})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		respondJSON(w, http.StatusOK, map[string]string{"service": "transcript scorer"})
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, indexData{Title: "Transcript Scorer"}); err != nil {
		s.logger.Error("render index", "error", err)
	}
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}
