package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/verisight-ai/verisight/internal/audit"
	"github.com/verisight-ai/verisight/internal/auth"
	"github.com/verisight-ai/verisight/internal/config"
	"github.com/verisight-ai/verisight/internal/evidence"
	"github.com/verisight-ai/verisight/internal/pipeline"
	"github.com/verisight-ai/verisight/internal/telemetry"
)

// maxUploadBytes bounds a single multipart upload held in memory.
const maxUploadBytes = 32 << 20

// Analyzer is the analysis surface the HTTP layer depends on.
type Analyzer interface {
	Analyze(ctx context.Context, raw []byte, filename string, opts pipeline.Options) (*evidence.AnalysisResult, error)
	AnalyzeBatch(ctx context.Context, items []pipeline.Item, opts pipeline.Options) ([]pipeline.BatchEntry, error)
}

// Server is the HTTP surface over the analysis pipeline.
type Server struct {
	mux        *http.ServeMux
	cfg        *config.Config
	auth       *auth.Auth
	analyzer   Analyzer
	audit      *audit.Emitter
	telemetry  *telemetry.Provider
	auditLevel string
}

// New builds a Server and registers its routes.
func New(cfg *config.Config, authz *auth.Auth, analyzer Analyzer, emitter *audit.Emitter, tel *telemetry.Provider) *Server {
	mux := http.NewServeMux()

	s := &Server{
		mux:        mux,
		cfg:        cfg,
		auth:       authz,
		analyzer:   analyzer,
		audit:      emitter,
		telemetry:  tel,
		auditLevel: strings.ToLower(cfg.Logging.AuditLevel),
	}

	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/analyze", s.handleAnalyze)
	mux.HandleFunc("/api/v1/analyze/batch", s.handleAnalyzeBatch)

	return s
}

// Handler exposes the mux for tests.
func (s *Server) Handler() http.Handler {
	return s.mux
}

// Start blocks serving HTTP on addr.
func (s *Server) Start(addr string) error {
	log.Printf("Verisight running on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// --- Handlers ---

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	fmt.Fprintln(w, "ok")
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"message": "Verisight image provenance API",
		"health":  "ok",
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body", "invalid_request_error")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "missing multipart field \"file\"", "invalid_request_error")
		return
	}
	defer file.Close()

	if ct := header.Header.Get("Content-Type"); !strings.HasPrefix(ct, "image/") {
		writeError(w, http.StatusBadRequest, "only image uploads are accepted", "invalid_request_error")
		return
	}

	raw, err := io.ReadAll(io.LimitReader(file, maxUploadBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read upload", "invalid_request_error")
		return
	}

	opts := optsFromRequest(r)
	result, err := s.analyzer.Analyze(r.Context(), raw, header.Filename, opts)
	if err != nil {
		if errors.Is(err, pipeline.ErrInvalidImage) {
			writeError(w, http.StatusBadRequest, "image could not be decoded", "invalid_request_error")
			return
		}
		log.Printf("analyze failed for %q: %v", header.Filename, err)
		writeError(w, http.StatusInternalServerError, "analysis failed", "internal_error")
		return
	}

	s.recordAnalysis(r.Context(), result, projectID)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(result)
}

// batchResponse mirrors the single-analysis result list plus summary counters.
type batchResponse struct {
	TotalProcessed    int          `json:"total_processed"`
	AIGeneratedCount  int          `json:"ai_generated_count"`
	HumanCreatedCount int          `json:"human_created_count"`
	UncertainCount    int          `json:"uncertain_count"`
	FailedCount       int          `json:"failed_count"`
	Results           []batchEntry `json:"results"`
}

type batchEntry struct {
	Filename string                   `json:"filename"`
	Status   string                   `json:"status"`
	Error    string                   `json:"error,omitempty"`
	Result   *evidence.AnalysisResult `json:"result,omitempty"`
}

func (s *Server) handleAnalyzeBatch(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	projectID, ok := s.authorize(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart body", "invalid_request_error")
		return
	}
	if r.MultipartForm == nil || len(r.MultipartForm.File["files"]) == 0 {
		writeError(w, http.StatusBadRequest, "missing multipart field \"files\"", "invalid_request_error")
		return
	}

	headers := r.MultipartForm.File["files"]
	items := make([]pipeline.Item, 0, len(headers))
	for _, fh := range headers {
		f, err := fh.Open()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read upload", "invalid_request_error")
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
		f.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "failed to read upload", "invalid_request_error")
			return
		}
		items = append(items, pipeline.Item{Filename: fh.Filename, Data: data})
	}

	opts := optsFromRequest(r)
	entries, err := s.analyzer.AnalyzeBatch(r.Context(), items, opts)
	if err != nil {
		if errors.Is(err, pipeline.ErrBatchTooLarge) {
			writeError(w, http.StatusBadRequest, err.Error(), "invalid_request_error")
			return
		}
		log.Printf("batch analyze failed: %v", err)
		writeError(w, http.StatusInternalServerError, "analysis failed", "internal_error")
		return
	}

	resp := batchResponse{
		TotalProcessed: len(entries),
		Results:        make([]batchEntry, 0, len(entries)),
	}
	for _, e := range entries {
		if e.Err != nil {
			resp.FailedCount++
			resp.Results = append(resp.Results, batchEntry{
				Filename: e.Filename,
				Status:   "failed",
				Error:    e.Err.Error(),
			})
			continue
		}
		switch e.Result.FinalVerdict {
		case evidence.VerdictAIGenerated:
			resp.AIGeneratedCount++
		case evidence.VerdictHumanCreated:
			resp.HumanCreatedCount++
		default:
			resp.UncertainCount++
		}
		s.recordAnalysis(r.Context(), e.Result, projectID)
		resp.Results = append(resp.Results, batchEntry{
			Filename: e.Filename,
			Status:   "ok",
			Result:   e.Result,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// authorize resolves the calling project. With no projects configured the
// endpoints are open and the project ID is empty.
func (s *Server) authorize(w http.ResponseWriter, r *http.Request) (string, bool) {
	if s.auth.Open() {
		return "", true
	}
	apiKey, ok := parseBearerToken(r.Header.Get("Authorization"))
	if !ok || apiKey == "" {
		writeError(w, http.StatusUnauthorized, "Invalid or missing API key", "authentication_error")
		return "", false
	}
	project, ok := s.auth.Lookup(apiKey)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Invalid API key", "authentication_error")
		return "", false
	}
	return project.ID, true
}

func (s *Server) recordAnalysis(ctx context.Context, res *evidence.AnalysisResult, projectID string) {
	s.audit.Emit(ctx, audit.BuildEvent(res, projectID, s.auditLevel))
	s.telemetry.RecordAnalysis(string(res.FinalVerdict), projectID, res.TotalDurationMS, len(res.LayersExecuted))
}

func optsFromRequest(r *http.Request) pipeline.Options {
	skip, _ := strconv.ParseBool(r.URL.Query().Get("skip_ai_detection"))
	return pipeline.Options{SkipDetection: skip}
}

func parseBearerToken(h string) (string, bool) {
	if h == "" {
		return "", false
	}
	parts := strings.Fields(h)
	if len(parts) != 2 {
		return "", false
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return "", false
	}
	return parts[1], true
}

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

func writeError(w http.ResponseWriter, status int, message, typ string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorBody{
		Error: errorDetail{
			Message: message,
			Type:    typ,
		},
	})
}
