// Package server exposes the gateway over HTTP.
//
// Routes (all behind bearer auth):
//
//	GET  /health                   liveness
//	POST /ocr                      sync OCR (multipart "file", ?mode=auto|async)
//	POST /ocr/async/start          stage upload + start async job
//	GET  /ocr/async/status         poll a long-running operation
//	GET  /ocr/async/result         aggregate result shards under a prefix
package server

import (
	"io"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"ocrgateway/internal/auth"
	"ocrgateway/internal/gateway"
	"ocrgateway/internal/logger"
)

// maxUploadBytes bounds multipart form memory; larger parts spill to disk.
const maxUploadBytes = 32 << 20

// Server wires the gateway service into HTTP handlers.
type Server struct {
	svc  *gateway.Service
	auth *auth.Middleware
	log  zerolog.Logger
}

// New creates a Server over the given service, authenticating with tokens.
func New(svc *gateway.Service, tokens []string) *Server {
	return &Server{
		svc:  svc,
		auth: auth.NewMiddleware(tokens),
		log:  logger.WithComponent("server"),
	}
}

// Handler builds the route table. Every route runs behind the auth
// middleware and request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("POST /ocr", s.handleOCR)
	mux.HandleFunc("POST /ocr/async/start", s.handleAsyncStart)
	mux.HandleFunc("GET /ocr/async/status", s.handleAsyncStatus)
	mux.HandleFunc("GET /ocr/async/result", s.handleAsyncResult)

	return s.logRequests(s.auth.Wrap(mux))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleOCR(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	mode := r.URL.Query().Get("mode")
	if mode == "" {
		mode = gateway.ModeAuto
	}

	result, err := s.svc.SubmitOCR(r.Context(), data, contentType, mode)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleAsyncStart(w http.ResponseWriter, r *http.Request) {
	data, contentType, ok := s.readUpload(w, r)
	if !ok {
		return
	}

	batchSize := gateway.DefaultBatchSize
	if raw := r.URL.Query().Get("batchSize"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "batchSize must be an integer")
			return
		}
		batchSize = parsed
	}

	job, err := s.svc.StartAsync(r.Context(), data, contentType, s.uploadName(r), batchSize, r.URL.Query().Get("hintPrefix"))
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, job)
}

func (s *Server) handleAsyncStatus(w http.ResponseWriter, r *http.Request) {
	operation := r.URL.Query().Get("operation")
	if operation == "" {
		writeError(w, http.StatusBadRequest, "operation query parameter is required")
		return
	}

	status, err := s.svc.PollStatus(r.Context(), operation)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleAsyncResult(w http.ResponseWriter, r *http.Request) {
	prefix := r.URL.Query().Get("prefix")
	if prefix == "" {
		writeError(w, http.StatusBadRequest, "prefix query parameter is required")
		return
	}

	result, err := s.svc.AggregateResult(r.Context(), prefix)
	if err != nil {
		s.writeFailure(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// readUpload extracts the multipart "file" part, returning its bytes and
// declared content type. On failure it writes the error response itself.
func (s *Server) readUpload(w http.ResponseWriter, r *http.Request) ([]byte, string, bool) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "expected multipart form data")
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return nil, "", false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to read uploaded file")
		return nil, "", false
	}

	return data, header.Header.Get("Content-Type"), true
}

func (s *Server) uploadName(r *http.Request) string {
	if r.MultipartForm == nil {
		return ""
	}
	if files := r.MultipartForm.File["file"]; len(files) > 0 {
		return files[0].Filename
	}
	return ""
}
