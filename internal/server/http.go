package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"go.uber.org/zap"

	"github.com/ironsheep/card-extract/internal/imaging"
	"github.com/ironsheep/card-extract/internal/ocr"
)

// RequestIDHeader carries the per-request correlation ID. A caller-supplied
// value is echoed back; otherwise a UUID is generated.
const RequestIDHeader = "X-Request-ID"

// HTTPOptions holds HTTP transport limits.
type HTTPOptions struct {
	MaxBodyBytes    int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type extractRequest struct {
	Text string `json:"text"`
}

type imageRequest struct {
	ImageBase64 string `json:"image_base64"`
}

type errorBody struct {
	Error string `json:"error"`
}

type ctxKey struct{}

// requestID returns the ID assigned by the request ID middleware.
func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

// Handler returns the HTTP API:
//
//	POST /extract        {"text": "..."}         -> record
//	POST /extract/image  {"image_base64": "..."} -> record + ocr_text
//	GET  /health                                 -> {"status": "healthy"}
func (s *Server) Handler(opts HTTPOptions) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /extract", s.handleHTTPExtract(opts.MaxBodyBytes))
	mux.HandleFunc("POST /extract/image", s.handleHTTPExtractImage(opts.MaxBodyBytes))
	mux.HandleFunc("GET /health", s.handleHTTPHealth)

	return s.withRequestID(s.withLogging(s.withRecover(mux)))
}

// ListenAndServe serves the HTTP API on addr until ctx is cancelled, then
// shuts down gracefully within opts.ShutdownTimeout.
func (s *Server) ListenAndServe(ctx context.Context, addr string, opts HTTPOptions) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(opts),
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadTimeout,
		WriteTimeout:      opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http serving", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), opts.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http serve: %w", err)
	}
	return nil
}

func (s *Server) handleHTTPExtract(maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, ok := s.readJSONBody(w, r, maxBody, extractRequestSchema)
		if !ok {
			return
		}

		var req extractRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		logger := s.logger.With(zap.String("request_id", requestID(r.Context())))
		logger.Debug("extract input", zap.String("text", req.Text))

		record, err := s.extractor.Extract(req.Text)
		if err != nil {
			logger.Error("extraction failed", zap.Error(err))
			writeError(w, statusFor(err), err.Error())
			return
		}
		writeJSON(w, http.StatusOK, record)
	}
}

func (s *Server) handleHTTPExtractImage(maxBody int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.ocr == nil {
			writeError(w, http.StatusServiceUnavailable, ocr.ErrUnavailable.Error())
			return
		}

		body, ok := s.readJSONBody(w, r, maxBody, imageRequestSchema)
		if !ok {
			return
		}

		var req imageRequest
		if err := json.Unmarshal(body, &req); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}

		img, err := imaging.DecodeBase64(req.ImageBase64)
		if err != nil {
			writeError(w, statusFor(err), err.Error())
			return
		}

		result, err := s.extractImage(img)
		if err != nil {
			s.logger.Error("image extraction failed",
				zap.String("request_id", requestID(r.Context())), zap.Error(err))
			writeError(w, statusFor(err), err.Error())
			return
		}
		s.logger.Debug("ocr text",
			zap.String("request_id", requestID(r.Context())), zap.String("text", result.OCRText))
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleHTTPHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthStatus{Status: "healthy"})
}

// readJSONBody reads at most maxBody bytes and validates them against
// schema. On failure it writes the error response and returns false.
func (s *Server) readJSONBody(w http.ResponseWriter, r *http.Request, maxBody int64, schema *jsonschema.Schema) ([]byte, bool) {
	if maxBody > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	}
	body, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, "failed to read request body")
		return nil, false
	}

	var v interface{}
	if err := json.Unmarshal(body, &v); err != nil {
		writeError(w, http.StatusBadRequest, "request body must be a JSON object")
		return nil, false
	}
	if err := schema.Validate(v); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
		return nil, false
	}
	return body, true
}

// statusFor maps pipeline errors to HTTP status codes. Recognizer faults
// and anything unrecognized are server faults.
func statusFor(err error) int {
	switch {
	case errors.Is(err, imaging.ErrDecode):
		return http.StatusBadRequest
	case errors.Is(err, ocr.ErrUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

// === Middleware ===

func (s *Server) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
	})
}

// statusRecorder captures the status code written by a handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rec *statusRecorder) WriteHeader(code int) {
	rec.status = code
	rec.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("http request",
			zap.String("request_id", requestID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

func (s *Server) withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				s.logger.Error("panic serving request",
					zap.String("request_id", requestID(r.Context())), zap.Any("panic", p))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}
