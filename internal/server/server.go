// Package server exposes meal plan generation over HTTP.
package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"gourmet-guide/internal/planner"

	"github.com/rs/cors"
)

// GenericError is the only failure body the API ever returns.
const GenericError = "An error occurred."

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

const maxBodyBytes = 1 << 20

// Service is what the handlers need from the application.
type Service interface {
	GeneratePlan(ctx context.Context, req planner.Request) (string, error)
	RenderHTML(raw string) string
	ExportPDF(w io.Writer, raw string) error
}

// Server routes HTTP requests to a Service.
type Server struct {
	svc     Service
	origins []string
}

// New creates a Server. An empty origins list allows every origin.
func New(svc Service, origins []string) *Server {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return &Server{svc: svc, origins: origins}
}

// Register adds the API routes to mux.
func (s *Server) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /generate-meal-plan", s.handleGenerate)
	mux.HandleFunc("POST /render-meal-plan", s.handleRender)
	mux.HandleFunc("POST /export-meal-plan", s.handleExport)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})
}

// Handler returns the API with CORS and request logging applied.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.Register(mux)
	return s.Wrap(mux)
}

// Wrap applies CORS and request logging to h.
func (s *Server) Wrap(h http.Handler) http.Handler {
	c := cors.New(cors.Options{
		AllowedOrigins: s.origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
	})
	return logRequests(c.Handler(h))
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req planner.Request
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		log.Printf("Error decoding plan request: %v", err)
		fail(w)
		return
	}

	text, err := s.svc.GeneratePlan(r.Context(), req)
	if err != nil {
		log.Printf("Error generating plan: %v", err)
		fail(w)
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, text)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		log.Printf("Error reading render request: %v", err)
		fail(w)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	io.WriteString(w, s.svc.RenderHTML(raw))
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	raw, err := readBody(w, r)
	if err != nil {
		log.Printf("Error reading export request: %v", err)
		fail(w)
		return
	}

	var buf bytes.Buffer
	if err := s.svc.ExportPDF(&buf, raw); err != nil {
		log.Printf("Error exporting plan: %v", err)
		fail(w)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="meal_plan.pdf"`)
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func readBody(w http.ResponseWriter, r *http.Request) (string, error) {
	b, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return string(b), err
}

func fail(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusInternalServerError)
	io.WriteString(w, GenericError)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		log.Printf("%s %s %d %s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond))
	})
}

// ListenAndServe runs srv until ctx is cancelled, then shuts it down
// gracefully.
func ListenAndServe(ctx context.Context, srv *http.Server) error {
	errc := make(chan error, 1)
	go func() {
		log.Printf("Server listening on %s", srv.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Println("Server exiting")
	return nil
}
