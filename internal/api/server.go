package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/narayana-thota/Query-Stream/internal/auth"
	"github.com/narayana-thota/Query-Stream/internal/engine"
	"github.com/narayana-thota/Query-Stream/internal/store"
)

// Generator produces summary, answer and narration text. Satisfied by
// *engine.Pipeline; handler tests substitute doubles.
type Generator interface {
	Summarize(ctx context.Context, text string) (string, error)
	Answer(ctx context.Context, contextText, question string) (string, error)
	WriteScript(ctx context.Context, text, tone, length string) (string, error)
}

// Synthesizer converts a narration script into one audio payload.
type Synthesizer interface {
	Narrate(ctx context.Context, script, voice string) (*engine.Audio, error)
}

// URLExtractor pulls readable text out of a web page.
type URLExtractor interface {
	Extract(ctx context.Context, url string) (title, text string, err error)
}

// Options holds the tunable server settings.
type Options struct {
	// MaxUploadBytes caps the inbound request body, uploads included.
	MaxUploadBytes int64

	// CORSOrigin is the allowed CORS origin; "*" when empty.
	CORSOrigin string
}

// Server holds the HTTP handlers and dependencies.
type Server struct {
	repo     store.ArtifactRepository
	gen      Generator
	syn      Synthesizer
	web      URLExtractor
	verifier auth.Verifier
	opts     Options
	mux      *http.ServeMux
}

// New creates a new API server. web may be nil to disable the URL input
// path.
func New(repo store.ArtifactRepository, gen Generator, syn Synthesizer, web URLExtractor, verifier auth.Verifier, opts Options) *Server {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = 10 << 20
	}
	if opts.CORSOrigin == "" {
		opts.CORSOrigin = "*"
	}
	s := &Server{repo: repo, gen: gen, syn: syn, web: web, verifier: verifier, opts: opts, mux: http.NewServeMux()}
	s.routes()
	return s
}

// Handler returns the root http.Handler with middleware applied.
func (s *Server) Handler() http.Handler {
	return s.cors(s.limitBody(s.mux))
}

func (s *Server) routes() {
	s.mux.HandleFunc("GET /api/health", s.handleHealth)

	s.mux.Handle("POST /api/documents/summarize", s.authed(s.handleSummarize))
	s.mux.Handle("GET /api/documents", s.authed(s.handleList(kindDocument)))
	s.mux.Handle("GET /api/documents/{id}", s.authed(s.handleGet(kindDocument)))
	s.mux.Handle("POST /api/documents/{id}/ask", s.authed(s.handleAsk))
	s.mux.Handle("DELETE /api/documents/{id}", s.authed(s.handleDelete(kindDocument)))

	s.mux.Handle("POST /api/podcasts", s.authed(s.handleCreatePodcast))
	s.mux.Handle("GET /api/podcasts", s.authed(s.handleList(kindPodcast)))
	s.mux.Handle("GET /api/podcasts/{id}", s.authed(s.handleGet(kindPodcast)))
	s.mux.Handle("DELETE /api/podcasts/{id}", s.authed(s.handleDelete(kindPodcast)))
}

func (s *Server) authed(h http.HandlerFunc) http.Handler {
	return auth.Middleware(s.verifier, h)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ---------------------------------------------------------------------------
// Middleware
// ---------------------------------------------------------------------------

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", s.opts.CORSOrigin)
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, x-auth-token")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// limitBody caps the request body so a large upload cannot exhaust memory;
// uploads are buffered in full before extraction.
func (s *Server) limitBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, s.opts.MaxUploadBytes)
		next.ServeHTTP(w, r)
	})
}

// ---------------------------------------------------------------------------
// Response helpers
// ---------------------------------------------------------------------------

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"message": msg})
}
