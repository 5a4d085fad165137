package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/narayana-thota/Query-Stream/internal/api"
	"github.com/narayana-thota/Query-Stream/internal/auth"
	"github.com/narayana-thota/Query-Stream/internal/config"
	"github.com/narayana-thota/Query-Stream/internal/engine"
	"github.com/narayana-thota/Query-Stream/internal/store"
)

func main() {
	cfg := config.Load()

	// Open SQLite.
	db, err := store.OpenSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	defer db.Close()

	// Initialize store.
	s, err := store.New(db)
	if err != nil {
		log.Fatalf("init store: %v", err)
	}

	// Build pipeline dependencies.
	var modelClient engine.ModelClient
	var speechClient engine.SpeechClient

	if cfg.UseStubs() {
		slog.Warn("no LLM API key set, using stub pipeline", "provider", cfg.LLMProvider)
		modelClient = &engine.StubModelClient{}
		speechClient = &engine.StubSpeechClient{SegmentLimit: cfg.SpeechSegmentChars}
	} else {
		switch cfg.LLMProvider {
		case "gemini":
			slog.Info("using Gemini model client", "model", cfg.GeminiModel)
			modelClient = engine.NewGeminiClient(cfg.GeminiKey,
				engine.WithGeminiModel(cfg.GeminiModel),
				engine.WithGeminiTimeout(cfg.HTTPTimeout))
		default:
			slog.Info("using Groq model client", "model", cfg.GroqModel)
			modelClient = engine.NewGroqClient(cfg.GroqKey,
				engine.WithGroqModel(cfg.GroqModel),
				engine.WithGroqTimeout(cfg.HTTPTimeout))
		}
		speechClient = engine.NewGoogleSpeech(
			engine.WithSpeechHost(cfg.SpeechHost),
			engine.WithSegmentLimit(cfg.SpeechSegmentChars),
			engine.WithSpeechTimeout(cfg.HTTPTimeout))
	}

	pipeline := engine.NewPipeline(modelClient, speechClient, engine.Limits{
		SummaryContext: cfg.SummaryContextChars,
		AnswerContext:  cfg.AnswerContextChars,
		ScriptContext:  cfg.ScriptContextChars,
	})

	// Session verification. Issuance lives in the identity service; this
	// server only checks the signature and reads the user id claim.
	var verifier auth.Verifier
	if cfg.JWTSecret != "" {
		verifier = auth.NewJWTVerifier(cfg.JWTSecret)
	} else {
		slog.Warn("JWT_SECRET not set, accepting the dev token only")
		verifier = auth.StaticVerifier{"dev-token": "dev-user"}
	}

	webExtractor := engine.NewWebExtractor(cfg.HTTPTimeout)

	srv := api.New(s, pipeline, pipeline, webExtractor, verifier, api.Options{
		MaxUploadBytes: cfg.MaxUploadBytes,
		CORSOrigin:     cfg.CORSOrigin,
	})

	httpServer := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: srv.Handler(),
	}

	// Graceful shutdown.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		slog.Info("shutting down...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	slog.Info("server listening", "addr", "http://localhost:"+cfg.Port)
	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}
