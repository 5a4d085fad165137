package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/narayana-thota/Query-Stream/internal/auth"
	"github.com/narayana-thota/Query-Stream/internal/engine"
	"github.com/narayana-thota/Query-Stream/internal/model"
)

const (
	kindDocument = model.KindDocument
	kindPodcast  = model.KindPodcast
)

// ---------------------------------------------------------------------------
// Source input (shared by summarize and podcast creation)
// ---------------------------------------------------------------------------

// source is the ephemeral input of one pipeline run. It lives only for the
// duration of the request.
type source struct {
	label string
	text  string
}

var pdfExt = regexp.MustCompile(`(?i)\.pdf$`)

// readSource gathers typed text, an uploaded PDF, and/or a web URL from a
// multipart form into one combined text. Labels: filename for uploads,
// page title for URLs, first words for typed text.
func (s *Server) readSource(r *http.Request) (*source, error) {
	if err := r.ParseMultipartForm(s.opts.MaxUploadBytes); err != nil &&
		!errors.Is(err, http.ErrNotMultipart) {
		return nil, fmt.Errorf("parse form: %w", err)
	}

	var parts []string
	var label string

	if typed := strings.TrimSpace(r.FormValue("text")); typed != "" {
		parts = append(parts, typed)
		label = firstWordsLabel(typed)
	}

	if pageURL := strings.TrimSpace(r.FormValue("url")); pageURL != "" && s.web != nil {
		title, text, err := s.web.Extract(r.Context(), pageURL)
		if err != nil {
			return nil, err
		}
		parts = append(parts, text)
		if label == "" {
			label = title
		}
	}

	if file, header, err := r.FormFile("file"); err == nil {
		defer file.Close()
		data, readErr := io.ReadAll(file)
		if readErr != nil {
			return nil, fmt.Errorf("%w: read upload: %v", model.ErrExtractionFailed, readErr)
		}
		text, exErr := engine.ExtractPDF(data)
		if exErr != nil {
			return nil, exErr
		}
		parts = append(parts, text)
		// The filename beats any other label source.
		label = pdfExt.ReplaceAllString(header.Filename, "")
	}

	if len(parts) == 0 {
		return nil, model.ErrNoContent
	}
	return &source{label: label, text: strings.Join(parts, "\n")}, nil
}

// firstWordsLabel names a typed-text source by its first few words.
func firstWordsLabel(text string) string {
	words := strings.Fields(text)
	if len(words) > 4 {
		words = words[:4]
	}
	return strings.Join(words, " ") + "..."
}

// ---------------------------------------------------------------------------
// POST /api/documents/summarize
// ---------------------------------------------------------------------------

func (s *Server) handleSummarize(w http.ResponseWriter, r *http.Request) {
	owner := auth.UserID(r.Context())

	src, err := s.readSource(r)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	if src.label == "" {
		src.label = "Document"
	}

	summary, err := s.gen.Summarize(r.Context(), src.text)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	artifact, err := model.NewDocumentArtifact(uuid.New().String(), owner, src.label, src.text, summary)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	if err := s.repo.CreateArtifact(r.Context(), artifact); err != nil {
		slog.Error("save document artifact", "owner", owner, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save document.")
		return
	}

	slog.Info("document summarized", "id", artifact.ID, "owner", owner, "label", artifact.Label)
	writeJSON(w, http.StatusOK, map[string]string{
		"id":      artifact.ID,
		"summary": summary,
		"label":   artifact.Label,
	})
}

// ---------------------------------------------------------------------------
// POST /api/documents/{id}/ask
// ---------------------------------------------------------------------------

type askRequest struct {
	Question string `json:"question"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	owner := auth.UserID(r.Context())
	id := r.PathValue("id")

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		writeError(w, http.StatusBadRequest, "Question is required.")
		return
	}

	artifact, err := s.repo.GetOwnedArtifact(r.Context(), id, owner)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	// Fall back to the stored summary when the source text was not kept.
	contextText := artifact.SourceText
	if contextText == "" {
		contextText = artifact.GeneratedText
	}

	answer, err := s.gen.Answer(r.Context(), contextText, question)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

// ---------------------------------------------------------------------------
// POST /api/podcasts
// ---------------------------------------------------------------------------

func (s *Server) handleCreatePodcast(w http.ResponseWriter, r *http.Request) {
	owner := auth.UserID(r.Context())

	src, err := s.readSource(r)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	if src.label == "" {
		src.label = "AI Podcast"
	}

	voice := r.FormValue("voice")
	tone := r.FormValue("tone")
	length := r.FormValue("length")

	script, err := s.gen.WriteScript(r.Context(), src.text, tone, length)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}

	audio, err := s.syn.Narrate(r.Context(), script, voice)
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	audioURL := audio.DataURL()

	artifact, err := model.NewPodcastArtifact(uuid.New().String(), owner, src.label,
		src.text, script, audioURL, model.DurationBucket(length))
	if err != nil {
		s.writePipelineError(w, r, err)
		return
	}
	if err := s.repo.CreateArtifact(r.Context(), artifact); err != nil {
		slog.Error("save podcast artifact", "owner", owner, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save podcast.")
		return
	}

	slog.Info("podcast generated", "id", artifact.ID, "owner", owner,
		"label", artifact.Label, "voice", voice, "duration", artifact.Duration)
	writeJSON(w, http.StatusOK, map[string]string{
		"id":         artifact.ID,
		"audioUrl":   audioURL,
		"transcript": script,
		"label":      artifact.Label,
	})
}

// ---------------------------------------------------------------------------
// List / get / delete (shared between kinds)
// ---------------------------------------------------------------------------

func (s *Server) handleList(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		items, err := s.repo.ListByOwner(r.Context(), auth.UserID(r.Context()), kind)
		if err != nil {
			slog.Error("list artifacts", "kind", kind, "error", err)
			writeError(w, http.StatusInternalServerError, "Server error.")
			return
		}
		if items == nil {
			items = []model.ArtifactSummary{}
		}
		writeJSON(w, http.StatusOK, items)
	}
}

func (s *Server) handleGet(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		artifact, err := s.repo.GetOwnedArtifact(r.Context(), r.PathValue("id"), auth.UserID(r.Context()))
		if err != nil {
			s.writePipelineError(w, r, err)
			return
		}
		if artifact.Kind != kind {
			s.writePipelineError(w, r, model.ErrNotFound)
			return
		}
		writeJSON(w, http.StatusOK, artifact)
	}
}

func (s *Server) handleDelete(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		owner := auth.UserID(r.Context())
		id := r.PathValue("id")

		artifact, err := s.repo.GetOwnedArtifact(r.Context(), id, owner)
		if err != nil {
			s.writePipelineError(w, r, err)
			return
		}
		if artifact.Kind != kind {
			s.writePipelineError(w, r, model.ErrNotFound)
			return
		}
		if err := s.repo.DeleteOwnedArtifact(r.Context(), id, owner); err != nil {
			s.writePipelineError(w, r, err)
			return
		}

		slog.Info("artifact deleted", "id", id, "kind", kind, "owner", owner)
		writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "id": id})
	}
}
