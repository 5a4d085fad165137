package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

// statusCode maps a pipeline error to its HTTP status. ErrNotAuthorized
// deliberately collapses into 404 so ownership checks never reveal that a
// differently-owned artifact exists.
func statusCode(err error) int {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, model.ErrNoContent),
		errors.Is(err, model.ErrExtractionFailed),
		errors.Is(err, model.ErrEmptyDocument):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrRateLimited):
		return http.StatusTooManyRequests
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNotAuthorized):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// clientMessage returns short human-readable text for err. Internal error
// detail never reaches the response body.
func clientMessage(err error) string {
	var mbe *http.MaxBytesError
	switch {
	case errors.As(err, &mbe):
		return "Upload too large."
	case errors.Is(err, model.ErrNoContent):
		return "Please provide text or upload a PDF."
	case errors.Is(err, model.ErrExtractionFailed):
		return "Failed to read PDF."
	case errors.Is(err, model.ErrEmptyDocument):
		return "No text found in PDF."
	case errors.Is(err, model.ErrRateLimited):
		return "Generation service is busy, try again shortly."
	case errors.Is(err, model.ErrGenerationFailed):
		return "Failed to generate text."
	case errors.Is(err, model.ErrSynthesisFailed):
		return "Failed to generate audio."
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrNotAuthorized):
		return "Not found."
	default:
		return "Server error."
	}
}

func (s *Server) writePipelineError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusCode(err)
	if status >= http.StatusInternalServerError {
		slog.Error("pipeline request failed", "path", r.URL.Path, "error", err)
	} else {
		slog.Warn("pipeline request rejected", "path", r.URL.Path, "status", status, "error", err)
	}
	writeError(w, status, clientMessage(err))
}
