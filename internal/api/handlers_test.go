package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/narayana-thota/Query-Stream/internal/auth"
	"github.com/narayana-thota/Query-Stream/internal/engine"
	"github.com/narayana-thota/Query-Stream/internal/model"
	"github.com/narayana-thota/Query-Stream/internal/store"
)

const (
	tokenA = "tok-a"
	tokenB = "tok-b"
)

// newTestServer builds a server backed by a temp SQLite store. gen/syn nil
// means the real pipeline over stub clients.
func newTestServer(t *testing.T, gen Generator, syn Synthesizer) (http.Handler, *store.Store) {
	t.Helper()
	db, err := store.OpenSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	st, err := store.New(db)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if gen == nil {
		p := engine.NewPipeline(&engine.StubModelClient{}, &engine.StubSpeechClient{SegmentLimit: 200}, engine.Limits{})
		gen = p
		if syn == nil {
			syn = p
		}
	}

	verifier := auth.StaticVerifier{tokenA: "user-a", tokenB: "user-b"}
	srv := New(st, gen, syn, nil, verifier, Options{})
	return srv.Handler(), st
}

func multipartForm(t *testing.T, fields map[string]string) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			t.Fatalf("write field %s: %v", k, err)
		}
	}
	w.Close()
	return &buf, w.FormDataContentType()
}

func doRequest(t *testing.T, h http.Handler, method, path, token string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("x-auth-token", token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decodeJSON(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode JSON: %v\nbody: %s", err, rr.Body.String())
	}
	return result
}

func countArtifacts(t *testing.T, st *store.Store, owner, kind string) int {
	t.Helper()
	items, err := st.ListByOwner(context.Background(), owner, kind)
	if err != nil {
		t.Fatalf("ListByOwner: %v", err)
	}
	return len(items)
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

func TestUnauthenticated(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)

	for _, tc := range []struct{ method, path string }{
		{"POST", "/api/documents/summarize"},
		{"GET", "/api/documents"},
		{"POST", "/api/podcasts"},
		{"GET", "/api/podcasts"},
		{"DELETE", "/api/podcasts/some-id"},
	} {
		rr := doRequest(t, h, tc.method, tc.path, "", nil, "")
		if rr.Code != http.StatusUnauthorized {
			t.Errorf("%s %s status = %d, want 401", tc.method, tc.path, rr.Code)
		}
	}
}

func TestHealthIsOpen(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)
	rr := doRequest(t, h, "GET", "/api/health", "", nil, "")
	if rr.Code != http.StatusOK {
		t.Errorf("status = %d, want 200 without a token", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Summarize
// ---------------------------------------------------------------------------

func TestSummarize_TypedText(t *testing.T) {
	h, st := newTestServer(t, nil, nil)

	body, ct := multipartForm(t, map[string]string{
		"text": "the quick brown fox jumps over the lazy dog",
	})
	rr := doRequest(t, h, "POST", "/api/documents/summarize", tokenA, body, ct)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}

	result := decodeJSON(t, rr)
	if result["id"] == "" || result["id"] == nil {
		t.Error("missing artifact id")
	}
	if result["label"] != "the quick brown fox..." {
		t.Errorf("label = %v, want first words", result["label"])
	}
	summary, _ := result["summary"].(string)
	if !strings.Contains(summary, "Executive Summary") {
		t.Errorf("summary = %q", summary)
	}

	artifact, err := st.GetOwnedArtifact(context.Background(), result["id"].(string), "user-a")
	if err != nil {
		t.Fatalf("artifact not persisted: %v", err)
	}
	if artifact.OwnerID != "user-a" {
		t.Errorf("OwnerID = %q, want the creating identity", artifact.OwnerID)
	}
	if artifact.GeneratedText == "" {
		t.Error("persisted artifact has empty generated text")
	}
}

func TestSummarize_NoContent(t *testing.T) {
	h, st := newTestServer(t, nil, nil)

	body, ct := multipartForm(t, map[string]string{"text": "   "})
	rr := doRequest(t, h, "POST", "/api/documents/summarize", tokenA, body, ct)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", rr.Code, rr.Body.String())
	}
	if msg := decodeJSON(t, rr)["message"]; msg == "" || msg == nil {
		t.Error("error body carries no message")
	}
	if n := countArtifacts(t, st, "user-a", model.KindDocument); n != 0 {
		t.Errorf("artifacts = %d, nothing should be persisted", n)
	}
}

// failingGenerator fails every operation with a fixed error.
type failingGenerator struct{ err error }

func (g failingGenerator) Summarize(context.Context, string) (string, error) { return "", g.err }
func (g failingGenerator) Answer(context.Context, string, string) (string, error) {
	return "", g.err
}
func (g failingGenerator) WriteScript(context.Context, string, string, string) (string, error) {
	return "", g.err
}

func TestSummarize_GenerationFailure(t *testing.T) {
	h, st := newTestServer(t, failingGenerator{err: model.ErrGenerationFailed}, &engine.Pipeline{})

	body, ct := multipartForm(t, map[string]string{"text": "some text"})
	rr := doRequest(t, h, "POST", "/api/documents/summarize", tokenA, body, ct)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if n := countArtifacts(t, st, "user-a", model.KindDocument); n != 0 {
		t.Errorf("artifacts = %d, a failed pipeline must not persist", n)
	}
}

func TestSummarize_RateLimited(t *testing.T) {
	h, _ := newTestServer(t, failingGenerator{err: model.ErrRateLimited}, &engine.Pipeline{})

	body, ct := multipartForm(t, map[string]string{"text": "some text"})
	rr := doRequest(t, h, "POST", "/api/documents/summarize", tokenA, body, ct)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429", rr.Code)
	}
}

// promptRecorder implements engine.ModelClient and records the last prompt.
type promptRecorder struct {
	lastPrompt string
}

func (m *promptRecorder) Complete(_ context.Context, prompt string) (string, error) {
	m.lastPrompt = prompt
	return "generated", nil
}

func TestSummarize_TruncatesBeforeGeneration(t *testing.T) {
	rec := &promptRecorder{}
	p := engine.NewPipeline(rec, &engine.StubSpeechClient{}, engine.Limits{
		SummaryContext: 25000, AnswerContext: 30000, ScriptContext: 30000,
	})
	h, _ := newTestServer(t, p, p)

	body, ct := multipartForm(t, map[string]string{"text": strings.Repeat("a", 50000)})
	rr := doRequest(t, h, "POST", "/api/documents/summarize", tokenA, body, ct)
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rec.lastPrompt, strings.Repeat("a", 25000)) {
		t.Error("generation saw fewer than 25000 context chars")
	}
	if strings.Contains(rec.lastPrompt, strings.Repeat("a", 25001)) {
		t.Error("generation saw more than 25000 context chars, truncation skipped")
	}
}

// ---------------------------------------------------------------------------
// Ask
// ---------------------------------------------------------------------------

func createDocument(t *testing.T, h http.Handler, token, text string) string {
	t.Helper()
	body, ct := multipartForm(t, map[string]string{"text": text})
	rr := doRequest(t, h, "POST", "/api/documents/summarize", token, body, ct)
	if rr.Code != http.StatusOK {
		t.Fatalf("summarize status = %d, body: %s", rr.Code, rr.Body.String())
	}
	return decodeJSON(t, rr)["id"].(string)
}

func TestAsk(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)
	id := createDocument(t, h, tokenA, "the sky is blue because of scattering")

	rr := doRequest(t, h, "POST", "/api/documents/"+id+"/ask", tokenA,
		strings.NewReader(`{"question":"why is the sky blue?"}`), "application/json")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	if answer, _ := decodeJSON(t, rr)["answer"].(string); answer == "" {
		t.Error("empty answer")
	}
}

func TestAsk_MissingQuestion(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)
	id := createDocument(t, h, tokenA, "content")

	rr := doRequest(t, h, "POST", "/api/documents/"+id+"/ask", tokenA,
		strings.NewReader(`{"question":"  "}`), "application/json")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rr.Code)
	}
}

func TestAsk_ForeignDocumentMasked(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)
	id := createDocument(t, h, tokenA, "user a private document")

	// Another user asking about A's document must see the same 404 as for
	// a document that does not exist at all.
	rr := doRequest(t, h, "POST", "/api/documents/"+id+"/ask", tokenB,
		strings.NewReader(`{"question":"what is in it?"}`), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	foreign := rr.Body.String()

	rr = doRequest(t, h, "POST", "/api/documents/no-such-id/ask", tokenB,
		strings.NewReader(`{"question":"what is in it?"}`), "application/json")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rr.Code)
	}
	if rr.Body.String() != foreign {
		t.Errorf("foreign-owned and missing artifacts produce different bodies: %q vs %q",
			foreign, rr.Body.String())
	}
}

// ---------------------------------------------------------------------------
// Podcasts
// ---------------------------------------------------------------------------

func createPodcast(t *testing.T, h http.Handler, token, text string) map[string]any {
	t.Helper()
	body, ct := multipartForm(t, map[string]string{
		"text":   text,
		"voice":  "Neerja",
		"tone":   "Calm",
		"length": "Short",
	})
	rr := doRequest(t, h, "POST", "/api/podcasts", token, body, ct)
	if rr.Code != http.StatusOK {
		t.Fatalf("podcast status = %d, body: %s", rr.Code, rr.Body.String())
	}
	return decodeJSON(t, rr)
}

func TestCreatePodcast(t *testing.T) {
	h, st := newTestServer(t, nil, nil)

	result := createPodcast(t, h, tokenA, "a short story about computers")
	audioURL, _ := result["audioUrl"].(string)
	if !strings.HasPrefix(audioURL, "data:audio/mp3;base64,") {
		t.Errorf("audioUrl = %.40q, want a data URL", audioURL)
	}
	if transcript, _ := result["transcript"].(string); transcript == "" {
		t.Error("empty transcript")
	}

	artifact, err := st.GetOwnedArtifact(context.Background(), result["id"].(string), "user-a")
	if err != nil {
		t.Fatalf("artifact not persisted: %v", err)
	}
	if artifact.Kind != model.KindPodcast {
		t.Errorf("Kind = %q", artifact.Kind)
	}
	if artifact.Duration != model.DurationShort {
		t.Errorf("Duration = %q, want %q", artifact.Duration, model.DurationShort)
	}
	if artifact.AudioURL == "" {
		t.Error("persisted podcast has no audio")
	}
}

func TestCreatePodcast_EmptyInput(t *testing.T) {
	h, st := newTestServer(t, nil, nil)

	body, ct := multipartForm(t, map[string]string{"voice": "Neerja"})
	rr := doRequest(t, h, "POST", "/api/podcasts", tokenA, body, ct)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400, body: %s", rr.Code, rr.Body.String())
	}
	if n := countArtifacts(t, st, "user-a", model.KindPodcast); n != 0 {
		t.Errorf("artifacts = %d, want none", n)
	}
}

// failingSynthesizer fails every narration.
type failingSynthesizer struct{}

func (failingSynthesizer) Narrate(context.Context, string, string) (*engine.Audio, error) {
	return nil, model.ErrSynthesisFailed
}

func TestCreatePodcast_SynthesisFailure(t *testing.T) {
	p := engine.NewPipeline(&engine.StubModelClient{}, &engine.StubSpeechClient{}, engine.Limits{})
	h, st := newTestServer(t, p, failingSynthesizer{})

	body, ct := multipartForm(t, map[string]string{"text": "some text", "length": "Short"})
	rr := doRequest(t, h, "POST", "/api/podcasts", tokenA, body, ct)
	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rr.Code)
	}
	if n := countArtifacts(t, st, "user-a", model.KindPodcast); n != 0 {
		t.Errorf("artifacts = %d, no partial-audio artifact may persist", n)
	}
}

func TestListPodcasts_OwnerIsolationAndProjection(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)

	idA := createPodcast(t, h, tokenA, "user a podcast source")["id"].(string)
	idB := createPodcast(t, h, tokenB, "user b podcast source")["id"].(string)

	rr := doRequest(t, h, "GET", "/api/podcasts", tokenA, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var items []map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &items); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("items = %d, want only user a's podcast", len(items))
	}
	if items[0]["id"] != idA {
		t.Errorf("id = %v, want %s", items[0]["id"], idA)
	}
	for _, it := range items {
		if it["id"] == idB {
			t.Error("listing leaked another user's podcast")
		}
	}
	// Large fields must be projected away.
	if strings.Contains(rr.Body.String(), "audio_url") || strings.Contains(rr.Body.String(), "source_text") {
		t.Errorf("listing carries large fields: %s", rr.Body.String())
	}
}

func TestGetPodcast_FullContent(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)
	id := createPodcast(t, h, tokenA, "full content check")["id"].(string)

	rr := doRequest(t, h, "GET", "/api/podcasts/"+id, tokenA, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	result := decodeJSON(t, rr)
	if result["audio_url"] == "" || result["audio_url"] == nil {
		t.Error("get-by-id must return the audio")
	}
}

func TestGetArtifact_WrongKind(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)
	docID := createDocument(t, h, tokenA, "this is a document")

	rr := doRequest(t, h, "GET", "/api/podcasts/"+docID, tokenA, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404 for a kind mismatch", rr.Code)
	}
}

// ---------------------------------------------------------------------------
// Delete
// ---------------------------------------------------------------------------

func TestDeletePodcast(t *testing.T) {
	h, _ := newTestServer(t, nil, nil)
	id := createPodcast(t, h, tokenA, "to be deleted")["id"].(string)

	rr := doRequest(t, h, "DELETE", "/api/podcasts/"+id, tokenA, nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, body: %s", rr.Code, rr.Body.String())
	}
	if success, _ := decodeJSON(t, rr)["success"].(bool); !success {
		t.Error("success != true")
	}

	rr = doRequest(t, h, "GET", "/api/podcasts/"+id, tokenA, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d, want 404", rr.Code)
	}
}

func TestDeletePodcast_ForeignOwnerKeepsArtifact(t *testing.T) {
	h, st := newTestServer(t, nil, nil)
	id := createPodcast(t, h, tokenA, "user a keeps this")["id"].(string)

	rr := doRequest(t, h, "DELETE", "/api/podcasts/"+id, tokenB, nil, "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404 (masked)", rr.Code)
	}

	if _, err := st.GetOwnedArtifact(context.Background(), id, "user-a"); err != nil {
		t.Errorf("artifact gone after denied delete: %v", err)
	}
}
