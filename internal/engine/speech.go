package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
	"unicode"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

const (
	// defaultSegmentChars is the per-request character limit of the speech
	// endpoint.
	defaultSegmentChars = 200

	// maxAudioSegmentSize caps a single synthesized segment response (2MB).
	maxAudioSegmentSize = 2 * 1024 * 1024
)

// voiceLanguages maps voice identifiers to the spoken-language code sent to
// the speech service. Voices not listed here speak English.
var voiceLanguages = map[string]string{
	"Neerja":  "hi",
	"Prabhat": "hi",
}

// languageForVoice returns the language code for a voice selector.
func languageForVoice(voice string) string {
	if lang, ok := voiceLanguages[voice]; ok {
		return lang
	}
	return "en"
}

// DataURL renders the audio as a self-contained data URL, playable without
// a separate binary-serving endpoint.
func (a *Audio) DataURL() string {
	return "data:audio/" + a.Format + ";base64," + base64.StdEncoding.EncodeToString(a.Data)
}

// GoogleSpeech implements SpeechClient against the Google Translate TTS
// endpoint. The endpoint accepts only short inputs, so the script is split
// into bounded segments, synthesized one request per segment, and the
// encoded results are concatenated strictly in split order.
type GoogleSpeech struct {
	host       string
	maxSegment int
	httpClient *http.Client
}

// GoogleSpeechOption configures the speech client.
type GoogleSpeechOption func(*GoogleSpeech)

// WithSpeechHost overrides the endpoint base URL.
func WithSpeechHost(host string) GoogleSpeechOption {
	return func(g *GoogleSpeech) { g.host = strings.TrimRight(host, "/") }
}

// WithSegmentLimit sets the per-request character limit.
func WithSegmentLimit(n int) GoogleSpeechOption {
	return func(g *GoogleSpeech) { g.maxSegment = n }
}

// WithSpeechTimeout sets the HTTP timeout for each segment request.
func WithSpeechTimeout(d time.Duration) GoogleSpeechOption {
	return func(g *GoogleSpeech) { g.httpClient.Timeout = d }
}

// NewGoogleSpeech creates a new speech synthesis client.
func NewGoogleSpeech(opts ...GoogleSpeechOption) *GoogleSpeech {
	g := &GoogleSpeech{
		host:       "https://translate.google.com",
		maxSegment: defaultSegmentChars,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Synthesize converts narration text into one concatenated MP3 payload.
// Any failed segment aborts the whole synthesis.
func (g *GoogleSpeech) Synthesize(ctx context.Context, text, voice string) (*Audio, error) {
	segments := splitSegments(text, g.maxSegment)
	if len(segments) == 0 {
		return nil, model.ErrNoContent
	}

	lang := languageForVoice(voice)
	var buf bytes.Buffer
	for i, seg := range segments {
		data, err := g.fetchSegment(ctx, seg, lang)
		if err != nil {
			return nil, fmt.Errorf("%w: segment %d/%d: %v", model.ErrSynthesisFailed, i+1, len(segments), err)
		}
		buf.Write(data)
	}

	return &Audio{Data: buf.Bytes(), Format: "mp3"}, nil
}

func (g *GoogleSpeech) fetchSegment(ctx context.Context, text, lang string) ([]byte, error) {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("q", text)
	q.Set("tl", lang)
	q.Set("client", "tw-ob")
	q.Set("ttsspeed", "1") // normal speed

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.host+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, body)
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxAudioSegmentSize))
}

// splitSegments breaks text into speakable chunks of at most maxLen runes.
// Split points prefer sentence-ending punctuation, then whitespace; a single
// word longer than maxLen is hard-cut. Segment order follows input order.
func splitSegments(text string, maxLen int) []string {
	if maxLen <= 0 {
		maxLen = defaultSegmentChars
	}

	var segments []string
	runes := []rune(strings.TrimSpace(text))
	for len(runes) > maxLen {
		cut := -1
		for i := maxLen - 1; i >= 0; i-- {
			if isSentenceEnd(runes[i]) {
				cut = i + 1
				break
			}
		}
		if cut <= 0 {
			for i := maxLen; i >= 1; i-- {
				if unicode.IsSpace(runes[i-1]) {
					cut = i
					break
				}
			}
		}
		if cut <= 0 {
			cut = maxLen
		}

		if seg := strings.TrimSpace(string(runes[:cut])); seg != "" {
			segments = append(segments, seg)
		}
		runes = runes[cut:]
		for len(runes) > 0 && unicode.IsSpace(runes[0]) {
			runes = runes[1:]
		}
	}
	if seg := strings.TrimSpace(string(runes)); seg != "" {
		segments = append(segments, seg)
	}
	return segments
}

func isSentenceEnd(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}
