// Package engine implements the content-transformation pipeline: text
// extraction, context preparation, language model generation, and speech
// synthesis. It never writes to storage; persistence is the caller's job
// and happens only after the whole pipeline has succeeded.
package engine

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

// Limits holds the character budgets applied before each external call.
type Limits struct {
	SummaryContext int
	AnswerContext  int
	ScriptContext  int
}

// DefaultLimits are the budgets used when none are configured.
var DefaultLimits = Limits{
	SummaryContext: 25000,
	AnswerContext:  30000,
	ScriptContext:  30000,
}

// Pipeline coordinates generation and synthesis for one request. It is
// safe for concurrent use; all state is the injected clients.
type Pipeline struct {
	model  ModelClient
	speech SpeechClient
	limits Limits
}

// NewPipeline creates a pipeline with the given clients and budgets.
func NewPipeline(mc ModelClient, sc SpeechClient, limits Limits) *Pipeline {
	if limits == (Limits{}) {
		limits = DefaultLimits
	}
	return &Pipeline{model: mc, speech: sc, limits: limits}
}

// Summarize produces a sectioned Markdown summary of text.
func (p *Pipeline) Summarize(ctx context.Context, text string) (string, error) {
	prepared, err := PrepareContext(p.limits.SummaryContext, text)
	if err != nil {
		return "", err
	}
	out, err := p.model.Complete(ctx, buildSummaryPrompt(prepared))
	if err != nil {
		return "", classifyModelErr(err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", model.ErrGenerationFailed
	}
	return out, nil
}

// Answer responds to a question grounded strictly in contextText.
func (p *Pipeline) Answer(ctx context.Context, contextText, question string) (string, error) {
	prepared, err := PrepareContext(p.limits.AnswerContext, contextText)
	if err != nil {
		return "", err
	}
	out, err := p.model.Complete(ctx, buildAnswerPrompt(prepared, question))
	if err != nil {
		return "", classifyModelErr(err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", model.ErrGenerationFailed
	}
	return out, nil
}

// WriteScript produces single-narrator narration text for text. The output
// feeds speech synthesis next, so visual-only formatting is stripped.
func (p *Pipeline) WriteScript(ctx context.Context, text, tone, length string) (string, error) {
	prepared, err := PrepareContext(p.limits.ScriptContext, text)
	if err != nil {
		return "", err
	}
	if tone == "" {
		tone = "Conversational"
	}
	out, err := p.model.Complete(ctx, buildScriptPrompt(prepared, tone, wordBudget(length)))
	if err != nil {
		return "", classifyModelErr(err)
	}
	script := cleanScript(out)
	if script == "" {
		return "", model.ErrGenerationFailed
	}
	return script, nil
}

// Narrate converts a cleaned narration script into one audio payload.
func (p *Pipeline) Narrate(ctx context.Context, script, voice string) (*Audio, error) {
	audio, err := p.speech.Synthesize(ctx, script, voice)
	if err != nil {
		if errors.Is(err, model.ErrSynthesisFailed) || errors.Is(err, model.ErrNoContent) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", model.ErrSynthesisFailed, err)
	}
	return audio, nil
}

var markupChars = regexp.MustCompile(`[*#]`)

// cleanScript strips markup characters and collapses whitespace so the
// text contains nothing a narrator would not speak.
func cleanScript(s string) string {
	return collapseWhitespace(markupChars.ReplaceAllString(s, ""))
}

// classifyModelErr folds a raw model client error into the pipeline
// taxonomy, keeping rate limiting distinguishable from other failures.
func classifyModelErr(err error) error {
	var ae *apiError
	if errors.As(err, &ae) && ae.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: %v", model.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", model.ErrGenerationFailed, err)
}
