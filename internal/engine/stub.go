package engine

import (
	"context"
	"strings"
)

// StubModelClient returns canned completions keyed off the prompt variant
// (for development without API keys, and for tests).
type StubModelClient struct{}

func (m *StubModelClient) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "Executive Summary"):
		return `## Executive Summary
The document outlines the main problem, the proposed approach, and the expected outcome.

## Key Insights
- The approach trades upfront effort for long-term simplicity.
- Most of the measured gains come from a small number of changes.

## Action Items
- Review the proposed approach with the team.
- Validate the measurements on a realistic workload.`, nil

	case strings.Contains(prompt, "podcast host"):
		// Deliberately carries markdown residue the way real models do, so
		// the script cleanup path is exercised in stub mode too.
		return "Welcome back to the show! **Today** we explore the document you shared. " +
			"First, the big picture. Then, the details that matter. " +
			"Thanks for listening, and see you next time.", nil

	case strings.Contains(prompt, "DOCUMENT CONTEXT"):
		return "Based on the document, the answer is that the described approach applies directly to your question.", nil
	}
	return "Stub completion.", nil
}

// StubSpeechClient synthesizes fake audio where every segment is rendered
// as a visible [seg:...] marker, so concatenation order is verifiable
// without a network.
type StubSpeechClient struct {
	// SegmentLimit mirrors the per-request limit of the real client.
	SegmentLimit int
}

func (s *StubSpeechClient) Synthesize(_ context.Context, text, voice string) (*Audio, error) {
	var b strings.Builder
	for _, seg := range splitSegments(text, s.SegmentLimit) {
		b.WriteString("[seg:")
		b.WriteString(seg)
		b.WriteString("]")
	}
	return &Audio{Data: []byte(b.String()), Format: "mp3"}, nil
}
