package engine

import "fmt"

// Length selector constants for podcast scripts.
const (
	LengthShort  = "Short"
	LengthMedium = "Medium"
	LengthLong   = "Long"
)

// wordBudget maps a length selector to an approximate script word count.
func wordBudget(length string) int {
	switch length {
	case LengthShort:
		return 120
	case LengthLong:
		return 450
	default:
		return 250
	}
}

func buildSummaryPrompt(text string) string {
	return fmt.Sprintf(`You are a helpful AI assistant. Summarize the document below strictly in Markdown format with these sections: Executive Summary, Key Insights, and Action Items.

Document:
%s`, text)
}

func buildAnswerPrompt(contextText, question string) string {
	return fmt.Sprintf(`You are a helpful AI assistant. Answer the user's question based STRICTLY on the provided document context. If the context does not contain the answer, say so.

--- DOCUMENT CONTEXT ---
%s

Question: %s`, contextText, question)
}

func buildScriptPrompt(text, tone string, words int) string {
	return fmt.Sprintf(`You are a podcast host. Convert the source text into a narration script.

STYLE GUIDELINES:
1. Format: Single narrator. No speaker labels.
2. Tone: %s.
3. Length: Under %d words.
4. Output: Just the raw spoken text. No Markdown, no formatting characters.

SOURCE: "%s"`, tone, words, text)
}
