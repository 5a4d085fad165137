package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/narayana-thota/Query-Stream/internal/model"
)

// PrepareContext joins the given text parts, collapses whitespace, and
// applies a hard rune cutoff at budget so the result is safe to hand to a
// downstream consumer. There is no attempt to preserve sentence boundaries.
// Inputs already within budget come back unchanged (after normalization).
// A budget of 0 or less disables truncation.
func PrepareContext(budget int, parts ...string) (string, error) {
	text := collapseWhitespace(strings.Join(parts, "\n"))
	if text == "" {
		return "", model.ErrNoContent
	}
	if budget > 0 && utf8.RuneCountInString(text) > budget {
		runes := []rune(text)
		text = string(runes[:budget])
	}
	return text, nil
}

// collapseWhitespace folds newlines and runs of spaces into single spaces
// and trims the ends.
func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
