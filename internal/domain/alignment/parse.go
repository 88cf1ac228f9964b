// Package alignment turns narration timing into word spans.
//
// Text inside square brackets is a delivery directive for the voice engine
// ("[sigh]", "[whispers]") and is never displayed. Hyphens are stripped from
// displayed words without splitting them.
package alignment

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/forPelevin/reelstitch/internal/errs"
	"github.com/forPelevin/reelstitch/internal/types"
)

// Validate checks the parallel-slice invariant of a.
func Validate(a types.AlignmentData) error {
	if len(a.Characters) != len(a.StartTimes) || len(a.Characters) != len(a.EndTimes) {
		return errs.Input("alignment", "length mismatch: %d characters, %d start times, %d end times",
			len(a.Characters), len(a.StartTimes), len(a.EndTimes))
	}
	return nil
}

// Parse scans the character stream once and returns word spans in order.
// Callers must Validate a first; entries beyond the shortest slice are ignored.
func Parse(a types.AlignmentData) []types.WordSpan {
	n := min(len(a.Characters), len(a.StartTimes), len(a.EndTimes))

	var (
		out      []types.WordSpan
		word     strings.Builder
		start    float64
		end      float64
		inWord   bool
		inDirect bool
	)
	flush := func() {
		if !inWord {
			return
		}
		text := stripHyphens(word.String())
		if text != "" {
			out = append(out, types.WordSpan{Text: text, Start: start, End: end})
		}
		word.Reset()
		inWord = false
	}

	for i := 0; i < n; i++ {
		ch := a.Characters[i]
		switch {
		case ch == "[":
			inDirect = true
			continue
		case ch == "]":
			inDirect = false
			continue
		case inDirect:
			continue
		case isSpace(ch):
			flush()
			continue
		}
		if !inWord {
			inWord = true
			start = a.StartTimes[i]
		}
		word.WriteString(ch)
		end = a.EndTimes[i]
	}
	flush()
	return out
}

// CleanText applies the display rules to raw text: directives removed,
// hyphens turned into spaces, whitespace collapsed.
func CleanText(text string) string {
	var b strings.Builder
	inDirect := false
	for _, r := range text {
		switch {
		case r == '[':
			inDirect = true
		case r == ']':
			inDirect = false
		case inDirect:
		case r == '-':
			b.WriteByte(' ')
		default:
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// Even spreads the words of text over total seconds in equal slices. The last
// word always ends exactly at total.
func Even(text string, total float64) []types.WordSpan {
	words := strings.Fields(CleanText(text))
	if len(words) == 0 || total <= 0 {
		return nil
	}
	slice := total / float64(len(words))
	out := make([]types.WordSpan, len(words))
	for i, w := range words {
		out[i] = types.WordSpan{
			Text:  w,
			Start: float64(i) * slice,
			End:   float64(i+1) * slice,
		}
	}
	out[len(out)-1].End = total
	return out
}

func stripHyphens(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, "-", ""))
}

func isSpace(ch string) bool {
	if ch == "" {
		return false
	}
	r, size := utf8.DecodeRuneInString(ch)
	return size == len(ch) && unicode.IsSpace(r)
}
