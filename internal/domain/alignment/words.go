package alignment

import (
	"strings"

	"github.com/forPelevin/reelstitch/internal/types"
)

// FromWords expands word-level timings (as produced by an ASR pass) into a
// character stream so it can go through Parse like provider alignment data.
// Each word's characters share its window evenly; the separating space takes
// the previous word's end time.
func FromWords(words []types.Word) types.AlignmentData {
	var a types.AlignmentData
	for _, w := range words {
		text := strings.TrimSpace(w.Word)
		runes := []rune(text)
		if len(runes) == 0 || w.End < w.Start {
			continue
		}
		if len(a.Characters) > 0 {
			prevEnd := a.EndTimes[len(a.EndTimes)-1]
			a.Characters = append(a.Characters, " ")
			a.StartTimes = append(a.StartTimes, prevEnd)
			a.EndTimes = append(a.EndTimes, prevEnd)
		}
		step := (w.End - w.Start) / float64(len(runes))
		for i, r := range runes {
			s := w.Start + float64(i)*step
			e := w.Start + float64(i+1)*step
			if i == len(runes)-1 {
				e = w.End
			}
			a.Characters = append(a.Characters, string(r))
			a.StartTimes = append(a.StartTimes, s)
			a.EndTimes = append(a.EndTimes, e)
		}
	}
	return a
}
