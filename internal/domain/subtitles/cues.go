package subtitles

import (
	"fmt"
	"math"
	"strings"

	"github.com/forPelevin/reelstitch/internal/errs"
	"github.com/forPelevin/reelstitch/internal/types"
)

// BuildCues moves word spans onto the tempo-adjusted narration timeline by
// multiplying both edges by scale. A span that does not yield a usable cue is
// dropped; the returned errors describe every drop and are never fatal.
func BuildCues(words []types.WordSpan, scale float64) ([]types.SubtitleCue, []error) {
	if scale <= 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		scale = 1
	}
	out := make([]types.SubtitleCue, 0, len(words))
	var dropped []error
	for i, w := range words {
		cue := types.SubtitleCue{
			Text:        strings.TrimSpace(w.Text),
			EnableStart: w.Start * scale,
			EnableEnd:   w.End * scale,
		}
		if err := checkCue(cue); err != nil {
			dropped = append(dropped, errs.Wrap(errs.ErrSubtitleCue, fmt.Sprintf("cue %d", i), "", err.Error(), nil))
			continue
		}
		out = append(out, cue)
	}
	return out, dropped
}

func checkCue(c types.SubtitleCue) error {
	switch {
	case c.Text == "":
		return fmt.Errorf("empty text")
	case math.IsNaN(c.EnableStart) || math.IsNaN(c.EnableEnd):
		return fmt.Errorf("%q: NaN time", c.Text)
	case c.EnableStart < 0:
		return fmt.Errorf("%q: negative start %.3f", c.Text, c.EnableStart)
	case c.EnableEnd < c.EnableStart:
		return fmt.Errorf("%q: end %.3f before start %.3f", c.Text, c.EnableEnd, c.EnableStart)
	}
	return nil
}
