// Package subtitles builds the caption timeline and its ASS rendering.
package subtitles

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/forPelevin/reelstitch/internal/types"
)

// RenderASS renders one Dialogue event per cue on a width×height canvas.
func RenderASS(cues []types.SubtitleCue, style Style, width, height int) (string, error) {
	style = style.WithDefaults()
	primary, err := assColor(style.Color)
	if err != nil {
		return "", err
	}
	var b strings.Builder
	b.WriteString(assHeader(style, primary, width, height))
	b.WriteString("\n[Events]\n")
	b.WriteString("Format: Layer, Start, End, Style, Name, MarginL, MarginR, MarginV, Effect, Text\n")
	for _, c := range cues {
		b.WriteString("Dialogue: 0,")
		b.WriteString(assTime(seconds(c.EnableStart)))
		b.WriteString(",")
		b.WriteString(assTime(seconds(c.EnableEnd)))
		b.WriteString(",Caption,,0,0,0,,")
		b.WriteString(sanitizeASS(c.Text))
		b.WriteString("\n")
	}
	return b.String(), nil
}

func assHeader(style Style, primary string, width, height int) string {
	// Alignment 2 is bottom-center; MarginV is measured up from the bottom edge.
	marginV := int(math.Round((1 - style.VerticalPosition) * float64(height)))
	return strings.TrimSpace(fmt.Sprintf(`
[Script Info]
ScriptType: v4.00+
PlayResX: %d
PlayResY: %d
ScaledBorderAndShadow: yes

[V4+ Styles]
Format: Name, Fontname, Fontsize, PrimaryColour, SecondaryColour, OutlineColour, BackColour, Bold, Italic, Underline, StrikeOut, ScaleX, ScaleY, Spacing, Angle, BorderStyle, Outline, Shadow, Alignment, MarginL, MarginR, MarginV, Encoding
Style: Caption, %s, %d, %s, &H00FFD200, &H00000000, &H64000000, 1,0,0,0,100,100,0,0,1,2,0,2, 60,60,%d,1
`, width, height, sanitizeStyleField(style.Font), style.FontSize, primary, marginV))
}

func assTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	hs := int(d / time.Hour)
	d -= time.Duration(hs) * time.Hour
	ms := int(d / time.Minute)
	d -= time.Duration(ms) * time.Minute
	s := int(d / time.Second)
	d -= time.Duration(s) * time.Second
	cs := int(d / (10 * time.Millisecond))
	return fmt.Sprintf("%d:%02d:%02d.%02d", hs, ms, s, cs)
}

func sanitizeASS(s string) string {
	s = strings.ReplaceAll(s, "\\", "\\\\")
	s = strings.ReplaceAll(s, "{", "(")
	s = strings.ReplaceAll(s, "}", ")")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

func sanitizeStyleField(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", " "))
}

func seconds(sec float64) time.Duration { return time.Duration(math.Round(sec * float64(time.Second))) }
