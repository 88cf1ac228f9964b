package renderplan

import (
	"fmt"
	"strings"
)

type OpKind string

const (
	// video
	OpTrim      OpKind = "trim"
	OpResetPTS  OpKind = "reset"
	OpStretch   OpKind = "stretch"
	OpPingPong  OpKind = "pingpong"
	OpLoop      OpKind = "loop"
	OpFit       OpKind = "fit"
	OpPad       OpKind = "pad"
	OpSquarePx  OpKind = "setsar"
	OpFrameRate OpKind = "fps"
	OpSubtitles OpKind = "subtitles"

	// audio
	OpTempo      OpKind = "atempo"
	OpResample   OpKind = "aformat"
	OpSilencePad OpKind = "apad"
	OpAudioTrim  OpKind = "atrim"
	OpAudioReset OpKind = "areset"
)

// Op is one declarative step of a segment's video or audio chain. Only the
// fields relevant to Kind are set.
type Op struct {
	Kind    OpKind
	Seconds float64
	Factor  float64
	Width   int
	Height  int
	Rate    int
	Path    string
}

func (o Op) String() string {
	switch o.Kind {
	case OpTrim, OpAudioTrim:
		return fmt.Sprintf("%s(%.3fs)", o.Kind, o.Seconds)
	case OpStretch, OpTempo:
		return fmt.Sprintf("%s(x%.4f)", o.Kind, o.Factor)
	case OpFit, OpPad:
		return fmt.Sprintf("%s(%dx%d)", o.Kind, o.Width, o.Height)
	case OpFrameRate, OpResample:
		return fmt.Sprintf("%s(%d)", o.Kind, o.Rate)
	case OpSubtitles:
		return fmt.Sprintf("%s(%s)", o.Kind, o.Path)
	default:
		return string(o.Kind)
	}
}

// Describe joins ops into a short human-readable chain.
func Describe(ops []Op) string {
	parts := make([]string, len(ops))
	for i, op := range ops {
		parts[i] = op.String()
	}
	return strings.Join(parts, " → ")
}
