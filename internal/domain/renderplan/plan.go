// Package renderplan assembles the declarative description of one rendered
// segment. Nothing here touches the filesystem or runs the media engine.
package renderplan

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/forPelevin/reelstitch/internal/domain/conform"
	"github.com/forPelevin/reelstitch/internal/domain/subtitles"
	"github.com/forPelevin/reelstitch/internal/domain/tempo"
	"github.com/forPelevin/reelstitch/internal/types"
)

const (
	DefaultFrameRate  = 30
	DefaultSampleRate = 44100
)

// Encoder settings are passed through to the engine untouched.
type Encoder struct {
	Preset string
	CRF    int
}

type Input struct {
	Index   int
	Segment types.SegmentSpec
	Conform conform.Plan
	Tempo   tempo.Plan
	Cues    []types.SubtitleCue
	Style   subtitles.Style

	Width      int
	Height     int
	FrameRate  int
	SampleRate int
	Encoder    Encoder

	// SilentAudio is set when the narration file has no audio stream.
	SilentAudio  bool
	OutputPath   string
	SubtitlePath string
}

// RenderPlan describes one segment render. Plans are built once and must be
// treated as read-only afterwards.
type RenderPlan struct {
	Index     int
	VideoPath string
	AudioPath string
	Text      string

	// LoopSource asks the engine to repeat the clip input indefinitely; the
	// video chain trims it.
	LoopSource  bool
	SilentAudio bool

	Conform conform.Plan
	Tempo   tempo.Plan

	VideoOps     []Op
	AudioOps     []Op
	SubtitleCues []types.SubtitleCue
	SubtitlePath string
	Style        subtitles.Style

	Width   int
	Height  int
	Encoder Encoder

	OutputDuration float64
	OutputPath     string
}

func Build(in Input) (RenderPlan, error) {
	if err := validate(in); err != nil {
		return RenderPlan{}, fmt.Errorf("segment %d: render plan: %w", in.Index, err)
	}
	if in.FrameRate <= 0 {
		in.FrameRate = DefaultFrameRate
	}
	if in.SampleRate <= 0 {
		in.SampleRate = DefaultSampleRate
	}
	target := in.Conform.OutputDuration

	p := RenderPlan{
		Index:          in.Index,
		VideoPath:      in.Segment.VideoPath,
		AudioPath:      in.Segment.AudioPath,
		Text:           in.Segment.Text,
		LoopSource:     in.Conform.SourceUnknown,
		SilentAudio:    in.SilentAudio,
		Conform:        in.Conform,
		Tempo:          slices.Clone(in.Tempo),
		SubtitleCues:   slices.Clone(in.Cues),
		Style:          in.Style.WithDefaults(),
		Width:          in.Width,
		Height:         in.Height,
		Encoder:        in.Encoder,
		OutputDuration: target,
		OutputPath:     in.OutputPath,
	}

	p.VideoOps = conformOps(in.Conform)
	p.VideoOps = append(p.VideoOps,
		Op{Kind: OpFit, Width: in.Width, Height: in.Height},
		Op{Kind: OpPad, Width: in.Width, Height: in.Height},
		Op{Kind: OpSquarePx},
		Op{Kind: OpFrameRate, Rate: in.FrameRate},
	)
	if len(p.SubtitleCues) > 0 {
		p.SubtitlePath = in.SubtitlePath
		p.VideoOps = append(p.VideoOps, Op{Kind: OpSubtitles, Path: in.SubtitlePath})
	}

	if !in.SilentAudio {
		for _, f := range in.Tempo {
			p.AudioOps = append(p.AudioOps, Op{Kind: OpTempo, Factor: f})
		}
	}
	p.AudioOps = append(p.AudioOps,
		Op{Kind: OpResample, Rate: in.SampleRate},
		Op{Kind: OpSilencePad},
		Op{Kind: OpAudioTrim, Seconds: target},
		Op{Kind: OpAudioReset},
	)
	return p, nil
}

func conformOps(c conform.Plan) []Op {
	target := c.OutputDuration
	switch c.Strategy {
	case conform.SlowDown:
		return []Op{
			{Kind: OpStretch, Factor: c.Factor},
			{Kind: OpTrim, Seconds: target},
			{Kind: OpResetPTS},
		}
	case conform.PingPongLoop:
		return []Op{
			{Kind: OpPingPong},
			{Kind: OpLoop},
			{Kind: OpTrim, Seconds: target},
			{Kind: OpResetPTS},
		}
	default:
		return []Op{
			{Kind: OpTrim, Seconds: target},
			{Kind: OpResetPTS},
		}
	}
}

func validate(in Input) error {
	var problems []error
	if in.Conform.OutputDuration <= 0 {
		problems = append(problems, errors.New("output duration must be > 0"))
	}
	if in.Width <= 0 || in.Height <= 0 {
		problems = append(problems, fmt.Errorf("invalid frame size %dx%d", in.Width, in.Height))
	}
	if strings.TrimSpace(in.OutputPath) == "" {
		problems = append(problems, errors.New("output path is empty"))
	}
	if len(in.Cues) > 0 && strings.TrimSpace(in.SubtitlePath) == "" {
		problems = append(problems, errors.New("subtitle path is empty"))
	}
	return errors.Join(problems...)
}
