package ports

import (
	"context"

	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/types"
)

// ConcatInput describes the final assembly of rendered segments.
type ConcatInput struct {
	Segments    []string
	MusicPath   string
	MusicVolume float64
	OutputPath  string
	Encoder     renderplan.Encoder
}

type MediaEngine interface {
	// Render executes plan and returns the path of the produced segment file.
	Render(ctx context.Context, plan renderplan.RenderPlan) (string, error)
	Concat(ctx context.Context, in ConcatInput) error
}

type Prober interface {
	Probe(ctx context.Context, path string) (types.ProbeResult, error)
}

type BeatAnalyzer interface {
	Beats(ctx context.Context, audioPath string) ([]float64, error)
}

// Aligner produces per-character timing for narration that came without it.
type Aligner interface {
	Align(ctx context.Context, audioPath, workDir string) (types.AlignmentData, error)
}

// AudioExtractor converts any audio or video input into 16 kHz mono WAV.
type AudioExtractor interface {
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
}
