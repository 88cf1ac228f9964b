package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/forPelevin/reelstitch/internal/domain/alignment"
	"github.com/forPelevin/reelstitch/internal/domain/conform"
	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/domain/subtitles"
	"github.com/forPelevin/reelstitch/internal/domain/tempo"
	"github.com/forPelevin/reelstitch/internal/errs"
	"github.com/forPelevin/reelstitch/internal/logging"
	"github.com/forPelevin/reelstitch/internal/orchestrator"
	"github.com/forPelevin/reelstitch/internal/ports"
	"github.com/forPelevin/reelstitch/internal/types"
)

// Deps are the outside-world collaborators. Aligner and Logger are optional.
type Deps struct {
	Engine  ports.MediaEngine
	Prober  ports.Prober
	Aligner ports.Aligner
	Logger  *slog.Logger
}

type Usecase struct {
	d   Deps
	log *slog.Logger
}

func New(d Deps) Usecase {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	return Usecase{d: d, log: logging.NewComponentLogger(d.Logger, "usecase")}
}

type Input struct {
	Segments  []types.SegmentSpec
	Style     subtitles.Style
	Subtitles bool
	Width     int
	Height    int
	Encoder   renderplan.Encoder
	Workers   int

	// RunDir receives every intermediate file of the run.
	RunDir      string
	MusicPath   string
	MusicVolume float64
	OutputPath  string
}

// WordSource records where a segment's word timings came from.
type WordSource string

const (
	WordsFromAlignment WordSource = "alignment"
	WordsFromASR       WordSource = "asr"
	WordsEven          WordSource = "even"
	WordsNone          WordSource = "none"
)

// Prepared is the planning outcome for one segment.
type Prepared struct {
	Plan        renderplan.RenderPlan
	Video       types.ProbeResult
	Audio       types.ProbeResult
	Words       WordSource
	DroppedCues int
}

type Result struct {
	OutputPath string
	Segments   []orchestrator.Output
}

// Prepare probes every segment and builds its render plan. Probe failures
// and malformed cues are logged and recovered; anything else aborts.
func (u Usecase) Prepare(ctx context.Context, in Input) ([]Prepared, error) {
	if len(in.Segments) == 0 {
		return nil, errs.Input("prepare", "no segments provided")
	}
	out := make([]Prepared, 0, len(in.Segments))
	for i, seg := range in.Segments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p, err := u.prepareSegment(ctx, in, i, seg)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

func (u Usecase) prepareSegment(ctx context.Context, in Input, i int, seg types.SegmentSpec) (Prepared, error) {
	log := u.log.With(logging.Int("segment", i))
	target := seg.TargetDuration

	video, err := u.probe(ctx, i, seg.VideoPath)
	if ferr := u.tolerate(log, "probe failed; treating duration as unknown", err); ferr != nil {
		return Prepared{}, ferr
	}
	if err == nil && !video.HasVideo {
		return Prepared{}, errs.Input(fmt.Sprintf("prepare: segment %d", i), "no video stream in %s", seg.VideoPath)
	}

	audio, err := u.probe(ctx, i, seg.AudioPath)
	if ferr := u.tolerate(log, "probe failed; treating duration as unknown", err); ferr != nil {
		return Prepared{}, ferr
	}
	if err != nil {
		audio = types.ProbeResult{HasAudio: true}
	}
	silent := !audio.HasAudio
	if silent {
		log.Warn("narration has no audio stream; using silence", logging.String("path", seg.AudioPath))
	}

	cp := conform.Decide(video.Duration, target)
	tp := tempo.Chain(audio.Duration, target)
	if silent {
		tp = nil
	}

	p := Prepared{Video: video, Audio: audio, Words: WordsNone}
	var cues []types.SubtitleCue
	if in.Subtitles {
		var words []types.WordSpan
		words, p.Words = u.words(ctx, log, in, i, seg, audio, silent)
		var dropped []error
		cues, dropped = subtitles.BuildCues(words, tp.Scale())
		for _, err := range dropped {
			if ferr := u.tolerate(log, "subtitle cue dropped", err); ferr != nil {
				return Prepared{}, ferr
			}
		}
		p.DroppedCues = len(dropped)
	}

	plan, err := renderplan.Build(renderplan.Input{
		Index:        i,
		Segment:      seg,
		Conform:      cp,
		Tempo:        tp,
		Cues:         cues,
		Style:        in.Style,
		Width:        in.Width,
		Height:       in.Height,
		Encoder:      in.Encoder,
		SilentAudio:  silent,
		OutputPath:   filepath.Join(in.RunDir, fmt.Sprintf("seg_%03d.mp4", i)),
		SubtitlePath: filepath.Join(in.RunDir, fmt.Sprintf("seg_%03d.ass", i)),
	})
	if err != nil {
		return Prepared{}, errs.Wrap(errs.ErrInput, "prepare", "", "", err)
	}
	p.Plan = plan

	log.Debug("segment planned",
		logging.String("conform", cp.String()),
		logging.Any("tempo", []float64(tp)),
		logging.Float64("clip", video.Duration),
		logging.Float64("narration", audio.Duration),
		logging.Float64("target", target),
		logging.Bool("silent", silent),
		logging.Int("cues", len(cues)),
		logging.String("words", string(p.Words)),
	)
	return p, nil
}

// probe returns a ProbeError-tagged error on failure.
func (u Usecase) probe(ctx context.Context, i int, path string) (types.ProbeResult, error) {
	res, err := u.d.Prober.Probe(ctx, path)
	if err != nil {
		return types.ProbeResult{}, errs.Wrap(errs.ErrProbe, fmt.Sprintf("segment %d", i), "probe", path, err)
	}
	return res, nil
}

// tolerate logs a recoverable error and swallows it. Fatal errors are
// returned unchanged.
func (u Usecase) tolerate(log *slog.Logger, msg string, err error) error {
	if err == nil || errs.Fatal(err) {
		return err
	}
	log.Warn(msg, logging.Error(err))
	return nil
}

// words picks the best available word timings: provider alignment, then an
// ASR pass, then an even split of the display text.
func (u Usecase) words(
	ctx context.Context,
	log *slog.Logger,
	in Input,
	i int,
	seg types.SegmentSpec,
	audio types.ProbeResult,
	silent bool,
) ([]types.WordSpan, WordSource) {
	if seg.Alignment != nil {
		return alignment.Parse(*seg.Alignment), WordsFromAlignment
	}
	if u.d.Aligner != nil && !silent {
		workDir := filepath.Join(in.RunDir, fmt.Sprintf("asr_%03d", i))
		data, err := u.d.Aligner.Align(ctx, seg.AudioPath, workDir)
		switch {
		case err != nil:
			log.Warn("narration alignment failed; spreading text evenly", logging.Error(err))
		case alignment.Validate(data) != nil:
			log.Warn("narration alignment malformed; spreading text evenly")
		default:
			return alignment.Parse(data), WordsFromASR
		}
	}
	total := audio.Duration
	if total <= 0 || silent {
		total = seg.TargetDuration
	}
	return alignment.Even(seg.Text, total), WordsEven
}

// Run prepares every segment, renders them on the worker pool and joins the
// results in manifest order.
func (u Usecase) Run(ctx context.Context, in Input) (Result, error) {
	prepared, err := u.Prepare(ctx, in)
	if err != nil {
		return Result{}, err
	}
	plans := make([]renderplan.RenderPlan, len(prepared))
	for i, p := range prepared {
		plans[i] = p.Plan
	}

	orch := orchestrator.New(in.Workers, u.d.Logger)
	outs, err := orch.Run(ctx, plans, u.d.Engine.Render)
	if err != nil {
		return Result{}, err
	}

	segments := make([]string, len(outs))
	for i, o := range outs {
		segments[i] = o.Path
	}
	u.log.Info("concatenating segments", logging.Int("segments", len(segments)))
	if err := u.d.Engine.Concat(ctx, ports.ConcatInput{
		Segments:    segments,
		MusicPath:   in.MusicPath,
		MusicVolume: in.MusicVolume,
		OutputPath:  in.OutputPath,
		Encoder:     in.Encoder,
	}); err != nil {
		return Result{}, errs.Wrap(errs.ErrRender, "concat", "", "", err)
	}
	return Result{OutputPath: in.OutputPath, Segments: outs}, nil
}
