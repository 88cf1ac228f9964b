package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"github.com/forPelevin/reelstitch/internal/config"
	"github.com/forPelevin/reelstitch/internal/domain/beatgrid"
	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/domain/subtitles"
	"github.com/forPelevin/reelstitch/internal/errs"
	"github.com/forPelevin/reelstitch/internal/logging"
	"github.com/forPelevin/reelstitch/internal/manifest"
	"github.com/forPelevin/reelstitch/internal/ports"
	"github.com/forPelevin/reelstitch/internal/ports/adapters/beats"
	"github.com/forPelevin/reelstitch/internal/ports/adapters/ffmpeg"
	"github.com/forPelevin/reelstitch/internal/ports/adapters/whispercpp"
	"github.com/forPelevin/reelstitch/internal/types"
	"github.com/forPelevin/reelstitch/internal/usecase"
)

type Config struct {
	ClipsPath  string
	OutputPath string
	Settings   config.Config
	Logger     *slog.Logger
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.ClipsPath) == "" {
		return errs.Input("config", "clips manifest path is empty")
	}
	if strings.TrimSpace(c.OutputPath) == "" {
		return errs.Input("config", "output path is empty")
	}
	if err := c.Settings.Validate(); err != nil {
		return errs.Wrap(errs.ErrInput, "config", "", "", err)
	}
	if err := c.style().WithDefaults().Validate(); err != nil {
		return errs.Wrap(errs.ErrInput, "config", "style", "", err)
	}
	return nil
}

func (c Config) style() subtitles.Style {
	return subtitles.Style{
		Font:             c.Settings.Font,
		FontSize:         c.Settings.FontSize,
		Color:            c.Settings.Color,
		VerticalPosition: c.Settings.VerticalPosition,
	}
}

func (c Config) logger() *slog.Logger {
	if c.Logger == nil {
		return logging.NewNop()
	}
	return c.Logger
}

// Run renders the manifest into cfg.OutputPath and returns its absolute path.
// Intermediate files live in a per-run directory that is removed afterwards.
func Run(ctx context.Context, cfg Config) (string, error) {
	if err := cfg.Validate(); err != nil {
		return "", err
	}
	log := logging.NewComponentLogger(cfg.logger(), "pipeline")

	segments, err := manifest.Load(cfg.ClipsPath)
	if err != nil {
		return "", err
	}
	output, err := filepath.Abs(cfg.OutputPath)
	if err != nil {
		return "", err
	}

	release, err := lockOutput(output, log)
	if err != nil {
		return "", err
	}
	defer release()

	runDir, cleanup, err := prepareRunDir(cfg.Settings.WorkDir, cfg.ClipsPath, log)
	if err != nil {
		return "", err
	}
	defer cleanup()

	uc := usecase.New(buildDeps(cfg, cfg.logger()))
	in, err := usecaseInput(cfg, segments, runDir)
	if err != nil {
		return "", err
	}
	in.OutputPath = output

	log.Info("stitching",
		logging.Int("segments", len(segments)),
		logging.String("format", cfg.Settings.Format),
		logging.String("run_dir", runDir),
	)
	if _, err := uc.Run(ctx, in); err != nil {
		return "", err
	}
	log.Info("output written", logging.String("path", output))
	return output, nil
}

// lockOutput creates the output directory and takes an exclusive lock on
// <output>.lock so two runs cannot write the same file. The lock file is
// left in place after release.
func lockOutput(output string, log *slog.Logger) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
		return nil, errs.Wrap(errs.ErrInput, "output", "mkdir", filepath.Dir(output), err)
	}
	lock := flock.New(output + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !locked {
		return nil, errs.Input("output", "another run is writing %s", output)
	}
	return func() {
		if err := lock.Unlock(); err != nil {
			log.Warn("release output lock failed", logging.Error(err))
		}
	}, nil
}

// Plan builds every render plan without rendering anything.
func Plan(ctx context.Context, cfg Config) ([]usecase.Prepared, error) {
	if strings.TrimSpace(cfg.OutputPath) == "" {
		cfg.OutputPath = "plan.mp4"
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logging.NewComponentLogger(cfg.logger(), "pipeline")

	segments, err := manifest.Load(cfg.ClipsPath)
	if err != nil {
		return nil, err
	}
	runDir, cleanup, err := prepareRunDir(cfg.Settings.WorkDir, cfg.ClipsPath, log)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	in, err := usecaseInput(cfg, segments, runDir)
	if err != nil {
		return nil, err
	}
	return usecase.New(buildDeps(cfg, cfg.logger())).Prepare(ctx, in)
}

// Beats runs the configured beat analyzer on audioPath.
func Beats(ctx context.Context, settings config.Config, audioPath string) ([]float64, error) {
	return beats.New(settings.BeatsCommand).Beats(ctx, audioPath)
}

// BeatTargets proposes beat-aligned target durations for the manifest at
// clipsPath against the beats of musicPath. Each segment's narration length
// is probed; when probing fails its manifest target is used instead.
func BeatTargets(ctx context.Context, settings config.Config, clipsPath, musicPath string, log *slog.Logger) ([]float64, error) {
	if log == nil {
		log = logging.NewNop()
	}
	segments, err := manifest.Load(clipsPath)
	if err != nil {
		return nil, err
	}
	grid, err := Beats(ctx, settings, musicPath)
	if err != nil {
		return nil, err
	}
	prober := ffmpeg.New(settings.FFmpegPath, settings.FFprobePath)
	durations := make([]float64, len(segments))
	for i, seg := range segments {
		res, err := prober.Probe(ctx, seg.AudioPath)
		if err != nil || res.Duration <= 0 {
			if err != nil {
				perr := errs.Wrap(errs.ErrProbe, fmt.Sprintf("segment %d", i), "probe", seg.AudioPath, err)
				log.Warn("probe failed; using manifest target", logging.Error(perr))
			}
			durations[i] = seg.TargetDuration
			continue
		}
		durations[i] = res.Duration
	}
	return beatgrid.Targets(durations, grid), nil
}

func buildDeps(cfg Config, log *slog.Logger) usecase.Deps {
	engine := ffmpeg.New(cfg.Settings.FFmpegPath, cfg.Settings.FFprobePath)
	deps := usecase.Deps{
		Engine: engine,
		Prober: engine,
		Logger: log,
	}
	if strings.TrimSpace(cfg.Settings.WhisperModel) != "" {
		deps.Aligner = whispercpp.New(cfg.Settings.WhisperBin, cfg.Settings.WhisperModel, engine)
	}
	return deps
}

func usecaseInput(cfg Config, segments []types.SegmentSpec, runDir string) (usecase.Input, error) {
	w, h, err := cfg.Settings.Dimensions()
	if err != nil {
		return usecase.Input{}, errs.Wrap(errs.ErrInput, "config", "", "", err)
	}
	return usecase.Input{
		Segments:    segments,
		Style:       cfg.style(),
		Subtitles:   cfg.Settings.Subtitles,
		Width:       w,
		Height:      h,
		Encoder:     renderplan.Encoder{Preset: cfg.Settings.Preset, CRF: cfg.Settings.CRF},
		Workers:     cfg.Settings.Workers,
		RunDir:      runDir,
		MusicPath:   cfg.Settings.MusicPath,
		MusicVolume: cfg.Settings.MusicVolume,
	}, nil
}

// prepareRunDir creates a fresh run directory under workDir. The returned
// cleanup removes it; failures there are logged and never returned.
func prepareRunDir(workDir, clipsPath string, log *slog.Logger) (string, func(), error) {
	if strings.TrimSpace(workDir) == "" {
		workDir = os.TempDir()
	}
	runDir := buildRunOutDir(workDir, clipsPath, time.Now().UTC(), uuid.NewString())
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", nil, fmt.Errorf("create run dir: %w", err)
	}
	cleanup := func() {
		if err := os.RemoveAll(runDir); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("cleanup of run dir failed", logging.String("path", runDir), logging.Error(err))
		}
	}
	return runDir, cleanup, nil
}

func buildRunOutDir(outRoot, clipsPath string, now time.Time, runID string) string {
	name := strings.TrimSuffix(filepath.Base(clipsPath), filepath.Ext(clipsPath))
	name = normalizePathSegment(name)
	if name == "" {
		name = "reel"
	}
	ts := now.UTC().Format("20060102-150405Z")
	suffix := strings.ReplaceAll(runID, "-", "")
	if len(suffix) > 8 {
		suffix = suffix[:8]
	}
	return filepath.Join(outRoot, fmt.Sprintf("%s-%s-%s", name, ts, suffix))
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

// ensure adapters implement ports
var (
	_ ports.MediaEngine  = (*ffmpeg.Adapter)(nil)
	_ ports.Prober       = (*ffmpeg.Adapter)(nil)
	_ ports.Aligner      = (*whispercpp.Adapter)(nil)
	_ ports.BeatAnalyzer = (*beats.Adapter)(nil)
)
