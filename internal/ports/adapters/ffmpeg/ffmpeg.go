package ffmpeg

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/domain/subtitles"
	"github.com/forPelevin/reelstitch/internal/ports"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

// Render writes the segment's subtitle file when it has cues, then encodes
// the segment exactly as the plan describes.
func (a *Adapter) Render(ctx context.Context, p renderplan.RenderPlan) (string, error) {
	if err := os.MkdirAll(filepath.Dir(p.OutputPath), 0o755); err != nil {
		return "", err
	}
	if len(p.SubtitleCues) > 0 {
		ass, err := subtitles.RenderASS(p.SubtitleCues, p.Style, p.Width, p.Height)
		if err != nil {
			return "", fmt.Errorf("ffmpeg render segment %d: subtitles: %w", p.Index, err)
		}
		if err := os.WriteFile(p.SubtitlePath, []byte(ass), 0o644); err != nil {
			return "", fmt.Errorf("ffmpeg render segment %d: write subtitles: %w", p.Index, err)
		}
	}

	cmd := exec.CommandContext(ctx, a.ffmpeg, renderArgs(p)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("ffmpeg render segment: %w\n%s", err, string(b))
	}
	return p.OutputPath, nil
}

// Concat joins the rendered segments in order and mixes in background music
// when in.MusicPath points to an existing file.
func (a *Adapter) Concat(ctx context.Context, in ports.ConcatInput) error {
	if len(in.Segments) == 0 {
		return errors.New("ffmpeg concat: no segments")
	}
	if err := os.MkdirAll(filepath.Dir(in.OutputPath), 0o755); err != nil {
		return err
	}
	withMusic := false
	if m := strings.TrimSpace(in.MusicPath); m != "" {
		if _, err := os.Stat(m); err == nil {
			withMusic = true
		}
	}

	cmd := exec.CommandContext(ctx, a.ffmpeg, concatArgs(in, withMusic)...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	if err := os.MkdirAll(filepath.Dir(outWav), 0o755); err != nil {
		return err
	}
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-hide_banner",
		"-loglevel", "error",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

var (
	_ ports.MediaEngine    = (*Adapter)(nil)
	_ ports.Prober         = (*Adapter)(nil)
	_ ports.AudioExtractor = (*Adapter)(nil)
)
