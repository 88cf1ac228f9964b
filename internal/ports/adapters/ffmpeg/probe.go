package ffmpeg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-audio/wav"

	"github.com/forPelevin/reelstitch/internal/types"
)

type probeOutput struct {
	Streams []probeStream `json:"streams"`
	Format  probeFormat   `json:"format"`
}

type probeStream struct {
	CodecType string `json:"codec_type"`
	Duration  string `json:"duration"`
}

type probeFormat struct {
	Duration string `json:"duration"`
}

// Probe reports stream presence and duration for path. A missing container
// duration falls back to the longest stream duration, and then to 0.
func (a *Adapter) Probe(ctx context.Context, path string) (types.ProbeResult, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return types.ProbeResult{}, errors.New("ffprobe: empty path")
	}

	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-hide_banner",
		"-show_format",
		"-show_streams",
		"-of", "json",
		"--", path,
	)
	b, err := cmd.Output()
	if err != nil {
		probeErr := fmt.Errorf("ffprobe %s: %w%s", path, err, stderrOf(err))
		if isWAV(path) {
			res, wavErr := probeWAV(path)
			if wavErr == nil {
				return res, nil
			}
			return types.ProbeResult{}, errors.Join(probeErr, wavErr)
		}
		return types.ProbeResult{}, probeErr
	}
	return parseProbe(b)
}

func parseProbe(b []byte) (types.ProbeResult, error) {
	var out probeOutput
	if err := json.Unmarshal(b, &out); err != nil {
		return types.ProbeResult{}, fmt.Errorf("ffprobe parse: %w", err)
	}

	var res types.ProbeResult
	longest := 0.0
	for _, s := range out.Streams {
		switch strings.ToLower(s.CodecType) {
		case "video":
			res.HasVideo = true
		case "audio":
			res.HasAudio = true
		}
		longest = math.Max(longest, parseSeconds(s.Duration))
	}
	res.Duration = parseSeconds(out.Format.Duration)
	if res.Duration == 0 {
		res.Duration = longest
	}
	return res, nil
}

// parseSeconds returns 0 for empty, "N/A" and otherwise unusable values.
func parseSeconds(v string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return f
}

func isWAV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".wav")
}

func probeWAV(path string) (types.ProbeResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return types.ProbeResult{}, fmt.Errorf("wav header: %w", err)
	}
	defer f.Close()

	dec := wav.NewDecoder(f)
	if !dec.IsValidFile() {
		return types.ProbeResult{}, fmt.Errorf("wav header: %s is not a valid wav file", path)
	}
	// Duration() counts the RIFF chunk, header included; only the PCM
	// data chunk is narration.
	if err := dec.FwdToPCM(); err != nil {
		return types.ProbeResult{}, fmt.Errorf("wav header: %w", err)
	}
	bytesPerSec := int64(dec.SampleRate) * int64(dec.NumChans) * int64(dec.BitDepth) / 8
	if bytesPerSec <= 0 {
		return types.ProbeResult{}, fmt.Errorf("wav header: %s has no sample format", path)
	}
	return types.ProbeResult{
		HasAudio: true,
		Duration: float64(dec.PCMLen()) / float64(bytesPerSec),
	}, nil
}

func stderrOf(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return "\n" + strings.TrimSpace(string(exitErr.Stderr))
	}
	return ""
}
