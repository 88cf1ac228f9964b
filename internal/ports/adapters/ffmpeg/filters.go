package ffmpeg

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/ports"
)

// loopFrames bounds how many frames the loop filter keeps for one cycle.
const loopFrames = 32767

func renderArgs(p renderplan.RenderPlan) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	if p.LoopSource {
		args = append(args, "-stream_loop", "-1")
	}
	args = append(args, "-i", p.VideoPath)
	if p.SilentAudio {
		args = append(args,
			"-f", "lavfi",
			"-t", fmtSeconds(p.OutputDuration),
			"-i", fmt.Sprintf("anullsrc=channel_layout=stereo:sample_rate=%d", renderplan.DefaultSampleRate),
		)
	} else {
		args = append(args, "-i", p.AudioPath)
	}

	graph := "[0:v]" + videoChain(p.VideoOps) + "[v];[1:a]" + audioChain(p.AudioOps) + "[a]"
	args = append(args,
		"-filter_complex", graph,
		"-map", "[v]",
		"-map", "[a]",
	)
	args = append(args, encodeArgs(p.Encoder)...)
	args = append(args,
		"-t", fmtSeconds(p.OutputDuration),
		p.OutputPath,
	)
	return args
}

func concatArgs(in ports.ConcatInput, withMusic bool) []string {
	args := []string{"-y", "-hide_banner", "-loglevel", "error"}
	for _, s := range in.Segments {
		args = append(args, "-i", s)
	}

	n := len(in.Segments)
	var g strings.Builder
	for i := range n {
		fmt.Fprintf(&g, "[%d:v][%d:a]", i, i)
	}
	fmt.Fprintf(&g, "concat=n=%d:v=1:a=1[v][a]", n)

	audioOut := "[a]"
	if withMusic {
		args = append(args, "-i", in.MusicPath)
		fmt.Fprintf(&g, ";[%d:a]volume=%s[bg];[a][bg]amix=inputs=2:duration=first:dropout_transition=2[mix]",
			n, strconv.FormatFloat(in.MusicVolume, 'f', -1, 64))
		audioOut = "[mix]"
	}

	args = append(args,
		"-filter_complex", g.String(),
		"-map", "[v]",
		"-map", audioOut,
	)
	args = append(args, encodeArgs(in.Encoder)...)
	return append(args, in.OutputPath)
}

func encodeArgs(e renderplan.Encoder) []string {
	preset := strings.TrimSpace(e.Preset)
	if preset == "" {
		preset = "veryfast"
	}
	return []string{
		"-c:v", "libx264",
		"-preset", preset,
		"-crf", strconv.Itoa(e.CRF),
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "192k",
		"-movflags", "+faststart",
	}
}

func videoChain(ops []renderplan.Op) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case renderplan.OpTrim:
			parts = append(parts, "trim=duration="+fmtSeconds(op.Seconds))
		case renderplan.OpResetPTS:
			parts = append(parts, "setpts=PTS-STARTPTS")
		case renderplan.OpStretch:
			parts = append(parts, "setpts="+fmtFactor(op.Factor)+"*(PTS-STARTPTS)")
		case renderplan.OpPingPong:
			parts = append(parts, "split=2[pf][pr];[pr]reverse[prv];[pf][prv]concat=n=2:v=1:a=0")
		case renderplan.OpLoop:
			parts = append(parts, fmt.Sprintf("loop=loop=-1:size=%d", loopFrames))
		case renderplan.OpFit:
			parts = append(parts, fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=decrease", op.Width, op.Height))
		case renderplan.OpPad:
			parts = append(parts, fmt.Sprintf("pad=%d:%d:(ow-iw)/2:(oh-ih)/2", op.Width, op.Height))
		case renderplan.OpSquarePx:
			parts = append(parts, "setsar=1")
		case renderplan.OpFrameRate:
			parts = append(parts, "fps="+strconv.Itoa(op.Rate))
		case renderplan.OpSubtitles:
			parts = append(parts, "subtitles="+escapeFilterPath(op.Path))
		}
	}
	if len(parts) == 0 {
		return "null"
	}
	return strings.Join(parts, ",")
}

func audioChain(ops []renderplan.Op) string {
	parts := make([]string, 0, len(ops))
	for _, op := range ops {
		switch op.Kind {
		case renderplan.OpTempo:
			parts = append(parts, "atempo="+fmtFactor(op.Factor))
		case renderplan.OpResample:
			parts = append(parts, fmt.Sprintf("aformat=sample_rates=%d:channel_layouts=stereo", op.Rate))
		case renderplan.OpSilencePad:
			parts = append(parts, "apad")
		case renderplan.OpAudioTrim:
			parts = append(parts, "atrim=duration="+fmtSeconds(op.Seconds))
		case renderplan.OpAudioReset:
			parts = append(parts, "asetpts=PTS-STARTPTS")
		}
	}
	if len(parts) == 0 {
		return "anull"
	}
	return strings.Join(parts, ",")
}

func fmtSeconds(sec float64) string {
	return strconv.FormatFloat(sec, 'f', -1, 64)
}

func fmtFactor(f float64) string {
	return strconv.FormatFloat(f, 'f', 6, 64)
}

// escapeFilterPath escapes a path for use as a filter option value inside a
// filtergraph.
func escapeFilterPath(p string) string {
	r := strings.NewReplacer(
		`\`, `\\`,
		`:`, `\:`,
		`'`, `\'`,
		`,`, `\,`,
		`;`, `\;`,
		`[`, `\[`,
		`]`, `\]`,
	)
	return r.Replace(p)
}
