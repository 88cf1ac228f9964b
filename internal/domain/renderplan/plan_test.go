package renderplan

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/forPelevin/reelstitch/internal/domain/conform"
	"github.com/forPelevin/reelstitch/internal/domain/subtitles"
	"github.com/forPelevin/reelstitch/internal/domain/tempo"
	"github.com/forPelevin/reelstitch/internal/types"
)

func baseInput() Input {
	return Input{
		Index:      2,
		Segment:    types.SegmentSpec{VideoPath: "/clips/a.mp4", AudioPath: "/vo/a.mp3", Text: "go now", TargetDuration: 5},
		Width:      1080,
		Height:     1920,
		Encoder:    Encoder{Preset: "veryfast", CRF: 18},
		OutputPath: "/work/run/seg_002.mp4",
	}
}

func kinds(ops []Op) []OpKind {
	out := make([]OpKind, len(ops))
	for i, op := range ops {
		out[i] = op.Kind
	}
	return out
}

func TestBuild_VideoChainPerStrategy(t *testing.T) {
	tail := []OpKind{OpFit, OpPad, OpSquarePx, OpFrameRate}
	tests := []struct {
		name   string
		native float64
		head   []OpKind
		loop   bool
	}{
		{"trim", 8, []OpKind{OpTrim, OpResetPTS}, false},
		{"slowdown", 4, []OpKind{OpStretch, OpTrim, OpResetPTS}, false},
		{"pingpong", 2, []OpKind{OpPingPong, OpLoop, OpTrim, OpResetPTS}, false},
		{"unknown", 0, []OpKind{OpTrim, OpResetPTS}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := baseInput()
			in.Conform = conform.Decide(tt.native, 5)
			p, err := Build(in)
			if err != nil {
				t.Fatal(err)
			}
			want := append(append([]OpKind{}, tt.head...), tail...)
			if diff := cmp.Diff(want, kinds(p.VideoOps)); diff != "" {
				t.Fatalf("video ops mismatch (-want +got):\n%s", diff)
			}
			if p.LoopSource != tt.loop {
				t.Fatalf("LoopSource = %v, want %v", p.LoopSource, tt.loop)
			}
			if p.OutputDuration != 5 {
				t.Fatalf("output duration = %v", p.OutputDuration)
			}
		})
	}
}

func TestBuild_SlowDownCarriesFactorAndTrim(t *testing.T) {
	in := baseInput()
	in.Conform = conform.Decide(4, 5)
	p, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}
	if p.VideoOps[0].Factor != 1.25 {
		t.Fatalf("stretch factor = %v", p.VideoOps[0].Factor)
	}
	if p.VideoOps[1].Seconds != 5 {
		t.Fatalf("trim seconds = %v", p.VideoOps[1].Seconds)
	}
}

func TestBuild_AudioChainHasTempoStagesThenExactLength(t *testing.T) {
	in := baseInput()
	in.Conform = conform.Decide(10, 2)
	in.Tempo = tempo.Chain(9, 2)
	p, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}
	want := []Op{
		{Kind: OpTempo, Factor: 2},
		{Kind: OpTempo, Factor: 2},
		{Kind: OpTempo, Factor: 1.125},
		{Kind: OpResample, Rate: DefaultSampleRate},
		{Kind: OpSilencePad},
		{Kind: OpAudioTrim, Seconds: 2},
		{Kind: OpAudioReset},
	}
	if diff := cmp.Diff(want, p.AudioOps); diff != "" {
		t.Fatalf("audio ops mismatch (-want +got):\n%s", diff)
	}
}

func TestBuild_SilentAudioSkipsTempo(t *testing.T) {
	in := baseInput()
	in.Conform = conform.Decide(10, 2)
	in.Tempo = tempo.Chain(9, 2)
	in.SilentAudio = true
	p, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}
	for _, op := range p.AudioOps {
		if op.Kind == OpTempo {
			t.Fatalf("silent audio must not carry tempo stages: %s", Describe(p.AudioOps))
		}
	}
}

func TestBuild_SubtitlesOpOnlyWithCues(t *testing.T) {
	in := baseInput()
	in.Conform = conform.Decide(10, 5)
	p, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}
	if last := p.VideoOps[len(p.VideoOps)-1]; last.Kind == OpSubtitles {
		t.Fatalf("unexpected subtitles op without cues")
	}

	in.Cues = []types.SubtitleCue{{Text: "go", EnableStart: 0.1, EnableEnd: 0.4}}
	in.SubtitlePath = "/work/run/seg_002.ass"
	in.Style = subtitles.Style{FontSize: 90}
	p, err = Build(in)
	if err != nil {
		t.Fatal(err)
	}
	last := p.VideoOps[len(p.VideoOps)-1]
	if last.Kind != OpSubtitles || last.Path != "/work/run/seg_002.ass" {
		t.Fatalf("expected trailing subtitles op, got %s", Describe(p.VideoOps))
	}
	if p.Style.FontSize != 90 || p.Style.Font != subtitles.DefaultFont {
		t.Fatalf("style defaults not applied: %+v", p.Style)
	}
}

func TestBuild_DoesNotAliasInputs(t *testing.T) {
	in := baseInput()
	in.Conform = conform.Decide(10, 5)
	in.Tempo = tempo.Plan{1.5}
	in.Cues = []types.SubtitleCue{{Text: "a", EnableStart: 0, EnableEnd: 1}}
	in.SubtitlePath = "/x.ass"
	p, err := Build(in)
	if err != nil {
		t.Fatal(err)
	}
	in.Tempo[0] = 9
	in.Cues[0].Text = "mutated"
	if p.Tempo[0] != 1.5 || p.SubtitleCues[0].Text != "a" {
		t.Fatalf("plan shares memory with its input")
	}
}

func TestBuild_Validation(t *testing.T) {
	in := baseInput()
	in.Width = 0
	in.OutputPath = " "
	_, err := Build(in)
	if err == nil {
		t.Fatalf("expected validation error")
	}
	for _, want := range []string{"segment 2", "output duration", "frame size", "output path"} {
		if !strings.Contains(err.Error(), want) {
			t.Fatalf("expected %q in %v", want, err)
		}
	}
}

func TestDescribe(t *testing.T) {
	got := Describe([]Op{{Kind: OpStretch, Factor: 1.25}, {Kind: OpTrim, Seconds: 5}, {Kind: OpResetPTS}})
	if got != "stretch(x1.2500) → trim(5.000s) → reset" {
		t.Fatalf("unexpected description %q", got)
	}
}
