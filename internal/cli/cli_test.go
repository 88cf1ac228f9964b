package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/forPelevin/reelstitch/internal/config"
	"github.com/forPelevin/reelstitch/internal/domain/conform"
	"github.com/forPelevin/reelstitch/internal/domain/renderplan"
	"github.com/forPelevin/reelstitch/internal/domain/tempo"
	"github.com/forPelevin/reelstitch/internal/types"
	"github.com/forPelevin/reelstitch/internal/usecase"
)

func TestApplyFlags_OnlyChangedFlagsOverride(t *testing.T) {
	root := NewRootCommand()
	if err := root.ParseFlags([]string{
		"--format", "16:9",
		"--fontsize", "64",
		"--position", "0.5",
		"--no-subtitles",
		"--audio", "music.mp3",
		"--music-volume", "0.8",
	}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg := config.Default()
	cfg.Font = "Helvetica"
	applyFlags(root.Flags(), &cfg)

	if cfg.Format != "16:9" || cfg.FontSize != 64 || cfg.VerticalPosition != 0.5 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Subtitles {
		t.Fatal("--no-subtitles must disable subtitles")
	}
	if cfg.MusicPath != "music.mp3" || cfg.MusicVolume != 0.8 {
		t.Fatalf("music flags not applied: %+v", cfg)
	}
	if cfg.Font != "Helvetica" {
		t.Fatalf("unset flag overrode font: %q", cfg.Font)
	}
	if cfg.Workers != 4 {
		t.Fatalf("unset flag overrode workers: %d", cfg.Workers)
	}
}

func TestRoot_RequiresClipsAndOutput(t *testing.T) {
	root := NewRootCommand()
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--log-format", "json", "--workdir", t.TempDir()})

	err := root.Execute()
	if err == nil || !strings.Contains(err.Error(), "clips manifest path is empty") {
		t.Fatalf("expected missing clips error, got %v", err)
	}
	if stdout.Len() != 0 {
		t.Fatalf("stdout must stay empty on failure, got %q", stdout.String())
	}
}

func TestPlanTable(t *testing.T) {
	t.Parallel()

	plan, err := renderplan.Build(renderplan.Input{
		Index:      0,
		Segment:    types.SegmentSpec{VideoPath: "a.mp4", AudioPath: "a.mp3", TargetDuration: 2},
		Conform:    conform.Decide(2, 2.5),
		Tempo:      tempo.Chain(9, 2.5),
		Width:      1080,
		Height:     1920,
		OutputPath: "seg.mp4",
	})
	if err != nil {
		t.Fatal(err)
	}
	out := planTable([]usecase.Prepared{{
		Plan:  plan,
		Video: types.ProbeResult{Duration: 2},
		Audio: types.ProbeResult{Duration: 9},
		Words: usecase.WordsEven,
	}})
	for _, want := range []string{"slowdown(x1.250)", "2.50s", "9.00s", "even", "Video ops", "stretch(x1.2500)", "atempo(x2.0000)"} {
		if !strings.Contains(out, want) {
			t.Fatalf("table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderTable_PadsShortRows(t *testing.T) {
	t.Parallel()

	out := renderTable([]column{{"#", true}, {"Target (s)", true}}, [][]string{{"0"}})
	if !strings.Contains(out, "Target (s)") || !strings.Contains(out, "0") {
		t.Fatalf("unexpected table:\n%s", out)
	}
	if strings.Contains(out, "TARGET") {
		t.Fatalf("titles must keep their case:\n%s", out)
	}
	if renderTable(nil, nil) != "" {
		t.Fatal("no headers must render nothing")
	}
}

func TestCommandContext_HasNoDeadline(t *testing.T) {
	ctx, cancel := commandContext()
	defer cancel()

	if d, ok := ctx.Deadline(); ok {
		t.Fatalf("render context must not expire, deadline %v", d)
	}
	cancel()
	if ctx.Err() == nil {
		t.Fatal("cancel must stop the context")
	}
}
