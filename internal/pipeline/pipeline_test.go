package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/flock"

	"github.com/forPelevin/reelstitch/internal/config"
	"github.com/forPelevin/reelstitch/internal/errs"
	"github.com/forPelevin/reelstitch/internal/logging"
)

func TestBuildRunOutDir(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 1234, time.UTC)
	got := buildRunOutDir("work", "/tmp/My Cool.Reel.json", now, "3f2a9c1e-77aa-4b7e-9d11-0c5e8f2b1a44")
	base := filepath.Base(got)
	if filepath.Dir(got) != "work" {
		t.Fatalf("unexpected parent dir: %s", got)
	}
	if base != "my-cool-reel-20260212-103045Z-3f2a9c1e" {
		t.Fatalf("unexpected run dir format: %s", base)
	}
}

func TestBuildRunOutDir_FallbackName(t *testing.T) {
	now := time.Date(2026, 2, 12, 10, 30, 45, 0, time.UTC)
	got := filepath.Base(buildRunOutDir("work", "___.json", now, "abc"))
	if got != "reel-20260212-103045Z-abc" {
		t.Fatalf("unexpected run dir: %s", got)
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := map[string]string{
		"  My Cool.Video  ": "my-cool-video",
		"___":               "",
		"abc123":            "abc123",
		"Name (v2)!":        "name-v2",
	}
	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			if got := normalizePathSegment(in); got != want {
				t.Fatalf("normalizePathSegment(%q) = %q, want %q", in, got, want)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	t.Parallel()

	base := Config{ClipsPath: "clips.json", OutputPath: "out.mp4", Settings: config.Default()}
	if err := base.Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"no clips", func(c *Config) { c.ClipsPath = " " }},
		{"no output", func(c *Config) { c.OutputPath = "" }},
		{"bad format", func(c *Config) { c.Settings.Format = "1:1" }},
		{"bad color", func(c *Config) { c.Settings.Color = "chartreuse-ish" }},
	}
	for _, tt := range tests {
		cfg := base
		tt.mutate(&cfg)
		if err := cfg.Validate(); !errors.Is(err, errs.ErrInput) {
			t.Fatalf("%s: expected input error, got %v", tt.name, err)
		}
	}
}

func TestPrepareRunDir_CleanupRemovesEverything(t *testing.T) {
	t.Parallel()

	work := t.TempDir()
	runDir, cleanup, err := prepareRunDir(work, "clips.json", logging.NewNop())
	if err != nil {
		t.Fatalf("prepareRunDir: %v", err)
	}
	if !strings.HasPrefix(filepath.Base(runDir), "clips-") {
		t.Fatalf("unexpected run dir %s", runDir)
	}
	if err := os.WriteFile(filepath.Join(runDir, "seg_000.mp4"), []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	cleanup()
	if _, err := os.Stat(runDir); !os.IsNotExist(err) {
		t.Fatalf("run dir still present: %v", err)
	}
	cleanup()
}

func TestRun_ManifestErrorsAreInputErrors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	clips := filepath.Join(dir, "clips.json")
	if err := os.WriteFile(clips, []byte(`[{"video": "missing.mp4", "audio": "missing.mp3"}]`), 0o644); err != nil {
		t.Fatal(err)
	}
	settings := config.Default()
	settings.WorkDir = dir

	_, err := Run(context.Background(), Config{
		ClipsPath:  clips,
		OutputPath: filepath.Join(dir, "out.mp4"),
		Settings:   settings,
	})
	if !errors.Is(err, errs.ErrInput) {
		t.Fatalf("expected input error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Fatalf("nothing but the manifest should exist before rendering, got %d entries", len(entries))
	}
}

func TestRun_RefusesLockedOutput(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	video := filepath.Join(dir, "a.mp4")
	audio := filepath.Join(dir, "a.mp3")
	for _, p := range []string{video, audio} {
		if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	clips := filepath.Join(dir, "clips.json")
	body := `[{"video": "` + video + `", "audio": "` + audio + `", "target_duration": 2}]`
	if err := os.WriteFile(clips, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "out.mp4")

	held := flock.New(out + ".lock")
	ok, err := held.TryLock()
	if err != nil || !ok {
		t.Fatalf("lock: %v %v", ok, err)
	}
	defer held.Unlock()

	settings := config.Default()
	settings.WorkDir = dir
	_, err = Run(context.Background(), Config{ClipsPath: clips, OutputPath: out, Settings: settings})
	if err == nil || !strings.Contains(err.Error(), "another run is writing") {
		t.Fatalf("expected lock refusal, got %v", err)
	}
}

func TestLockOutput_CreatesDirAndKeepsLockFile(t *testing.T) {
	t.Parallel()

	out := filepath.Join(t.TempDir(), "renders", "nested", "out.mp4")
	release, err := lockOutput(out, logging.NewNop())
	if err != nil {
		t.Fatalf("lockOutput: %v", err)
	}
	if fi, err := os.Stat(filepath.Dir(out)); err != nil || !fi.IsDir() {
		t.Fatalf("output dir not created: %v", err)
	}

	if _, err := lockOutput(out, logging.NewNop()); err == nil {
		t.Fatal("second lock on the same output must be refused")
	}

	release()
	if _, err := os.Stat(out + ".lock"); err != nil {
		t.Fatalf("lock file must stay after release: %v", err)
	}

	again, err := lockOutput(out, logging.NewNop())
	if err != nil {
		t.Fatalf("relock after release: %v", err)
	}
	again()
}
