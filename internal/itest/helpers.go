//go:build integration

package itest

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"testing"
	"time"
)

type cliRunResult struct {
	exitCode int
	stdout   string
	stderr   string
}

func findRepoRoot() (string, error) {
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for range 10 {
		if _, err := os.Stat(filepath.Join(wd, "go.mod")); err == nil {
			return wd, nil
		}
		parent := filepath.Dir(wd)
		if parent == wd {
			break
		}
		wd = parent
	}
	return "", errors.New("could not locate go.mod")
}

func mustRepoRoot(t *testing.T) string {
	t.Helper()

	repoRoot, err := findRepoRoot()
	if err != nil {
		t.Fatalf("repo root: %v", err)
	}
	return repoRoot
}

// runCLI runs the reelstitch command from source with the given arguments.
func runCLI(t *testing.T, repoRoot string, timeout time.Duration, args []string, env map[string]string) cliRunResult {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	cmdArgs := append([]string{"run", "./cmd/reelstitch"}, args...)
	cmd := exec.CommandContext(ctx, "go", cmdArgs...)
	cmd.Dir = repoRoot
	cmd.Env = mergeEnv(
		os.Environ(),
		map[string]string{
			"NO_COLOR": "1",
			"TERM":     "dumb",
		},
		env,
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		t.Fatalf("command timed out after %s: go %s", timeout, strings.Join(cmdArgs, " "))
	}

	res := cliRunResult{stdout: stdout.String(), stderr: stderr.String()}
	if err == nil {
		return res
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.exitCode = exitErr.ExitCode()
		return res
	}

	t.Fatalf("run command: %v\nstderr:\n%s", err, stderr.String())
	return cliRunResult{}
}

func mergeEnv(base []string, overrides ...map[string]string) []string {
	env := make(map[string]string, len(base))
	for _, kv := range base {
		i := strings.IndexByte(kv, '=')
		if i <= 0 {
			continue
		}
		env[kv[:i]] = kv[i+1:]
	}

	for _, set := range overrides {
		for k, v := range set {
			env[k] = v
		}
	}

	out := make([]string, 0, len(env))
	for k, v := range env {
		out = append(out, fmt.Sprintf("%s=%s", k, v))
	}
	sort.Strings(out)
	return out
}

func ffmpeg(t *testing.T, args ...string) {
	t.Helper()
	cmd := exec.Command("ffmpeg", append([]string{"-y", "-hide_banner", "-loglevel", "error"}, args...)...)
	if b, err := cmd.CombinedOutput(); err != nil {
		t.Fatalf("ffmpeg fixture failed: %v\n%s", err, string(b))
	}
}

// makeClip writes a silent test-pattern clip of the given length.
func makeClip(t *testing.T, path string, seconds float64, size string) {
	t.Helper()
	ffmpeg(t,
		"-f", "lavfi",
		"-i", fmt.Sprintf("testsrc=size=%s:rate=30:duration=%s", size, fmtSec(seconds)),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		path,
	)
}

// makeTone writes a sine tone of the given length; the codec follows the
// file extension.
func makeTone(t *testing.T, path string, seconds float64, freq int) {
	t.Helper()
	ffmpeg(t,
		"-f", "lavfi",
		"-i", fmt.Sprintf("sine=frequency=%d:duration=%s", freq, fmtSec(seconds)),
		path,
	)
}

func fmtSec(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

type mediaInfo struct {
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
	} `json:"streams"`
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

func (m mediaInfo) duration() float64 {
	v, _ := strconv.ParseFloat(m.Format.Duration, 64)
	return v
}

func (m mediaInfo) has(kind string) bool {
	for _, s := range m.Streams {
		if s.CodecType == kind {
			return true
		}
	}
	return false
}

func (m mediaInfo) frameSize() (int, int) {
	for _, s := range m.Streams {
		if s.CodecType == "video" {
			return s.Width, s.Height
		}
	}
	return 0, 0
}

func probe(t *testing.T, path string) mediaInfo {
	t.Helper()
	cmd := exec.Command("ffprobe", "-v", "error", "-show_format", "-show_streams", "-of", "json", path)
	b, err := cmd.Output()
	if err != nil {
		t.Fatalf("ffprobe %s: %v", path, err)
	}
	var info mediaInfo
	if err := json.Unmarshal(b, &info); err != nil {
		t.Fatalf("parse ffprobe output: %v", err)
	}
	return info
}

func writeManifest(t *testing.T, path string, segments []map[string]any) {
	t.Helper()
	b, err := json.MarshalIndent(segments, "", "  ")
	if err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}
}
