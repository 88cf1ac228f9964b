package beats

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParse(t *testing.T) {
	t.Parallel()

	got, err := Parse([]byte("[1.5, 0.5, 1.0]\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if diff := cmp.Diff([]float64{0.5, 1.0, 1.5}, got); diff != "" {
		t.Fatalf("beats mismatch (-want +got):\n%s", diff)
	}
}

func TestParse_Errors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		in       string
		analyzer bool
	}{
		{"structured", `{"error": "Usage: analyze <audio>"}`, true},
		{"empty", "   ", false},
		{"garbage", "boom", false},
		{"negative", "[-1]", false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Parse([]byte(tt.in))
			if err == nil {
				t.Fatal("expected error")
			}
			var aerr *AnalyzerError
			if errors.As(err, &aerr) != tt.analyzer {
				t.Fatalf("AnalyzerError = %v for %v", !tt.analyzer, err)
			}
		})
	}
}

func script(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell scripts unavailable")
	}
	p := filepath.Join(t.TempDir(), "analyze.sh")
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
	return "sh " + p
}

func TestBeats_RunsCommandWithAudioPath(t *testing.T) {
	t.Parallel()

	a := New(script(t, `[ "$1" = "track.mp3" ] || exit 3
echo '[0.25, 0.75]'
`))
	got, err := a.Beats(context.Background(), "track.mp3")
	if err != nil {
		t.Fatalf("Beats: %v", err)
	}
	if diff := cmp.Diff([]float64{0.25, 0.75}, got); diff != "" {
		t.Fatalf("beats mismatch (-want +got):\n%s", diff)
	}
}

func TestBeats_StructuredFailure(t *testing.T) {
	t.Parallel()

	a := New(script(t, `echo '{"error": "cannot decode"}'
exit 1
`))
	_, err := a.Beats(context.Background(), "track.mp3")
	var aerr *AnalyzerError
	if !errors.As(err, &aerr) || aerr.Message != "cannot decode" {
		t.Fatalf("expected analyzer error, got %v", err)
	}
}

func TestBeats_NoCommand(t *testing.T) {
	t.Parallel()

	if _, err := New("  ").Beats(context.Background(), "x"); err == nil {
		t.Fatal("expected error")
	}
}
