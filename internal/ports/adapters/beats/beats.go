// Package beats runs an external beat analyzer and decodes its report.
package beats

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"sort"
	"strings"

	"github.com/forPelevin/reelstitch/internal/ports"
)

// AnalyzerError is the structured failure an analyzer reports on stdout.
type AnalyzerError struct {
	Message string
}

func (e *AnalyzerError) Error() string { return "beat analyzer: " + e.Message }

type Adapter struct {
	argv []string
}

// New splits command on whitespace; the audio path is appended as the last
// argument on every call.
func New(command string) *Adapter {
	return &Adapter{argv: strings.Fields(command)}
}

func (a *Adapter) Beats(ctx context.Context, audioPath string) ([]float64, error) {
	if len(a.argv) == 0 {
		return nil, errors.New("beat analyzer: no command configured")
	}
	args := append(append([]string(nil), a.argv[1:]...), audioPath)
	cmd := exec.CommandContext(ctx, a.argv[0], args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	runErr := cmd.Run()

	beats, parseErr := Parse(stdout.Bytes())
	var aerr *AnalyzerError
	switch {
	case errors.As(parseErr, &aerr):
		return nil, parseErr
	case runErr != nil:
		return nil, fmt.Errorf("beat analyzer: %w\n%s", runErr, strings.TrimSpace(stderr.String()))
	case parseErr != nil:
		return nil, parseErr
	}
	return beats, nil
}

// Parse decodes analyzer output: either a JSON array of beat times in
// seconds or an object carrying an "error" message. Beats come back sorted.
func Parse(b []byte) ([]float64, error) {
	b = bytes.TrimSpace(b)
	if len(b) == 0 {
		return nil, errors.New("beat analyzer: empty output")
	}
	if b[0] == '{' {
		var obj struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(b, &obj); err != nil {
			return nil, fmt.Errorf("beat analyzer: parse output: %w", err)
		}
		msg := strings.TrimSpace(obj.Error)
		if msg == "" {
			msg = "unknown error"
		}
		return nil, &AnalyzerError{Message: msg}
	}

	var beats []float64
	if err := json.Unmarshal(b, &beats); err != nil {
		return nil, fmt.Errorf("beat analyzer: parse output: %w", err)
	}
	for _, v := range beats {
		if v < 0 {
			return nil, fmt.Errorf("beat analyzer: negative beat time %v", v)
		}
	}
	sort.Float64s(beats)
	return beats, nil
}

var _ ports.BeatAnalyzer = (*Adapter)(nil)
