package errs

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInput       = errors.New("input error")
	ErrProbe       = errors.New("probe error")
	ErrRender      = errors.New("render error")
	ErrSubtitleCue = errors.New("subtitle cue error")
)

// Wrap builds an error message carrying stage context while tagging it with
// marker for later classification. marker should be one of the sentinels
// above; nil is treated as ErrRender.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrRender
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Input is shorthand for an ErrInput-tagged error with a formatted message.
func Input(stage, format string, args ...any) error {
	return Wrap(ErrInput, stage, "", fmt.Sprintf(format, args...), nil)
}

// Fatal reports whether err must abort the run. Probe and subtitle cue
// failures are recovered where they happen.
func Fatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrProbe), errors.Is(err, ErrSubtitleCue):
		return false
	default:
		return true
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "failure"
	}
	return strings.Join(parts, ": ")
}
