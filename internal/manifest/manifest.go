// Package manifest loads the ordered segment list a run is built from.
package manifest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/forPelevin/reelstitch/internal/domain/alignment"
	"github.com/forPelevin/reelstitch/internal/errs"
	"github.com/forPelevin/reelstitch/internal/types"
)

const stage = "manifest"

// entry mirrors one manifest element. target_duration wins over the
// shorter duration alias when both are present.
type entry struct {
	Video          string               `json:"video" yaml:"video"`
	Audio          string               `json:"audio" yaml:"audio"`
	Text           string               `json:"text" yaml:"text"`
	Alignment      *types.AlignmentData `json:"alignment" yaml:"alignment"`
	TargetDuration *float64             `json:"target_duration" yaml:"target_duration"`
	Duration       *float64             `json:"duration" yaml:"duration"`
}

// Load reads and validates the manifest at path. YAML is used for .yaml and
// .yml files, JSON otherwise. Every problem found is reported together as an
// input error.
func Load(path string) ([]types.SegmentSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errs.Wrap(errs.ErrInput, stage, "read", path, err)
	}
	entries, err := decode(path, raw)
	if err != nil {
		return nil, errs.Wrap(errs.ErrInput, stage, "parse", path, err)
	}
	return validate(entries, fileExists)
}

func decode(path string, raw []byte) ([]entry, error) {
	var entries []entry
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(raw))
		dec.KnownFields(true)
		if err := dec.Decode(&entries); err != nil {
			return nil, err
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&entries); err != nil {
			return nil, err
		}
	}
	return entries, nil
}

// validate converts decoded entries into segment specs. exists reports
// whether a referenced source file is present.
func validate(entries []entry, exists func(string) bool) ([]types.SegmentSpec, error) {
	if len(entries) == 0 {
		return nil, errs.Input(stage, "no segments provided")
	}

	var problems []error
	out := make([]types.SegmentSpec, 0, len(entries))
	for i, e := range entries {
		spec, errList := e.spec(i, exists)
		problems = append(problems, errList...)
		out = append(out, spec)
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}
	return out, nil
}

func (e entry) spec(i int, exists func(string) bool) (types.SegmentSpec, []error) {
	where := fmt.Sprintf("%s: segment %d", stage, i)
	var problems []error
	fail := func(format string, args ...any) {
		problems = append(problems, errs.Input(where, format, args...))
	}

	spec := types.SegmentSpec{
		VideoPath: strings.TrimSpace(e.Video),
		AudioPath: strings.TrimSpace(e.Audio),
		Text:      e.Text,
	}

	for _, src := range []struct{ field, path string }{
		{"video", spec.VideoPath},
		{"audio", spec.AudioPath},
	} {
		switch {
		case src.path == "":
			fail("missing %s path", src.field)
		case !exists(src.path):
			fail("%s file not found: %s", src.field, src.path)
		}
	}

	target := e.TargetDuration
	if target == nil {
		target = e.Duration
	}
	switch {
	case target == nil:
		fail("missing target_duration")
	case math.IsNaN(*target) || math.IsInf(*target, 0) || *target <= 0:
		fail("target_duration must be > 0, got %v", *target)
	default:
		spec.TargetDuration = *target
	}

	if e.Alignment != nil {
		if err := alignment.Validate(*e.Alignment); err != nil {
			problems = append(problems, fmt.Errorf("%s: %w", where, err))
		} else {
			a := *e.Alignment
			spec.Alignment = &a
		}
	}
	return spec, problems
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
