// Package whispercpp aligns narration by transcribing it with whisper.cpp.
package whispercpp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/forPelevin/reelstitch/internal/domain/alignment"
	"github.com/forPelevin/reelstitch/internal/ports"
	"github.com/forPelevin/reelstitch/internal/types"
)

type Adapter struct {
	bin   string
	model string
	audio ports.AudioExtractor
}

func New(binPath, modelPath string, audio ports.AudioExtractor) *Adapter {
	return &Adapter{bin: binPath, model: modelPath, audio: audio}
}

// Align converts audioPath to 16 kHz mono, transcribes it inside workDir and
// expands the word timings into per-character alignment data.
func (a *Adapter) Align(ctx context.Context, audioPath, workDir string) (types.AlignmentData, error) {
	if a.audio == nil {
		return types.AlignmentData{}, errors.New("whisper.cpp: no audio extractor")
	}
	if err := os.MkdirAll(workDir, 0o755); err != nil {
		return types.AlignmentData{}, err
	}
	wav := filepath.Join(workDir, "narration.16k.wav")
	if err := a.audio.ExtractAudioMono16k(ctx, audioPath, wav); err != nil {
		return types.AlignmentData{}, err
	}
	tr, err := a.Transcribe(ctx, wav, workDir)
	if err != nil {
		return types.AlignmentData{}, err
	}
	data := alignment.FromWords(Words(tr))
	if len(data.Characters) == 0 {
		return types.AlignmentData{}, fmt.Errorf("whisper.cpp: no words recognised in %s", audioPath)
	}
	return data, nil
}

func (a *Adapter) Transcribe(ctx context.Context, wavPath, cacheDir string) (types.Transcript, error) {
	outPrefix := filepath.Join(cacheDir, "whisper")
	args := []string{
		"-m", a.model,
		"-f", wavPath,
		"-oj",
		"-of", outPrefix,
		"-owts",
	}
	cmd := exec.CommandContext(ctx, a.bin, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp failed: %w\n%s", err, string(b))
	}

	jb, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return types.Transcript{}, err
	}
	return ParseTranscript(jb)
}

func ParseTranscript(b []byte) (types.Transcript, error) {
	var tr types.Transcript
	if err := json.Unmarshal(b, &tr); err != nil {
		return types.Transcript{}, fmt.Errorf("whisper.cpp: parse transcript: %w", err)
	}
	for i := range tr.Segments {
		tr.Segments[i].Text = strings.TrimSpace(tr.Segments[i].Text)
		for j := range tr.Segments[i].Words {
			tr.Segments[i].Words[j].Word = strings.TrimSpace(tr.Segments[i].Words[j].Word)
		}
	}
	return tr, nil
}

// Words flattens a transcript into timed words. Segments without word
// timestamps have their text spread evenly over the segment window.
func Words(tr types.Transcript) []types.Word {
	var out []types.Word
	for _, seg := range tr.Segments {
		if len(seg.Words) > 0 {
			out = append(out, seg.Words...)
			continue
		}
		for _, w := range alignment.Even(seg.Text, seg.End-seg.Start) {
			out = append(out, types.Word{Word: w.Text, Start: seg.Start + w.Start, End: seg.Start + w.End})
		}
	}
	return out
}

var _ ports.Aligner = (*Adapter)(nil)
