package whispercpp

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/forPelevin/reelstitch/internal/domain/alignment"
	"github.com/forPelevin/reelstitch/internal/types"
)

func TestParseTranscriptTrims(t *testing.T) {
	t.Parallel()

	tr, err := ParseTranscript([]byte(`{"segments":[{"start":0,"end":1,"text":" hi there ",
		"words":[{"start":0,"end":0.4,"word":" hi"},{"start":0.5,"end":1,"word":"there "}]}]}`))
	if err != nil {
		t.Fatalf("ParseTranscript: %v", err)
	}
	if tr.Segments[0].Text != "hi there" || tr.Segments[0].Words[0].Word != "hi" {
		t.Fatalf("not trimmed: %+v", tr)
	}
}

func TestWords(t *testing.T) {
	t.Parallel()

	tr := types.Transcript{Segments: []types.Segment{
		{Start: 0, End: 1, Text: "hi there", Words: []types.Word{
			{Start: 0, End: 0.4, Word: "hi"},
			{Start: 0.5, End: 1, Word: "there"},
		}},
		{Start: 2, End: 3, Text: "go fast"},
	}}
	want := []types.Word{
		{Start: 0, End: 0.4, Word: "hi"},
		{Start: 0.5, End: 1, Word: "there"},
		{Start: 2, End: 2.5, Word: "go"},
		{Start: 2.5, End: 3, Word: "fast"},
	}
	if diff := cmp.Diff(want, Words(tr)); diff != "" {
		t.Fatalf("words mismatch (-want +got):\n%s", diff)
	}
}

func TestWordsFeedAlignmentParser(t *testing.T) {
	t.Parallel()

	tr := types.Transcript{Segments: []types.Segment{{Start: 1, End: 2, Text: "one two"}}}
	spans := alignment.Parse(alignment.FromWords(Words(tr)))
	want := []types.WordSpan{{Text: "one", Start: 1, End: 1.5}, {Text: "two", Start: 1.5, End: 2}}
	if diff := cmp.Diff(want, spans); diff != "" {
		t.Fatalf("spans mismatch (-want +got):\n%s", diff)
	}
}

type failingExtractor struct{}

func (failingExtractor) ExtractAudioMono16k(context.Context, string, string) error {
	return errors.New("no ffmpeg")
}

func TestAlignPropagatesExtractFailure(t *testing.T) {
	t.Parallel()

	a := New("whisper", "model.bin", failingExtractor{})
	if _, err := a.Align(context.Background(), "voice.mp3", t.TempDir()); err == nil {
		t.Fatal("expected error")
	}
}
