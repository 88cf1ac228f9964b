package types

// SegmentSpec is one timeline slot as described by the input manifest.
type SegmentSpec struct {
	VideoPath      string         `json:"video" yaml:"video"`
	AudioPath      string         `json:"audio" yaml:"audio"`
	Text           string         `json:"text" yaml:"text"`
	Alignment      *AlignmentData `json:"alignment,omitempty" yaml:"alignment,omitempty"`
	TargetDuration float64        `json:"target_duration" yaml:"target_duration"`
}

// AlignmentData carries per-character narration timing.
type AlignmentData struct {
	Characters []string  `json:"characters" yaml:"characters"`
	StartTimes []float64 `json:"character_start_times_seconds" yaml:"character_start_times_seconds"`
	EndTimes   []float64 `json:"character_end_times_seconds" yaml:"character_end_times_seconds"`
}

type WordSpan struct {
	Text  string
	Start float64
	End   float64
}

type SubtitleCue struct {
	Text        string  `json:"text"`
	EnableStart float64 `json:"enable_start"`
	EnableEnd   float64 `json:"enable_end"`
}

// ProbeResult is what the prober reports about a media file. Duration is 0
// when the container does not report one.
type ProbeResult struct {
	HasVideo bool
	HasAudio bool
	Duration float64
}

type Transcript struct {
	Segments []Segment `json:"segments"`
}

type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
	Words []Word  `json:"words,omitempty"`
}

type Word struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Word  string  `json:"word"`
}
