// Package tempo splits a narration speed change into stages the audio
// engine accepts.
package tempo

import (
	"math"
	"strconv"
	"strings"
)

const (
	// Tolerance is the duration mismatch, in seconds, left to padding and
	// truncation alone.
	Tolerance = 0.1

	MinStage = 0.5
	MaxStage = 2.0
)

// Plan is the ordered list of stage factors. Factors above 1 speed the
// narration up. An empty plan means no tempo change.
type Plan []float64

// Chain computes the stages that turn input seconds of narration into target
// seconds. input <= 0 means the duration is unknown.
func Chain(input, target float64) Plan {
	if input <= 0 || target <= 0 || math.Abs(input-target) <= Tolerance {
		return nil
	}
	t := input / target
	var p Plan
	for t > MaxStage {
		p = append(p, MaxStage)
		t /= MaxStage
	}
	for t < MinStage {
		p = append(p, MinStage)
		t /= MinStage
	}
	return append(p, t)
}

// Product is the overall speed factor, 1 for an empty plan.
func (p Plan) Product() float64 {
	out := 1.0
	for _, f := range p {
		out *= f
	}
	return out
}

// Scale is the factor applied to narration timestamps: target/input.
func (p Plan) Scale() float64 {
	if len(p) == 0 {
		return 1
	}
	return 1 / p.Product()
}

func (p Plan) String() string {
	if len(p) == 0 {
		return "-"
	}
	parts := make([]string, len(p))
	for i, f := range p {
		parts[i] = strconv.FormatFloat(f, 'f', 4, 64)
	}
	return strings.Join(parts, "×")
}
