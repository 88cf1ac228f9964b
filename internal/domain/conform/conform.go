// Package conform decides how a background clip is fitted to a target duration.
package conform

import "fmt"

// MaxSlowDown is the largest stretch applied as slow motion. Beyond it a
// clip is filled with a forward/backward loop instead.
const MaxSlowDown = 1.5

type Strategy int

const (
	Trim Strategy = iota
	SlowDown
	PingPongLoop
)

func (s Strategy) String() string {
	switch s {
	case Trim:
		return "trim"
	case SlowDown:
		return "slowdown"
	case PingPongLoop:
		return "pingpong"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// Plan is the conformance decision for one clip. Factor is only meaningful
// for SlowDown. SourceUnknown marks a clip whose native duration could not
// be probed; renderers loop such a source so the trim always has footage.
type Plan struct {
	Strategy       Strategy
	Factor         float64
	SourceUnknown  bool
	OutputDuration float64
}

func (p Plan) String() string {
	if p.Strategy == SlowDown {
		return fmt.Sprintf("%s(x%.3f)", p.Strategy, p.Factor)
	}
	return p.Strategy.String()
}

// Decide picks the strategy for a clip of native seconds conformed to target
// seconds. native <= 0 means unknown. OutputDuration is always target.
func Decide(native, target float64) Plan {
	p := Plan{OutputDuration: target, Factor: 1}
	if native <= 0 {
		p.Strategy = Trim
		p.SourceUnknown = true
		return p
	}
	if native >= target {
		p.Strategy = Trim
		return p
	}
	ratio := target / native
	if ratio <= MaxSlowDown {
		p.Strategy = SlowDown
		p.Factor = ratio
		return p
	}
	p.Strategy = PingPongLoop
	return p
}
