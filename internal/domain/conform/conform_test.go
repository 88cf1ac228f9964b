package conform

import (
	"math/rand"
	"testing"
)

func TestDecide_Table(t *testing.T) {
	tests := []struct {
		name       string
		native     float64
		target     float64
		want       Strategy
		wantFactor float64
		unknown    bool
	}{
		{"longer clip trims", 10, 4, Trim, 1, false},
		{"equal trims", 4, 4, Trim, 1, false},
		{"small gap slows", 4, 5, SlowDown, 1.25, false},
		{"boundary 1.5 slows", 2, 3, SlowDown, 1.5, false},
		{"just past boundary loops", 2, 3.0001, PingPongLoop, 1, false},
		{"large gap loops", 2, 5, PingPongLoop, 1, false},
		{"unknown duration trims looped source", 0, 5, Trim, 1, true},
		{"negative treated as unknown", -1, 5, Trim, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Decide(tt.native, tt.target)
			if p.Strategy != tt.want {
				t.Fatalf("Decide(%v, %v) strategy = %s, want %s", tt.native, tt.target, p.Strategy, tt.want)
			}
			if p.Factor != tt.wantFactor {
				t.Fatalf("factor = %v, want %v", p.Factor, tt.wantFactor)
			}
			if p.SourceUnknown != tt.unknown {
				t.Fatalf("SourceUnknown = %v, want %v", p.SourceUnknown, tt.unknown)
			}
			if p.OutputDuration != tt.target {
				t.Fatalf("output duration = %v, want %v", p.OutputDuration, tt.target)
			}
		})
	}
}

func TestDecide_PingPongExample(t *testing.T) {
	p := Decide(2.0, 5.0)
	if p.Strategy != PingPongLoop || p.OutputDuration != 5.0 {
		t.Fatalf("unexpected plan %+v", p)
	}
}

func TestDecide_OutputDurationAlwaysTarget(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for i := 0; i < 5000; i++ {
		target := r.Float64()*60 + 1e-3
		native := r.Float64() * 90
		if i%10 == 0 {
			native = 0
		}
		p := Decide(native, target)
		if p.OutputDuration != target {
			t.Fatalf("Decide(%v, %v).OutputDuration = %v", native, target, p.OutputDuration)
		}
		if p.Strategy == SlowDown && (p.Factor <= 1 || p.Factor > MaxSlowDown) {
			t.Fatalf("slowdown factor out of range: %v", p.Factor)
		}
	}
}

func TestPlanString(t *testing.T) {
	if got := Decide(4, 5).String(); got != "slowdown(x1.250)" {
		t.Fatalf("unexpected String: %q", got)
	}
	if got := Decide(1, 5).String(); got != "pingpong" {
		t.Fatalf("unexpected String: %q", got)
	}
}
