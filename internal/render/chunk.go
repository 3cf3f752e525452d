package render

import "time"

const (
	DefaultBaseChunk   = 4096
	DefaultMinChunk    = 256
	DefaultMaxChunk    = 1 << 16
	DefaultFrameBudget = 4 * time.Millisecond
	DefaultChunkWindow = 16
)

// ChunkPolicy bounds how many bits one Render call consumes. With Adaptive
// set the size follows a rolling average of recent call durations: runs
// under half the budget grow it by a quarter, runs over the budget shrink
// it by a quarter, always within [Min, Max].
type ChunkPolicy struct {
	Adaptive bool
	Base     int
	Min      int
	Max      int
	Budget   time.Duration
	Window   int
}

func DefaultChunkPolicy() ChunkPolicy {
	return ChunkPolicy{
		Adaptive: true,
		Base:     DefaultBaseChunk,
		Min:      DefaultMinChunk,
		Max:      DefaultMaxChunk,
		Budget:   DefaultFrameBudget,
		Window:   DefaultChunkWindow,
	}
}

func (p ChunkPolicy) normalized() ChunkPolicy {
	if p.Min < 1 {
		p.Min = 1
	}
	if p.Max < p.Min {
		p.Max = p.Min
	}
	if p.Base < p.Min {
		p.Base = p.Min
	}
	if p.Base > p.Max {
		p.Base = p.Max
	}
	if p.Window < 1 {
		p.Window = 1
	}
	if p.Budget <= 0 {
		p.Budget = DefaultFrameBudget
	}
	return p
}

type governor struct {
	policy  ChunkPolicy
	chunk   int
	samples []time.Duration
	next    int
	filled  int
	sum     time.Duration
}

func newGovernor(p ChunkPolicy) *governor {
	g := &governor{}
	g.configure(p)
	return g
}

func (g *governor) configure(p ChunkPolicy) {
	g.policy = p.normalized()
	g.samples = make([]time.Duration, g.policy.Window)
	g.reset()
}

func (g *governor) reset() {
	g.chunk = g.policy.Base
	clear(g.samples)
	g.next, g.filled, g.sum = 0, 0, 0
}

func (g *governor) size() int { return g.chunk }

func (g *governor) average() time.Duration {
	if g.filled == 0 {
		return 0
	}
	return g.sum / time.Duration(g.filled)
}

func (g *governor) observe(d time.Duration) {
	g.sum += d - g.samples[g.next]
	g.samples[g.next] = d
	g.next = (g.next + 1) % len(g.samples)
	if g.filled < len(g.samples) {
		g.filled++
	}
	if !g.policy.Adaptive {
		return
	}

	avg := g.average()
	switch {
	case avg < g.policy.Budget/2:
		g.chunk = min(g.chunk+max(g.chunk/4, 1), g.policy.Max)
	case avg > g.policy.Budget:
		g.chunk = max(g.chunk-g.chunk/4, g.policy.Min)
	}
}
