package metrics

import "math"

// Entropy is the Shannon entropy of the observed byte histogram, in bits
// per byte. The maximum is 8.
type Entropy struct {
	name   string
	counts [256]uint64
	total  uint64
}

func NewEntropy() *Entropy {
	return &Entropy{
		name: "entropy",
	}
}

func (e *Entropy) Name() string { return e.name }

func (e *Entropy) Observe(b []byte) {
	for _, v := range b {
		e.counts[v]++
	}
	e.total += uint64(len(b))
}

func (e *Entropy) Value() float64 {
	if e.total == 0 {
		return 0
	}
	n := float64(e.total)
	h := 0.0
	for _, c := range e.counts {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// Histogram returns a copy of the byte counts.
func (e *Entropy) Histogram() [256]uint64 { return e.counts }

func (e *Entropy) Reset() {
	e.counts = [256]uint64{}
	e.total = 0
}
