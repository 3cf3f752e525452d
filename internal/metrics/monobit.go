package metrics

import "math/bits"

// Monobit is the fraction of one bits observed. A healthy pool stays close
// to 0.5.
type Monobit struct {
	name  string
	ones  uint64
	total uint64
}

func NewMonobit() *Monobit {
	return &Monobit{
		name: "monobit",
	}
}

func (m *Monobit) Name() string {
	return m.name
}

func (m *Monobit) Observe(b []byte) {
	for _, v := range b {
		m.ones += uint64(bits.OnesCount8(v))
	}
	m.total += uint64(len(b)) * 8
}

func (m *Monobit) Value() float64 {
	if m.total == 0 {
		return 0.5
	}
	return float64(m.ones) / float64(m.total)
}

func (m *Monobit) Reset() {
	m.ones = 0
	m.total = 0
}
