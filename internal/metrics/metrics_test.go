package metrics

import (
	"math"
	"testing"
)

func allBytes() []byte {
	b := make([]byte, 256)
	for i := range b {
		b[i] = byte(i)
	}
	return b
}

func TestMonobit(t *testing.T) {
	m := NewMonobit()
	if m.Value() != 0.5 {
		t.Errorf("empty monobit = %f, want 0.5", m.Value())
	}

	m.Observe([]byte{0xff, 0x00})
	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}

	m.Observe([]byte{0xff, 0xff})
	if math.Abs(m.Value()-0.75) > 1e-9 {
		t.Errorf("expected 0.75, got %f", m.Value())
	}

	m.Reset()
	if m.Value() != 0.5 {
		t.Error("expected 0.5 after reset")
	}
}

func TestEntropyUniform(t *testing.T) {
	m := NewEntropy()
	m.Observe(allBytes())
	m.Observe(allBytes())

	if math.Abs(m.Value()-8) > 1e-9 {
		t.Errorf("expected 8 bits per byte, got %f", m.Value())
	}
	if h := m.Histogram(); h[0] != 2 || h[255] != 2 {
		t.Errorf("unexpected histogram counts %d %d", h[0], h[255])
	}
}

func TestEntropyConstant(t *testing.T) {
	m := NewEntropy()
	m.Observe(make([]byte, 100))
	if m.Value() != 0 {
		t.Errorf("expected zero entropy, got %f", m.Value())
	}

	m.Observe([]byte{1})
	if m.Value() <= 0 {
		t.Error("expected positive entropy after a second symbol")
	}

	m.Reset()
	if m.Value() != 0 {
		t.Error("expected zero entropy after reset")
	}
}

func TestChiSquare(t *testing.T) {
	m := NewChiSquare()
	m.Observe(allBytes())
	if m.Value() != 0 {
		t.Errorf("uniform histogram should give 0, got %f", m.Value())
	}

	m.Reset()
	m.Observe(make([]byte, 256))
	// All mass in one bin: (256-1)^2/1 + 255*(0-1)^2/1.
	if want := 255.0*255.0 + 255.0; math.Abs(m.Value()-want) > 1e-6 {
		t.Errorf("expected %f, got %f", want, m.Value())
	}
}

func TestRuns(t *testing.T) {
	m := NewRuns()
	m.Observe([]byte{0xaa})
	if m.Value() != 1 {
		t.Errorf("alternating bits should give 1, got %f", m.Value())
	}

	m.Reset()
	m.Observe([]byte{0xff, 0xff})
	if m.Value() != 1.0/16 {
		t.Errorf("expected 1/16, got %f", m.Value())
	}

	// The run continues across Observe calls.
	m.Observe([]byte{0xff})
	if m.Value() != 1.0/24 {
		t.Errorf("expected 1/24, got %f", m.Value())
	}
}

func TestStandardNames(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Standard() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if len(seen) != 4 {
		t.Errorf("expected 4 metrics, got %d", len(seen))
	}
}
