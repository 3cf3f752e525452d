package capture

import "context"

// Source produces raw sample frames until stopped or exhausted. Frames is
// closed once the source stops producing.
type Source interface {
	Start(ctx context.Context) error
	Frames() <-chan Frame
	Stop() error
	// Dropped counts frames discarded because the consumer lagged.
	Dropped() uint64
}

// Quantize maps a float sample in [-1, 1] to an unsigned byte the way
// time-domain byte analysers do: 128 is silence.
func Quantize(v float32) uint8 {
	x := 128 * (float64(v) + 1)
	switch {
	case x <= 0:
		return 0
	case x >= 255:
		return 255
	}
	return uint8(x)
}
