package analysis

import (
	"context"
	"fmt"

	"github.com/DM41131/RNG-password-generator/internal/capture"
	"github.com/DM41131/RNG-password-generator/internal/extract"
)

// BiasSweep feeds synthetic frames of increasing LSB bias through a fresh
// extractor at every step.
type BiasSweep struct {
	BiasMin  float64
	BiasMax  float64
	NumSteps int
	// Samples is the raw sample count per step.
	Samples int
	Seed    uint64
}

// SweepResult holds one step of a bias sweep.
type SweepResult struct {
	Bias     float64
	RawOnes  float64
	OutOnes  float64
	OutBits  uint64
	Yield    float64
	Flatness float64
}

// RunSweep executes a bias sweep.
func RunSweep(ctx context.Context, sweep *BiasSweep) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	if sweep.Samples < 2 {
		return nil, fmt.Errorf("sweep needs at least two samples per step, got %d", sweep.Samples)
	}
	if sweep.BiasMin < 0 || sweep.BiasMax > 1 || sweep.BiasMin > sweep.BiasMax {
		return nil, fmt.Errorf("bias range [%g, %g] is outside [0, 1]", sweep.BiasMin, sweep.BiasMax)
	}

	step := 0.0
	if sweep.NumSteps > 1 {
		step = (sweep.BiasMax - sweep.BiasMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		select {
		case <-ctx.Done():
			return results, ctx.Err()
		default:
		}

		bias := sweep.BiasMin + float64(i)*step
		src := capture.NewSynthetic(capture.SyntheticOptions{
			Bias:      bias,
			Seed:      sweep.Seed + uint64(i),
			FrameSize: sweep.Samples,
		})
		frame := src.NextFrame()

		vn := extract.NewVonNeumann()
		out := vn.ConsumeSamples(frame.Samples)
		ones := 0
		for _, b := range out {
			ones += int(b)
		}

		r := SweepResult{
			Bias:     bias,
			RawOnes:  LSBFraction(frame.Samples),
			OutBits:  uint64(len(out)),
			Yield:    float64(len(out)) / float64(len(frame.Samples)),
			Flatness: SpectralFlatness(frame.Samples),
		}
		if len(out) > 0 {
			r.OutOnes = float64(ones) / float64(len(out))
		}
		frame.Release()
		results = append(results, r)
	}
	return results, nil
}
