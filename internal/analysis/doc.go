// Package analysis provides capture-quality and extractor diagnostics.
//
//   - [PowerSpectrum]: windowed magnitude spectrum of a raw sample frame
//   - [SpectralFlatness]: how noise-like a frame is, from 0 (tonal) to 1 (white)
//   - [RunSweep]: debiased-bit balance across a range of synthetic input biases
//
// # Bias Elimination
//
// Von Neumann debiasing should hold the output one-fraction at 0.5 for any
// input bias strictly between 0 and 1:
//
//	results, err := analysis.RunSweep(ctx, &analysis.BiasSweep{
//	    BiasMin: 0.1, BiasMax: 0.9, NumSteps: 9, Samples: 1 << 16,
//	})
package analysis
