package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/DM41131/RNG-password-generator/internal/analysis"
)

func runSweep(cmd *cobra.Command, args []string) error {
	results, err := analysis.RunSweep(cmd.Context(), &analysis.BiasSweep{
		BiasMin:  sweepMin,
		BiasMax:  sweepMax,
		NumSteps: sweepSteps,
		Samples:  sweepSamples,
		Seed:     seed,
	})
	if err != nil {
		return err
	}

	fmt.Printf("bias sweep: %d steps, %d samples each\n\n", len(results), sweepSamples)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "BIAS\tRAW ONES\tOUT ONES\tOUT BITS\tYIELD\tFLATNESS")
	rawOnes := make([]float64, len(results))
	outOnes := make([]float64, len(results))
	yield := make([]float64, len(results))
	for i, r := range results {
		fmt.Fprintf(w, "%.3f\t%.4f\t%.4f\t%d\t%.4f\t%.4f\n",
			r.Bias, r.RawOnes, r.OutOnes, r.OutBits, r.Yield, r.Flatness)
		rawOnes[i] = r.RawOnes
		outOnes[i] = r.OutOnes
		yield[i] = r.Yield
	}
	if err := w.Flush(); err != nil {
		return err
	}
	if len(results) < 2 {
		return nil
	}

	fmt.Println()
	fmt.Println(asciigraph.PlotMany([][]float64{rawOnes, outOnes},
		asciigraph.Height(10),
		asciigraph.Width(60),
		asciigraph.LowerBound(0),
		asciigraph.UpperBound(1),
		asciigraph.SeriesColors(asciigraph.Red, asciigraph.Green),
		asciigraph.SeriesLegends("raw ones", "debiased ones"),
		asciigraph.Caption("fraction of ones vs bias"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(yield,
		asciigraph.Height(8),
		asciigraph.Width(60),
		asciigraph.LowerBound(0),
		asciigraph.Caption("debiased bits per raw sample"),
	))
	return nil
}
