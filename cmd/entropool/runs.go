package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/DM41131/RNG-password-generator/internal/config"
	"github.com/DM41131/RNG-password-generator/internal/metrics"
	"github.com/DM41131/RNG-password-generator/internal/storage"
)

func listRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSOURCE\tHASH\tBYTES\tGEN\tENTROPY\tNOTE")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\t%.4f\t%s\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Source,
			run.Hash,
			run.Size,
			run.Generation,
			run.Metrics["entropy"],
			run.Note,
		)
	}

	return w.Flush()
}

// plotRun charts the byte value histogram of a stored run.
func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	data, err := st.LoadBytes(runID)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("source: %s  hash: %s\n", meta.Source, meta.Hash)
	fmt.Printf("bytes: %d\n\n", len(data))

	ent := metrics.NewEntropy()
	ent.Observe(data)
	hist := ent.Histogram()
	counts := make([]float64, len(hist))
	for i, c := range hist {
		counts[i] = float64(c)
	}

	graph := asciigraph.Plot(counts,
		asciigraph.Height(12),
		asciigraph.Width(128),
		asciigraph.LowerBound(0),
		asciigraph.Caption("byte value histogram (0..255)"),
	)
	fmt.Println(graph)
	fmt.Println()

	for _, m := range metrics.Standard() {
		m.Observe(data)
		fmt.Printf("  %s: %.6f\n", m.Name(), m.Value())
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	st := storage.New(cfg.DataDir)
	data, err := st.Export(args[0])
	if err != nil {
		return err
	}
	if exportOut == "" {
		return storage.WriteJSON(os.Stdout, data)
	}
	if err := storage.ExportJSON(exportOut, data); err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", exportOut)
	return nil
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGRID\tSCALE\tMIN INTERVAL\tTICK\tCHUNK")
	for _, name := range config.ListPresets() {
		c := config.GetPreset(name)
		fmt.Fprintf(w, "%s\t%dx%d\t%d\t%v\t%v\t%d\n",
			name,
			c.Render.Width, c.Render.Height,
			c.Render.PixelScale,
			c.Render.MinInterval,
			c.Render.Tick,
			c.Render.BaseChunk,
		)
	}
	return w.Flush()
}

// printConfig shows the configuration after file, preset and flags have
// been applied, or saves it with --save.
func printConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if configSave != "" {
		if err := config.Save(configSave, cfg); err != nil {
			return err
		}
		fmt.Printf("saved to %s\n", configSave)
		return nil
	}
	out, err := config.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}
