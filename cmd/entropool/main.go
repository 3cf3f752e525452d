package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
)

var (
	configFile string
	preset     string
	dataDir    string
	source     string
	inputPath  string
	bias       float64
	seed       uint64
	hashName   string
	gridWidth  int
	gridHeight int
	verbose    bool
	logFile    string

	plain       bool
	showDigests bool
	theme       string
	braille     bool
	frameRate   int

	collectSize    int
	collectOutput  string
	collectFormat  string
	collectNote    string
	collectTimeout time.Duration

	serveAddr string

	sweepMin     float64
	sweepMax     float64
	sweepSteps   int
	sweepSamples int

	snapshotOut    string
	snapshotFrames int

	exportOut  string
	configSave string
)

// main registers every command; running with no subcommand opens the
// terminal view. It exits with status 1 if the command fails.
func main() {
	rootCmd := &cobra.Command{
		Use:          "entropool",
		Short:        "audio noise entropy pool with a live bit-stream view",
		SilenceUsage: true,
		RunE:         runLive,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configFile, "config", "", "config file path (yaml)")
	pf.StringVar(&preset, "preset", "", "apply a named preset")
	pf.StringVar(&dataDir, "data", "", "data directory for collected runs")
	pf.StringVar(&source, "source", "", "capture source (portaudio, synthetic, file)")
	pf.StringVar(&inputPath, "input", "", "sample file for the file source")
	pf.Float64Var(&bias, "bias", 0.5, "LSB bias of the synthetic source")
	pf.Uint64Var(&seed, "seed", 0, "seed of the synthetic source")
	pf.StringVar(&hashName, "hash", "", "whitening hash (sha256, blake2b-256, sha3-256)")
	pf.IntVar(&gridWidth, "width", 0, "grid width in bits")
	pf.IntVar(&gridHeight, "height", 0, "grid height in rows")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	pf.StringVar(&logFile, "log-file", "", "write logs to this file")

	addLiveFlags := func(c *cobra.Command) {
		c.Flags().BoolVar(&plain, "plain", false, "plain character output instead of the full-screen view")
		c.Flags().BoolVar(&showDigests, "digests", false, "print every digest (plain mode)")
		c.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")
		c.Flags().BoolVar(&braille, "braille", false, "start in braille mode")
		c.Flags().IntVar(&frameRate, "fps", 10, "plain mode frame rate")
	}
	addLiveFlags(rootCmd)

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "capture and show the pool in the terminal",
		RunE:  runLive,
	}
	addLiveFlags(runCmd)

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "capture and show the pool in a window",
		RunE:  runGUI,
	}

	collectCmd := &cobra.Command{
		Use:   "collect",
		Short: "wait for N pool bytes, write them out and save the run",
		RunE:  runCollect,
	}
	collectCmd.Flags().IntVarP(&collectSize, "size", "n", 0, "bytes to collect")
	collectCmd.Flags().StringVarP(&collectOutput, "output", "o", "", "output file (default stdout)")
	collectCmd.Flags().StringVar(&collectFormat, "format", "", "raw or hex")
	collectCmd.Flags().StringVar(&collectNote, "note", "", "note stored with the run")
	collectCmd.Flags().DurationVar(&collectTimeout, "timeout", 0, "give up after this long (0 waits forever)")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the pool over HTTP",
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address")
	serveCmd.Flags().BoolVar(&showDigests, "digests", false, "print every digest")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "show how debiasing removes LSB bias",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 0.1, "lowest bias")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 0.9, "highest bias")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 17, "number of bias steps")
	sweepCmd.Flags().IntVar(&sweepSamples, "samples", 1<<16, "raw samples per step")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "render the grid headless and write a PNG or SVG",
		RunE:  runSnapshot,
	}
	snapshotCmd.Flags().StringVarP(&snapshotOut, "output", "o", "grid.png", "output file (.png or .svg)")
	snapshotCmd.Flags().IntVar(&snapshotFrames, "frames", 256, "frames to capture")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list collected runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot the byte distribution of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output file (default stdout)")

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE:  listPresets,
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "print the effective configuration",
		RunE:  printConfig,
	}
	configCmd.Flags().StringVar(&configSave, "save", "", "write the configuration to this path")

	rootCmd.AddCommand(runCmd, guiCmd, collectCmd, serveCmd, sweepCmd, snapshotCmd,
		listCmd, plotCmd, exportCmd, presetsCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
