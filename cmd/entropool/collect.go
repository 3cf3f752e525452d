package main

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func runCollect(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if err := startPipeline(gctx, g, eng, cfg, log); err != nil {
		return err
	}

	waitCtx := gctx
	if collectTimeout > 0 {
		var stop context.CancelFunc
		waitCtx, stop = context.WithTimeout(gctx, collectTimeout)
		defer stop()
	}

	log.Info("collecting", zap.Int("bytes", cfg.Collect.Size), zap.String("source", cfg.Capture.Source))
	c, collectErr := eng.Collect(waitCtx, cfg.Collect.Size, true)
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	if collectErr == nil {
		log.Info("collected",
			zap.Int("bytes", len(c.Data)),
			zap.Int("digests", len(c.Digests)),
			zap.Uint64("generation", c.Generation))
	}
	if collectErr != nil {
		if errors.Is(collectErr, context.DeadlineExceeded) {
			return fmt.Errorf("timed out after %v waiting for %d bytes", collectTimeout, cfg.Collect.Size)
		}
		return collectErr
	}

	if err := writeCollection(cfg.Collect.Output, cfg.Collect.Format, c.Data); err != nil {
		return err
	}

	runID, err := st.SaveCollection(runMetadata(cfg, collectNote), c)
	if err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(os.Stderr, "run id: %s\n", runID)
	p.Fprintf(os.Stderr, "bytes: %d (generation %d)\n", len(c.Data), c.Generation)
	p.Fprintf(os.Stderr, "samples: %d  raw bits: %d  debiased bits: %d\n",
		c.Stats.Samples, c.Stats.RawBits, c.Stats.DebiasedBits)
	for _, name := range slices.Sorted(maps.Keys(c.Stats.Metrics)) {
		p.Fprintf(os.Stderr, "  %s: %.6f\n", name, c.Stats.Metrics[name])
	}
	return nil
}

// writeCollection writes data to path, or stdout when path is empty.
func writeCollection(path, format string, data []byte) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}

	switch format {
	case "raw":
		_, err := w.Write(data)
		return err
	default:
		_, err := fmt.Fprintln(w, hex.EncodeToString(data))
		return err
	}
}
