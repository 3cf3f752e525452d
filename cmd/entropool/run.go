package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DM41131/RNG-password-generator/internal/render"
	"github.com/DM41131/RNG-password-generator/internal/tui"
	"github.com/DM41131/RNG-password-generator/internal/viz"
)

func runLive(cmd *cobra.Command, args []string) error {
	if plain {
		return runPlain(cmd)
	}
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(cfg)
	if err != nil {
		return err
	}

	surface := viz.NewSurface()
	eng, err := newEngine(cfg, log, render.WithSurface(surface))
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)
	if err := startPipeline(gctx, g, eng, cfg, log); err != nil {
		return err
	}

	g.Go(func() error {
		defer cancel()
		m := viz.NewModel(gctx, eng, surface, viz.Options{
			Theme:       theme,
			Braille:     braille,
			Tick:        viz.DefaultTick,
			CollectSize: cfg.Collect.Size,
			PixelScale:  cfg.Render.PixelScale,
			OutputDir:   filepath.Join(cfg.DataDir, "snapshots"),
			Store:       st,
			Meta:        runMetadata(cfg, "collected from terminal"),
		})
		_, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(gctx)).Run()
		if errors.Is(err, tea.ErrProgramKilled) && gctx.Err() != nil {
			return nil
		}
		return err
	})
	return g.Wait()
}

// runPlain repaints the grid as characters on stdout until interrupted.
func runPlain(cmd *cobra.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, true)
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg.Render.MinInterval = tui.FrameInterval(frameRate)
	live := tui.NewLive(os.Stdout, "entropool")
	eng, err := newEngine(cfg, log, render.WithSurface(live))
	if err != nil {
		return err
	}
	if showDigests {
		eng.AddObserver(tui.NewDigestPrinter(os.Stderr))
	}

	live.Start()
	defer live.Stop()

	g, gctx := errgroup.WithContext(cmd.Context())
	if err := startPipeline(gctx, g, eng, cfg, log); err != nil {
		return err
	}
	return g.Wait()
}
