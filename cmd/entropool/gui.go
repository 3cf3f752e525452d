package main

import (
	"context"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DM41131/RNG-password-generator/internal/gui"
	"github.com/DM41131/RNG-password-generator/internal/render"
)

// raylib must stay on the main thread.
func init() { runtime.LockOSThread() }

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	win := gui.New(nil, gui.Options{
		PixelScale: cfg.Render.PixelScale,
		OutputDir:  filepath.Join(cfg.DataDir, "snapshots"),
		Log:        log,
	})
	eng, err := newEngine(cfg, log, render.WithSurface(win))
	if err != nil {
		return err
	}
	win.Attach(eng)

	g, gctx := errgroup.WithContext(ctx)
	if err := startPipeline(gctx, g, eng, cfg, log); err != nil {
		return err
	}

	runErr := win.Run(gctx, cfg.Render.Width, cfg.Render.Height)
	cancel()
	if err := g.Wait(); err != nil {
		return err
	}
	return runErr
}
