package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/DM41131/RNG-password-generator/internal/server"
	"github.com/DM41131/RNG-password-generator/internal/tui"
)

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	eng, err := newEngine(cfg, log)
	if err != nil {
		return err
	}
	if showDigests {
		eng.AddObserver(tui.NewDigestPrinter(os.Stdout))
	}

	g, gctx := errgroup.WithContext(cmd.Context())
	if err := startPipeline(gctx, g, eng, cfg, log); err != nil {
		return err
	}

	srv := server.New(eng, server.Options{}, log)
	g.Go(func() error { return srv.ListenAndServe(gctx, cfg.Serve.Addr) })
	return g.Wait()
}
