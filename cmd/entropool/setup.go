package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DM41131/RNG-password-generator/internal/capture"
	"github.com/DM41131/RNG-password-generator/internal/config"
	"github.com/DM41131/RNG-password-generator/internal/engine"
	"github.com/DM41131/RNG-password-generator/internal/logging"
	"github.com/DM41131/RNG-password-generator/internal/metrics"
	"github.com/DM41131/RNG-password-generator/internal/render"
	"github.com/DM41131/RNG-password-generator/internal/storage"
)

// loadConfig layers defaults, the config file, the preset and finally
// any flag the user set explicitly.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		var err error
		if cfg, err = config.Load(configFile); err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	}
	if preset != "" && !config.Apply(cfg, preset) {
		return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
	}

	f := cmd.Flags()
	if f.Changed("data") {
		cfg.DataDir = dataDir
	}
	if f.Changed("source") {
		cfg.Capture.Source = source
	}
	if f.Changed("input") {
		cfg.Capture.Path = inputPath
		if !f.Changed("source") {
			cfg.Capture.Source = "file"
		}
	}
	if f.Changed("bias") {
		cfg.Capture.Bias = bias
	}
	if f.Changed("seed") {
		cfg.Capture.Seed = seed
	}
	if f.Changed("hash") {
		cfg.Pipeline.Hash = hashName
	}
	if f.Changed("width") {
		cfg.Render.Width = gridWidth
	}
	if f.Changed("height") {
		cfg.Render.Height = gridHeight
	}
	if f.Changed("verbose") && verbose {
		cfg.Log.Level = "debug"
	}
	if f.Changed("log-file") {
		cfg.Log.File = logFile
	}
	if f.Changed("size") {
		cfg.Collect.Size = collectSize
	}
	if f.Changed("output") && cmd.Name() == "collect" {
		cfg.Collect.Output = collectOutput
	}
	if f.Changed("format") {
		cfg.Collect.Format = collectFormat
	}
	if f.Changed("addr") {
		cfg.Serve.Addr = serveAddr
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger builds the process logger. Full-screen modes pass quiet so
// nothing is written over the UI unless a log file is configured.
func newLogger(cfg *config.Config, quiet bool) (*zap.Logger, error) {
	return logging.New(logging.Options{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: verbose,
		Quiet:       quiet,
	})
}

func newEngine(cfg *config.Config, log *zap.Logger, opts ...render.Option) (*engine.Engine, error) {
	hash, err := cfg.HashFunc()
	if err != nil {
		return nil, err
	}
	ropts, err := cfg.RenderOptions()
	if err != nil {
		return nil, err
	}
	ecfg := engine.DefaultConfig()
	ecfg.Hash = hash
	ecfg.Render = ropts
	ecfg.RenderOptions = opts
	ecfg.Logger = log

	eng := engine.New(ecfg)
	for _, m := range metrics.Standard() {
		eng.AddMetric(m)
	}
	return eng, nil
}

func openSource(cfg *config.Config, log *zap.Logger) (capture.Source, error) {
	return newSourceWith(cfg, cfg.CaptureParams(log))
}

func newSourceWith(cfg *config.Config, p capture.Params) (capture.Source, error) {
	return capture.NewRegistry().Get(cfg.Capture.Source, p)
}

// startPipeline runs the engine loop and, when a config file is in use,
// the hot reload watcher in g.
func startPipeline(ctx context.Context, g *errgroup.Group, eng *engine.Engine, cfg *config.Config, log *zap.Logger) error {
	src, err := openSource(cfg, log)
	if err != nil {
		return err
	}
	g.Go(func() error { return eng.Run(ctx, src, cfg.Render.Tick) })

	if configFile != "" {
		g.Go(func() error {
			return config.Watch(ctx, configFile, log, func(next *config.Config) {
				opts, err := next.RenderOptions()
				if err != nil {
					log.Warn("reloaded render options rejected", zap.Error(err))
					return
				}
				var cfgErr error
				if err := eng.Do(ctx, func(e *engine.Engine) { cfgErr = e.Configure(opts) }); err != nil {
					return
				}
				if cfgErr != nil {
					log.Warn("reloaded render options rejected", zap.Error(cfgErr))
				}
			})
		})
	}
	return nil
}

func runMetadata(cfg *config.Config, note string) storage.RunMetadata {
	meta := storage.RunMetadata{
		Source: cfg.Capture.Source,
		Hash:   cfg.Pipeline.Hash,
		Note:   note,
	}
	if cfg.Capture.Source == "synthetic" {
		meta.Bias = cfg.Capture.Bias
		meta.Seed = cfg.Capture.Seed
	}
	return meta
}

func openStore(cfg *config.Config) (*storage.Store, error) {
	st := storage.New(cfg.DataDir)
	if err := st.Init(); err != nil {
		return nil, err
	}
	return st, nil
}
