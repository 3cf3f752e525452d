package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/DM41131/RNG-password-generator/internal/render"
)

// runSnapshot feeds a fixed number of frames through a headless engine
// and writes the final grid. A .gif output records every presented frame.
func runSnapshot(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	log, err := newLogger(cfg, false)
	if err != nil {
		return err
	}
	defer log.Sync()

	ext := strings.ToLower(filepath.Ext(snapshotOut))
	switch ext {
	case ".png", ".svg", ".gif":
	default:
		return fmt.Errorf("unsupported snapshot format %q (use .png, .svg or .gif)", ext)
	}
	if snapshotFrames < 1 {
		return fmt.Errorf("frames must be positive, got %d", snapshotFrames)
	}

	img := render.NewImageSurface(cfg.Render.PixelScale)
	img.Record = ext == ".gif"
	eng, err := newEngine(cfg, log, render.WithSurface(img))
	if err != nil {
		return err
	}

	params := cfg.CaptureParams(log)
	params.Limit = snapshotFrames
	params.Realtime = false
	src, err := newSourceWith(cfg, params)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if err := src.Start(ctx); err != nil {
		return err
	}
	frames, seen := src.Frames(), 0
loop:
	for seen < snapshotFrames {
		select {
		case <-ctx.Done():
			break loop
		case f, ok := <-frames:
			if !ok {
				break loop
			}
			eng.Process(f.Samples)
			f.Release()
			seen++
			if img.Record {
				eng.Render()
			}
		}
	}
	if err := src.Stop(); err != nil {
		log.Warn("stopping source", zap.Error(err))
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	eng.Drain()

	st := eng.Stats()
	log.Info("snapshot rendered",
		zap.Int("frames", seen),
		zap.Int("pool_bytes", st.PoolLen),
		zap.Uint64("rows", st.Render.Rows))
	if st.PoolLen == 0 {
		return fmt.Errorf("no entropy after %d frames", seen)
	}

	return writeFile(snapshotOut, func(w io.Writer) error {
		switch ext {
		case ".svg":
			ropts := eng.Renderer().Options()
			_, err := io.WriteString(w, render.SVG(eng.Renderer().Grid(), ropts.Palette, cfg.Render.PixelScale))
			return err
		case ".gif":
			return img.WriteGIF(w)
		default:
			return img.WritePNG(w)
		}
	})
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}
