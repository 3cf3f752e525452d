package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/DM41131/RNG-password-generator/internal/capture"
	"github.com/DM41131/RNG-password-generator/internal/extract"
	"github.com/DM41131/RNG-password-generator/internal/render"
)

const (
	MinWidth       = 8
	MaxWidth       = 1024
	MinHeight      = 4
	MaxHeight      = 1024
	MinPixelScale  = 1
	MaxPixelScale  = 32
	MinCollectSize = 32
	MaxCollectSize = 64 << 20
	MaxMinInterval = time.Second

	DefaultPixelScale  = 6
	DefaultCollectSize = 1024
	DefaultTick        = 16 * time.Millisecond
	DefaultAddr        = "127.0.0.1:8077"
	DefaultDataDir     = "runs"
)

type Config struct {
	Capture  CaptureConfig  `yaml:"capture"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Render   RenderConfig   `yaml:"render"`
	Collect  CollectConfig  `yaml:"collect"`
	Serve    ServeConfig    `yaml:"serve"`
	Log      LogConfig      `yaml:"log"`
	DataDir  string         `yaml:"data_dir"`
}

type CaptureConfig struct {
	Source     string  `yaml:"source"`
	SampleRate float64 `yaml:"sample_rate"`
	FrameSize  int     `yaml:"frame_size"`
	Queue      int     `yaml:"queue"`
	Bias       float64 `yaml:"bias"`
	Seed       uint64  `yaml:"seed"`
	Path       string  `yaml:"path"`
	Realtime   bool    `yaml:"realtime"`
}

type PipelineConfig struct {
	Hash string `yaml:"hash"`
}

type RenderConfig struct {
	Width         int           `yaml:"width"`
	Height        int           `yaml:"height"`
	PixelScale    int           `yaml:"pixel_scale"`
	NewestAtTop   bool          `yaml:"newest_at_top"`
	OneColor      string        `yaml:"one_color"`
	ZeroColor     string        `yaml:"zero_color"`
	UnsetColor    string        `yaml:"unset_color"`
	MinInterval   time.Duration `yaml:"min_interval"`
	AdaptiveChunk bool          `yaml:"adaptive_chunk"`
	BaseChunk     int           `yaml:"base_chunk"`
	MinChunk      int           `yaml:"min_chunk"`
	MaxChunk      int           `yaml:"max_chunk"`
	FrameBudget   time.Duration `yaml:"frame_budget"`
	Tick          time.Duration `yaml:"tick"`
}

type CollectConfig struct {
	Size   int    `yaml:"size"`
	Output string `yaml:"output"`
	// Format is raw or hex.
	Format string `yaml:"format"`
}

type ServeConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

func DefaultConfig() *Config {
	p := render.DefaultPalette()
	return &Config{
		Capture: CaptureConfig{
			Source:     "portaudio",
			SampleRate: capture.SampleRate,
			FrameSize:  capture.FrameSize,
			Queue:      capture.QueueSize,
			Bias:       0.5,
			Realtime:   true,
		},
		Pipeline: PipelineConfig{
			Hash: extract.DefaultHashName,
		},
		Render: RenderConfig{
			Width:         render.DefaultWidth,
			Height:        render.DefaultHeight,
			PixelScale:    DefaultPixelScale,
			NewestAtTop:   true,
			OneColor:      render.HexColor(p.One),
			ZeroColor:     render.HexColor(p.Zero),
			UnsetColor:    render.HexColor(p.Unset),
			MinInterval:   render.DefaultMinInterval,
			AdaptiveChunk: true,
			BaseChunk:     render.DefaultBaseChunk,
			MinChunk:      render.DefaultMinChunk,
			MaxChunk:      render.DefaultMaxChunk,
			FrameBudget:   render.DefaultFrameBudget,
			Tick:          DefaultTick,
		},
		Collect: CollectConfig{
			Size:   DefaultCollectSize,
			Format: "hex",
		},
		Serve: ServeConfig{
			Addr: DefaultAddr,
		},
		Log: LogConfig{
			Level: "info",
		},
		DataDir: DefaultDataDir,
	}
}

// Load reads a YAML file over the defaults and normalizes the result.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	cfg.Normalize()
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Marshal renders cfg as YAML.
func Marshal(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}

// Normalize clamps out-of-range values to their documented bounds.
func (c *Config) Normalize() {
	r := &c.Render
	r.Width = clamp(r.Width, MinWidth, MaxWidth)
	r.Height = clamp(r.Height, MinHeight, MaxHeight)
	r.PixelScale = clamp(r.PixelScale, MinPixelScale, MaxPixelScale)
	r.MinInterval = clamp(r.MinInterval, 0, MaxMinInterval)
	if r.MinChunk < 1 {
		r.MinChunk = 1
	}
	if r.MaxChunk >= r.MinChunk {
		r.BaseChunk = clamp(r.BaseChunk, r.MinChunk, r.MaxChunk)
	}
	if r.FrameBudget <= 0 {
		r.FrameBudget = render.DefaultFrameBudget
	}
	if r.Tick <= 0 {
		r.Tick = DefaultTick
	}

	c.Collect.Size = clamp(c.Collect.Size, MinCollectSize, MaxCollectSize)
	if c.Collect.Format == "" {
		c.Collect.Format = "hex"
	}

	c.Capture.Bias = clamp(c.Capture.Bias, 0, 1)
	if c.Capture.SampleRate <= 0 {
		c.Capture.SampleRate = capture.SampleRate
	}
	if c.Capture.FrameSize <= 0 {
		c.Capture.FrameSize = capture.FrameSize
	}
	if c.Capture.Queue <= 0 {
		c.Capture.Queue = capture.QueueSize
	}
	if c.DataDir == "" {
		c.DataDir = DefaultDataDir
	}
}

// Validate reports conditions that clamping cannot repair. Each problem
// wraps ErrUnsatisfiable.
func (c *Config) Validate() error {
	var errs []error
	if c.Render.MinChunk >= c.Render.MaxChunk {
		errs = append(errs, fmt.Errorf("%w: min_chunk %d must be below max_chunk %d",
			ErrUnsatisfiable, c.Render.MinChunk, c.Render.MaxChunk))
	}
	if _, err := c.Palette(); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrUnsatisfiable, err))
	}
	if _, err := extract.LookupHash(c.Pipeline.Hash); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrUnsatisfiable, err))
	}
	if !capture.NewRegistry().Has(c.Capture.Source) {
		errs = append(errs, fmt.Errorf("%w: unknown capture source %q", ErrUnsatisfiable, c.Capture.Source))
	}
	if c.Capture.Source == "file" && c.Capture.Path == "" {
		errs = append(errs, fmt.Errorf("%w: file source needs capture.path", ErrUnsatisfiable))
	}
	if !slices.Contains([]string{"raw", "hex"}, c.Collect.Format) {
		errs = append(errs, fmt.Errorf("%w: collect format %q is not raw or hex", ErrUnsatisfiable, c.Collect.Format))
	}
	return errors.Join(errs...)
}

// Palette parses the render colors. The one and zero colors must differ.
func (c *Config) Palette() (render.Palette, error) {
	var p render.Palette
	var err error
	if p.One, err = render.ParseHexColor(c.Render.OneColor); err != nil {
		return p, err
	}
	if p.Zero, err = render.ParseHexColor(c.Render.ZeroColor); err != nil {
		return p, err
	}
	if p.Unset, err = render.ParseHexColor(c.Render.UnsetColor); err != nil {
		return p, err
	}
	if p.One == p.Zero {
		return p, fmt.Errorf("one_color and zero_color are both %s", c.Render.OneColor)
	}
	return p, nil
}

func (c *Config) RenderOptions() (render.Options, error) {
	p, err := c.Palette()
	if err != nil {
		return render.Options{}, fmt.Errorf("%w: %v", ErrUnsatisfiable, err)
	}
	r := c.Render
	return render.Options{
		Width:       r.Width,
		Height:      r.Height,
		NewestAtTop: r.NewestAtTop,
		Palette:     p,
		MinInterval: r.MinInterval,
		Chunk: render.ChunkPolicy{
			Adaptive: r.AdaptiveChunk,
			Base:     r.BaseChunk,
			Min:      r.MinChunk,
			Max:      r.MaxChunk,
			Budget:   r.FrameBudget,
			Window:   render.DefaultChunkWindow,
		},
	}, nil
}

func (c *Config) HashFunc() (extract.HashFunc, error) {
	return extract.LookupHash(c.Pipeline.Hash)
}

func (c *Config) CaptureParams(log *zap.Logger) capture.Params {
	cc := c.Capture
	return capture.Params{
		SampleRate: cc.SampleRate,
		FrameSize:  cc.FrameSize,
		Queue:      cc.Queue,
		Bias:       cc.Bias,
		Seed:       cc.Seed,
		Path:       cc.Path,
		Realtime:   cc.Realtime,
		Log:        log,
	}
}

func clamp[T int | float64 | time.Duration](v, lo, hi T) T {
	return min(max(v, lo), hi)
}
