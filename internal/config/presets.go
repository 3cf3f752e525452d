package config

import (
	"sort"
	"time"
)

// Presets overlay render and capture settings on the defaults.
var Presets = map[string]func(*Config){
	"terminal": func(c *Config) {
		c.Render.Width, c.Render.Height = 96, 48
		c.Render.MinInterval = 33 * time.Millisecond
		c.Render.Tick = 33 * time.Millisecond
	},
	"hd": func(c *Config) {
		c.Render.Width, c.Render.Height = 256, 144
		c.Render.PixelScale = 5
	},
	"fast": func(c *Config) {
		c.Render.MinInterval = 0
		c.Render.Tick = 8 * time.Millisecond
		c.Render.BaseChunk = 16384
		c.Render.MaxChunk = 1 << 18
		c.Capture.Realtime = false
	},
	"lowcpu": func(c *Config) {
		c.Render.Width, c.Render.Height = 64, 32
		c.Render.MinInterval = 100 * time.Millisecond
		c.Render.Tick = 100 * time.Millisecond
		c.Render.AdaptiveChunk = false
		c.Render.BaseChunk = 1024
		c.Capture.FrameSize = 4096
	},
}

// GetPreset returns the defaults with the named preset applied, or nil.
func GetPreset(name string) *Config {
	apply, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := DefaultConfig()
	apply(cfg)
	cfg.Normalize()
	return cfg
}

// Apply overlays a preset onto cfg. It reports whether the preset exists.
func Apply(cfg *Config, name string) bool {
	apply, ok := Presets[name]
	if !ok {
		return false
	}
	apply(cfg)
	cfg.Normalize()
	return true
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
