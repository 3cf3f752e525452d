// Package gui draws the pool's bit grid in a raylib window, one texture
// texel per cell, scaled by the configured pixel scale with point
// filtering.
package gui
