// Package tui holds the plain terminal outputs used when the full-screen
// interface is not wanted: a digest line printer and a character grid
// surface.
package tui
