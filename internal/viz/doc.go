// Package viz is the live terminal view of the entropy pool.
//
// The renderer presents into a [Surface], which forwards the newest grid
// to a Bubble Tea [Model]. The grid is drawn either with half blocks in
// the theme's bit colors or as a Braille [Canvas] (2x4 cells per rune).
// A side panel shows pipeline counters, a throughput chart and the pool
// health metrics.
//
// # Key Bindings
//
//	Space - Stop/start the pipeline
//	R     - Reset the pool
//	D     - Flip the insertion edge
//	+/-   - Grow/shrink the grid
//	M     - Toggle Braille/half-block drawing
//	T     - Cycle color themes
//	S     - Save a PNG snapshot
//	G     - Toggle GIF recording
//	C     - Collect bytes into the store
//	?     - Show full help
package viz
