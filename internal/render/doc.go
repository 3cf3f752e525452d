// Package render paints the bit content of a growing byte source into a
// fixed-size scrolling grid.
//
// The [Renderer] never re-reads bits it has already drawn. Each call
// consumes at most one chunk of new bits, collects them into a row buffer
// and, once a row of [Options.Width] bits is complete, shifts the whole
// [Grid] by one row and writes the new row at the insertion edge. Per-bit
// cost is constant; the O(W·H) shift happens once per row.
//
// Two independent mechanisms let the cursor lag the source:
//
//   - the throttle skips a call entirely when it arrives sooner than
//     [Options.MinInterval] after the previous productive call
//   - the chunk bound caps how many bits one call consumes
//
// Neither loses data; later calls catch up.
//
// Surfaces receive the grid through [Surface.Present]. This package ships
// an image surface (PNG/GIF) and an SVG exporter; terminal and window
// surfaces live with their front ends.
package render
