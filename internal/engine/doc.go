// Package engine drives the entropy pipeline.
//
// An Engine owns the extractor, assembler, hasher, pool and renderer and
// touches them from a single goroutine. Frames from a capture source,
// animation ticks and call-in closures submitted with Do are all handled
// by the loop started with Run, so no pipeline state is ever locked.
package engine
