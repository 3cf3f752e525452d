// Package capture supplies raw amplitude frames to the extraction pipeline.
//
// A [Source] delivers fixed-size frames of unsigned 8-bit samples on a
// channel. Sources never block their producer on a slow consumer longer
// than the producer allows: the PortAudio callback drops and counts frames
// when the queue is full, the synthetic and reader sources block.
//
//   - [PortAudio]: default input device, float32 quantized to 8 bits
//   - [Synthetic]: seeded samples whose LSB is 1 with a chosen probability
//   - [Reader]: frames read from any io.Reader
//
// Frames are recycled through a [FramePool]; consumers call
// [Frame.Release] when done.
package capture
