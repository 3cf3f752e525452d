package capture

import "sync"

const (
	SampleRate = 44100
	FrameSize  = 2048
	QueueSize  = 16
)

// Frame is one batch of 8-bit samples in capture order.
type Frame struct {
	Seq     uint64
	Samples []uint8
	pool    *FramePool
}

// Release returns the frame buffer to its pool. The samples must not be
// used afterwards.
func (f Frame) Release() {
	if f.pool != nil {
		f.pool.Put(f.Samples)
	}
}

// FramePool recycles sample buffers of one size.
type FramePool struct {
	pool sync.Pool
	size int
}

func NewFramePool(size int) *FramePool {
	return &FramePool{
		size: size,
		pool: sync.Pool{
			New: func() interface{} {
				return make([]uint8, size)
			},
		},
	}
}

func (p *FramePool) Get() []uint8 {
	return p.pool.Get().([]uint8)
}

func (p *FramePool) Put(s []uint8) {
	if cap(s) == p.size {
		p.pool.Put(s[:p.size])
	}
}

// Frame wraps a buffer from this pool.
func (p *FramePool) Frame(seq uint64, samples []uint8) Frame {
	return Frame{Seq: seq, Samples: samples, pool: p}
}

func (p *FramePool) Size() int { return p.size }
