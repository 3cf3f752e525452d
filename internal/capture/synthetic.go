package capture

import (
	"context"
	"math/rand/v2"
	"sync"
	"time"
)

// Synthetic generates samples whose least significant bit is 1 with
// probability Bias. The upper bits are uniform noise. A zero interval
// produces frames as fast as they are consumed.
type Synthetic struct {
	bias     float64
	interval time.Duration
	limit    int
	pool     *FramePool
	rng      *rand.Rand
	seq      uint64

	frames  chan Frame
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	stopped bool
}

type SyntheticOptions struct {
	Bias      float64
	Seed      uint64
	FrameSize int
	Interval  time.Duration
	// Limit stops the source after this many frames; zero is unbounded.
	Limit int
	Queue int
}

func NewSynthetic(opts SyntheticOptions) *Synthetic {
	if opts.FrameSize <= 0 {
		opts.FrameSize = FrameSize
	}
	if opts.Queue <= 0 {
		opts.Queue = QueueSize
	}
	return &Synthetic{
		bias:     opts.Bias,
		interval: opts.Interval,
		limit:    opts.Limit,
		pool:     NewFramePool(opts.FrameSize),
		rng:      rand.New(rand.NewPCG(opts.Seed, opts.Seed^0x9e3779b97f4a7c15)),
		frames:   make(chan Frame, opts.Queue),
		done:     make(chan struct{}),
	}
}

// NextFrame produces one frame synchronously. It must not be mixed with a
// started source.
func (s *Synthetic) NextFrame() Frame {
	buf := s.pool.Get()
	for i := range buf {
		v := uint8(s.rng.UintN(256)) &^ 1
		if s.rng.Float64() < s.bias {
			v |= 1
		}
		buf[i] = v
	}
	s.seq++
	return s.pool.Frame(s.seq, buf)
}

func (s *Synthetic) Start(ctx context.Context) error {
	if s.stopped {
		return ErrStopped
	}
	if s.cancel != nil {
		return ErrStarted
	}
	ctx, s.cancel = context.WithCancel(ctx)
	go s.run(ctx)
	return nil
}

func (s *Synthetic) run(ctx context.Context) {
	defer close(s.done)
	defer close(s.frames)

	var tick <-chan time.Time
	if s.interval > 0 {
		t := time.NewTicker(s.interval)
		defer t.Stop()
		tick = t.C
	}

	for n := 0; s.limit == 0 || n < s.limit; n++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return
			case <-tick:
			}
		}
		f := s.NextFrame()
		select {
		case <-ctx.Done():
			f.Release()
			return
		case s.frames <- f:
		}
	}
}

func (s *Synthetic) Frames() <-chan Frame { return s.frames }

func (s *Synthetic) Dropped() uint64 { return 0 }

func (s *Synthetic) Stop() error {
	s.once.Do(func() {
		s.stopped = true
		if s.cancel == nil {
			close(s.frames)
			close(s.done)
			return
		}
		s.cancel()
		<-s.done
	})
	return nil
}
