package capture

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// PortAudio captures mono input from the default device.
type PortAudio struct {
	sampleRate float64
	frameSize  int
	log        *zap.Logger

	stream  *portaudio.Stream
	frames  chan Frame
	pool    *FramePool
	seq     uint64
	dropped atomic.Uint64

	mu      sync.Mutex
	active  bool
	stopped bool
}

func NewPortAudio(sampleRate float64, frameSize, queue int, log *zap.Logger) *PortAudio {
	if log == nil {
		log = zap.NewNop()
	}
	return &PortAudio{
		sampleRate: sampleRate,
		frameSize:  frameSize,
		log:        log,
		frames:     make(chan Frame, queue),
		pool:       NewFramePool(frameSize),
	}
}

func (a *PortAudio) Start(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.stopped {
		return ErrStopped
	}
	if a.active {
		return ErrStarted
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("%w: initialize: %v", ErrDevice, err)
	}
	stream, err := portaudio.OpenDefaultStream(1, 0, a.sampleRate, a.frameSize, a.process)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("%w: open input stream: %v", ErrDevice, err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("%w: start input stream: %v", ErrDevice, err)
	}

	a.stream = stream
	a.active = true
	a.log.Info("capture started",
		zap.String("source", "portaudio"),
		zap.Float64("sample_rate", a.sampleRate),
		zap.Int("frame_size", a.frameSize))
	return nil
}

// process runs on the audio thread and must not block.
func (a *PortAudio) process(in []float32) {
	buf := a.pool.Get()
	if len(in) > len(buf) {
		buf = make([]uint8, len(in))
	}
	buf = buf[:len(in)]
	for i, v := range in {
		buf[i] = Quantize(v)
	}
	a.seq++
	f := a.pool.Frame(a.seq, buf)
	select {
	case a.frames <- f:
	default:
		a.dropped.Add(1)
		f.Release()
	}
}

func (a *PortAudio) Frames() <-chan Frame { return a.frames }

func (a *PortAudio) Dropped() uint64 { return a.dropped.Load() }

func (a *PortAudio) Stop() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if !a.active {
		return nil
	}
	a.active = false
	a.stopped = true

	var firstErr error
	if err := a.stream.Stop(); err != nil {
		firstErr = fmt.Errorf("%w: stop stream: %v", ErrDevice, err)
	}
	if err := a.stream.Close(); err != nil && firstErr == nil {
		firstErr = fmt.Errorf("%w: close stream: %v", ErrDevice, err)
	}
	portaudio.Terminate()
	// The callback has returned for good once Stop is done.
	close(a.frames)
	a.log.Info("capture stopped", zap.String("source", "portaudio"), zap.Uint64("dropped", a.Dropped()))
	return firstErr
}
