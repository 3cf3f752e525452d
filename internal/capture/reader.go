package capture

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Reader turns a byte stream of 8-bit samples into frames. The final frame
// may be short. EOF closes the frame channel.
type Reader struct {
	r        io.Reader
	closer   io.Closer
	interval time.Duration
	pool     *FramePool
	log      *zap.Logger

	frames  chan Frame
	cancel  context.CancelFunc
	done    chan struct{}
	once    sync.Once
	stopped bool
	err     error
}

func NewReader(r io.Reader, frameSize int, interval time.Duration, log *zap.Logger) *Reader {
	if frameSize <= 0 {
		frameSize = FrameSize
	}
	if log == nil {
		log = zap.NewNop()
	}
	rd := &Reader{
		r:        r,
		interval: interval,
		pool:     NewFramePool(frameSize),
		log:      log,
		frames:   make(chan Frame, QueueSize),
		done:     make(chan struct{}),
	}
	if c, ok := r.(io.Closer); ok {
		rd.closer = c
	}
	return rd
}

func (r *Reader) Start(ctx context.Context) error {
	if r.stopped {
		return ErrStopped
	}
	if r.cancel != nil {
		return ErrStarted
	}
	ctx, r.cancel = context.WithCancel(ctx)
	go r.run(ctx)
	return nil
}

func (r *Reader) run(ctx context.Context) {
	defer close(r.done)
	defer close(r.frames)

	var tick <-chan time.Time
	if r.interval > 0 {
		t := time.NewTicker(r.interval)
		defer t.Stop()
		tick = t.C
	}

	var seq uint64
	for {
		buf := r.pool.Get()
		n, err := io.ReadFull(r.r, buf)
		if n > 0 {
			seq++
			f := r.pool.Frame(seq, buf[:n])
			if tick != nil {
				select {
				case <-ctx.Done():
					f.Release()
					return
				case <-tick:
				}
			}
			select {
			case <-ctx.Done():
				f.Release()
				return
			case r.frames <- f:
			}
		} else {
			r.pool.Put(buf)
		}
		if err != nil {
			if !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
				r.err = err
				r.log.Warn("capture read failed", zap.Error(err))
			}
			return
		}
	}
}

func (r *Reader) Frames() <-chan Frame { return r.frames }

func (r *Reader) Dropped() uint64 { return 0 }

// Err returns the read error that ended the source, if any. Valid after Stop.
func (r *Reader) Err() error { return r.err }

func (r *Reader) Stop() error {
	var err error
	r.once.Do(func() {
		r.stopped = true
		if r.cancel == nil {
			close(r.frames)
			close(r.done)
		} else {
			r.cancel()
		}
		// Closing first unblocks a pending read.
		if r.closer != nil {
			err = r.closer.Close()
		}
		<-r.done
	})
	return err
}
