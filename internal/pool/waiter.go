package pool

// Waiter is a pending request for a number of pool bytes.
type Waiter struct {
	want       int
	generation uint64
	done       chan struct{}
	data       []byte
	err        error
}

func newWaiter(n int, gen uint64) *Waiter {
	return &Waiter{
		want:       n,
		generation: gen,
		done:       make(chan struct{}),
	}
}

func (w *Waiter) resolve(data []byte, err error) {
	select {
	case <-w.done:
		return
	default:
	}
	w.data, w.err = data, err
	close(w.done)
}

// Done is closed once the waiter is resolved.
func (w *Waiter) Done() <-chan struct{} { return w.done }

// Want returns the requested byte count.
func (w *Waiter) Want() int { return w.want }

// Generation returns the pool generation the waiter was registered in.
func (w *Waiter) Generation() uint64 { return w.generation }

// Result returns the bytes or the reason the wait ended. It must only be
// called after Done is closed.
func (w *Waiter) Result() ([]byte, error) {
	return w.data, w.err
}
