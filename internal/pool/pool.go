// Package pool holds the append-only entropy pool that every consumer reads.
package pool

// Pool is an append-only byte sequence. It only shrinks through Reset,
// which empties it and resolves every pending Waiter with ErrReset.
//
// A Pool is owned by one goroutine; Waiter channels are the only values
// meant to cross goroutines.
type Pool struct {
	data       []byte
	generation uint64
	appends    uint64
	waiters    []*Waiter
}

func New() *Pool {
	return &Pool{}
}

// Append adds digest bytes and resolves any waiters now satisfied.
func (p *Pool) Append(b []byte) {
	if len(b) == 0 {
		return
	}
	p.data = append(p.data, b...)
	p.appends++
	p.satisfy()
}

func (p *Pool) Len() int { return len(p.data) }

// BitLen returns the number of bits held.
func (p *Pool) BitLen() uint64 { return uint64(len(p.data)) * 8 }

func (p *Pool) ByteAt(i int) byte { return p.data[i] }

// Snapshot returns a read-only view of the current contents. Later appends
// and resets never modify the bytes of a returned view.
func (p *Pool) Snapshot() []byte {
	return p.data[:len(p.data):len(p.data)]
}

// Tail copies the most recent n bytes.
func (p *Pool) Tail(n int) ([]byte, error) {
	if n < 0 {
		n = 0
	}
	if n > len(p.data) {
		return nil, &InsufficientError{Want: n, Have: len(p.data)}
	}
	out := make([]byte, n)
	copy(out, p.data[len(p.data)-n:])
	return out, nil
}

// Generation increments on every Reset.
func (p *Pool) Generation() uint64 { return p.generation }

// Appends counts Append calls since the pool was created.
func (p *Pool) Appends() uint64 { return p.appends }

// Waiting returns the number of unresolved waiters.
func (p *Pool) Waiting() int { return len(p.waiters) }

// Reset empties the pool, starts a new generation and resolves every
// pending waiter with ErrReset. It returns how many waiters were notified.
func (p *Pool) Reset() int {
	// Drop the backing array so outstanding snapshots stay intact.
	p.data = nil
	p.generation++
	n := len(p.waiters)
	for _, w := range p.waiters {
		w.resolve(nil, ErrReset)
	}
	p.waiters = nil
	return n
}

// Wait registers interest in n bytes. The waiter resolves with the most
// recent n bytes once the pool holds at least n, or with ErrReset if the
// pool is reset first.
func (p *Pool) Wait(n int) *Waiter {
	w := newWaiter(n, p.generation)
	if n <= len(p.data) {
		data, _ := p.Tail(n)
		w.resolve(data, nil)
		return w
	}
	p.waiters = append(p.waiters, w)
	return w
}

// Cancel detaches w and resolves it with ErrCanceled. Resolved waiters are
// left untouched.
func (p *Pool) Cancel(w *Waiter) {
	for i, x := range p.waiters {
		if x == w {
			p.waiters = append(p.waiters[:i], p.waiters[i+1:]...)
			w.resolve(nil, ErrCanceled)
			return
		}
	}
}

func (p *Pool) satisfy() {
	if len(p.waiters) == 0 {
		return
	}
	kept := p.waiters[:0]
	for _, w := range p.waiters {
		if w.want <= len(p.data) {
			data, _ := p.Tail(w.want)
			w.resolve(data, nil)
			continue
		}
		kept = append(kept, w)
	}
	clear(p.waiters[len(kept):])
	p.waiters = kept
}
