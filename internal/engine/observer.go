package engine

import "github.com/DM41131/RNG-password-generator/internal/extract"

// Observer is notified of every digest appended to the pool. Callbacks run
// on the loop goroutine and must not block.
type Observer interface {
	OnDigest(d extract.Digest)
}

// Resetter is an optional Observer extension notified after the pool and
// renderer have been reset.
type Resetter interface {
	OnReset(reason string)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(d extract.Digest)

func (f ObserverFunc) OnDigest(d extract.Digest) { f(d) }

// Metric summarises the digest bytes entering the pool.
type Metric interface {
	Name() string
	Observe(b []byte)
	Value() float64
	Reset()
}
