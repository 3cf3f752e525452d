package tui

import (
	"fmt"
	"io"
	"sync"

	"github.com/DM41131/RNG-password-generator/internal/extract"
)

// DigestPrinter writes one line per whitening digest and one per pool
// reset. It implements engine.Observer and engine.Resetter.
type DigestPrinter struct {
	mu sync.Mutex
	w  io.Writer
	n  uint64
}

func NewDigestPrinter(w io.Writer) *DigestPrinter {
	return &DigestPrinter{w: w}
}

func (p *DigestPrinter) OnDigest(d extract.Digest) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.n++
	fmt.Fprintf(p.w, "%08d %s\n", d.Index, d.Hex())
}

func (p *DigestPrinter) OnReset(reason string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "-- pool reset: %s\n", reason)
}

// Printed counts digest lines written.
func (p *DigestPrinter) Printed() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.n
}
