package engine

import (
	"time"

	"github.com/DM41131/RNG-password-generator/internal/extract"
)

// DefaultHistory is the number of digests kept for Since.
const DefaultHistory = 256

// Entry is one recorded digest. Seq increases for the lifetime of the
// engine and is never reused, unlike the hasher's batch index.
type Entry struct {
	Seq        uint64
	Generation uint64
	Time       time.Time
	Digest     extract.Digest
}

// History is a fixed-size ring of recent digests.
type History struct {
	buf  []Entry
	next int
	full bool
	seq  uint64
}

func NewHistory(size int) *History {
	if size <= 0 {
		size = DefaultHistory
	}
	return &History{buf: make([]Entry, size)}
}

func (h *History) add(gen uint64, at time.Time, d extract.Digest) Entry {
	h.seq++
	e := Entry{Seq: h.seq, Generation: gen, Time: at, Digest: d}
	h.buf[h.next] = e
	h.next = (h.next + 1) % len(h.buf)
	if h.next == 0 {
		h.full = true
	}
	return e
}

// Len returns the number of entries held.
func (h *History) Len() int {
	if h.full {
		return len(h.buf)
	}
	return h.next
}

// Last returns the sequence number of the newest entry, or zero.
func (h *History) Last() uint64 { return h.seq }

// Since returns the held entries with Seq greater than seq, oldest first.
func (h *History) Since(seq uint64) []Entry {
	n := h.Len()
	out := make([]Entry, 0, n)
	start := 0
	if h.full {
		start = h.next
	}
	for i := 0; i < n; i++ {
		e := h.buf[(start+i)%len(h.buf)]
		if e.Seq > seq {
			out = append(out, e)
		}
	}
	return out
}

// clear drops held entries but keeps the sequence counter.
func (h *History) clear() {
	clear(h.buf)
	h.next = 0
	h.full = false
}
