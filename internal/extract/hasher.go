package extract

import (
	"encoding/hex"
	"hash"
)

const (
	// BatchSize is the number of assembled bytes compressed into one digest.
	BatchSize = 1000
	// DigestSize is the length of every whitening digest.
	DigestSize = 32
)

// Digest is the whitening output for one full batch.
type Digest struct {
	Index uint64
	Sum   [DigestSize]byte
}

// Hex returns the lowercase hex encoding without separators.
func (d Digest) Hex() string {
	return hex.EncodeToString(d.Sum[:])
}

// Hasher accumulates bytes and hashes each batch the moment it reaches
// exactly BatchSize. Partial batches are never hashed.
type Hasher struct {
	h       hash.Hash
	batch   []byte
	batches uint64
}

func NewHasher(fn HashFunc) *Hasher {
	if fn == nil {
		fn = DefaultHash
	}
	return &Hasher{
		h:     fn(),
		batch: make([]byte, 0, BatchSize),
	}
}

// Consume adds data to the current batch and returns one digest for every
// batch it completes, in order.
func (h *Hasher) Consume(data []byte) []Digest {
	var out []Digest
	for len(data) > 0 {
		n := copy(h.batch[len(h.batch):BatchSize], data)
		h.batch = h.batch[:len(h.batch)+n]
		data = data[n:]
		if len(h.batch) == BatchSize {
			out = append(out, h.flush())
		}
	}
	return out
}

func (h *Hasher) flush() Digest {
	h.h.Reset()
	h.h.Write(h.batch)
	d := Digest{Index: h.batches}
	copy(d.Sum[:], h.h.Sum(nil))
	h.batch = h.batch[:0]
	h.batches++
	return d
}

// Pending returns the number of bytes in the unfinished batch.
func (h *Hasher) Pending() int { return len(h.batch) }

func (h *Hasher) Batches() uint64 { return h.batches }

// Reset discards the unfinished batch and restarts digest numbering.
func (h *Hasher) Reset() {
	h.batch = h.batch[:0]
	h.batches = 0
}
