package extract

// VonNeumann debiases a raw bit stream. Bits are paired in arrival order
// without overlap; an odd trailing bit is held for the next call.
type VonNeumann struct {
	pending    uint8
	hasPending bool

	rawBits uint64
	outBits uint64
}

func NewVonNeumann() *VonNeumann {
	return &VonNeumann{}
}

// Consume returns the debiased bits for raw. Only the low bit of each
// element is read.
func (v *VonNeumann) Consume(raw []uint8) []uint8 {
	return v.AppendConsume(make([]uint8, 0, len(raw)/4+1), raw)
}

// ConsumeSamples debiases the least significant bit of each sample.
func (v *VonNeumann) ConsumeSamples(samples []uint8) []uint8 {
	return v.Consume(samples)
}

// AppendConsume appends the debiased bits for raw to dst.
func (v *VonNeumann) AppendConsume(dst, raw []uint8) []uint8 {
	for _, b := range raw {
		b &= 1
		v.rawBits++
		if !v.hasPending {
			v.pending, v.hasPending = b, true
			continue
		}
		v.hasPending = false
		// 01 emits 0 and 10 emits 1: the first bit of an unequal pair.
		if v.pending != b {
			dst = append(dst, v.pending)
			v.outBits++
		}
	}
	return dst
}

// Pending reports whether a raw bit is waiting for its partner.
func (v *VonNeumann) Pending() bool { return v.hasPending }

func (v *VonNeumann) RawBits() uint64 { return v.rawBits }
func (v *VonNeumann) OutBits() uint64 { return v.outBits }

// Reset drops the pending bit and the counters.
func (v *VonNeumann) Reset() {
	*v = VonNeumann{}
}
