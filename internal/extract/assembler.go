package extract

// Assembler packs bits into bytes. The first bit received becomes the most
// significant bit. Fewer than 8 bits are ever held between calls.
type Assembler struct {
	acc   uint8
	n     int
	bytes uint64
}

func NewAssembler() *Assembler {
	return &Assembler{}
}

// Consume returns every byte completed by bits.
func (a *Assembler) Consume(bits []uint8) []byte {
	return a.AppendConsume(make([]byte, 0, (a.n+len(bits))/8), bits)
}

// AppendConsume appends every byte completed by bits to dst.
func (a *Assembler) AppendConsume(dst []byte, bits []uint8) []byte {
	for _, b := range bits {
		a.acc = a.acc<<1 | b&1
		a.n++
		if a.n == 8 {
			dst = append(dst, a.acc)
			a.acc, a.n = 0, 0
			a.bytes++
		}
	}
	return dst
}

// Pending returns the number of bits waiting for a full byte.
func (a *Assembler) Pending() int { return a.n }

func (a *Assembler) Bytes() uint64 { return a.bytes }

func (a *Assembler) Reset() {
	*a = Assembler{}
}

// Bits unpacks b MSB first, the inverse of what an Assembler does.
func Bits(b byte) [8]uint8 {
	var out [8]uint8
	for i := range out {
		out[i] = b >> (7 - i) & 1
	}
	return out
}
