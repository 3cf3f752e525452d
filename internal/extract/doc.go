// Package extract turns raw amplitude samples into whitened digest bytes.
//
// The stages run strictly in arrival order and carry partial state between
// calls:
//
//   - [VonNeumann]: pairs raw bits (01 -> 0, 10 -> 1, 00/11 dropped)
//   - [Assembler]: packs debiased bits into bytes, MSB first
//   - [Hasher]: hashes every full 1000-byte batch into a 32-byte [Digest]
//
// # Example
//
//	vn := extract.NewVonNeumann()
//	asm := extract.NewAssembler()
//	h := extract.NewHasher(sha256.New)
//	digests := h.Consume(asm.Consume(vn.ConsumeSamples(frame)))
//
// # Thread Safety
//
// None of the stages are safe for concurrent use. They are owned by a
// single driver loop.
package extract
