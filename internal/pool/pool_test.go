package pool_test

import (
	"bytes"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/DM41131/RNG-password-generator/internal/pool"
)

func digest(fill byte) []byte {
	return bytes.Repeat([]byte{fill}, 32)
}

var _ = Describe("Pool", func() {
	var p *pool.Pool

	BeforeEach(func() {
		p = pool.New()
	})

	Describe("Append", func() {
		It("grows monotonically in append order", func() {
			last := 0
			for i := 0; i < 5; i++ {
				p.Append(digest(byte(i)))
				Expect(p.Len()).To(BeNumerically(">", last))
				last = p.Len()
			}
			Expect(p.Len()).To(Equal(160))
			Expect(p.BitLen()).To(Equal(uint64(1280)))
			Expect(p.ByteAt(0)).To(Equal(byte(0)))
			Expect(p.ByteAt(159)).To(Equal(byte(4)))
			Expect(p.Appends()).To(Equal(uint64(5)))
		})

		It("ignores empty appends", func() {
			p.Append(nil)
			Expect(p.Len()).To(BeZero())
			Expect(p.Appends()).To(BeZero())
		})
	})

	Describe("Snapshot", func() {
		It("is not disturbed by later appends or resets", func() {
			p.Append(digest(1))
			snap := p.Snapshot()
			Expect(cap(snap)).To(Equal(len(snap)))

			p.Append(digest(2))
			p.Reset()
			p.Append(digest(3))

			Expect(snap).To(Equal(digest(1)))
		})
	})

	Describe("Tail", func() {
		It("returns the most recent bytes", func() {
			p.Append(digest(1))
			p.Append(digest(2))

			tail, err := p.Tail(33)
			Expect(err).NotTo(HaveOccurred())
			Expect(tail[0]).To(Equal(byte(1)))
			Expect(tail[1:]).To(Equal(digest(2)))
		})

		It("reports insufficient entropy as a status", func() {
			p.Append(digest(1))

			tail, err := p.Tail(64)
			Expect(tail).To(BeNil())
			Expect(err).To(MatchError(pool.ErrInsufficientEntropy))

			var ie *pool.InsufficientError
			Expect(err).To(BeAssignableToTypeOf(ie))
			ie = err.(*pool.InsufficientError)
			Expect(ie.Have).To(Equal(32))
			Expect(ie.Want).To(Equal(64))
		})
	})

	Describe("Reset", func() {
		It("empties the pool and bumps the generation", func() {
			p.Append(digest(1))
			gen := p.Generation()

			p.Reset()

			Expect(p.Len()).To(BeZero())
			Expect(p.Generation()).To(Equal(gen + 1))
		})

		It("notifies a waiter registered before the reset", func() {
			p.Append(digest(1))
			w := p.Wait(64)
			Expect(w.Done()).NotTo(BeClosed())

			Expect(p.Reset()).To(Equal(1))

			Expect(w.Done()).To(BeClosed())
			data, err := w.Result()
			Expect(data).To(BeNil())
			Expect(err).To(MatchError(pool.ErrReset))
			Expect(p.Waiting()).To(BeZero())
		})

		It("does not satisfy an old waiter from new growth", func() {
			w := p.Wait(32)
			p.Reset()
			p.Append(digest(9))

			_, err := w.Result()
			Expect(err).To(MatchError(pool.ErrReset))
		})
	})

	Describe("Wait", func() {
		It("resolves immediately when already satisfied", func() {
			p.Append(digest(5))
			w := p.Wait(16)

			Expect(w.Done()).To(BeClosed())
			data, err := w.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(Equal(digest(5)[:16]))
		})

		It("resolves once the pool grows enough", func() {
			w := p.Wait(64)
			p.Append(digest(1))
			Expect(w.Done()).NotTo(BeClosed())

			p.Append(digest(2))
			Expect(w.Done()).To(BeClosed())
			data, err := w.Result()
			Expect(err).NotTo(HaveOccurred())
			Expect(data).To(HaveLen(64))
			Expect(p.Waiting()).To(BeZero())
		})

		It("keeps larger waiters pending", func() {
			small := p.Wait(32)
			large := p.Wait(96)
			p.Append(digest(1))

			Expect(small.Done()).To(BeClosed())
			Expect(large.Done()).NotTo(BeClosed())
			Expect(p.Waiting()).To(Equal(1))
		})

		It("can be canceled", func() {
			w := p.Wait(64)
			p.Cancel(w)

			Expect(w.Done()).To(BeClosed())
			_, err := w.Result()
			Expect(err).To(MatchError(pool.ErrCanceled))
			Expect(p.Waiting()).To(BeZero())

			p.Cancel(w)
			_, err = w.Result()
			Expect(err).To(MatchError(pool.ErrCanceled))
		})
	})
})
