package extract

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestAssemblerMSBFirst(t *testing.T) {
	a := NewAssembler()
	got := a.Consume([]uint8{1, 0, 1, 1, 0, 0, 1, 0})
	if diff := cmp.Diff([]byte{178}, got); diff != "" {
		t.Errorf("Consume mismatch (-want +got):\n%s", diff)
	}
	if a.Pending() != 0 {
		t.Errorf("Pending() = %d after a full byte", a.Pending())
	}
}

func TestAssemblerPartialAcrossCalls(t *testing.T) {
	a := NewAssembler()

	if got := a.Consume([]uint8{1, 1, 1}); len(got) != 0 {
		t.Fatalf("3 bits produced %v", got)
	}
	if a.Pending() != 3 {
		t.Fatalf("Pending() = %d, want 3", a.Pending())
	}

	got := a.Consume([]uint8{1, 0, 0, 0, 0, 1, 0, 1, 0, 1, 0})
	if diff := cmp.Diff([]byte{0xf0}, got); diff != "" {
		t.Errorf("Consume mismatch (-want +got):\n%s", diff)
	}
	if a.Pending() != 6 {
		t.Errorf("Pending() = %d, want 6", a.Pending())
	}

	got = a.Consume([]uint8{1, 0})
	if diff := cmp.Diff([]byte{0xaa}, got); diff != "" {
		t.Errorf("Consume mismatch (-want +got):\n%s", diff)
	}
}

func TestAssemblerRoundTrip(t *testing.T) {
	for _, b := range []byte{0x00, 0x01, 0x80, 0xb2, 0x5a, 0xff} {
		bits := Bits(b)
		got := NewAssembler().Consume(bits[:])
		if len(got) != 1 || got[0] != b {
			t.Errorf("round trip of %#02x gave %v", b, got)
		}
	}
}

func TestBits(t *testing.T) {
	want := [8]uint8{1, 0, 1, 1, 0, 0, 1, 0}
	if got := Bits(178); got != want {
		t.Errorf("Bits(178) = %v, want %v", got, want)
	}
}
