package wireformat

import (
	"bytes"
	"testing"
)

func emptyHeader() Header {
	return Header{Version: V2, NumSlots: 1, Psm: KDefaultPsm}
}

func TestHeaderRoundTrip(t *testing.T) {
	h := Header{
		Version:              V2,
		Extended:             true,
		NumSlots:             3,
		ServiceIDBloomFilter: [KBloomLen]byte{1, 2, 3},
		AdvertisementHash:    [KHashLen]byte{0xAA, 0xBB, 0xCC, 0xDD},
		Psm:                  42,
	}
	b, err := h.MarshalBinary()
	if err != nil {
		t.Fatalf("MarshalBinary: %v", err)
	}
	var got Header
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary: %v", err)
	}
	if got != h {
		t.Errorf("round trip: got %+v want %+v", got, h)
	}
}

func TestHeaderTrailingBytesTolerated(t *testing.T) {
	h := emptyHeader()
	b, _ := h.MarshalBinary()
	b = append(b, 0xFF, 0xFF, 0xFF)
	var got Header
	if err := got.UnmarshalBinary(b); err != nil {
		t.Fatalf("UnmarshalBinary with trailing bytes: %v", err)
	}
	if got.Psm != KDefaultPsm {
		// the trailing bytes must never be folded into the psm field
		t.Errorf("got psm %d, want %d", got.Psm, KDefaultPsm)
	}
}

func TestHeaderRejectsShortRecord(t *testing.T) {
	short := bytes.Repeat([]byte{0}, KBloomLen)
	var h Header
	if err := h.UnmarshalBinary(short); err != ErrTooShort {
		t.Errorf("got err %v, want ErrTooShort", err)
	}
}

func TestIsMockedAdvertisementHeader(t *testing.T) {
	if !IsMockedAdvertisementHeader(emptyHeader()) {
		t.Errorf("emptyHeader should be mocked")
	}
	real := emptyHeader()
	real.ServiceIDBloomFilter[0] = 1
	if IsMockedAdvertisementHeader(real) {
		t.Errorf("header with non-zero bloom filter should not be mocked")
	}
	real2 := emptyHeader()
	real2.NumSlots = 2
	if IsMockedAdvertisementHeader(real2) {
		t.Errorf("header with num_slots != 1 should not be mocked")
	}
}

func TestHeaderEqualityAsMapKey(t *testing.T) {
	m := map[Header]int{}
	a := emptyHeader()
	b := emptyHeader()
	m[a] = 1
	m[b] = 2
	if len(m) != 1 {
		t.Errorf("equal headers should collapse to one map key, got %d entries", len(m))
	}
}
