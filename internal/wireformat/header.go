// Package wireformat implements the byte-level records shared by the BLE
// discovery core: the advertisement header that fits inside a legacy BLE
// packet, the advertisement body it points at, and the data-element TLV
// format used to populate that body.
package wireformat

import (
	"encoding/binary"
	"errors"
)

// Version identifies the wire layout of a header or advertisement.
type Version int

const (
	V1 Version = iota
	V2
)

const (
	// KBloomLen is the length, in bytes, of the service-id bloom filter
	// carried in every header.
	KBloomLen = 10
	// KHashLen is the length, in bytes, of the advertisement_hash field.
	KHashLen = 4
	// KDefaultPsm is the sentinel PSM value meaning "no extended
	// transport available".
	KDefaultPsm int32 = -1
)

// ErrTooShort is returned when a byte slice is too short to hold the
// record being decoded.
var ErrTooShort = errors.New("wireformat: record too short")

// CopresenceServiceUUID is the well-known 16-bit UUID used for Nearby
// presence service data (0xFCF1).
var CopresenceServiceUUID = UUID16(0xFCF1)

// Header is the fixed-size record placed under the copresence UUID
// pointing at the real advertisement payload.
type Header struct {
	Version              Version
	Extended             bool
	NumSlots             uint32
	ServiceIDBloomFilter [KBloomLen]byte
	AdvertisementHash    [KHashLen]byte
	Psm                  int32
}

// IsMockedAdvertisementHeader reports whether h is the "empty" header
// synthesized for a fast advertisement: V2, one slot, all-zero bloom
// filter. Regular (GATT-discovered) headers never look like this because
// their bloom filter reflects at least one advertised service.
func IsMockedAdvertisementHeader(h Header) bool {
	if h.Version != V2 || h.NumSlots != 1 {
		return false
	}
	for _, b := range h.ServiceIDBloomFilter {
		if b != 0 {
			return false
		}
	}
	return true
}

// MarshalBinary encodes h per the legacy V2 layout:
//
//	byte 0     : (version<<5) | (extended<<4) | (num_slots & 0x0F)
//	bytes 1..N : bloom filter
//	bytes ...  : advertisement hash
//	bytes ...  : psm (absent => KDefaultPsm)
//
// num_slots greater than 15 is not representable in the base layout and
// is rejected; the multi-byte slot-count extension is not implemented.
func (h Header) MarshalBinary() ([]byte, error) {
	if h.NumSlots == 0 || h.NumSlots > 0x0F {
		return nil, errors.New("wireformat: num_slots out of range")
	}
	b := make([]byte, 0, 1+KBloomLen+KHashLen+4)
	lead := byte(h.Version)<<5 | boolBit(h.Extended)<<4 | byte(h.NumSlots&0x0F)
	b = append(b, lead)
	b = append(b, h.ServiceIDBloomFilter[:]...)
	b = append(b, h.AdvertisementHash[:]...)
	psm := make([]byte, 4)
	binary.BigEndian.PutUint32(psm, uint32(h.Psm))
	b = append(b, psm...)
	return b, nil
}

// UnmarshalBinary decodes a Header from b. It tolerates trailing bytes
// (forward compatibility) and rejects records shorter than the minimum
// fixed prefix.
func (h *Header) UnmarshalBinary(b []byte) error {
	if len(b) < 1+KBloomLen+KHashLen {
		return ErrTooShort
	}
	lead := b[0]
	h.Version = Version(lead >> 5)
	h.Extended = lead&0x10 != 0
	h.NumSlots = uint32(lead & 0x0F)
	off := 1
	copy(h.ServiceIDBloomFilter[:], b[off:off+KBloomLen])
	off += KBloomLen
	copy(h.AdvertisementHash[:], b[off:off+KHashLen])
	off += KHashLen
	if len(b) >= off+4 {
		h.Psm = int32(binary.BigEndian.Uint32(b[off : off+4]))
	} else {
		h.Psm = KDefaultPsm
	}
	return nil
}

func boolBit(b bool) byte {
	if b {
		return 1
	}
	return 0
}
