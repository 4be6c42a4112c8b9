package wireformat

import (
	"encoding/binary"
	"errors"
)

// ServiceIDHashLen is the width of the on-wire service id hash.
const ServiceIDHashLen = 3

// ServiceIDHash is Hash(service_id) truncated to the wire width.
type ServiceIDHash [ServiceIDHashLen]byte

// HashServiceID derives the wire hash for a service id. The hash family is
// not specified by the source protocol (see DESIGN.md); this uses FNV-1a,
// the same family used for the bloom filter's independent hashes.
func HashServiceID(serviceID string) ServiceIDHash {
	var out ServiceIDHash
	copy(out[:], fnv32aBytes([]byte(serviceID)))
	return out
}

// HashBytes computes the same family of hash over arbitrary bytes, used for
// the header's advertisement_hash field.
func HashBytes(b []byte) [KHashLen]byte {
	var out [KHashLen]byte
	h := fnv32aBytes(b)
	copy(out[:], h)
	return out
}

func fnv32aBytes(b []byte) []byte {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	var h uint32 = offset32
	for _, c := range b {
		h ^= uint32(c)
		h *= prime32
	}
	out := make([]byte, 4)
	binary.BigEndian.PutUint32(out, h)
	return out
}

// Advertisement is the payload a Header points to.
type Advertisement struct {
	Version             Version
	SocketVersion       Version
	HasServiceIDHash    bool
	ServiceIDHash       ServiceIDHash
	Data                []byte
	IsFastAdvertisement bool
	Psm                 int32
}

// MarshalBinary encodes the advertisement body: version byte, optional
// service_id_hash, length-prefixed data, optional psm. IsFastAdvertisement
// is carried only in memory (it is implied by the transport channel the
// bytes arrived on, not by a flag in the bytes themselves) and is not
// written to the wire.
func (a Advertisement) MarshalBinary() ([]byte, error) {
	if len(a.Data) > 0xFFFF {
		return nil, errors.New("wireformat: advertisement data too long")
	}
	b := make([]byte, 0, 1+ServiceIDHashLen+2+len(a.Data)+4)
	b = append(b, byte(a.Version))
	if a.HasServiceIDHash {
		b = append(b, a.ServiceIDHash[:]...)
	}
	dataLen := make([]byte, 2)
	binary.BigEndian.PutUint16(dataLen, uint16(len(a.Data)))
	b = append(b, dataLen...)
	b = append(b, a.Data...)
	psm := make([]byte, 4)
	binary.BigEndian.PutUint32(psm, uint32(a.Psm))
	b = append(b, psm...)
	return b, nil
}

// UnmarshalBinaryFast decodes a fast advertisement: no service_id_hash is
// present on the wire (the fast-UUID channel already identifies the
// service), so the caller is responsible for setting ServiceIDHash /
// HasServiceIDHash from the matched service afterward.
func (a *Advertisement) UnmarshalBinaryFast(b []byte) error {
	return a.unmarshal(b, false)
}

// UnmarshalBinary decodes a regular advertisement, which always carries an
// explicit service_id_hash.
func (a *Advertisement) UnmarshalBinary(b []byte) error {
	return a.unmarshal(b, true)
}

func (a *Advertisement) unmarshal(b []byte, hasHash bool) error {
	if len(b) < 1 {
		return ErrTooShort
	}
	a.Version = Version(b[0])
	off := 1
	a.HasServiceIDHash = hasHash
	if hasHash {
		if len(b) < off+ServiceIDHashLen+2 {
			return ErrTooShort
		}
		copy(a.ServiceIDHash[:], b[off:off+ServiceIDHashLen])
		off += ServiceIDHashLen
	}
	if len(b) < off+2 {
		return ErrTooShort
	}
	n := int(binary.BigEndian.Uint16(b[off : off+2]))
	off += 2
	if len(b) < off+n {
		return ErrTooShort
	}
	a.Data = append([]byte(nil), b[off:off+n]...)
	off += n
	if len(b) >= off+4 {
		a.Psm = int32(binary.BigEndian.Uint32(b[off : off+4]))
	} else {
		a.Psm = KDefaultPsm
	}
	return nil
}
