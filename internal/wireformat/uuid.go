package wireformat

import (
	"encoding/hex"
	"fmt"
)

// UUID is a Bluetooth UUID, either the 2-byte Bluetooth SIG form or the
// full 16-byte form. The zero value is not a valid UUID. UUID is
// comparable (backed by a fixed-size array, not a slice) so it can be
// used directly as a map key, e.g. for a service-data UUID lookup.
type UUID struct {
	b [16]byte
	n int
}

// UUID16 constructs the Bluetooth SIG 16-bit UUID for v, e.g. UUID16(0xFCF1)
// for the copresence service.
func UUID16(v uint16) UUID {
	var u UUID
	u.b[0], u.b[1] = byte(v), byte(v>>8)
	u.n = 2
	return u
}

// MustParseUUID parses a hex string, such as "FCF1" or a 32-hex-digit
// 128-bit UUID, into its little-endian wire representation. It panics on
// malformed input, mirroring the teacher's parse-at-init-time idiom.
func MustParseUUID(s string) UUID {
	u, err := ParseUUID(s)
	if err != nil {
		panic(err)
	}
	return u
}

// ParseUUID parses a hex string into a UUID.
func ParseUUID(s string) (UUID, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return UUID{}, fmt.Errorf("wireformat: invalid uuid %q: %w", s, err)
	}
	if len(b) != 2 && len(b) != 16 {
		return UUID{}, fmt.Errorf("wireformat: invalid uuid %q: want 2 or 16 bytes, got %d", s, len(b))
	}
	var u UUID
	copy(u.b[:], reverse(b))
	u.n = len(b)
	return u, nil
}

// Len reports the number of bytes in the UUID's wire form (2 or 16).
func (u UUID) Len() int { return u.n }

// Equal reports whether u and v are the same UUID.
func (u UUID) Equal(v UUID) bool {
	return u == v
}

// Bytes returns the little-endian wire bytes of the UUID.
func (u UUID) Bytes() []byte { return append([]byte(nil), u.b[:u.n]...) }

// ReverseBytes returns the UUID bytes in big-endian (RFC4122 display) order.
func (u UUID) ReverseBytes() []byte { return reverse(u.b[:u.n]) }

func (u UUID) String() string {
	return fmt.Sprintf("%x", u.ReverseBytes())
}

// reverse returns a new slice with b's bytes in reverse order.
func reverse(b []byte) []byte {
	n := len(b)
	out := make([]byte, n)
	for i, v := range b {
		out[n-1-i] = v
	}
	return out
}
