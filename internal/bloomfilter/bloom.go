// Package bloomfilter implements the fixed-length service-id membership
// sketch carried in every BLE advertisement header.
package bloomfilter

const (
	// ByteLength is kServiceIdBloomFilterByteLength: the number of bytes
	// backing the bit vector.
	ByteLength = 10
	// K is the number of hashed bit positions set per inserted id.
	K = 5
)

// Filter wraps a fixed-length bit set keyed by service id. Equality
// compares the raw bit vector, matching the "== compares bits" contract
// in the spec.
type Filter struct {
	bits [ByteLength]byte
}

// New returns an empty filter.
func New() Filter { return Filter{} }

// Add sets the K hashed bit positions for serviceID.
func (f *Filter) Add(serviceID string) {
	h1, h2 := doubleHash(serviceID)
	m := uint32(ByteLength * 8)
	for i := 0; i < K; i++ {
		pos := (h1 + uint32(i)*h2) % m
		f.bits[pos/8] |= 1 << (pos % 8)
	}
}

// MayContain reports whether serviceID could have been Added; false
// negatives never occur, false positives are expected at a low rate.
func (f Filter) MayContain(serviceID string) bool {
	h1, h2 := doubleHash(serviceID)
	m := uint32(ByteLength * 8)
	for i := 0; i < K; i++ {
		pos := (h1 + uint32(i)*h2) % m
		if f.bits[pos/8]&(1<<(pos%8)) == 0 {
			return false
		}
	}
	return true
}

// Equal reports whether f and g have identical bit vectors.
func (f Filter) Equal(g Filter) bool { return f.bits == g.bits }

// Bytes returns the raw bit vector, for embedding in a header.
func (f Filter) Bytes() [ByteLength]byte { return f.bits }

// FromBytes reconstructs a Filter from a previously-extracted bit vector.
func FromBytes(b [ByteLength]byte) Filter { return Filter{bits: b} }

// doubleHash produces two independent 32-bit hashes of serviceID, combined
// per the standard double-hashing scheme h_i = h1 + i*h2. The hash family
// itself is not specified by the source protocol; see DESIGN.md.
func doubleHash(serviceID string) (uint32, uint32) {
	return fnv1a32([]byte(serviceID)), fnv1(append([]byte("bloom:"), serviceID...))
}

func fnv1a32(b []byte) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	var h uint32 = offset32
	for _, c := range b {
		h ^= uint32(c)
		h *= prime32
	}
	return h
}

func fnv1(b []byte) uint32 {
	const (
		offset32 = 2166136261
		prime32  = 16777619
	)
	var h uint32 = offset32
	for _, c := range b {
		h *= prime32
		h ^= uint32(c)
	}
	return h
}
