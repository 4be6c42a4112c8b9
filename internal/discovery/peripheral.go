package discovery

// Peripheral is an opaque handle identifying a remote BLE device. Within
// one scan session, equal IDs refer to the same physical peer.
type Peripheral struct {
	ID string // medium-assigned, MAC-address-shaped
}

// Valid reports whether p names an actual device.
func (p Peripheral) Valid() bool { return p.ID != "" }
