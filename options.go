package nearby

import "github.com/jorka30/nearby/internal/wireformat"

// PowerLevel hints the radio duty cycle used for advertising/scanning.
type PowerLevel int

const (
	LowPower PowerLevel = iota
	HighPower
)

func (p PowerLevel) String() string {
	if p == HighPower {
		return "HighPower"
	}
	return "LowPower"
}

// Strategy sets the allowed connection topology.
type Strategy int

const (
	P2pPointToPoint Strategy = iota
	P2pStar
	P2pCluster
)

func (s Strategy) String() string {
	switch s {
	case P2pStar:
		return "P2pStar"
	case P2pCluster:
		return "P2pCluster"
	default:
		return "P2pPointToPoint"
	}
}

// Option configures a Medium through Medium.Configure, in the style of
// the teacher's functional-options Device.Option surface.
type Option func(*Medium) error

// WithPowerLevel records a default power level on the Medium.
// StartAdvertising and StartScanning take their power level from their
// own argument and do not consult this default.
func WithPowerLevel(p PowerLevel) Option {
	return func(m *Medium) error {
		m.defaultPowerLevel = p
		return nil
	}
}

// WithFastAdvertisementServiceUUID sets the default fast-advertisement
// UUID new StartAdvertising/StartScanning calls use when the caller
// passes a nil fastUUID.
func WithFastAdvertisementServiceUUID(u wireformat.UUID) Option {
	return func(m *Medium) error {
		m.defaultFastUUID = &u
		return nil
	}
}

// WithAutoUpgradeBandwidth allows the medium to switch to Wi-Fi after a
// BLE connection completes. The value is only stored on the Medium;
// this package does not itself perform the upgrade, since bandwidth
// upgrade is a different medium (out of scope, spec.md §1).
func WithAutoUpgradeBandwidth(v bool) Option {
	return func(m *Medium) error {
		m.autoUpgradeBandwidth = v
		return nil
	}
}

// WithEnforceTopologyConstraints records whether inbound connections
// that would violate the configured Strategy's topology are to be
// rejected. The value is only stored, for the same reason as
// WithAutoUpgradeBandwidth: connection accept/reject lives above the
// discovery core, and this package rejects nothing itself.
func WithEnforceTopologyConstraints(v bool) Option {
	return func(m *Medium) error {
		m.enforceTopologyConstraints = v
		return nil
	}
}

// WithStrategy sets the allowed topology.
func WithStrategy(s Strategy) Option {
	return func(m *Medium) error {
		m.strategy = s
		return nil
	}
}
