package nearby

import "sync"

// RadioController represents the process-global BLE radio (spec §5
// "Shared resources"). The tracker itself never touches the radio; the
// façade consults it before honoring Start* calls.
type RadioController interface {
	// Enable turns the radio on, reporting whether it is now usable.
	Enable() bool
	// IsEnabled reports the radio's current state.
	IsEnabled() bool
}

// FakeRadio is an in-memory RadioController double, whose initial state
// is set by NewFakeRadio, for use in tests that don't exercise a real
// platform radio.
type FakeRadio struct {
	mu      sync.Mutex
	enabled bool
}

// NewFakeRadio returns a FakeRadio in the given initial state.
func NewFakeRadio(enabled bool) *FakeRadio {
	return &FakeRadio{enabled: enabled}
}

func (r *FakeRadio) Enable() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = true
	return r.enabled
}

func (r *FakeRadio) IsEnabled() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.enabled
}

// SetEnabled forces the radio's state, e.g. to simulate it being
// switched off mid-test.
func (r *FakeRadio) SetEnabled(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.enabled = v
}
