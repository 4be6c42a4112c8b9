package nearby

import (
	"context"
	"testing"
	"time"

	"github.com/jorka30/nearby/internal/wireformat"
)

// TestStartAdvertisingDuplicate covers S2.
func TestStartAdvertisingDuplicate(t *testing.T) {
	m, err := NewMedium(NewFakeRadio(true), nil, nil)
	if err != nil {
		t.Fatalf("NewMedium: %v", err)
	}
	defer m.Close()

	fast := wireformat.UUID16(0x1234)
	if ok := m.StartAdvertising("svc", []byte("bytes"), HighPower, &fast); !ok {
		t.Fatalf("first StartAdvertising: got false, want true")
	}
	if ok := m.StartAdvertising("svc", []byte("bytes"), HighPower, &fast); ok {
		t.Errorf("duplicate StartAdvertising: got true, want false")
	}
	if ok := m.StopAdvertising("svc"); !ok {
		t.Errorf("StopAdvertising: got false, want true")
	}
	if ok := m.StopAdvertising("svc"); ok {
		t.Errorf("second StopAdvertising: got true, want false")
	}
}

// TestStartScanningDuplicate mirrors S2 for the scanning surface.
func TestStartScanningDuplicate(t *testing.T) {
	m, err := NewMedium(NewFakeRadio(true), nil, nil)
	if err != nil {
		t.Fatalf("NewMedium: %v", err)
	}
	defer m.Close()

	noop := func(Peripheral, string, []byte, bool) {}
	noopLost := func(Peripheral, string) {}

	if ok := m.StartScanning("svc", HighPower, noop, noopLost, nil); !ok {
		t.Fatalf("first StartScanning: got false, want true")
	}
	if ok := m.StartScanning("svc", HighPower, noop, noopLost, nil); ok {
		t.Errorf("duplicate StartScanning: got true, want false")
	}
	if ok := m.StopScanning("svc"); !ok {
		t.Errorf("StopScanning: got false, want true")
	}
	if ok := m.StopScanning("svc"); ok {
		t.Errorf("second StopScanning: got true, want false")
	}
}

// TestStartAdvertisingRadioDisabled covers the "starting while disabled
// returns false" invariant (spec.md §4.G).
func TestStartAdvertisingRadioDisabled(t *testing.T) {
	m, err := NewMedium(NewFakeRadio(false), nil, nil)
	if err != nil {
		t.Fatalf("NewMedium: %v", err)
	}
	defer m.Close()

	if ok := m.StartAdvertising("svc", []byte("bytes"), HighPower, nil); ok {
		t.Errorf("StartAdvertising with disabled radio: got true, want false")
	}
}

func TestStartScanningRadioDisabled(t *testing.T) {
	m, err := NewMedium(NewFakeRadio(false), nil, nil)
	if err != nil {
		t.Fatalf("NewMedium: %v", err)
	}
	defer m.Close()

	noop := func(Peripheral, string, []byte, bool) {}
	noopLost := func(Peripheral, string) {}
	if ok := m.StartScanning("svc", HighPower, noop, noopLost, nil); ok {
		t.Errorf("StartScanning with disabled radio: got true, want false")
	}
}

// TestRunScanCycleStopsOnCancel confirms RunScanCycle returns once ctx
// is cancelled rather than looping forever.
func TestRunScanCycleStopsOnCancel(t *testing.T) {
	m, err := NewMedium(NewFakeRadio(true), nil, nil)
	if err != nil {
		t.Fatalf("NewMedium: %v", err)
	}
	defer m.Close()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.RunScanCycle(ctx, time.Millisecond)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunScanCycle did not return after cancellation")
	}
}
