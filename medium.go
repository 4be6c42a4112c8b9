package nearby

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jorka30/nearby/internal/discovery"
	"github.com/jorka30/nearby/internal/wireformat"
)

// Peripheral identifies a remote BLE device.
type Peripheral = discovery.Peripheral

// AdvertisementData is the raw scan-callback payload a platform binding
// hands to ProcessFoundBleAdvertisement.
type AdvertisementData = discovery.AdvertisementData

// Fetcher supplies GATT-read payloads for the regular (non-fast)
// discovery path.
type Fetcher = discovery.Fetcher

// CancellationFlag accompanies a long-running GATT-read operation; see
// spec.md §5 "Cancellation / timeouts".
type CancellationFlag = discovery.CancellationFlag

// DiscoveredCallback reports a newly (re-)discovered advertisement.
type DiscoveredCallback = discovery.DiscoveredCallback

// LostCallback reports an advertisement no longer seen.
type LostCallback = discovery.LostCallback

type advertisingEntry struct {
	endpointInfo []byte
	powerLevel   PowerLevel
	fastUUID     *wireformat.UUID
}

// Medium is the BLE discovery façade: it surfaces
// StartAdvertising/StopAdvertising/StartScanning/StopScanning to
// callers and owns the discovered peripheral tracker (component E).
type Medium struct {
	mu      sync.Mutex
	radio   RadioController
	tracker *discovery.Tracker
	log     *logrus.Entry

	advertising map[string]advertisingEntry
	scanning    map[string]struct{}

	defaultPowerLevel          PowerLevel
	defaultFastUUID            *wireformat.UUID
	autoUpgradeBandwidth       bool
	enforceTopologyConstraints bool
	strategy                   Strategy
}

// NewMedium returns a Medium backed by radio; options are applied
// afterwards with Configure. extAdvSupport and log are passed through to
// the underlying tracker (either may be nil).
func NewMedium(radio RadioController, extAdvSupport discovery.ExtendedAdvertisingSupport, log *logrus.Entry) (*Medium, error) {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	m := &Medium{
		radio:       radio,
		tracker:     discovery.NewTracker(extAdvSupport, log),
		log:         log,
		advertising: make(map[string]advertisingEntry),
		scanning:    make(map[string]struct{}),
		strategy:    P2pPointToPoint,
	}
	return m, nil
}

// Configure applies opts to m, in the style of the teacher's
// device.Option(opts ...Option) method.
func (m *Medium) Configure(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(m); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the façade's background resources (the tracker's
// callback dispatcher).
func (m *Medium) Close() {
	m.tracker.Close()
}

func (m *Medium) radioReady() bool {
	if m.radio == nil {
		return true
	}
	return m.radio.IsEnabled()
}

// StartAdvertising begins advertising endpointInfo under serviceID.
// Returns false if serviceID is already advertising, or the radio is
// unavailable. fastUUID may be nil, in which case m's configured
// default (if any) is used.
func (m *Medium) StartAdvertising(serviceID string, endpointInfo []byte, powerLevel PowerLevel, fastUUID *wireformat.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.radioReady() {
		m.log.WithField("service_id", serviceID).Warn("StartAdvertising: radio unavailable")
		return false
	}
	if _, ok := m.advertising[serviceID]; ok {
		return false
	}
	if fastUUID == nil {
		fastUUID = m.defaultFastUUID
	}
	m.advertising[serviceID] = advertisingEntry{
		endpointInfo: append([]byte(nil), endpointInfo...),
		powerLevel:   powerLevel,
		fastUUID:     fastUUID,
	}
	return true
}

// StopAdvertising stops advertising serviceID. Returns false if
// serviceID was not advertising.
func (m *Medium) StopAdvertising(serviceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.advertising[serviceID]; !ok {
		return false
	}
	delete(m.advertising, serviceID)
	return true
}

// StartScanning registers discoveredCB/lostCB for serviceID against the
// underlying tracker. Returns false if serviceID is already scanning,
// or the radio is unavailable. fastUUID may be nil, in which case m's
// configured default (if any) is used.
func (m *Medium) StartScanning(serviceID string, powerLevel PowerLevel, discoveredCB DiscoveredCallback, lostCB LostCallback, fastUUID *wireformat.UUID) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.radioReady() {
		m.log.WithField("service_id", serviceID).Warn("StartScanning: radio unavailable")
		return false
	}
	if _, ok := m.scanning[serviceID]; ok {
		return false
	}
	if fastUUID == nil {
		fastUUID = m.defaultFastUUID
	}
	m.scanning[serviceID] = struct{}{}
	m.tracker.StartTracking(serviceID, discoveredCB, lostCB, fastUUID)
	return true
}

// StopScanning stops scanning for serviceID. Returns false if
// serviceID was not scanning.
func (m *Medium) StopScanning(serviceID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.scanning[serviceID]; !ok {
		return false
	}
	delete(m.scanning, serviceID)
	m.tracker.StopTracking(serviceID)
	return true
}

// ProcessFoundBleAdvertisement forwards a platform scan callback to the
// underlying tracker. cancel may be nil.
func (m *Medium) ProcessFoundBleAdvertisement(p Peripheral, data AdvertisementData, fetcher Fetcher, cancel *CancellationFlag) {
	m.tracker.ProcessFoundBleAdvertisement(p, data, fetcher, cancel)
}

// RunScanCycle drives the tracker's periodic lost-entity sweep
// (spec.md §4.C "invoked on a periodic tick") every interval, until ctx
// is cancelled.
func (m *Medium) RunScanCycle(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.tracker.ProcessLostGattAdvertisements()
		}
	}
}
