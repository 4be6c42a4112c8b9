package discovery

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jorka30/nearby/internal/wireformat"
)

// AdvertisementData is the raw scan-callback payload handed to the
// tracker by the platform (or, in this module, by the medium façade).
type AdvertisementData struct {
	// ServiceData maps a service-data UUID (the fast-advertisement UUID,
	// or kCopresenceServiceUuid) to its raw bytes.
	ServiceData map[wireformat.UUID][]byte
	// ServiceUUIDs is the set of service UUIDs advertised alongside the
	// service data, used to pick the caller UUID on the regular path.
	ServiceUUIDs []wireformat.UUID
}

// Fetcher supplies the GATT-read payloads for a header discovered on the
// regular (non-fast) path. It is the external collaborator spec.md
// calls "an external fetcher"; this module never performs GATT I/O
// itself. cancel may be nil; a real implementation should check
// cancel.IsCancelled() at its own read-decision points and return
// ok=false promptly once set.
type Fetcher interface {
	FetchGattAdvertisements(p Peripheral, cancel *CancellationFlag) (header wireformat.Header, slots map[int][]byte, ok bool)
}

// DiscoveredCallback reports a newly (re-)discovered advertisement.
type DiscoveredCallback func(p Peripheral, serviceID string, data []byte, isFast bool)

// LostCallback reports an advertisement no longer seen.
type LostCallback func(p Peripheral, serviceID string)

// ExtendedAdvertisingSupport is a runtime capability query: whether the
// platform can receive extended (PSM-bearing) advertisements directly,
// rather than falling back to the legacy header+GATT-read path. The
// source hardcoded this to false; here it is an injected seam so a real
// platform binding can report its actual capability.
type ExtendedAdvertisingSupport func() bool

type serviceIDInfo struct {
	discoveredCB DiscoveredCallback
	lostCB       LostCallback
	lost         *LostEntityTracker[advKey]
	fastUUID     *wireformat.UUID
}

// gattAdvertisementInfo is the per-advertisement bookkeeping record:
// which service it matched, the header it currently hangs off of, and
// the peripheral last seen carrying it.
type gattAdvertisementInfo struct {
	serviceID  string
	header     wireformat.Header
	peripheral Peripheral
	adv        wireformat.Advertisement
}

// advKey is the comparable identity of a BleAdvertisement for map-key
// purposes. wireformat.Advertisement itself holds a []byte Data field
// and so is not comparable; Psm is deliberately excluded (see
// DESIGN.md: S4 requires "identical advertisement bytes, different psm"
// to resolve to the same logical advertisement so its header can be
// upgraded in place).
type advKey struct {
	hasHash bool
	hash    wireformat.ServiceIDHash
	data    string
	fast    bool
}

func keyOf(adv wireformat.Advertisement) advKey {
	return advKey{
		hasHash: adv.HasServiceIDHash,
		hash:    adv.ServiceIDHash,
		data:    string(adv.Data),
		fast:    adv.IsFastAdvertisement,
	}
}

// Tracker is the discovered peripheral tracker: the fusion of the wire
// codec, the bloom filter's implicit "worth reading" hint, the read
// cache, and the per-service lost-entity trackers into discovered/lost
// callbacks. One mutex guards all of its state; see spec.md §5.
type Tracker struct {
	mu sync.Mutex // GUARDED_BY: everything below

	serviceIDInfos         map[string]*serviceIDInfo
	gattAdvertisements     map[wireformat.Header]map[advKey]wireformat.Advertisement
	gattAdvertisementInfos map[advKey]gattAdvertisementInfo

	readCache     *ReadResultCache
	extAdvSupport ExtendedAdvertisingSupport
	log           *logrus.Entry

	callbacks chan func()
	closed    chan struct{}
}

// NewTracker returns an empty Tracker. extAdvSupport may be nil, in
// which case extended-advertising support is reported as false. log may
// be nil, in which case a new default logrus logger is used.
func NewTracker(extAdvSupport ExtendedAdvertisingSupport, log *logrus.Entry) *Tracker {
	if extAdvSupport == nil {
		extAdvSupport = func() bool { return false }
	}
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	t := &Tracker{
		serviceIDInfos:         make(map[string]*serviceIDInfo),
		gattAdvertisements:     make(map[wireformat.Header]map[advKey]wireformat.Advertisement),
		gattAdvertisementInfos: make(map[advKey]gattAdvertisementInfo),
		readCache:              NewReadResultCache(log),
		extAdvSupport:          extAdvSupport,
		log:                    log,
		callbacks:              make(chan func(), 256),
		closed:                 make(chan struct{}),
	}
	go t.runCallbacks()
	return t
}

// runCallbacks drains the callback queue in submission order, outside
// the tracker's mutex, so discovered/lost callbacks for a given
// (service_id, advertisement) stay totally ordered even though the
// tracker itself never blocks invoking them inline.
func (t *Tracker) runCallbacks() {
	for {
		select {
		case fn := <-t.callbacks:
			fn()
		case <-t.closed:
			return
		}
	}
}

// Close stops the callback dispatcher. Safe to call once; not required
// for correctness of a short-lived Tracker, only to release its
// goroutine.
func (t *Tracker) Close() {
	close(t.closed)
}

func (t *Tracker) enqueue(fn func()) {
	select {
	case t.callbacks <- fn:
	case <-t.closed:
	}
}

// StartTracking registers discoveredCB/lostCB for serviceID, replacing
// any prior registration, clears the read-result cache so every known
// header gets a fresh retry, and detaches any advertisement already
// attributed to serviceID from its header (see
// clearGattAdvertisementLocked).
func (t *Tracker) StartTracking(serviceID string, discoveredCB DiscoveredCallback, lostCB LostCallback, fastUUID *wireformat.UUID) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.serviceIDInfos[serviceID] = &serviceIDInfo{
		discoveredCB: discoveredCB,
		lostCB:       lostCB,
		lost:         NewLostEntityTracker[advKey](),
		fastUUID:     fastUUID,
	}
	t.readCache.Clear()

	for key, info := range t.gattAdvertisementInfos {
		if info.serviceID == serviceID {
			t.clearGattAdvertisementLocked(key)
		}
	}
}

// StopTracking removes serviceID's registration. It does not clear the
// read cache or any existing GATT advertisements; they age out via the
// lost-entity tracker on their own.
func (t *Tracker) StopTracking(serviceID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.serviceIDInfos, serviceID)
}

// ProcessFoundBleAdvertisement is the scan-callback entry point. It is
// idempotent for repeated identical inputs and safe to call from any
// thread; the tracker never blocks. cancel may be nil; when set, the
// regular (GATT-read) path returns promptly without side effects per
// spec.md §5/§7 Cancelled. The fast path never performs a GATT read, so
// it is not gated on cancel.
func (t *Tracker) ProcessFoundBleAdvertisement(p Peripheral, data AdvertisementData, fetcher Fetcher, cancel *CancellationFlag) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(t.serviceIDInfos) == 0 {
		return
	}
	if !p.Valid() || len(data.ServiceData) == 0 {
		return
	}

	// Fast path: a tracked service configured a fast-advertisement UUID
	// that matches one of the advertised service-data UUIDs.
	for _, info := range t.serviceIDInfos {
		if info.fastUUID == nil {
			continue
		}
		advBytes, ok := data.ServiceData[*info.fastUUID]
		if !ok {
			continue
		}
		t.processFastLocked(p, advBytes, *info.fastUUID)
		return
	}

	// Regular path: ask the external fetcher for the GATT-read payloads
	// behind whichever header the platform already resolved. This is the
	// tracker's one GATT-read decision point: a cancelled flag returns
	// without touching any state. A header already cached Success/in
	// backoff skips re-processing the raw bytes but still records the
	// header's known advertisements as found this cycle so a live peer
	// that keeps repeating the same advertisement is never spuriously
	// reported lost.
	if fetcher == nil {
		return
	}
	callerUUID := t.callerUUIDLocked(data.ServiceUUIDs)
	header, slots, ok := fetcher.FetchGattAdvertisements(p, cancel)
	if !ok {
		return
	}
	if t.readCache.ShouldSkipRead(header, time.Now(), cancel) {
		if !cancel.IsCancelled() {
			t.updateCommonStateLocked(header, p)
		}
		return
	}
	newHeader := t.handleRawGattAdvertisementsLocked(header, slots, &callerUUID, false, p)
	if len(t.gattAdvertisements[newHeader]) > 0 {
		t.readCache.Put(newHeader, ReadResult{Status: StatusSuccess, At: time.Now()})
	}
	t.updateCommonStateLocked(newHeader, p)
}

func (t *Tracker) callerUUIDLocked(serviceUUIDs []wireformat.UUID) wireformat.UUID {
	for _, u := range serviceUUIDs {
		if !u.Equal(wireformat.CopresenceServiceUUID) {
			return u
		}
	}
	return wireformat.CopresenceServiceUUID
}

func (t *Tracker) processFastLocked(p Peripheral, advBytes []byte, fastUUID wireformat.UUID) {
	header := wireformat.Header{
		Version:           wireformat.V2,
		Extended:          false,
		NumSlots:          1,
		AdvertisementHash: wireformat.HashBytes(advBytes),
		Psm:               wireformat.KDefaultPsm,
	}
	t.readCache.Put(header, ReadResult{Status: StatusUnknown})

	slots := map[int][]byte{0: advBytes}
	newHeader := t.handleRawGattAdvertisementsLocked(header, slots, &fastUUID, true, p)
	t.updateCommonStateLocked(newHeader, p)
}

// handleRawGattAdvertisementsLocked parses each raw payload, matches it to
// a tracked service, applies the notify/remove-header policy, and
// returns the header that now owns every successfully-parsed
// advertisement. serviceUUID is the UUID the payloads arrived under.
// When isFast is set, payloads are parsed as fast advertisements and
// matching is restricted to the fast-advertisement lane for serviceUUID;
// otherwise payloads carry a service_id_hash and matching is by that
// hash.
//
// A single call can carry multiple slots (num_slots > 1): several raw
// payloads behind the one header, possibly several of which match the
// same tracked service (legacy/v2 duplicates). Per spec.md §4.E step (b),
// only one BleAdvertisement per service id survives — the one whose
// parsed version is highest — so a service is never notified more than
// once per call.
func (t *Tracker) handleRawGattAdvertisementsLocked(header wireformat.Header, slots map[int][]byte, serviceUUID *wireformat.UUID, isFast bool, mac Peripheral) wireformat.Header {
	var fastLane *wireformat.UUID
	if isFast {
		fastLane = serviceUUID
	}

	bySvc := make(map[string]wireformat.Advertisement)
	for _, raw := range slots {
		var adv wireformat.Advertisement
		var err error
		if isFast {
			err = adv.UnmarshalBinaryFast(raw)
		} else {
			err = adv.UnmarshalBinary(raw)
		}
		if err != nil {
			t.log.WithError(err).Info("dropping malformed advertisement")
			continue
		}
		adv.IsFastAdvertisement = isFast

		serviceID, ok := t.matchServiceLocked(adv, fastLane)
		if !ok {
			t.log.WithError(ErrUnknownService).Debug("dropping advertisement for untracked service")
			continue
		}
		adv.HasServiceIDHash = true
		adv.ServiceIDHash = wireformat.HashServiceID(serviceID)

		if existing, dup := bySvc[serviceID]; !dup || adv.Version > existing.Version {
			bySvc[serviceID] = adv
		}
	}

	newHeader := header
	processed := make(map[advKey]wireformat.Advertisement)

	for serviceID, adv := range bySvc {
		key := keyOf(adv)
		oldInfo, known := t.gattAdvertisementInfos[key]

		candidate := newHeader
		if adv.Psm != wireformat.KDefaultPsm && adv.Psm != candidate.Psm {
			candidate.Psm = adv.Psm
		}

		switch {
		case !known:
			t.fireDiscovered(serviceID, mac, adv)
		case shouldNotifyForNewPsm(oldInfo.header.Psm, candidate.Psm):
			t.fireDiscovered(serviceID, mac, adv)
		case oldInfo.header.Psm != wireformat.KDefaultPsm && candidate.Psm == wireformat.KDefaultPsm:
			// Legacy advertisement arriving after an extended one: keep
			// the old (PSM-bearing) header, do not replace it.
			candidate = oldInfo.header
		case shouldRemoveHeader(oldInfo.header, candidate, t.extAdvSupport()):
			t.removeHeaderLocked(oldInfo.header)
		}

		t.gattAdvertisementInfos[key] = gattAdvertisementInfo{
			serviceID:  serviceID,
			header:     candidate,
			peripheral: oldInfo.peripheral,
			adv:        adv,
		}
		processed[key] = adv
		newHeader = candidate
	}

	if len(processed) > 0 {
		t.gattAdvertisements[newHeader] = processed
		if _, ok := t.readCache.Get(newHeader); !ok {
			t.readCache.Put(newHeader, ReadResult{Status: StatusUnknown})
		}
	}
	return newHeader
}

func (t *Tracker) fireDiscovered(serviceID string, mac Peripheral, adv wireformat.Advertisement) {
	info, ok := t.serviceIDInfos[serviceID]
	if !ok {
		return
	}
	cb := info.discoveredCB
	if cb == nil {
		return
	}
	data := append([]byte(nil), adv.Data...)
	isFast := adv.IsFastAdvertisement
	t.enqueue(func() { cb(mac, serviceID, data, isFast) })
}

// matchServiceLocked finds which tracked service this advertisement
// belongs to: by UUID on the fast path, or by comparing Hash(service_id)
// against the advertisement's own service_id_hash on the regular path.
// The hash is only ServiceIDHashLen bytes wide, so two tracked services
// can in principle collide; ties are broken arbitrarily since the
// advertisement itself carries only one version to compare against.
func (t *Tracker) matchServiceLocked(adv wireformat.Advertisement, fastUUID *wireformat.UUID) (string, bool) {
	if fastUUID != nil {
		for id, info := range t.serviceIDInfos {
			if info.fastUUID != nil && info.fastUUID.Equal(*fastUUID) {
				return id, true
			}
		}
		return "", false
	}

	for id := range t.serviceIDInfos {
		if wireformat.HashServiceID(id) == adv.ServiceIDHash {
			return id, true
		}
	}
	return "", false
}

// shouldNotifyForNewPsm is true iff old had no PSM and new introduces
// one: receiving a PSM-bearing variant of a previously PSM-less
// advertisement is a meaningful upgrade worth re-notifying.
func shouldNotifyForNewPsm(oldPsm, newPsm int32) bool {
	return oldPsm == wireformat.KDefaultPsm && newPsm != wireformat.KDefaultPsm
}

// shouldRemoveHeader is false when the headers are identical, false when
// the platform supports extended advertising and old is a real header
// while new is mocked (a regular advertisement arriving after the
// extended path already supplied the physical header), true otherwise.
func shouldRemoveHeader(old, new_ wireformat.Header, extAdvSupported bool) bool {
	if old == new_ {
		return false
	}
	if extAdvSupported && !wireformat.IsMockedAdvertisementHeader(old) && wireformat.IsMockedAdvertisementHeader(new_) {
		return false
	}
	return true
}

func (t *Tracker) removeHeaderLocked(header wireformat.Header) {
	delete(t.gattAdvertisements, header)
	t.readCache.Delete(header)
}

// updateCommonStateLocked records every advertisement currently attached
// to header as found-this-cycle in its service's lost-entity tracker,
// and stamps the peripheral that carried it.
func (t *Tracker) updateCommonStateLocked(header wireformat.Header, mac Peripheral) {
	for key := range t.gattAdvertisements[header] {
		info, ok := t.gattAdvertisementInfos[key]
		if !ok {
			continue
		}
		svc, tracked := t.serviceIDInfos[info.serviceID]
		if !tracked {
			continue
		}
		svc.lost.RecordFoundEntity(key)
		info.peripheral = mac
		t.gattAdvertisementInfos[key] = info
	}
}

// ProcessLostGattAdvertisements is invoked periodically (at scan-cycle
// boundaries) by the medium façade. For every tracked service it
// computes which advertisements dropped out this cycle, fires lost_cb
// for each, and detaches them.
func (t *Tracker) ProcessLostGattAdvertisements() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for serviceID, info := range t.serviceIDInfos {
		lostKeys := info.lost.ComputeLostEntities()
		for _, key := range lostKeys {
			gi, ok := t.gattAdvertisementInfos[key]
			if !ok {
				continue
			}
			cb := info.lostCB
			if cb != nil {
				peripheral := gi.peripheral
				t.enqueue(func() { cb(peripheral, serviceID) })
			}
			t.clearGattAdvertisementLocked(key)
		}
	}
}

// clearGattAdvertisementLocked detaches key from all bookkeeping: its
// info record, its header's advertisement set (removing the header
// entirely once empty), and the header's read-result cache entry.
func (t *Tracker) clearGattAdvertisementLocked(key advKey) {
	info, ok := t.gattAdvertisementInfos[key]
	if !ok {
		return
	}
	delete(t.gattAdvertisementInfos, key)

	set := t.gattAdvertisements[info.header]
	delete(set, key)
	if len(set) == 0 {
		delete(t.gattAdvertisements, info.header)
		t.readCache.Delete(info.header)
	}
}

// ReadCacheLen exposes the read-result cache size, used by tests
// asserting S6 (StartTracking clears the cache).
func (t *Tracker) ReadCacheLen() int {
	return t.readCache.Len()
}
