package discovery

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jorka30/nearby/internal/wireformat"
)

// ReadStatus is the outcome of the most recent GATT read attempt for a
// header.
type ReadStatus int

const (
	StatusUnknown ReadStatus = iota
	StatusInProgress
	StatusSuccess
	StatusFailure
)

// KReadFailureBackoff is how long a header is skipped after a failed
// read. The source protocol does not give an exact figure (see
// DESIGN.md); this is a conservative default pending measurement.
const KReadFailureBackoff = 5 * time.Second

// ReadResult is the per-header cache entry: the last read's status and
// timestamp, plus the slot->bytes map it produced.
type ReadResult struct {
	Status    ReadStatus
	At        time.Time
	Slots     map[int][]byte
}

// ReadResultCache rate-limits GATT reads against the same header: reads
// are suppressed once a header has a Success entry, and backed off for
// KReadFailureBackoff after a Failure.
type ReadResultCache struct {
	mu      sync.Mutex
	results map[wireformat.Header]ReadResult
	log     *logrus.Entry
}

// NewReadResultCache returns an empty cache. log may be nil, in which
// case a new default logrus logger is used.
func NewReadResultCache(log *logrus.Entry) *ReadResultCache {
	if log == nil {
		log = logrus.NewEntry(logrus.New())
	}
	return &ReadResultCache{
		results: make(map[wireformat.Header]ReadResult),
		log:     log,
	}
}

// Put inserts or replaces the cache entry for header.
func (c *ReadResultCache) Put(header wireformat.Header, r ReadResult) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results[header] = r
}

// Get returns the current entry for header, if any.
func (c *ReadResultCache) Get(header wireformat.Header) (ReadResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.results[header]
	return r, ok
}

// Delete removes header's entry entirely.
func (c *ReadResultCache) Delete(header wireformat.Header) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.results, header)
}

// Clear empties the whole cache. Called by StartTracking so newly
// tracked services get a retry chance against every known header.
func (c *ReadResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = make(map[wireformat.Header]ReadResult)
}

// Len reports the number of cached headers, mostly useful in tests
// asserting StartTracking cleared the cache (S6).
func (c *ReadResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.results)
}

// ShouldSkipRead reports whether a GATT read against header should be
// suppressed right now: a set cancel flag always skips, Success entries
// are skipped until explicitly cleared, Failure entries are skipped for
// KReadFailureBackoff, and any other status (including no entry at all)
// permits a read. cancel may be nil, meaning no cancellation requested.
func (c *ReadResultCache) ShouldSkipRead(header wireformat.Header, now time.Time, cancel *CancellationFlag) bool {
	if cancel.IsCancelled() {
		c.log.WithError(ErrCancelled).Debug("skipping read: cancelled")
		return true
	}
	r, ok := c.Get(header)
	if !ok {
		return false
	}
	switch r.Status {
	case StatusSuccess:
		c.log.WithField("header", header.AdvertisementHash).Debug("skipping read: cached success")
		return true
	case StatusFailure:
		if now.Sub(r.At) < KReadFailureBackoff {
			c.log.WithField("header", header.AdvertisementHash).Debug("skipping read: backing off after failure")
			return true
		}
		return false
	default:
		return false
	}
}
