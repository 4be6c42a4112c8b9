package discovery

import (
	"testing"
	"time"

	"github.com/jorka30/nearby/internal/wireformat"
)

func testHeader(slot byte) wireformat.Header {
	h := wireformat.Header{Version: wireformat.V2, NumSlots: 1, Psm: wireformat.KDefaultPsm}
	h.AdvertisementHash[0] = slot
	return h
}

func TestReadResultCacheSuccessSuppressesReads(t *testing.T) {
	c := NewReadResultCache(nil)
	h := testHeader(1)
	c.Put(h, ReadResult{Status: StatusSuccess, At: time.Now()})
	if !c.ShouldSkipRead(h, time.Now(), nil) {
		t.Errorf("success entry should suppress reads")
	}
}

func TestReadResultCacheCancelledAlwaysSkips(t *testing.T) {
	c := NewReadResultCache(nil)
	h := testHeader(4)
	cancel := NewCancellationFlag()
	cancel.Cancel()
	if !c.ShouldSkipRead(h, time.Now(), cancel) {
		t.Errorf("cancelled flag should suppress reads even for an unknown header")
	}
}

func TestReadResultCacheFailureBacksOff(t *testing.T) {
	c := NewReadResultCache(nil)
	h := testHeader(2)
	now := time.Now()
	c.Put(h, ReadResult{Status: StatusFailure, At: now})
	if !c.ShouldSkipRead(h, now.Add(time.Second), nil) {
		t.Errorf("failure entry should suppress reads within the backoff window")
	}
	if c.ShouldSkipRead(h, now.Add(KReadFailureBackoff+time.Second), nil) {
		t.Errorf("failure entry should allow reads after the backoff window")
	}
}

func TestReadResultCacheUnknownHeaderAllowsRead(t *testing.T) {
	c := NewReadResultCache(nil)
	if c.ShouldSkipRead(testHeader(3), time.Now(), nil) {
		t.Errorf("unknown header should not suppress reads")
	}
}

func TestReadResultCacheClear(t *testing.T) {
	c := NewReadResultCache(nil)
	c.Put(testHeader(1), ReadResult{Status: StatusSuccess})
	c.Put(testHeader(2), ReadResult{Status: StatusFailure})
	if c.Len() != 2 {
		t.Fatalf("got len %d, want 2", c.Len())
	}
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Clear did not empty the cache, got len %d", c.Len())
	}
}

func TestReadResultCacheDelete(t *testing.T) {
	c := NewReadResultCache(nil)
	h := testHeader(1)
	c.Put(h, ReadResult{Status: StatusSuccess})
	c.Delete(h)
	if _, ok := c.Get(h); ok {
		t.Errorf("entry should be gone after Delete")
	}
}
