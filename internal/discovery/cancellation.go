package discovery

import "sync/atomic"

// CancellationFlag accompanies a long-running GATT-read operation (spec.md
// §5 "Suspension points", §7 Cancelled). Once Cancel is called, any
// subsequent GATT-read decision point observes it and returns promptly
// without side effects. The zero value is unset; a nil *CancellationFlag
// is treated as permanently unset so callers may pass nil to mean "no
// cancellation requested".
type CancellationFlag struct {
	cancelled int32
}

// NewCancellationFlag returns an unset flag.
func NewCancellationFlag() *CancellationFlag { return &CancellationFlag{} }

// Cancel marks the flag set. Safe to call more than once and from any
// goroutine.
func (c *CancellationFlag) Cancel() {
	if c == nil {
		return
	}
	atomic.StoreInt32(&c.cancelled, 1)
}

// IsCancelled reports whether Cancel has been called.
func (c *CancellationFlag) IsCancelled() bool {
	if c == nil {
		return false
	}
	return atomic.LoadInt32(&c.cancelled) == 1
}
