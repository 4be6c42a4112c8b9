package discovery

import "errors"

// ErrUnknownService names the drop that happens when a parsed
// advertisement cannot be matched to any tracked service id (spec.md §7
// UnknownService). The advertisement is still dropped silently to the
// caller; this sentinel only gives that drop a name for structured
// logging.
var ErrUnknownService = errors.New("discovery: advertisement matches no tracked service")

// ErrCancelled is logged when a GATT-read decision point observes a set
// CancellationFlag (spec.md §7 Cancelled).
var ErrCancelled = errors.New("discovery: read cancelled")
