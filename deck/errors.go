package deck

import (
	"fmt"
	"time"
)

// ParseError reports input that cannot be segmented into a shell plus an
// ordered slide sequence at all. It always aborts the operation; previously
// committed state is retained by the caller.
type ParseError struct {
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("deck parse: %s", e.Reason)
}

// InvalidRangeError reports an edit that addressed out-of-bounds or
// inverted slide indices.
type InvalidRangeError struct {
	Start int
	End   int
	Len   int
}

func (e *InvalidRangeError) Error() string {
	return fmt.Sprintf("deck edit: invalid range [%d,%d] for deck of %d slides", e.Start, e.End, e.Len)
}

// ValidationError reports that the deck resulting from an edit carried at
// least one fatal violation. The edit was rolled back; Violations holds the
// full validator output for the rejected candidate.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("deck edit: rejected with %d violation(s): %s", len(e.Violations), summarize(e.Violations))
}

func summarize(vs []Violation) string {
	if len(vs) == 0 {
		return "none"
	}
	return vs[0].String()
}

// ConcurrencyError reports that a session's mutation lock could not be
// acquired within the configured bound. The operation was not started and
// may safely be retried.
type ConcurrencyError struct {
	SessionID string
	Timeout   time.Duration
}

func (e *ConcurrencyError) Error() string {
	return fmt.Sprintf("session %s: mutation lock not acquired within %s", e.SessionID, e.Timeout)
}
