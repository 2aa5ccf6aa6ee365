package storefront

import (
	"sync"
	"time"

	"github.com/rotisserie/eris"
)

// ErrGatewayDown is returned without touching the network while the
// breaker is open.
var ErrGatewayDown = eris.New("storefront: gateway unavailable")

// breaker trips after consecutive gateway failures so a burst of
// concurrent ingredient searches stops hammering a gateway that is down.
// After resetAfter has passed one probe request is let through; its
// outcome decides whether the circuit closes again.
type breaker struct {
	mu          sync.Mutex
	threshold   int
	resetAfter  time.Duration
	failures    int
	lastFailure time.Time
	open        bool
	probing     bool

	now func() time.Time
}

func newBreaker(threshold int, resetAfter time.Duration) *breaker {
	if threshold <= 0 {
		threshold = 5
	}
	if resetAfter <= 0 {
		resetAfter = 30 * time.Second
	}
	return &breaker{threshold: threshold, resetAfter: resetAfter, now: time.Now}
}

// allow reports whether a request may go out. While open, only the first
// caller after the reset window becomes the probe.
func (b *breaker) allow() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.open {
		return nil
	}
	if b.now().Sub(b.lastFailure) < b.resetAfter {
		return ErrGatewayDown
	}
	if b.probing {
		return ErrGatewayDown
	}
	b.probing = true
	return nil
}

// record feeds a request outcome back. Client-side errors (bad queries)
// must not be recorded; only transport failures and gateway-side statuses
// count toward the threshold.
func (b *breaker) record(failed bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !failed {
		b.failures = 0
		b.open = false
		b.probing = false
		return
	}

	b.failures++
	b.lastFailure = b.now()
	b.probing = false
	if b.failures >= b.threshold {
		b.open = true
	}
}
