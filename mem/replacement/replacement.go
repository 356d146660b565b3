// Package replacement implements the page-replacement policies used when
// physical memory is exhausted.
package replacement

import (
	"fmt"

	"github.com/sarchlab/memsim/mem"
)

// A Policy orders the currently allocated frames and selects eviction
// victims. The order is linearized by call sequence, so victim selection is
// deterministic and reproducible.
type Policy interface {
	// OnAdmit appends a newly allocated frame to the back of the order.
	OnAdmit(frame int)

	// OnAccess notes a hit on an allocated frame. FIFO ignores the call;
	// LRU moves the frame to the back of the order.
	OnAccess(frame int)

	// SelectVictim returns the frame at the front of the order. It panics
	// if no frame is tracked; eviction is only ever invoked when the
	// frame pool is full, so an empty order is a bookkeeping bug.
	SelectVictim() int

	// OnEvict removes a frame from the order. Freeing a frame through any
	// path must be paired with this call.
	OnEvict(frame int)

	// Size returns the number of tracked frames.
	Size() int
}

// NewPolicy creates the policy for the given algorithm. It panics on an
// unknown algorithm; the configuration is validated before any policy is
// built.
func NewPolicy(algorithm mem.Algorithm) Policy {
	switch algorithm {
	case mem.AlgorithmFIFO:
		return &fifoPolicy{order: newOrder()}
	case mem.AlgorithmLRU:
		return &lruPolicy{order: newOrder()}
	default:
		panic(fmt.Sprintf("unknown replacement algorithm %q", algorithm))
	}
}
