package mem

// An EvictedPage records one page-table mapping destroyed by an eviction.
type EvictedPage struct {
	Frame      int `json:"frame"`
	PID        PID `json:"process_id"`
	PageNumber int `json:"page_number"`
}

// An AllocateResult describes the outcome of one allocation. Frames is set
// in paging mode, Segment in segmentation mode.
type AllocateResult struct {
	PID     PID
	Frames  []int
	Segment *Segment
	Evicted []EvictedPage
}

// A DeallocateResult describes the outcome of freeing a process.
type DeallocateResult struct {
	PID      PID
	Frames   []int
	Segments []Segment
}

// An AccessResult describes the outcome of one memory access. Frame is the
// frame that holds the touched page after the access completes, or NoFrame
// in segmentation mode. EvictedFrame is NoFrame unless handling the fault
// displaced a resident page.
type AccessResult struct {
	Outcome      AccessOutcome
	PID          PID
	PageNumber   int
	Frame        int
	EvictedFrame int
	Evicted      *EvictedPage
}

// A SpaceState is a copy of an address-space model's bookkeeping, taken for
// snapshots. Only the fields relevant to the model's technique are set.
type SpaceState struct {
	Frames     []Frame
	PageTables map[PID][]int
	Segments   []Segment
	FreeRanges []Range
}

// A Space is an address-space model: it interprets allocate, deallocate and
// access operations against the simulated memory. A Space is selected once
// at start time from the configured technique and is not safe for
// concurrent use; the engine serializes all calls.
type Space interface {
	// Allocate reserves size bytes for a newly created process and
	// returns the identity and placement of the allocation. It fails with
	// ErrInvalidSize if size is not positive and with
	// ErrInsufficientMemory if the request cannot be satisfied.
	Allocate(size int) (AllocateResult, error)

	// DeallocateAt frees the whole process that owns the given address.
	// It fails with ErrOutOfRange for addresses outside memory and with
	// ErrProcessNotFound if no process owns the address.
	DeallocateAt(address int) (DeallocateResult, error)

	// Access simulates touching one address, deciding hit or fault. pid
	// may be zero, in which case ownership is resolved from the touched
	// location. It fails with ErrOutOfRange for addresses outside memory.
	Access(pid PID, address int) (AccessResult, error)

	// State returns an independent copy of the model's bookkeeping.
	State() SpaceState
}
