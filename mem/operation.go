package mem

// An OpKind names an operation the simulation can apply.
type OpKind string

// Operation kinds.
const (
	OpAllocate   OpKind = "allocate"
	OpDeallocate OpKind = "deallocate"
	OpAccess     OpKind = "access"
)

// An AccessOutcome is the result of one memory access.
type AccessOutcome string

// Access outcomes.
const (
	AccessHit   AccessOutcome = "hit"
	AccessFault AccessOutcome = "fault"
)

// NoFrame marks the absence of a frame index in an operation record.
const NoFrame = -1

// An OperationRequest is one deserialized step request from the API layer.
// Size applies to allocate, Address to deallocate and access. PID is
// optional on access; when zero, the access resolves the owning process
// from the touched frame.
type OperationRequest struct {
	Operation OpKind `json:"operation"`
	Size      int    `json:"size,omitempty"`
	Address   int    `json:"address,omitempty"`
	PID       PID    `json:"process_id,omitempty"`
}

// An Operation is one applied step, recorded in request order. Records are
// never mutated once appended.
type Operation struct {
	Seq  int    `json:"seq"`
	Kind OpKind `json:"type"`
	PID  PID    `json:"process_id,omitempty"`

	// Allocate / deallocate fields.
	Size    int      `json:"size,omitempty"`
	Frames  []int    `json:"frames,omitempty"`
	Segment *Segment `json:"segment,omitempty"`

	// Access fields. EvictedFrame and LoadedFrame are NoFrame when the
	// access did not evict or load anything.
	Address      int           `json:"address"`
	Result       AccessOutcome `json:"result,omitempty"`
	EvictedFrame int           `json:"evicted_frame"`
	LoadedFrame  int           `json:"loaded_frame"`
}
