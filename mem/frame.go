package mem

// PID identifies a simulated process.
type PID uint32

// A FrameStatus tells whether a physical frame is in use.
type FrameStatus string

// Frame statuses.
const (
	FrameFree      FrameStatus = "free"
	FrameAllocated FrameStatus = "allocated"
)

// A Frame is one fixed-size unit of physical memory. When allocated, it
// records the owning process and the logical page mapped into it.
type Frame struct {
	Index      int         `json:"index"`
	Status     FrameStatus `json:"status"`
	PID        PID         `json:"process_id,omitempty"`
	PageNumber int         `json:"page_number,omitempty"`
}

// A Segment is a variable-length contiguous region of memory, used in
// segmentation mode. Segments never overlap.
type Segment struct {
	PID    PID `json:"process_id"`
	Base   int `json:"base"`
	Length int `json:"length"`
}

// End returns the first address past the segment.
func (s Segment) End() int {
	return s.Base + s.Length
}

// Contains reports whether addr falls within the segment.
func (s Segment) Contains(addr int) bool {
	return addr >= s.Base && addr < s.End()
}

// A Range is a contiguous span of free address space in segmentation mode.
type Range struct {
	Base   int `json:"base"`
	Length int `json:"length"`
}

// End returns the first address past the range.
func (r Range) End() int {
	return r.Base + r.Length
}
