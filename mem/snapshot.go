package mem

// A Snapshot is an immutable, point-in-time copy of simulation state. It is
// returned after every mutating call and may be held by the caller while
// the engine continues to mutate its live state.
type Snapshot struct {
	ID          string `json:"simulation_id"`
	Config      Config `json:"config"`
	TotalFrames int    `json:"total_frames"`

	// Paging state.
	Frames     []Frame     `json:"memory,omitempty"`
	PageTables map[PID][]int `json:"page_table,omitempty"`

	// Segmentation state.
	Segments   []Segment `json:"segments,omitempty"`
	FreeRanges []Range   `json:"free_ranges,omitempty"`

	PageFaults     int `json:"page_faults"`
	PageHits       int `json:"page_hits"`
	MemoryAccesses int `json:"memory_accesses"`

	Operations []Operation `json:"operations"`
}

// Results carries the derived analytics of one simulation.
type Results struct {
	PageFaults        int     `json:"page_faults"`
	PageHits          int     `json:"page_hits"`
	MemoryAccesses    int     `json:"memory_accesses"`
	HitRatio          float64 `json:"hit_ratio"`
	MissRatio         float64 `json:"miss_ratio"`
	MemoryUtilization float64 `json:"memory_utilization"`
	AllocatedFrames   int     `json:"allocated_frames"`
	TotalFrames       int     `json:"total_frames"`
}
