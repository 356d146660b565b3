// Package segmentation implements the segmented address-space model:
// variable-length contiguous regions placed by first fit, with free-range
// coalescing on deallocation.
package segmentation

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sarchlab/memsim/mem"
)

// NewSpace creates a segmentation model for the given configuration. The
// configuration must already be validated.
func NewSpace(cfg mem.Config) mem.Space {
	return &spaceImpl{
		cfg:        cfg,
		freeRanges: []mem.Range{{Base: 0, Length: cfg.MemorySize}},
		nextPID:    1,
	}
}

type spaceImpl struct {
	cfg mem.Config

	// segments is kept sorted by base address; segments never overlap.
	segments []mem.Segment

	// freeRanges is the complement of segments, sorted by base address,
	// with adjacent ranges always coalesced.
	freeRanges []mem.Range

	nextPID mem.PID
}

func (s *spaceImpl) Allocate(size int) (mem.AllocateResult, error) {
	if size <= 0 {
		return mem.AllocateResult{}, errors.Wrapf(mem.ErrInvalidSize,
			"allocation size must be positive, got %d", size)
	}

	// First fit, ascending base order. No automatic compaction: if no
	// single range is large enough the allocation fails even when the
	// total free space would suffice.
	slot := -1
	for i, r := range s.freeRanges {
		if r.Length >= size {
			slot = i
			break
		}
	}

	if slot < 0 {
		return mem.AllocateResult{}, errors.Wrapf(mem.ErrInsufficientMemory,
			"no free range can hold %d bytes", size)
	}

	pid := s.nextPID
	s.nextPID++

	segment := mem.Segment{
		PID:    pid,
		Base:   s.freeRanges[slot].Base,
		Length: size,
	}

	s.carve(slot, size)
	s.insertSegment(segment)

	return mem.AllocateResult{PID: pid, Segment: &segment}, nil
}

// carve shrinks or removes the free range at index i after taking size
// bytes from its base.
func (s *spaceImpl) carve(i, size int) {
	if s.freeRanges[i].Length == size {
		s.freeRanges = append(s.freeRanges[:i], s.freeRanges[i+1:]...)
		return
	}

	s.freeRanges[i].Base += size
	s.freeRanges[i].Length -= size
}

func (s *spaceImpl) insertSegment(segment mem.Segment) {
	s.segments = append(s.segments, segment)
	sort.Slice(s.segments, func(i, j int) bool {
		return s.segments[i].Base < s.segments[j].Base
	})
}

func (s *spaceImpl) DeallocateAt(address int) (mem.DeallocateResult, error) {
	if address < 0 || address >= s.cfg.MemorySize {
		return mem.DeallocateResult{}, errors.Wrapf(mem.ErrOutOfRange,
			"address %d outside [0, %d)", address, s.cfg.MemorySize)
	}

	owner, found := s.segmentAt(address)
	if !found {
		return mem.DeallocateResult{}, errors.Wrapf(mem.ErrProcessNotFound,
			"no segment contains address %d", address)
	}

	result := mem.DeallocateResult{PID: owner.PID}
	kept := s.segments[:0]
	for _, segment := range s.segments {
		if segment.PID != owner.PID {
			kept = append(kept, segment)
			continue
		}

		result.Segments = append(result.Segments, segment)
		s.freeRange(mem.Range{Base: segment.Base, Length: segment.Length})
	}

	s.segments = kept

	return result, nil
}

// freeRange returns a range to the free list, merging it with any adjacent
// free ranges so fragmentation does not accumulate.
func (s *spaceImpl) freeRange(r mem.Range) {
	s.freeRanges = append(s.freeRanges, r)
	sort.Slice(s.freeRanges, func(i, j int) bool {
		return s.freeRanges[i].Base < s.freeRanges[j].Base
	})

	coalesced := s.freeRanges[:1]
	for _, next := range s.freeRanges[1:] {
		last := &coalesced[len(coalesced)-1]
		if last.End() == next.Base {
			last.Length += next.Length
			continue
		}

		coalesced = append(coalesced, next)
	}

	s.freeRanges = coalesced
}

func (s *spaceImpl) Access(
	_ mem.PID,
	address int,
) (mem.AccessResult, error) {
	if address < 0 || address >= s.cfg.MemorySize {
		return mem.AccessResult{}, errors.Wrapf(mem.ErrOutOfRange,
			"address %d outside [0, %d)", address, s.cfg.MemorySize)
	}

	// Faults here indicate unmapped access, not capacity pressure;
	// segments are never reclaimed automatically, so nothing is evicted.
	segment, found := s.segmentAt(address)
	if !found {
		return mem.AccessResult{
			Outcome:      mem.AccessFault,
			Frame:        mem.NoFrame,
			EvictedFrame: mem.NoFrame,
		}, nil
	}

	return mem.AccessResult{
		Outcome:      mem.AccessHit,
		PID:          segment.PID,
		Frame:        mem.NoFrame,
		EvictedFrame: mem.NoFrame,
	}, nil
}

func (s *spaceImpl) segmentAt(address int) (mem.Segment, bool) {
	for _, segment := range s.segments {
		if segment.Contains(address) {
			return segment, true
		}
	}

	return mem.Segment{}, false
}

func (s *spaceImpl) State() mem.SpaceState {
	segments := make([]mem.Segment, len(s.segments))
	copy(segments, s.segments)

	freeRanges := make([]mem.Range, len(s.freeRanges))
	copy(freeRanges, s.freeRanges)

	return mem.SpaceState{
		Segments:   segments,
		FreeRanges: freeRanges,
	}
}
