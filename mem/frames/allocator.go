// Package frames owns the pool of physical frames: free/allocated status
// and frame-to-process ownership.
package frames

import (
	"github.com/pkg/errors"

	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/replacement"
)

// An Owner identifies the process and logical page mapped into a frame.
type Owner struct {
	PID        mem.PID
	PageNumber int
}

// An Allocator manages a fixed-size pool of frames. Every allocation,
// free, and eviction keeps the replacement policy's order consistent with
// the allocated set. An Allocator is not safe for concurrent use.
type Allocator interface {
	// Allocate reserves count free frames, lowest index first, and admits
	// them to the replacement order. It fails with ErrInsufficientMemory
	// if fewer than count frames are free, without mutating anything.
	Allocate(count int) ([]int, error)

	// Claim reserves one specific free frame and admits it to the
	// replacement order. It fails with ErrInvalidFrame if the index is
	// out of range or the frame is not free.
	Claim(frame int) error

	// Assign records the owner of an allocated frame.
	Assign(frame int, owner Owner)

	// Free releases allocated frames, clearing ownership and removing
	// them from the replacement order. It fails with ErrInvalidFrame if
	// any index is out of range or already free; no frame is freed in
	// that case.
	Free(frames []int) error

	// Evict forcibly frees one allocated frame and returns its prior
	// owner for page-table bookkeeping.
	Evict(frame int) (Owner, error)

	// OwnerOf returns the owner of a frame, and false if the frame is
	// free or out of range.
	OwnerOf(frame int) (Owner, bool)

	// FreeCount returns the number of free frames.
	FreeCount() int

	// Frames returns a copy of the frame table.
	Frames() []mem.Frame
}

// NewAllocator creates an allocator over total frames, all initially free.
// Frame state transitions are reported to the given policy.
func NewAllocator(total int, policy replacement.Policy) Allocator {
	a := &allocatorImpl{
		table:  make([]mem.Frame, total),
		policy: policy,
		free:   total,
	}

	for i := range a.table {
		a.table[i] = mem.Frame{Index: i, Status: mem.FrameFree}
	}

	return a
}

type allocatorImpl struct {
	table  []mem.Frame
	policy replacement.Policy
	free   int
}

func (a *allocatorImpl) Allocate(count int) ([]int, error) {
	if count > a.free {
		return nil, errors.Wrapf(mem.ErrInsufficientMemory,
			"need %d frames, %d free", count, a.free)
	}

	allocated := make([]int, 0, count)
	for i := range a.table {
		if len(allocated) == count {
			break
		}

		if a.table[i].Status != mem.FrameFree {
			continue
		}

		a.table[i].Status = mem.FrameAllocated
		a.policy.OnAdmit(i)
		allocated = append(allocated, i)
	}

	a.free -= count

	return allocated, nil
}

func (a *allocatorImpl) Claim(frame int) error {
	if frame < 0 || frame >= len(a.table) {
		return errors.Wrapf(mem.ErrInvalidFrame,
			"frame %d out of range [0, %d)", frame, len(a.table))
	}

	if a.table[frame].Status != mem.FrameFree {
		return errors.Wrapf(mem.ErrInvalidFrame,
			"frame %d is already allocated", frame)
	}

	a.table[frame].Status = mem.FrameAllocated
	a.policy.OnAdmit(frame)
	a.free--

	return nil
}

func (a *allocatorImpl) Assign(frame int, owner Owner) {
	a.frameMustBeAllocated(frame)

	a.table[frame].PID = owner.PID
	a.table[frame].PageNumber = owner.PageNumber
}

func (a *allocatorImpl) Free(frames []int) error {
	for _, f := range frames {
		if f < 0 || f >= len(a.table) {
			return errors.Wrapf(mem.ErrInvalidFrame,
				"frame %d out of range [0, %d)", f, len(a.table))
		}

		if a.table[f].Status != mem.FrameAllocated {
			return errors.Wrapf(mem.ErrInvalidFrame,
				"frame %d is already free", f)
		}
	}

	for _, f := range frames {
		a.release(f)
	}

	return nil
}

func (a *allocatorImpl) Evict(frame int) (Owner, error) {
	if frame < 0 || frame >= len(a.table) {
		return Owner{}, errors.Wrapf(mem.ErrInvalidFrame,
			"frame %d out of range [0, %d)", frame, len(a.table))
	}

	if a.table[frame].Status != mem.FrameAllocated {
		return Owner{}, errors.Wrapf(mem.ErrInvalidFrame,
			"cannot evict free frame %d", frame)
	}

	owner := Owner{
		PID:        a.table[frame].PID,
		PageNumber: a.table[frame].PageNumber,
	}

	a.release(frame)

	return owner, nil
}

func (a *allocatorImpl) release(frame int) {
	a.table[frame] = mem.Frame{Index: frame, Status: mem.FrameFree}
	a.policy.OnEvict(frame)
	a.free++
}

func (a *allocatorImpl) OwnerOf(frame int) (Owner, bool) {
	if frame < 0 || frame >= len(a.table) {
		return Owner{}, false
	}

	if a.table[frame].Status != mem.FrameAllocated {
		return Owner{}, false
	}

	return Owner{
		PID:        a.table[frame].PID,
		PageNumber: a.table[frame].PageNumber,
	}, true
}

func (a *allocatorImpl) FreeCount() int {
	return a.free
}

func (a *allocatorImpl) Frames() []mem.Frame {
	table := make([]mem.Frame, len(a.table))
	copy(table, a.table)

	return table
}

func (a *allocatorImpl) frameMustBeAllocated(frame int) {
	if frame < 0 || frame >= len(a.table) ||
		a.table[frame].Status != mem.FrameAllocated {
		panic("frame is not allocated")
	}
}
