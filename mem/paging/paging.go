// Package paging implements the paged address-space model: fixed-size
// pages mapped onto physical frames, with demand admission and policy-driven
// eviction under memory pressure.
package paging

import (
	"sort"

	"github.com/pkg/errors"

	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/frames"
	"github.com/sarchlab/memsim/mem/replacement"
)

// NewSpace creates a paging model for the given configuration. The
// configuration must already be validated.
func NewSpace(cfg mem.Config) mem.Space {
	policy := replacement.NewPolicy(cfg.Algorithm)

	return &spaceImpl{
		cfg:        cfg,
		policy:     policy,
		allocator:  frames.NewAllocator(cfg.TotalFrames(), policy),
		pageTables: make(map[mem.PID]map[int]int),
		nextPID:    1,
	}
}

type spaceImpl struct {
	cfg       mem.Config
	allocator frames.Allocator
	policy    replacement.Policy

	// pageTables maps pid -> logical page number -> frame index.
	pageTables map[mem.PID]map[int]int
	nextPID    mem.PID
}

func (s *spaceImpl) Allocate(size int) (mem.AllocateResult, error) {
	if size <= 0 {
		return mem.AllocateResult{}, errors.Wrapf(mem.ErrInvalidSize,
			"allocation size must be positive, got %d", size)
	}

	pages := (size + s.cfg.PageSize - 1) / s.cfg.PageSize
	if pages > s.cfg.TotalFrames() {
		return mem.AllocateResult{}, errors.Wrapf(mem.ErrInsufficientMemory,
			"%d bytes need %d frames, only %d exist",
			size, pages, s.cfg.TotalFrames())
	}

	pid := s.nextPID
	s.nextPID++

	result := mem.AllocateResult{PID: pid}
	for page := 0; page < pages; page++ {
		frame, evicted := s.admitPage(pid, page)
		result.Frames = append(result.Frames, frame)

		if evicted != nil {
			result.Evicted = append(result.Evicted, *evicted)
		}
	}

	return result, nil
}

// admitPage brings one logical page into memory, evicting the policy
// victim when no frame is free, and maps it for pid.
func (s *spaceImpl) admitPage(
	pid mem.PID,
	page int,
) (frame int, evicted *mem.EvictedPage) {
	if s.allocator.FreeCount() == 0 {
		evicted = s.evictVictim()
	}

	allocated, err := s.allocator.Allocate(1)
	if err != nil {
		panic(err)
	}

	frame = allocated[0]
	s.allocator.Assign(frame, frames.Owner{PID: pid, PageNumber: page})
	s.mapPage(pid, page, frame)

	return frame, evicted
}

func (s *spaceImpl) evictVictim() *mem.EvictedPage {
	victim := s.policy.SelectVictim()

	owner, err := s.allocator.Evict(victim)
	if err != nil {
		panic(err)
	}

	s.unmapPage(owner.PID, owner.PageNumber)

	return &mem.EvictedPage{
		Frame:      victim,
		PID:        owner.PID,
		PageNumber: owner.PageNumber,
	}
}

func (s *spaceImpl) DeallocateAt(address int) (mem.DeallocateResult, error) {
	if address < 0 || address >= s.cfg.MemorySize {
		return mem.DeallocateResult{}, errors.Wrapf(mem.ErrOutOfRange,
			"address %d outside [0, %d)", address, s.cfg.MemorySize)
	}

	owner, found := s.allocator.OwnerOf(address / s.cfg.PageSize)
	if !found {
		return mem.DeallocateResult{}, errors.Wrapf(mem.ErrProcessNotFound,
			"no process owns address %d", address)
	}

	return s.deallocate(owner.PID)
}

func (s *spaceImpl) deallocate(pid mem.PID) (mem.DeallocateResult, error) {
	table, found := s.pageTables[pid]
	if !found {
		return mem.DeallocateResult{}, errors.Wrapf(mem.ErrProcessNotFound,
			"process %d owns no mappings", pid)
	}

	owned := make([]int, 0, len(table))
	for _, frame := range table {
		owned = append(owned, frame)
	}
	sort.Ints(owned)

	if err := s.allocator.Free(owned); err != nil {
		panic(err)
	}

	delete(s.pageTables, pid)

	return mem.DeallocateResult{PID: pid, Frames: owned}, nil
}

func (s *spaceImpl) Access(
	pid mem.PID,
	address int,
) (mem.AccessResult, error) {
	if address < 0 || address >= s.cfg.MemorySize {
		return mem.AccessResult{}, errors.Wrapf(mem.ErrOutOfRange,
			"address %d outside [0, %d)", address, s.cfg.MemorySize)
	}

	page := address / s.cfg.PageSize

	if pid != 0 {
		return s.accessAs(pid, page), nil
	}

	return s.accessAnonymous(page), nil
}

// accessAs resolves the access against pid's own page table.
func (s *spaceImpl) accessAs(pid mem.PID, page int) mem.AccessResult {
	if frame, mapped := s.pageTables[pid][page]; mapped {
		s.policy.OnAccess(frame)

		return mem.AccessResult{
			Outcome:      mem.AccessHit,
			PID:          pid,
			PageNumber:   page,
			Frame:        frame,
			EvictedFrame: mem.NoFrame,
		}
	}

	return s.faultIn(pid, page)
}

// accessAnonymous resolves ownership from the touched frame: the request
// named no process, so a resident frame at the page's position counts as a
// hit for whichever process holds it, and a fault loads the page for a
// newly created process. The mode is positional both ways: a fault claims
// the frame at the page's own index, so re-accessing the address hits.
func (s *spaceImpl) accessAnonymous(page int) mem.AccessResult {
	if owner, found := s.allocator.OwnerOf(page); found {
		s.policy.OnAccess(page)

		return mem.AccessResult{
			Outcome:      mem.AccessHit,
			PID:          owner.PID,
			PageNumber:   owner.PageNumber,
			Frame:        page,
			EvictedFrame: mem.NoFrame,
		}
	}

	pid := s.nextPID
	s.nextPID++

	// The miss check above saw the frame free, so the claim cannot fail.
	if err := s.allocator.Claim(page); err != nil {
		panic(err)
	}

	s.allocator.Assign(page, frames.Owner{PID: pid, PageNumber: page})
	s.mapPage(pid, page, page)

	return mem.AccessResult{
		Outcome:      mem.AccessFault,
		PID:          pid,
		PageNumber:   page,
		Frame:        page,
		EvictedFrame: mem.NoFrame,
	}
}

func (s *spaceImpl) faultIn(pid mem.PID, page int) mem.AccessResult {
	// Caller-supplied IDs join the same sequence, so later allocations
	// never mint a PID that already owns mappings.
	if pid >= s.nextPID {
		s.nextPID = pid + 1
	}

	frame, evicted := s.admitPage(pid, page)

	result := mem.AccessResult{
		Outcome:      mem.AccessFault,
		PID:          pid,
		PageNumber:   page,
		Frame:        frame,
		EvictedFrame: mem.NoFrame,
	}

	if evicted != nil {
		result.EvictedFrame = evicted.Frame
		result.Evicted = evicted
	}

	return result
}

func (s *spaceImpl) mapPage(pid mem.PID, page, frame int) {
	table, found := s.pageTables[pid]
	if !found {
		table = make(map[int]int)
		s.pageTables[pid] = table
	}

	table[page] = frame
}

func (s *spaceImpl) unmapPage(pid mem.PID, page int) {
	table, found := s.pageTables[pid]
	if !found {
		return
	}

	delete(table, page)
	if len(table) == 0 {
		delete(s.pageTables, pid)
	}
}

func (s *spaceImpl) State() mem.SpaceState {
	tables := make(map[mem.PID][]int, len(s.pageTables))
	for pid, table := range s.pageTables {
		owned := make([]int, 0, len(table))
		for _, frame := range table {
			owned = append(owned, frame)
		}
		sort.Ints(owned)

		tables[pid] = owned
	}

	return mem.SpaceState{
		Frames:     s.allocator.Frames(),
		PageTables: tables,
	}
}
