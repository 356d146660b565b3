// Package engine orchestrates one memory-management simulation at a time:
// it owns the address-space model, the running counters, and the operation
// log, and serializes all mutation behind a single lock.
package engine

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/xid"
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memsim/mem"
	"github.com/sarchlab/memsim/mem/paging"
	"github.com/sarchlab/memsim/mem/segmentation"
	"github.com/sarchlab/memsim/recording"
)

// A State is a lifecycle state of the engine.
type State int

// Engine lifecycle states.
const (
	StateUninitialized State = iota
	StateActive
)

// An Engine holds exactly one simulation instance. All state-mutating
// operations are mutually excluded; every operation path touches the
// shared frame table, so a single coarse lock suffices. Snapshots returned
// to callers are independent copies.
type Engine struct {
	mu       sync.Mutex
	logger   logrus.FieldLogger
	recorder recording.DataRecorder

	id    string
	state State
	cfg   mem.Config
	space mem.Space

	pageFaults     int
	pageHits       int
	memoryAccesses int
	operations     []mem.Operation
}

// ID returns the identifier of the running simulation, or the empty string
// while Uninitialized.
func (e *Engine) ID() string {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.id
}

// Start validates the configuration, builds a fresh address-space model,
// and transitions to Active. It fails with ErrAlreadyStarted when a
// simulation is running and with ErrInvalidConfig on bad parameters. The
// returned snapshot has all memory free and zero counters.
func (e *Engine) Start(cfg mem.Config) (mem.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateUninitialized {
		return mem.Snapshot{}, errors.Wrapf(mem.ErrAlreadyStarted,
			"simulation %s is running, reset it first", e.id)
	}

	if err := cfg.Validate(); err != nil {
		return mem.Snapshot{}, err
	}

	switch cfg.Technique {
	case mem.TechniquePaging:
		e.space = paging.NewSpace(cfg)
	case mem.TechniqueSegmentation:
		e.space = segmentation.NewSpace(cfg)
	}

	e.id = xid.New().String()
	e.cfg = cfg
	e.state = StateActive

	e.logger.WithFields(logrus.Fields{
		"simulation":  e.id,
		"technique":   cfg.Technique,
		"algorithm":   cfg.Algorithm,
		"memory_size": cfg.MemorySize,
		"page_size":   cfg.PageSize,
	}).Info("simulation started")

	e.record(simulationTable, simulationRecord{
		ID:          e.id,
		Technique:   string(cfg.Technique),
		Algorithm:   string(cfg.Algorithm),
		MemorySize:  cfg.MemorySize,
		PageSize:    cfg.PageSize,
		TotalFrames: cfg.TotalFrames(),
	})

	return e.snapshot(), nil
}

// Execute applies one operation and returns the updated snapshot. It fails
// with ErrNotStarted while Uninitialized. A failed operation leaves the
// simulation state unchanged.
func (e *Engine) Execute(req mem.OperationRequest) (mem.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return mem.Snapshot{}, errors.Wrap(mem.ErrNotStarted,
			"cannot execute operation")
	}

	var op mem.Operation
	var err error

	switch req.Operation {
	case mem.OpAllocate:
		op, err = e.allocate(req)
	case mem.OpDeallocate:
		op, err = e.deallocate(req)
	case mem.OpAccess:
		op, err = e.access(req)
	default:
		err = errors.Wrapf(mem.ErrInvalidOperation,
			"unknown operation %q", req.Operation)
	}

	if err != nil {
		return mem.Snapshot{}, err
	}

	op.Seq = len(e.operations) + 1
	e.operations = append(e.operations, op)

	e.record(operationTable, newOperationRecord(e.id, op))

	return e.snapshot(), nil
}

func (e *Engine) allocate(req mem.OperationRequest) (mem.Operation, error) {
	result, err := e.space.Allocate(req.Size)
	if err != nil {
		return mem.Operation{}, err
	}

	// Pages displaced to make room count as faults, the same as on an
	// access under pressure.
	e.pageFaults += len(result.Evicted)

	e.logger.WithFields(logrus.Fields{
		"simulation": e.id,
		"process":    result.PID,
		"size":       req.Size,
		"frames":     result.Frames,
		"evicted":    len(result.Evicted),
	}).Debug("memory allocated")

	return mem.Operation{
		Kind:         mem.OpAllocate,
		PID:          result.PID,
		Size:         req.Size,
		Frames:       result.Frames,
		Segment:      result.Segment,
		EvictedFrame: mem.NoFrame,
		LoadedFrame:  mem.NoFrame,
	}, nil
}

func (e *Engine) deallocate(req mem.OperationRequest) (mem.Operation, error) {
	result, err := e.space.DeallocateAt(req.Address)
	if err != nil {
		return mem.Operation{}, err
	}

	op := mem.Operation{
		Kind:         mem.OpDeallocate,
		PID:          result.PID,
		Address:      req.Address,
		Frames:       result.Frames,
		EvictedFrame: mem.NoFrame,
		LoadedFrame:  mem.NoFrame,
	}

	if len(result.Segments) > 0 {
		op.Segment = &result.Segments[0]
	}

	e.logger.WithFields(logrus.Fields{
		"simulation": e.id,
		"process":    result.PID,
		"frames":     result.Frames,
	}).Debug("memory deallocated")

	return op, nil
}

func (e *Engine) access(req mem.OperationRequest) (mem.Operation, error) {
	result, err := e.space.Access(req.PID, req.Address)
	if err != nil {
		return mem.Operation{}, err
	}

	e.memoryAccesses++

	op := mem.Operation{
		Kind:         mem.OpAccess,
		PID:          result.PID,
		Address:      req.Address,
		Result:       result.Outcome,
		EvictedFrame: result.EvictedFrame,
		LoadedFrame:  mem.NoFrame,
	}

	if result.Outcome == mem.AccessHit {
		e.pageHits++
	} else {
		e.pageFaults++
		op.LoadedFrame = result.Frame
	}

	e.logger.WithFields(logrus.Fields{
		"simulation": e.id,
		"address":    req.Address,
		"result":     result.Outcome,
	}).Debug("memory accessed")

	return op, nil
}

// Reset discards all simulation state and returns to Uninitialized. It is
// valid from any state and always succeeds; calling it twice in a row is
// the same as calling it once.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.id != "" {
		e.logger.WithField("simulation", e.id).Info("simulation reset")
	}

	e.id = ""
	e.state = StateUninitialized
	e.cfg = mem.Config{}
	e.space = nil
	e.pageFaults = 0
	e.pageHits = 0
	e.memoryAccesses = 0
	e.operations = nil
}

// Snapshot returns a consistent copy of the current simulation state. It
// fails with ErrNotStarted while Uninitialized.
func (e *Engine) Snapshot() (mem.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return mem.Snapshot{}, errors.Wrap(mem.ErrNotStarted,
			"no state to snapshot")
	}

	return e.snapshot(), nil
}

// Results returns the derived analytics of the running simulation.
func (e *Engine) Results() (mem.Results, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateActive {
		return mem.Results{}, errors.Wrap(mem.ErrNotStarted,
			"no results to report")
	}

	results := mem.Results{
		PageFaults:     e.pageFaults,
		PageHits:       e.pageHits,
		MemoryAccesses: e.memoryAccesses,
		TotalFrames:    e.cfg.TotalFrames(),
	}

	if e.memoryAccesses > 0 {
		results.HitRatio = float64(e.pageHits) / float64(e.memoryAccesses)
		results.MissRatio = float64(e.pageFaults) / float64(e.memoryAccesses)
	}

	state := e.space.State()
	if state.Frames != nil {
		for _, f := range state.Frames {
			if f.Status == mem.FrameAllocated {
				results.AllocatedFrames++
			}
		}

		results.MemoryUtilization =
			float64(results.AllocatedFrames) / float64(results.TotalFrames)

		return results, nil
	}

	used := e.cfg.MemorySize
	for _, r := range state.FreeRanges {
		used -= r.Length
	}
	results.MemoryUtilization = float64(used) / float64(e.cfg.MemorySize)

	return results, nil
}

// snapshot must be called with the lock held.
func (e *Engine) snapshot() mem.Snapshot {
	state := e.space.State()

	operations := make([]mem.Operation, len(e.operations))
	copy(operations, e.operations)

	return mem.Snapshot{
		ID:             e.id,
		Config:         e.cfg,
		TotalFrames:    e.cfg.TotalFrames(),
		Frames:         state.Frames,
		PageTables:     state.PageTables,
		Segments:       state.Segments,
		FreeRanges:     state.FreeRanges,
		PageFaults:     e.pageFaults,
		PageHits:       e.pageHits,
		MemoryAccesses: e.memoryAccesses,
		Operations:     operations,
	}
}

func (e *Engine) record(table string, entry any) {
	if e.recorder == nil {
		return
	}

	e.recorder.InsertData(table, entry)
}

// String returns a readable name for the state.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateActive:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}
