package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sarchlab/memsim/mem"
)

// recentOperations is how many log entries the state payload carries; the
// client only renders the most recent ones. The engine keeps the full log.
const recentOperations = 10

type startRequest struct {
	Technique  mem.Technique `json:"technique"`
	MemorySize int           `json:"memory_size"`
	PageSize   int           `json:"page_size"`
	Algorithm  mem.Algorithm `json:"algorithm"`
}

func (s *Server) startSimulation(w http.ResponseWriter, r *http.Request) {
	req := startRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest,
			"Invalid request format. Expected JSON.")
		return
	}

	cfg := s.configFromRequest(req)

	if cfg.MemorySize > maxMemorySize {
		writeError(w, http.StatusBadRequest,
			"Parameter validation error: memory size too large")
		return
	}

	if cfg.PageSize > maxPageSize {
		writeError(w, http.StatusBadRequest,
			"Parameter validation error: page size too large")
		return
	}

	snapshot, err := s.start(cfg)
	if err != nil {
		s.logger.WithError(err).Error("failed to start simulation")
		writeEngineError(w, err)
		return
	}

	s.logger.WithFields(map[string]any{
		"technique":   cfg.Technique,
		"memory_size": cfg.MemorySize,
		"page_size":   cfg.PageSize,
		"algorithm":   cfg.Algorithm,
	}).Info("simulation started")

	writeSuccess(w, map[string]any{
		"message":       "Simulation started successfully",
		"initial_state": statePayload(snapshot),
	})
}

func (s *Server) configFromRequest(req startRequest) mem.Config {
	cfg := mem.Config{
		Technique:  req.Technique,
		MemorySize: req.MemorySize,
		PageSize:   req.PageSize,
		Algorithm:  req.Algorithm,
	}

	if cfg.Technique == "" {
		cfg.Technique = mem.TechniquePaging
	}
	if cfg.MemorySize == 0 {
		cfg.MemorySize = defaultMemorySize
	}
	if cfg.PageSize == 0 {
		cfg.PageSize = defaultPageSize
	}
	if cfg.Algorithm == "" {
		cfg.Algorithm = mem.AlgorithmFIFO
	}

	return cfg
}

// start restarts the engine when a simulation is already running; the
// client treats starting as "begin over".
func (s *Server) start(cfg mem.Config) (mem.Snapshot, error) {
	snapshot, err := s.simulator.Start(cfg)
	if errors.Is(err, mem.ErrAlreadyStarted) {
		s.simulator.Reset()
		snapshot, err = s.simulator.Start(cfg)
	}

	return snapshot, err
}

type stepRequest struct {
	Operation mem.OpKind `json:"operation"`
	Size      *int       `json:"size"`
	Address   *int       `json:"address"`
	PID       uint32     `json:"process_id"`
}

func (s *Server) nextStep(w http.ResponseWriter, r *http.Request) {
	req := stepRequest{}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest,
			"Invalid request: No JSON data provided")
		return
	}

	opReq, ok := s.resolveStepRequest(w, req)
	if !ok {
		return
	}

	snapshot, err := s.simulator.Execute(opReq)
	if err != nil {
		s.logger.WithError(err).
			WithField("operation", opReq.Operation).
			Error("operation failed")
		writeEngineError(w, err)
		return
	}

	writeSuccess(w, map[string]any{"state": statePayload(snapshot)})
}

// resolveStepRequest fills the defaults the client relies on: a missing
// operation means allocate, a missing size means one page, and a missing
// deallocation address means the first allocated region.
func (s *Server) resolveStepRequest(
	w http.ResponseWriter,
	req stepRequest,
) (mem.OperationRequest, bool) {
	opReq := mem.OperationRequest{
		Operation: req.Operation,
		PID:       mem.PID(req.PID),
	}

	if opReq.Operation == "" {
		opReq.Operation = mem.OpAllocate
		s.logger.Warn("no operation specified, defaulting to allocate")
	}

	switch opReq.Operation {
	case mem.OpAllocate:
		opReq.Size = defaultAllocSize
		if req.Size != nil && *req.Size > 0 {
			opReq.Size = *req.Size
		}

	case mem.OpDeallocate:
		if req.Address != nil {
			opReq.Address = *req.Address
			break
		}

		address, found := s.firstAllocatedAddress()
		if !found {
			writeError(w, http.StatusBadRequest,
				"No memory allocated to deallocate")
			return mem.OperationRequest{}, false
		}

		s.logger.WithField("address", address).
			Warn("no address specified for deallocation, using first allocated")
		opReq.Address = address

	case mem.OpAccess:
		if req.Address != nil {
			opReq.Address = *req.Address
		} else {
			s.logger.Warn("no address specified for memory access, using 0")
		}
	}

	return opReq, true
}

func (s *Server) firstAllocatedAddress() (int, bool) {
	snapshot, err := s.simulator.Snapshot()
	if err != nil {
		return 0, false
	}

	for _, frame := range snapshot.Frames {
		if frame.Status == mem.FrameAllocated {
			return frame.Index * snapshot.Config.PageSize, true
		}
	}

	if len(snapshot.Segments) > 0 {
		return snapshot.Segments[0].Base, true
	}

	return 0, false
}

func (s *Server) getResults(w http.ResponseWriter, _ *http.Request) {
	results, err := s.simulator.Results()
	if err != nil {
		writeEngineError(w, err)
		return
	}

	writeSuccess(w, map[string]any{"results": results})
}

func (s *Server) resetSimulation(w http.ResponseWriter, _ *http.Request) {
	s.simulator.Reset()

	writeSuccess(w, map[string]any{
		"message": "Simulation reset successfully",
	})
}

// statePayload bounds the operation log in the serialized state.
func statePayload(snapshot mem.Snapshot) mem.Snapshot {
	if len(snapshot.Operations) > recentOperations {
		snapshot.Operations =
			snapshot.Operations[len(snapshot.Operations)-recentOperations:]
	}

	return snapshot
}
