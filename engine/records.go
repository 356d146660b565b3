package engine

import (
	"fmt"

	"github.com/sarchlab/memsim/mem"
)

// Table names used with the recorder.
const (
	simulationTable = "simulations"
	operationTable  = "operations"
)

// simulationRecord is one row in the simulations table, written when a
// simulation starts.
type simulationRecord struct {
	ID          string
	Technique   string
	Algorithm   string
	MemorySize  int
	PageSize    int
	TotalFrames int
}

// operationRecord is one row in the operations table, written for every
// applied operation.
type operationRecord struct {
	SimulationID string
	Seq          int
	Kind         string
	PID          uint32
	Size         int
	Address      int
	Frames       string
	Result       string
	EvictedFrame int
	LoadedFrame  int
}

func newOperationRecord(simulationID string, op mem.Operation) operationRecord {
	r := operationRecord{
		SimulationID: simulationID,
		Seq:          op.Seq,
		Kind:         string(op.Kind),
		PID:          uint32(op.PID),
		Size:         op.Size,
		Address:      op.Address,
		Result:       string(op.Result),
		EvictedFrame: op.EvictedFrame,
		LoadedFrame:  op.LoadedFrame,
	}

	if op.Frames != nil {
		r.Frames = fmt.Sprint(op.Frames)
	}

	if op.Segment != nil {
		r.Frames = fmt.Sprintf("[%d, %d)", op.Segment.Base, op.Segment.End())
	}

	return r
}
