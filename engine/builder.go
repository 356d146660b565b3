package engine

import (
	"github.com/sirupsen/logrus"

	"github.com/sarchlab/memsim/recording"
)

// A Builder can build simulation engines.
type Builder struct {
	logger   logrus.FieldLogger
	recorder recording.DataRecorder
}

// MakeBuilder creates a builder with default parameters.
func MakeBuilder() Builder {
	return Builder{
		logger: logrus.StandardLogger(),
	}
}

// WithLogger sets the logger the engine reports operations to.
func (b Builder) WithLogger(logger logrus.FieldLogger) Builder {
	b.logger = logger
	return b
}

// WithRecorder sets a recorder that receives every started simulation and
// every applied operation. Without one, nothing is recorded.
func (b Builder) WithRecorder(recorder recording.DataRecorder) Builder {
	b.recorder = recorder
	return b
}

// Build returns a new engine in the Uninitialized state.
func (b Builder) Build() *Engine {
	e := &Engine{
		logger:   b.logger,
		recorder: b.recorder,
	}

	if e.recorder != nil {
		e.recorder.CreateTable(simulationTable, simulationRecord{})
		e.recorder.CreateTable(operationTable, operationRecord{})
	}

	return e
}
