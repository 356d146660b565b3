// Package mem defines the data model shared by the memory-management
// simulation: configurations, frames, segments, operation records, and the
// address-space abstraction.
package mem

import "github.com/pkg/errors"

// A Technique is a memory-management technique that a simulation models.
type Technique string

// Supported techniques.
const (
	TechniquePaging       Technique = "paging"
	TechniqueSegmentation Technique = "segmentation"
)

// An Algorithm is a page-replacement algorithm.
type Algorithm string

// Supported replacement algorithms.
const (
	AlgorithmFIFO Algorithm = "FIFO"
	AlgorithmLRU  Algorithm = "LRU"
)

// A Config carries the parameters that define one simulation.
type Config struct {
	Technique  Technique `json:"technique"`
	MemorySize int       `json:"memory_size"`
	PageSize   int       `json:"page_size"`
	Algorithm  Algorithm `json:"algorithm"`
}

// TotalFrames returns the number of physical frames the configuration
// defines. It is only meaningful on a valid configuration.
func (c Config) TotalFrames() int {
	return c.MemorySize / c.PageSize
}

// Validate checks the configuration. All returned errors wrap
// ErrInvalidConfig.
func (c Config) Validate() error {
	if c.Technique != TechniquePaging && c.Technique != TechniqueSegmentation {
		return errors.Wrapf(ErrInvalidConfig, "unknown technique %q", c.Technique)
	}

	if c.Algorithm != AlgorithmFIFO && c.Algorithm != AlgorithmLRU {
		return errors.Wrapf(ErrInvalidConfig, "unknown algorithm %q", c.Algorithm)
	}

	if c.MemorySize <= 0 {
		return errors.Wrapf(ErrInvalidConfig,
			"memory size must be positive, got %d", c.MemorySize)
	}

	if c.PageSize <= 0 {
		return errors.Wrapf(ErrInvalidConfig,
			"page size must be positive, got %d", c.PageSize)
	}

	if c.MemorySize%c.PageSize != 0 {
		return errors.Wrapf(ErrInvalidConfig,
			"memory size %d is not a multiple of page size %d",
			c.MemorySize, c.PageSize)
	}

	return nil
}
