// Package gridsearch enumerates the threshold parameter grid and fans the
// per-(combination, game) simulation units out across a worker pool.
package gridsearch

import (
	"errors"
	"fmt"

	"sports-edge-lab/internal/domain"
)

// Configuration errors. These abort a run before any work is scheduled.
var (
	ErrInvalidThresholdRange = errors.New("invalid threshold range")
	ErrEmptySplit            = errors.New("empty game split")
)

// ThresholdRange is a discretized inclusive [Min, Max] range.
type ThresholdRange struct {
	Min  float64
	Max  float64
	Step float64
}

// Validate checks the range is enumerable.
func (r ThresholdRange) Validate() error {
	if r.Step <= 0 {
		return fmt.Errorf("%w: step %g must be positive", ErrInvalidThresholdRange, r.Step)
	}
	if r.Min <= 0 || r.Max >= 1 {
		return fmt.Errorf("%w: bounds (%g, %g) must lie in (0,1)", ErrInvalidThresholdRange, r.Min, r.Max)
	}
	if r.Min > r.Max {
		return fmt.Errorf("%w: min %g exceeds max %g", ErrInvalidThresholdRange, r.Min, r.Max)
	}
	return nil
}

// Values enumerates the quantized range, inclusive of Max.
func (r ThresholdRange) Values() []float64 {
	var values []float64
	// Step in integer multiples to avoid accumulation drift; quantization
	// makes the emitted values stable keys.
	for i := 0; ; i++ {
		v := domain.QuantizeThreshold(r.Min + float64(i)*r.Step)
		if v > r.Max+1e-9 {
			break
		}
		values = append(values, v)
	}
	return values
}

// EnumerateGrid builds the full Cartesian product of entry × exit threshold
// values, exit-major so rows of the eventual heatmap are contiguous.
func EnumerateGrid(entry, exit ThresholdRange) ([]domain.ParameterCombination, error) {
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("entry: %w", err)
	}
	if err := exit.Validate(); err != nil {
		return nil, fmt.Errorf("exit: %w", err)
	}

	entries := entry.Values()
	exits := exit.Values()

	combos := make([]domain.ParameterCombination, 0, len(entries)*len(exits))
	for _, x := range exits {
		for _, e := range entries {
			combos = append(combos, domain.NewCombination(e, x))
		}
	}
	return combos, nil
}
