package domain

import (
	"fmt"
	"math"
)

// ThresholdPrecision is the number of decimal places threshold values are
// quantized to. Quantization happens before a combination is used as a map
// key or pivot coordinate so that float re-derivation cannot split keys.
const ThresholdPrecision = 4

// QuantizeThreshold rounds v to ThresholdPrecision decimal places.
func QuantizeThreshold(v float64) float64 {
	scale := math.Pow10(ThresholdPrecision)
	return math.Round(v*scale) / scale
}

// ParameterCombination is one (entry, exit) threshold pair of the search
// grid. Construct via NewCombination so values are always quantized.
type ParameterCombination struct {
	EntryThreshold float64
	ExitThreshold  float64
}

// NewCombination builds a quantized combination.
func NewCombination(entry, exit float64) ParameterCombination {
	return ParameterCombination{
		EntryThreshold: QuantizeThreshold(entry),
		ExitThreshold:  QuantizeThreshold(exit),
	}
}

// Key returns the stable string key used for result tables and pivots.
func (c ParameterCombination) Key() string {
	return fmt.Sprintf("%.*f|%.*f", ThresholdPrecision, c.EntryThreshold, ThresholdPrecision, c.ExitThreshold)
}

// Gap returns |exit − entry|, used as a selection tie-breaker.
func (c ParameterCombination) Gap() float64 {
	return math.Abs(c.ExitThreshold - c.EntryThreshold)
}
