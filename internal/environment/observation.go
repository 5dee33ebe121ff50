package environment

import (
	"math"

	"github.com/rxtech-lab/argo-trading-env/internal/events"
	"github.com/rxtech-lab/argo-trading-env/internal/types"
	"github.com/rxtech-lab/argo-trading-env/pkg/errors"
)

// Observation returns the observation at the current step without advancing.
func (e *Environment) Observation() types.Observation {
	obs, _ := e.observe()

	return obs
}

// observe builds the observation, falling back to zeros of the declared shape on any
// failure. The flag reports whether the fallback was used.
func (e *Environment) observe() (types.Observation, bool) {
	obs, err := e.buildObservation()
	if err != nil {
		event := e.event(events.TypeObservationFallback, events.LevelError, "failed to build observation")
		event.Err = err
		e.sink.Emit(event)

		return e.shape.Zeros(), true
	}

	return obs, false
}

func (e *Environment) buildObservation() (types.Observation, error) {
	obs := make(types.Observation, 0, e.shape.Size())

	for _, series := range e.data {
		features, err := series.Features(e.currentStep).Take()
		if err != nil {
			return nil, errors.Newf(errors.ErrCodeObservation, "no bar for %s at step %d", series.Symbol, e.currentStep)
		}

		for _, v := range Normalize(features) {
			obs = append(obs, float32(v))
		}
	}

	if len(obs) != e.shape.Size() {
		return nil, errors.Newf(errors.ErrCodeObservation, "observation has %d values, declared %d", len(obs), e.shape.Size())
	}

	return obs, nil
}

// Normalize min-max scales values to [-1, 1] using the range of its finite entries.
// A constant vector, or one without finite entries, becomes all zeros. NaN entries
// become 0, +Inf becomes 1 and -Inf becomes -1.
func Normalize(values []float64) []float64 {
	out := make([]float64, len(values))

	lo, hi := math.Inf(1), math.Inf(-1)

	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}

		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if math.IsInf(lo, 1) || hi == lo {
		return out
	}

	for i, v := range values {
		switch {
		case math.IsNaN(v):
			out[i] = 0
		case math.IsInf(v, 1):
			out[i] = 1
		case math.IsInf(v, -1):
			out[i] = -1
		default:
			out[i] = 2*(v-lo)/(hi-lo) - 1
		}
	}

	return out
}
