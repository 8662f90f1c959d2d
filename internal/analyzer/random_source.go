package analyzer

import "math/rand/v2"

// RandomSource feeds the placeholder signals (focus and exposure jitter,
// leading lines, depth of field). Float64 must return values in [0, 1).
type RandomSource interface {
	Float64() float64
}

// NewRandomSource returns a PCG generator. A nil seed draws from entropy,
// so repeated analyses of the same photo differ slightly.
// The returned source is not safe for concurrent use.
func NewRandomSource(seed *int64) RandomSource {
	if seed == nil {
		return rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	s := uint64(*seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// FixedSource always returns the same value. Useful to pin jitter in tests.
type FixedSource float64

func (f FixedSource) Float64() float64 { return float64(f) }

// jitter maps one draw onto [lo, hi)
func jitter(r RandomSource, lo, hi float64) float64 {
	return lo + r.Float64()*(hi-lo)
}
