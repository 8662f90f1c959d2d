package analyzer

import "github.com/anime-shed/photo-scorer-go/pkg/geometry"

// AnalysisOptions configures a PhotoAnalyzer
type AnalysisOptions struct {
	// Performance options
	UseWorkerPool bool
	MaxWorkers    int

	// Composition tuning
	ThirdsTolerance float64

	// Seed pins the placeholder randomness; each analysis starts a fresh
	// generator from it, so equal inputs give equal scores.
	Seed *int64

	// Random, when set, is used as-is for every analysis and takes
	// precedence over Seed. It must tolerate concurrent use if the
	// analyzer is shared between goroutines.
	Random RandomSource
}

// DefaultOptions returns default analysis options
func DefaultOptions() AnalysisOptions {
	return AnalysisOptions{
		UseWorkerPool:   true,
		MaxWorkers:      0, // Use default CPU count
		ThirdsTolerance: geometry.DefaultThirdsTolerance,
	}
}

// WithSeed makes the placeholder signals reproducible
func (opts AnalysisOptions) WithSeed(seed int64) AnalysisOptions {
	opts.Seed = &seed
	return opts
}

// WithRandomSource injects a specific source
func (opts AnalysisOptions) WithRandomSource(r RandomSource) AnalysisOptions {
	opts.Random = r
	return opts
}

// WithoutWorkerPool runs the pixel scans sequentially on the caller
func (opts AnalysisOptions) WithoutWorkerPool() AnalysisOptions {
	opts.UseWorkerPool = false
	return opts
}

// WithMaxWorkers sizes the scan pool
func (opts AnalysisOptions) WithMaxWorkers(n int) AnalysisOptions {
	opts.MaxWorkers = n
	return opts
}

// WithThirdsTolerance overrides the rule-of-thirds proximity fraction
func (opts AnalysisOptions) WithThirdsTolerance(tolerance float64) AnalysisOptions {
	opts.ThirdsTolerance = tolerance
	return opts
}

func (opts AnalysisOptions) randomSource() RandomSource {
	if opts.Random != nil {
		return opts.Random
	}
	return NewRandomSource(opts.Seed)
}
