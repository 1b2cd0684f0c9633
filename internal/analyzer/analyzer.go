// Package analyzer derives decision patterns, mastery estimates, transfer
// scores and cognitive profiles from the persisted event corpus. It is
// read-only over the store; sparse data is an expected condition and is
// always reported as a result with a sample size, never as an error.
package analyzer

import (
	"context"

	"go.uber.org/zap"

	"ludilens/internal/models"
	"ludilens/internal/store"
)

// Options are the detection and assessment parameters. Results are only
// stable across re-runs when both the corpus and these parameters are
// unchanged.
type Options struct {
	// Rule-type subsequence window bounds for pattern extraction.
	MinWindow int
	MaxWindow int
	// A signature must occur at least this often to qualify as a pattern.
	MinOccurrences int

	// Below this many events, mastery confidence is clamped to the ceiling.
	MinMasterySamples int
	ConfidenceCeiling float64

	// Average mastery score bounds for strong/weak rule-type classification.
	StrongThreshold float64
	WeakThreshold   float64
}

// DefaultOptions returns the standard detection parameters.
func DefaultOptions() Options {
	return Options{
		MinWindow:         2,
		MaxWindow:         4,
		MinOccurrences:    5,
		MinMasterySamples: 10,
		ConfidenceCeiling: 0.95,
		StrongThreshold:   0.7,
		WeakThreshold:     0.4,
	}
}

// Analyzer computes derived analytics over an EventStore. All computations
// are full recomputations from the corpus; nothing is mutated incrementally.
type Analyzer struct {
	store store.EventStore
	opts  Options
	log   *zap.Logger
}

// New returns an analyzer over the given store.
func New(s store.EventStore, opts Options, log *zap.Logger) *Analyzer {
	if opts.MinWindow == 0 {
		opts = DefaultOptions()
	}
	return &Analyzer{store: s, opts: opts, log: log}
}

// Patterns extracts decision patterns from the stored corpus, optionally
// restricted to one game.
func (a *Analyzer) Patterns(ctx context.Context, gameID string) ([]models.DecisionPattern, error) {
	events, err := a.store.Query(ctx, store.Filter{GameID: gameID})
	if err != nil {
		return nil, err
	}
	return ExtractPatterns(events, a.opts), nil
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
