// Package selection implements the adaptive practice-question selection
// engine: given a learner and a set of filter criteria it retrieves the
// matching candidates, analyzes recent exposure and incorrect streaks,
// combines streak, mastery, difficulty-match and exam-frequency signals
// into one composite weight per candidate, and returns a weighted random
// sample without replacement.
//
// The engine is stateless per call: every invocation pulls its inputs
// fresh from the CandidateSource and holds no cross-request memory.
package selection

import (
	"context"
	"log/slog"
	"math/rand"
	"time"
)

// Engine selects the next page of practice questions for a user.
type Engine struct {
	source CandidateSource
	logger *slog.Logger
	rng    *rand.Rand
	now    func() time.Time
}

// Option configures an Engine.
type Option func(*Engine)

// WithRand injects the random source used by the sampler, for
// deterministic testing. Selection is intentionally randomized per call;
// no seed is exposed otherwise.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) { e.rng = rng }
}

// WithClock injects the time source used for recency windows.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// NewEngine creates an Engine reading candidates from source.
func NewEngine(source CandidateSource, logger *slog.Logger, opts ...Option) *Engine {
	e := &Engine{
		source: source,
		logger: logger,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Select runs one retrieval → analysis → scoring → sampling → assembly
// pass and returns a page of questions for userID. Storage errors
// propagate unchanged; an empty candidate pool yields an empty page with
// TotalPages 0, not an error.
func (e *Engine) Select(ctx context.Context, userID string, f Filters, t Tuning) (*Result, error) {
	t, err := t.normalize()
	if err != nil {
		return nil, err
	}

	now := e.now()
	since := now.Add(-time.Duration(t.windowHours()) * time.Hour)
	candidates, err := e.source.Candidates(ctx, userID, f, since)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pool := analyze(now, candidates, t)
	weights := computeWeights(pool, t)
	picked := sampleWithoutReplacement(weights, t.PageSize, e.rng)

	result, err := assemble(pool, weights, picked, len(candidates), t)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("selection complete",
		"user_id", userID,
		"candidates", len(candidates),
		"selected", len(result.Questions),
		"total_pages", result.TotalPages,
	)
	return result, nil
}
