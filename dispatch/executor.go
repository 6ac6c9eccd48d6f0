package dispatch

import (
	"context"
	"log/slog"

	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/scoring"
)

// Plan is one evaluation batch: a prepared document graded against every
// feature set, with shared weight overrides.
type Plan struct {
	Doc     *scoring.Document
	Sets    [][]core.Feature
	Weights map[string]float64
	// Batch is the chunk size a strategy may use to split the sets.
	Batch int
}

// Executor is one evaluation strategy. Run returns results in set order or
// an error that sends the plan to the next strategy in the cascade.
type Executor interface {
	Name() string
	Run(ctx context.Context, plan *Plan) ([]core.ScoreResult, error)
}

// scoreOne grades a single checklist, converting a panic into the
// zero-score placeholder so one bad set cannot sink the batch.
func scoreOne(doc *scoring.Document, features []core.Feature, weights map[string]float64) (result core.ScoreResult) {
	defer func() {
		if r := recover(); r != nil {
			slog.Warn("checklist evaluation panicked, scoring zero", "panic", r)
			result = core.ZeroScore(features)
		}
	}()
	return doc.Score(features, weights)
}

// runSequential is the cascade tail: a plain loop that cannot fail.
func runSequential(plan *Plan) []core.ScoreResult {
	results := make([]core.ScoreResult, len(plan.Sets))
	for i, features := range plan.Sets {
		results[i] = scoreOne(plan.Doc, features, plan.Weights)
	}
	return results
}

// chunk splits indices [0, n) into batches of at most size.
func chunk(n, size int) [][2]int {
	if size <= 0 {
		size = 1
	}
	var spans [][2]int
	for start := 0; start < n; start += size {
		end := start + size
		if end > n {
			end = n
		}
		spans = append(spans, [2]int{start, end})
	}
	return spans
}
