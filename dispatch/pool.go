// Copyright 2025 The ai-tutorial-gen Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"

	"github.com/dillycone/ai-tutorial-gen/core"
)

// releaseGrace bounds the join of in-flight workers after the context
// expires. Drained tasks observe the cancelled context and no-op, so the
// join normally completes well inside the grace.
const releaseGrace = 500 * time.Millisecond

// GoroutineExecutor grades checklists on a bounded goroutine pool inside
// the current process.
type GoroutineExecutor struct {
	workers int
}

// NewGoroutineExecutor creates an in-process pool strategy with the given
// concurrency limit.
func NewGoroutineExecutor(workers int) *GoroutineExecutor {
	if workers < 1 {
		workers = 1
	}
	return &GoroutineExecutor{workers: workers}
}

func (e *GoroutineExecutor) Name() string { return "threads" }

// Run submits every set to the pool and waits for completion or context
// expiry. Submission happens off the calling goroutine so a saturated pool
// cannot block past the deadline; every task checks the context before
// scoring. On expiry the remaining tasks drain as no-ops and the pool is
// joined with a short grace before the batch is handed to the next
// strategy.
func (e *GoroutineExecutor) Run(ctx context.Context, plan *Plan) ([]core.ScoreResult, error) {
	pool, err := ants.NewPool(e.workers)
	if err != nil {
		return nil, fmt.Errorf("goroutine pool init: %w", err)
	}

	results := make([]core.ScoreResult, len(plan.Sets))
	var wg sync.WaitGroup
	wg.Add(len(plan.Sets))

	submitErr := make(chan error, 1)
	go func() {
		for i, features := range plan.Sets {
			if ctx.Err() != nil {
				// Account for everything that will not be submitted.
				for range plan.Sets[i:] {
					wg.Done()
				}
				submitErr <- ctx.Err()
				return
			}
			err := pool.Submit(func() {
				defer wg.Done()
				if ctx.Err() != nil {
					return
				}
				results[i] = scoreOne(plan.Doc, features, plan.Weights)
			})
			if err != nil {
				for range plan.Sets[i:] {
					wg.Done()
				}
				submitErr <- fmt.Errorf("goroutine pool submit: %w", err)
				return
			}
		}
		submitErr <- nil
	}()

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		pool.Release()
		if err := <-submitErr; err != nil {
			return nil, err
		}
		return results, nil
	case <-ctx.Done():
		// ReleaseTimeout wakes any blocked submit and joins the workers;
		// queued tasks drain without scoring.
		if err := pool.ReleaseTimeout(releaseGrace); err != nil {
			slog.Warn("goroutine pool not drained within grace", "err", err)
		}
		return nil, fmt.Errorf("goroutine pool: %w", ctx.Err())
	}
}
