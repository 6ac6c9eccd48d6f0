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
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dillycone/ai-tutorial-gen/core"
)

// ProcessExecutor grades checklists in worker subprocesses: the current
// binary re-executed with the worker subcommand, one JSON exchange per
// process. Batches run concurrently up to the worker limit.
type ProcessExecutor struct {
	workers int
	// command locates the worker binary and its arguments; defaults to the
	// current executable. Overridable for tests.
	command func() (string, []string, error)
}

// NewProcessExecutor creates a subprocess strategy with the given
// concurrency limit.
func NewProcessExecutor(workers int) *ProcessExecutor {
	if workers < 1 {
		workers = 1
	}
	return &ProcessExecutor{workers: workers, command: selfWorkerCommand}
}

func selfWorkerCommand() (string, []string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", nil, fmt.Errorf("locating worker binary: %w", err)
	}
	return exe, []string{"worker"}, nil
}

func (e *ProcessExecutor) Name() string { return "processes" }

// Run splits the plan into batches and feeds each to its own worker
// process. Any process failure fails the whole run; the dispatcher then
// falls back to the next strategy.
func (e *ProcessExecutor) Run(ctx context.Context, plan *Plan) ([]core.ScoreResult, error) {
	bin, args, err := e.command()
	if err != nil {
		return nil, err
	}

	results := make([]core.ScoreResult, len(plan.Sets))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)

	for _, span := range chunk(len(plan.Sets), plan.Batch) {
		start, end := span[0], span[1]
		g.Go(func() error {
			req := workerRequest{
				Normalized: plan.Doc.Normalized,
				Bonus:      plan.Doc.Bonus,
				Weights:    plan.Weights,
				Sets:       make([]workerSet, 0, end-start),
			}
			for i := start; i < end; i++ {
				req.Sets = append(req.Sets, workerSet{Index: i, Features: plan.Sets[i]})
			}

			resp, err := runWorkerProcess(ctx, bin, args, &req)
			if err != nil {
				return err
			}

			mu.Lock()
			defer mu.Unlock()
			for _, r := range resp.Results {
				if r.Index < 0 || r.Index >= len(results) {
					return fmt.Errorf("worker returned out-of-range index %d", r.Index)
				}
				results[r.Index] = r.Result
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func runWorkerProcess(ctx context.Context, bin string, args []string, req *workerRequest) (*workerResponse, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Stdin = bytes.NewReader(payload)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("worker process: %w", ctx.Err())
		}
		return nil, fmt.Errorf("worker process: %w (stderr: %s)", err, strings.TrimSpace(stderr.String()))
	}

	var resp workerResponse
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("decoding worker response: %w", err)
	}
	return &resp, nil
}

// ProbeHealth checks that worker subprocesses actually work here by running
// one with the probe flag and expecting the probe value back. Constrained
// environments that cannot fork land in the goroutine strategy instead.
func ProbeHealth(ctx context.Context) bool {
	exe, err := os.Executable()
	if err != nil {
		return false
	}

	cmd := exec.CommandContext(ctx, exe, "worker", "--probe")
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return false
	}
	return strings.TrimSpace(stdout.String()) == fmt.Sprintf("%d", ProbeValue)
}
