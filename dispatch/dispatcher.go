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
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/storage"
)

const (
	// DefaultBatch is how many checklists one worker process handles.
	DefaultBatch = 8

	// DefaultTimeout bounds a single strategy attempt.
	DefaultTimeout = 15 * time.Second
)

// Config controls strategy selection and sizing.
type Config struct {
	Workers int
	Batch   int
	Timeout time.Duration
	// ForceThreads skips the subprocess strategy entirely.
	ForceThreads bool
}

// DefaultWorkers leaves one CPU for the parent, within [2, 8].
func DefaultWorkers() int {
	n := runtime.NumCPU() - 1
	if n < 2 {
		n = 2
	}
	if n > 8 {
		n = 8
	}
	return n
}

// ConfigFromEnv reads TUTORGEN_PARALLEL_WORKERS, TUTORGEN_PARALLEL_BATCH_SIZE,
// TUTORGEN_EVAL_TIMEOUT_MS, and TUTORGEN_PARALLEL ("threads" forces the
// in-process strategy).
func ConfigFromEnv() Config {
	mode := strings.ToLower(strings.TrimSpace(os.Getenv("TUTORGEN_PARALLEL")))
	return Config{
		Workers:      storage.EnvInt("TUTORGEN_PARALLEL_WORKERS", DefaultWorkers()),
		Batch:        storage.EnvInt("TUTORGEN_PARALLEL_BATCH_SIZE", DefaultBatch),
		Timeout:      time.Duration(storage.EnvInt("TUTORGEN_EVAL_TIMEOUT_MS", int(DefaultTimeout/time.Millisecond))) * time.Millisecond,
		ForceThreads: mode == "threads" || mode == "thread",
	}
}

func (c Config) normalized() Config {
	if c.Workers < 1 {
		c.Workers = 1
	}
	if c.Batch < 1 {
		c.Batch = 1
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	return c
}

// Meta describes how a batch was evaluated; it rides along with results so
// callers can report the strategy and any fallbacks taken.
type Meta struct {
	Mode      string `json:"mode"`
	Workers   int    `json:"workers"`
	Batch     int    `json:"batch"`
	Evaluated int    `json:"evaluated"`
	// Fallback is the human-readable trail of abandoned strategies, empty
	// when the first strategy succeeded.
	Fallback string `json:"fallback,omitempty"`
}

// Dispatcher owns the strategy cascade for a run.
type Dispatcher struct {
	cfg       Config
	executors []Executor
	logger    *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher) error

// WithExecutors replaces the strategy cascade, for tests.
func WithExecutors(executors ...Executor) Option {
	return func(d *Dispatcher) error {
		d.executors = executors
		return nil
	}
}

// WithLogger sets the logger used for fallback reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) error {
		if logger != nil {
			d.logger = logger
		}
		return nil
	}
}

// New builds a dispatcher. Unless threads are forced, a worker subprocess
// probe decides whether the process strategy participates.
func New(ctx context.Context, cfg Config, opts ...Option) (*Dispatcher, error) {
	cfg = cfg.normalized()
	d := &Dispatcher{cfg: cfg, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(d); err != nil {
			return nil, err
		}
	}
	if d.executors == nil {
		d.executors = buildCascade(ctx, cfg, d.logger)
	}
	return d, nil
}

func buildCascade(ctx context.Context, cfg Config, logger *slog.Logger) []Executor {
	threads := NewGoroutineExecutor(cfg.Workers)
	if cfg.ForceThreads {
		return []Executor{threads}
	}

	probeCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if !ProbeHealth(probeCtx) {
		logger.Debug("worker subprocess probe failed, using goroutine pool")
		return []Executor{threads}
	}
	return []Executor{NewProcessExecutor(cfg.Workers), threads}
}

// EvaluateAll grades the plan with the first strategy that succeeds within
// the timeout, falling back down the cascade and finally to a sequential
// loop. It always returns exactly one result per feature set.
func (d *Dispatcher) EvaluateAll(ctx context.Context, plan *Plan) ([]core.ScoreResult, Meta) {
	meta := Meta{Workers: d.cfg.Workers, Batch: d.cfg.Batch, Evaluated: len(plan.Sets)}
	if len(plan.Sets) == 0 {
		meta.Mode = "none"
		meta.Workers = 0
		return []core.ScoreResult{}, meta
	}
	if plan.Batch <= 0 {
		plan.Batch = d.cfg.Batch
	}

	var trail []string
	for _, ex := range d.executors {
		attemptCtx, cancel := context.WithTimeout(ctx, d.cfg.Timeout)
		results, err := ex.Run(attemptCtx, plan)
		cancel()
		if err == nil {
			meta.Mode = ex.Name()
			meta.Fallback = strings.Join(trail, "; ")
			return results, meta
		}
		trail = append(trail, fmt.Sprintf("%s failed (%v)", ex.Name(), err))
		d.logger.Warn("evaluation strategy failed, falling back", "strategy", ex.Name(), "err", err)
	}

	trail = append(trail, "sequential")
	meta.Mode = "sequential"
	meta.Workers = 1
	meta.Fallback = strings.Join(trail, "; ")
	return runSequential(plan), meta
}
