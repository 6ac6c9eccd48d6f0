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


package snapshot

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dillycone/ai-tutorial-gen/core"
)

const (
	// CoverageSaveThreshold gates the high-quality snapshot store.
	CoverageSaveThreshold = 0.8

	// DefaultAutosaveInterval is how many iterations pass between periodic
	// emergency saves of the current best.
	DefaultAutosaveInterval = 5

	// Snapshot reasons. Autosave and signal reasons are appended to the
	// underlying snapshot's own reason with a pipe.
	ReasonRawImproved       = "rawImprovedAnyCoverage"
	ReasonCoverageThreshold = "coverageThreshold"
	ReasonPeriodicAutosave  = "periodicAutosave"
	ReasonSignal            = "signal"
	ReasonFinalEvaluation   = "finalEvaluation"
)

// Sample is one graded candidate observed by the tracker.
type Sample struct {
	RawScore float64
	Coverage float64
	// Confidence scales the raw score for display: adjusted = raw * (0.5 + 0.5*confidence).
	Confidence     float64
	Stage          int
	ContextSummary string
	Prompt         string
}

// Summary is the tracker's best-so-far state, reported with progress lines.
type Summary struct {
	BestRawScore  float64 `json:"bestRawScore"`
	BestAdjScore  float64 `json:"bestAdjScore"`
	BestCoverage  float64 `json:"bestCoverage"`
	BestIteration int     `json:"bestIteration"`
	BestStage     int     `json:"bestStage"`
	Iteration     int     `json:"iteration"`
}

// Tracker watches the sample stream and persists best snapshots. Safe for
// concurrent use.
type Tracker struct {
	mu sync.Mutex

	now    func() time.Time
	logger *slog.Logger

	best             core.BestSnapshot
	iteration        int
	lastAutosave     int
	autosaveInterval int

	// current is the latest best snapshot, the one a signal or autosave
	// flushes. Nil until a sample improves on zero.
	current *core.BestSnapshot

	bestStore      *Store
	emergencyStore *Store
	debugStore     *Store
}

// TrackerOption configures a Tracker.
type TrackerOption func(*Tracker)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) TrackerOption {
	return func(t *Tracker) {
		if now != nil {
			t.now = now
		}
	}
}

// WithLogger sets the tracker's logger.
func WithLogger(logger *slog.Logger) TrackerOption {
	return func(t *Tracker) {
		if logger != nil {
			t.logger = logger
		}
	}
}

// WithAutosaveInterval sets the periodic save cadence; zero disables it.
func WithAutosaveInterval(n int) TrackerOption {
	return func(t *Tracker) {
		t.autosaveInterval = n
	}
}

// NewTracker creates a tracker writing to the given stores, any of which
// may be nil to disable that persistence path.
func NewTracker(bestStore, emergencyStore, debugStore *Store, opts ...TrackerOption) *Tracker {
	t := &Tracker{
		now:              time.Now,
		logger:           slog.Default(),
		autosaveInterval: DefaultAutosaveInterval,
		bestStore:        bestStore,
		emergencyStore:   emergencyStore,
		debugStore:       debugStore,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// AdjustScore applies the confidence factor used for progress display.
func AdjustScore(raw, confidence float64) float64 {
	return raw * (0.5 + 0.5*confidence)
}

// OnSample advances the iteration counter, updates best tracking, and
// persists whatever the sample triggers. It returns the post-sample
// summary.
func (t *Tracker) OnSample(s Sample) Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.iteration++
	adj := AdjustScore(s.RawScore, s.Confidence)

	snap := core.BestSnapshot{
		Ts:             core.UnixSeconds(t.now()),
		Iteration:      t.iteration,
		Stage:          s.Stage,
		RawScore:       core.Round4(s.RawScore),
		AdjScore:       core.Round4(adj),
		Coverage:       core.Round4(s.Coverage),
		ContextSummary: s.ContextSummary,
		Prompt:         s.Prompt,
	}

	rawImproved := s.RawScore > t.best.RawScore
	if rawImproved {
		t.best = snap
		t.best.Reason = ReasonRawImproved

		improved := snap
		improved.Reason = ReasonRawImproved
		t.debugStore.Append(improved)
		t.emergencyStore.Append(improved)
		t.current = &improved
	}

	// Strong coverage with a raw score matching the best earns a
	// high-quality snapshot.
	if s.Coverage >= CoverageSaveThreshold && s.RawScore >= t.best.RawScore {
		strong := snap
		strong.Reason = ReasonCoverageThreshold
		t.bestStore.Append(strong)
		t.current = &strong
	}

	if t.autosaveInterval > 0 && t.iteration-t.lastAutosave >= t.autosaveInterval {
		if t.current != nil {
			periodic := *t.current
			periodic.Ts = core.UnixSeconds(t.now())
			periodic.Reason = joinReason(periodic.Reason, ReasonPeriodicAutosave)
			t.emergencyStore.Append(periodic)
		}
		t.lastAutosave = t.iteration
	}

	return t.summaryLocked()
}

// Finalize records the run's closing best snapshot so later saves carry the
// final-evaluation reason. Returns false when no sample ever improved.
func (t *Tracker) Finalize() (core.BestSnapshot, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return core.BestSnapshot{}, false
	}
	final := *t.current
	final.Ts = core.UnixSeconds(t.now())
	final.Reason = ReasonFinalEvaluation
	t.current = &final
	return final, true
}

// EmergencySave flushes the current best to the emergency store with the
// given reason appended, tagging the triggering signal when non-zero.
// Returns false when there is nothing to save.
func (t *Tracker) EmergencySave(reason string, sig int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.current == nil {
		return false
	}
	snap := *t.current
	snap.Ts = core.UnixSeconds(t.now())
	snap.Reason = joinReason(snap.Reason, reason)
	snap.Signal = sig
	t.emergencyStore.Append(snap)
	return true
}

// Summary returns the best-so-far state.
func (t *Tracker) Summary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.summaryLocked()
}

func (t *Tracker) summaryLocked() Summary {
	return Summary{
		BestRawScore:  t.best.RawScore,
		BestAdjScore:  t.best.AdjScore,
		BestCoverage:  t.best.Coverage,
		BestIteration: t.best.Iteration,
		BestStage:     t.best.Stage,
		Iteration:     t.iteration,
	}
}

func joinReason(base, extra string) string {
	return strings.Trim(strings.Trim(base, "|")+"|"+extra, "|")
}
