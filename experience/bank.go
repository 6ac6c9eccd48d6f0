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


package experience

import (
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/storage"
)

const (
	// DefaultMinScore is the retrieval and pruning score floor.
	DefaultMinScore = 0.5

	// DefaultMaxAge is how long a record stays retrievable before pruning.
	DefaultMaxAge = 30 * 24 * time.Hour

	// DefaultTopK bounds retrieval when the caller does not.
	DefaultTopK = 8
)

// Bank is the experience corpus at a single JSONL path.
type Bank struct {
	path   string
	now    func() time.Time
	logger *slog.Logger
}

// Option configures a Bank.
type Option func(*Bank) error

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(b *Bank) error {
		if now != nil {
			b.now = now
		}
		return nil
	}
}

// WithLogger sets the logger used for degraded-path warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(b *Bank) error {
		if logger != nil {
			b.logger = logger
		}
		return nil
	}
}

// New creates an experience bank backed by the JSONL file at path.
func New(path string, opts ...Option) (*Bank, error) {
	if path == "" {
		return nil, storage.ErrPathRequired
	}
	b := &Bank{path: path, now: time.Now, logger: slog.Default()}
	for _, opt := range opts {
		if err := opt(b); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// FromEnv builds a bank from TUTORGEN_EXPERIENCE_PATH, defaulting to the
// cache directory.
func FromEnv(opts ...Option) (*Bank, error) {
	return New(storage.ResolvePath("TUTORGEN_EXPERIENCE_PATH", "experience_bank.jsonl"), opts...)
}

// Path returns the backing file path.
func (b *Bank) Path() string { return b.path }

// Append persists one record, assigning an ID and timestamp when absent.
// The record as stored is returned.
func (b *Bank) Append(record core.ExperienceRecord) (core.ExperienceRecord, error) {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.Ts == 0 {
		record.Ts = core.UnixSeconds(b.now())
	}
	if record.UsageCount < 0 {
		record.UsageCount = 0
	}
	if err := core.ValidateExperienceRecord(&record); err != nil {
		return core.ExperienceRecord{}, err
	}
	if err := storage.Append(b.path, record); err != nil {
		return core.ExperienceRecord{}, err
	}
	return record, nil
}

// Query selects and ranks records for retrieval.
type Query struct {
	SchemaType string
	// Text is matched against each record's context summary and brief.
	Text     string
	TopK     int
	MinScore float64
}

// Retrieve returns the top-ranked records matching the query: same schema
// type, fully parsed, score at or above the floor. Ranking blends
// similarity, score, recency, and usage. Read failures yield an empty
// result.
func (b *Bank) Retrieve(q Query) []core.ExperienceRecord {
	if q.TopK <= 0 {
		return nil
	}
	records, err := storage.ReadAll[core.ExperienceRecord](b.path)
	if err != nil {
		b.logger.Warn("experience read failed, retrieving nothing", "path", b.path, "err", err)
		return nil
	}

	now := b.now()
	queryBow := bagOfWords(q.Text)

	type ranked struct {
		weight float64
		record core.ExperienceRecord
	}
	candidates := make([]ranked, 0, len(records))
	for _, r := range records {
		if r.SchemaType != q.SchemaType || !r.Parsed || r.Score < q.MinScore {
			continue
		}
		candidates = append(candidates, ranked{weight: rankWeight(r, queryBow, now), record: r})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].weight > candidates[j].weight
	})
	if len(candidates) > q.TopK {
		candidates = candidates[:q.TopK]
	}

	out := make([]core.ExperienceRecord, 0, len(candidates))
	for _, c := range candidates {
		out = append(out, c.record)
	}
	return out
}

// BumpUsage increments the usage count of each identified record and
// rewrites the collection when anything changed. Returns how many records
// were bumped.
func (b *Bank) BumpUsage(ids []string) int {
	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		if id != "" {
			idSet[id] = struct{}{}
		}
	}
	if len(idSet) == 0 {
		return 0
	}

	records, err := storage.ReadAll[core.ExperienceRecord](b.path)
	if err != nil {
		b.logger.Warn("experience read failed, usage not bumped", "path", b.path, "err", err)
		return 0
	}

	bumped := 0
	for i := range records {
		if _, ok := idSet[records[i].ID]; !ok {
			continue
		}
		if records[i].UsageCount < 0 {
			records[i].UsageCount = 0
		}
		records[i].UsageCount++
		bumped++
	}
	if bumped == 0 {
		return 0
	}
	if err := storage.RewriteAll(b.path, records); err != nil {
		b.logger.Warn("experience usage bump not persisted", "path", b.path, "err", err)
		return 0
	}
	return bumped
}

// PruneStats reports the outcome of a prune pass.
type PruneStats struct {
	Before  int `json:"before"`
	After   int `json:"after"`
	Removed int `json:"removed"`
}

// Prune removes records scoring below threshold or older than maxAge
// (no age limit when maxAge is zero) and rewrites the collection.
func (b *Bank) Prune(threshold float64, maxAge time.Duration) PruneStats {
	records, err := storage.ReadAll[core.ExperienceRecord](b.path)
	if err != nil {
		b.logger.Warn("experience read failed, nothing pruned", "path", b.path, "err", err)
		return PruneStats{}
	}

	now := b.now()
	kept := records[:0]
	for _, r := range records {
		if r.Score < threshold {
			continue
		}
		if maxAge > 0 && r.Age(now) > maxAge {
			continue
		}
		kept = append(kept, r)
	}

	stats := PruneStats{Before: len(records), After: len(kept), Removed: len(records) - len(kept)}
	if stats.Removed > 0 {
		if err := storage.RewriteAll(b.path, kept); err != nil {
			b.logger.Warn("experience prune not persisted", "path", b.path, "err", err)
			return PruneStats{Before: stats.Before, After: stats.Before}
		}
	}
	return stats
}
