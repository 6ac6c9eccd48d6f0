package core

import (
	"encoding/json"
	"math"
	"time"
)

// Feature is a single required textual directive used to grade generated
// output. Weight defaults to 1.0 when zero; Category groups features for
// weight overrides (e.g. "grounding", "schemaFocus").
type Feature struct {
	Text     string  `json:"text"`
	Weight   float64 `json:"weight,omitempty"`
	Category string  `json:"category,omitempty"`
}

// ScoreResult is the outcome of grading one document against one checklist.
// Score == min(1, Coverage + bonus); Coverage is the weighted fraction of
// satisfied features, or 1.0 when the checklist carries no weight.
type ScoreResult struct {
	Score          float64  `json:"score"`
	Coverage       float64  `json:"coverage"`
	Satisfied      []string `json:"satisfied"`
	Missing        []string `json:"missing"`
	SatisfiedCount int      `json:"satisfiedCount"`
}

// ZeroScore returns the placeholder result for a checklist that could not be
// evaluated: nothing satisfied, every feature missing.
func ZeroScore(features []Feature) ScoreResult {
	missing := make([]string, 0, len(features))
	for _, f := range features {
		missing = append(missing, f.Text)
	}
	return ScoreResult{Satisfied: []string{}, Missing: missing}
}

// Round4 rounds a score component to four decimal places, the precision all
// persisted and emitted scores use.
func Round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}

// PromptConfig is a structured prompt parsed from candidate text.
type PromptConfig struct {
	Persona string `json:"persona"`
	// Requirements is the normalized bullet-list text ("- item" per line).
	Requirements string `json:"requirements"`
	// RequirementsList holds the individual directives.
	RequirementsList []string `json:"requirementsList,omitempty"`
	FallbackOutput   string   `json:"fallbackOutput"`
	// FallbackOutputJSON is set when fallbackOutput arrived as an object or
	// array rather than a string.
	FallbackOutputJSON any    `json:"fallbackOutputJson,omitempty"`
	StyleGuide         string `json:"styleGuide,omitempty"`
}

// CacheEntry is one row of the result cache.
type CacheEntry struct {
	Key        string          `json:"key"`
	Ts         float64         `json:"ts"`
	LastAccess float64         `json:"lastAccess,omitempty"`
	Result     json.RawMessage `json:"result"`
}

// ExperienceRecord is one row of the experience corpus: a past high-scoring
// evaluation kept for future retrieval. Mutated only by usage bumping.
type ExperienceRecord struct {
	ID               string   `json:"id"`
	Ts               float64  `json:"ts"`
	SchemaType       string   `json:"schemaType"`
	ContextSummary   string   `json:"contextSummary"`
	Brief            string   `json:"brief"`
	ExpectedFeatures []string `json:"expectedFeatures"`
	Score            float64  `json:"score"`
	Coverage         float64  `json:"coverage,omitempty"`
	Parsed           bool     `json:"parsed"`
	UsageCount       int      `json:"usageCount"`
	Prompt           string   `json:"prompt,omitempty"`
}

// Age returns how old the record is relative to now.
func (r *ExperienceRecord) Age(now time.Time) time.Duration {
	ts := time.Unix(0, int64(r.Ts*float64(time.Second)))
	if ts.After(now) {
		return 0
	}
	return now.Sub(ts)
}

// BestSnapshot records the best artifact observed at some point in an
// optimization run. Snapshot stores are append-only; readers interested in
// "the best" take the last entry with a matching reason.
type BestSnapshot struct {
	Ts             float64 `json:"ts"`
	Iteration      int     `json:"iteration"`
	Stage          int     `json:"stage"`
	RawScore       float64 `json:"rawScore"`
	AdjScore       float64 `json:"adjScore,omitempty"`
	Coverage       float64 `json:"coverage"`
	Reason         string  `json:"reason"`
	ContextSummary string  `json:"contextSummary,omitempty"`
	Prompt         string  `json:"prompt,omitempty"`
	Signal         int     `json:"signal,omitempty"`
}

// UnixSeconds converts a wall-clock time to the float seconds representation
// used by every persisted row.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
