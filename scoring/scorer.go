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


package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/dillycone/ai-tutorial-gen/core"
)

// Checklists lighter than this carry no weight; coverage defaults to 1.0.
const minTotalWeight = 1e-9

// feedbackMissingLimit caps how many missing features feedback names before
// summarizing the rest.
const feedbackMissingLimit = 3

// Document is a candidate prepared for repeated scoring: parsed once, with
// the normalized match text and token set precomputed. A Document is safe
// for concurrent reads.
type Document struct {
	// Normalized is the match text: the combined structured fields of a
	// parsed candidate, or the raw text of an unparsed one.
	Normalized string
	tokens     map[string]struct{}

	// Bonus is added to coverage when the candidate parsed cleanly.
	Bonus      float64
	Parsed     bool
	ParseError string
	Config     *core.PromptConfig
}

// PrepareDocument parses the candidate and precomputes its match state.
// Fully parsed candidates are matched against their combined structured
// fields and earn the bonus; anything else is matched as raw text with no
// bonus.
func PrepareDocument(raw string, bonus float64) *Document {
	config, parsed, parseError := ParsePrompt(raw)

	combined := raw
	awarded := 0.0
	if parsed && config != nil {
		parts := make([]string, 0, 4)
		for _, part := range []string{config.Persona, config.Requirements, config.FallbackOutput, config.StyleGuide} {
			if part != "" {
				parts = append(parts, part)
			}
		}
		combined = strings.Join(parts, " \n")
		awarded = math.Max(0, bonus)
	}

	normalized := NormalizeForMatch(combined)
	return &Document{
		Normalized: normalized,
		tokens:     TokenSet(normalized),
		Bonus:      awarded,
		Parsed:     parsed,
		ParseError: parseError,
		Config:     config,
	}
}

// FromNormalized rebuilds a document from match state prepared elsewhere,
// typically on the far side of a process boundary. The bonus is taken as
// already awarded.
func FromNormalized(normalized string, bonus float64) *Document {
	return &Document{
		Normalized: normalized,
		tokens:     TokenSet(normalized),
		Bonus:      math.Max(0, bonus),
		Parsed:     bonus > 0,
	}
}

// Score grades the document against one checklist. Feature weights default
// to 1.0; overrides may target a feature's category or its exact text
// (case-insensitive), with exact text winning.
func (d *Document) Score(features []core.Feature, overrides map[string]float64) core.ScoreResult {
	weights := NormalizeOverrides(overrides)

	satisfied := []string{}
	missing := []string{}
	totalWeight := 0.0
	hitWeight := 0.0

	for _, f := range features {
		text := strings.TrimSpace(f.Text)
		if text == "" {
			continue
		}
		w := resolveWeight(f, weights)
		totalWeight += w
		if FeatureHit(text, d.Normalized, d.tokens) {
			satisfied = append(satisfied, text)
			hitWeight += w
		} else {
			missing = append(missing, text)
		}
	}

	coverage := 1.0
	if totalWeight > minTotalWeight {
		coverage = hitWeight / totalWeight
	}
	score := math.Min(1.0, coverage+d.Bonus)

	return core.ScoreResult{
		Score:          core.Round4(score),
		Coverage:       core.Round4(coverage),
		Satisfied:      satisfied,
		Missing:        missing,
		SatisfiedCount: len(satisfied),
	}
}

// NormalizeOverrides lowercases override keys and clamps weights to be
// non-negative. Unparseable or empty keys are dropped.
func NormalizeOverrides(overrides map[string]float64) map[string]float64 {
	if len(overrides) == 0 {
		return nil
	}
	out := make(map[string]float64, len(overrides))
	for key, w := range overrides {
		key = strings.ToLower(strings.TrimSpace(key))
		if key == "" {
			continue
		}
		out[key] = math.Max(0, w)
	}
	return out
}

func resolveWeight(f core.Feature, weights map[string]float64) float64 {
	w := f.Weight
	if w <= 0 {
		w = 1.0
	}
	if cat := strings.ToLower(strings.TrimSpace(f.Category)); cat != "" {
		if ov, ok := weights[cat]; ok {
			w = ov
		}
	}
	// Exact feature text beats the category override.
	if ov, ok := weights[strings.ToLower(strings.TrimSpace(f.Text))]; ok {
		w = ov
	}
	return w
}

// Analysis is the full evaluation of one candidate against one checklist.
type Analysis struct {
	core.ScoreResult
	Parsed     bool               `json:"parsed"`
	ParseError string             `json:"parseError,omitempty"`
	Feedback   string             `json:"feedback"`
	Prompt     *core.PromptConfig `json:"promptConfig,omitempty"`
}

// Analyze parses, scores, and produces actionable feedback in one pass.
func Analyze(raw string, features []core.Feature, overrides map[string]float64, bonus float64) Analysis {
	doc := PrepareDocument(raw, bonus)
	result := doc.Score(features, overrides)
	return Analysis{
		ScoreResult: result,
		Parsed:      doc.Parsed,
		ParseError:  doc.ParseError,
		Feedback:    Feedback(result, doc.ParseError),
		Prompt:      doc.Config,
	}
}

// Feedback renders a short actionable summary: up to three missing features
// by name, a count of the rest, and any parse diagnostic.
func Feedback(result core.ScoreResult, parseError string) string {
	var parts []string
	if len(result.Missing) > 0 {
		named := result.Missing
		if len(named) > feedbackMissingLimit {
			named = named[:feedbackMissingLimit]
		}
		parts = append(parts, "Add guidance about: "+strings.Join(named, "; "))
		if extra := len(result.Missing) - feedbackMissingLimit; extra > 0 {
			parts = append(parts, fmt.Sprintf("(+%d more coverage goals)", extra))
		}
	}
	if parseError != "" {
		parts = append(parts, fmt.Sprintf("Fix JSON formatting issues (%s)", parseError))
	}
	if len(parts) == 0 {
		return "Prompt satisfies the optimization brief."
	}
	return strings.Join(parts, " ")
}
