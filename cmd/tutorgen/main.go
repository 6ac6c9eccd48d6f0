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


package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/dillycone/ai-tutorial-gen/cache"
	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/dispatch"
	"github.com/dillycone/ai-tutorial-gen/experience"
	"github.com/dillycone/ai-tutorial-gen/scoring"
	"github.com/dillycone/ai-tutorial-gen/snapshot"
	"github.com/dillycone/ai-tutorial-gen/storage"
)

func main() {
	app := &cli.App{
		Name:  "tutorgen",
		Usage: "Grade generated tutorial prompts against feature checklists",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "evaluate",
				Usage:  "Score one candidate from a JSON payload on stdin",
				Action: evaluateCommand,
			},
			{
				Name:   "evaluate-all",
				Usage:  "Score one candidate against many feature sets in parallel",
				Action: evaluateAllCommand,
			},
			{
				Name:   "prune",
				Usage:  "Remove weak or stale experience records",
				Action: pruneCommand,
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  "threshold",
						Usage: "Minimum score to keep",
						Value: storage.EnvFloat("TUTORGEN_EXPERIENCE_MIN_SCORE", experience.DefaultMinScore),
					},
					&cli.IntFlag{
						Name:  "max-age-days",
						Usage: "Maximum record age in days (0 disables the age limit)",
						Value: storage.EnvInt("TUTORGEN_EXPERIENCE_MAX_AGE_DAYS", 30),
					},
				},
			},
			{
				Name:   "worker",
				Hidden: true,
				Usage:  "Evaluation worker subprocess (internal)",
				Action: workerCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "probe",
						Usage: "Print the health probe value and exit",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// shutdownGrace is how long a signal-triggered shutdown waits for worker
// subprocesses to be reaped after their context is cancelled.
const shutdownGrace = 200 * time.Millisecond

// payload is the stdin request shared by evaluate and evaluate-all.
type payload struct {
	Text            string             `json:"text"`
	Features        []core.Feature     `json:"features,omitempty"`
	FeatureSets     [][]core.Feature   `json:"featureSets,omitempty"`
	WeightOverrides map[string]float64 `json:"weightOverrides,omitempty"`
	StructuralBonus float64            `json:"structuralBonus,omitempty"`
	SchemaType      string             `json:"schemaType,omitempty"`
	ContextSummary  string             `json:"contextSummary,omitempty"`
	Brief           string             `json:"brief,omitempty"`
	// Confidence scales the adjusted score; defaults to 1.
	Confidence         *float64 `json:"confidence,omitempty"`
	ClearCache         bool     `json:"clearCache,omitempty"`
	PersistExperience  *bool    `json:"persistExperience,omitempty"`
	ExperienceTopK     int      `json:"experienceTopK,omitempty"`
	ExperienceMinScore *float64 `json:"experienceMinScore,omitempty"`
}

// keyMaterial is the flat struct hashed into the cache key. Field order is
// fixed by the declaration; map keys marshal sorted.
type keyMaterial struct {
	SchemaType string             `json:"schemaType"`
	Text       string             `json:"text"`
	Features   []core.Feature     `json:"features"`
	Weights    map[string]float64 `json:"weights"`
	Bonus      float64            `json:"bonus"`
}

type experienceOutput struct {
	RetrievedCount int                   `json:"retrievedCount"`
	RetrievedIDs   []string              `json:"retrievedIds,omitempty"`
	AppendedID     string                `json:"appendedId,omitempty"`
	Prune          experience.PruneStats `json:"prune"`
}

type evaluateOutput struct {
	scoring.Analysis
	Experience *experienceOutput `json:"experience,omitempty"`
	Best       *snapshot.Summary `json:"best,omitempty"`
	Cache      *cache.Metadata   `json:"cache,omitempty"`
}

func decodePayload(r io.Reader) (*payload, error) {
	var p payload
	if err := json.NewDecoder(r).Decode(&p); err != nil {
		return nil, fmt.Errorf("decoding payload: %w", err)
	}
	if strings.TrimSpace(p.Text) == "" {
		return nil, fmt.Errorf("payload text is required")
	}
	return &p, nil
}

func (p *payload) confidence() float64 {
	if p.Confidence == nil {
		return 1
	}
	return *p.Confidence
}

func (p *payload) persistExperience() bool {
	return p.PersistExperience == nil || *p.PersistExperience
}

func (p *payload) experienceMinScore() float64 {
	if p.ExperienceMinScore != nil {
		return *p.ExperienceMinScore
	}
	return storage.EnvFloat("TUTORGEN_EXPERIENCE_MIN_SCORE", experience.DefaultMinScore)
}

func experienceMaxAge() time.Duration {
	days := storage.EnvInt("TUTORGEN_EXPERIENCE_MAX_AGE_DAYS", 30)
	return time.Duration(days) * 24 * time.Hour
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	return enc.Encode(v)
}

func evaluateCommand(c *cli.Context) error {
	p, err := decodePayload(os.Stdin)
	if err != nil {
		return err
	}

	store, err := cache.FromEnv()
	if err != nil {
		return fmt.Errorf("opening cache: %w", err)
	}
	if p.ClearCache {
		if err := store.Clear(); err != nil {
			slog.Warn("cache clear failed", "err", err)
		} else {
			slog.Info("cache cleared", "path", store.Path())
		}
	}

	key, err := core.CacheKey(keyMaterial{
		SchemaType: p.SchemaType,
		Text:       p.Text,
		Features:   p.Features,
		Weights:    p.WeightOverrides,
		Bonus:      p.StructuralBonus,
	})
	if err != nil {
		return fmt.Errorf("building cache key: %w", err)
	}

	if cached, meta, ok := store.Lookup(key); ok {
		slog.Info("cache hit", "key", key)
		var out evaluateOutput
		if err := json.Unmarshal(cached, &out); err != nil {
			slog.Warn("cached result unreadable, rescoring", "err", err)
		} else {
			out.Cache = &meta
			return printJSON(out)
		}
	}

	analysis := scoring.Analyze(p.Text, p.Features, p.WeightOverrides, p.StructuralBonus)

	// One-shot runs still feed the snapshot persister so a strong result is
	// never lost to a crash between scoring and output.
	tracker := snapshot.NewTracker(
		snapshot.BestFromEnv(nil),
		snapshot.EmergencyFromEnv(nil),
		snapshot.DebugFromEnv(nil),
	)
	summary := tracker.OnSample(snapshot.Sample{
		RawScore:       analysis.Score,
		Coverage:       analysis.Coverage,
		Confidence:     p.confidence(),
		ContextSummary: p.ContextSummary,
		Prompt:         p.Text,
	})
	tracker.Finalize()

	out := evaluateOutput{
		Analysis:   analysis,
		Best:       &summary,
		Experience: runExperienceFlow(p, analysis),
	}

	encoded, err := json.Marshal(out)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}
	meta := store.Upsert(key, encoded)
	out.Cache = &meta
	return printJSON(out)
}

// runExperienceFlow retrieves prior experiences for the request context,
// bumps their usage, appends the new record when it qualifies, and prunes.
// Entirely best-effort: a broken experience store never fails an
// evaluation.
func runExperienceFlow(p *payload, analysis scoring.Analysis) *experienceOutput {
	bank, err := experience.FromEnv()
	if err != nil {
		slog.Warn("experience bank unavailable", "err", err)
		return nil
	}

	topK := p.ExperienceTopK
	if topK <= 0 {
		topK = experience.DefaultTopK
	}
	minScore := p.experienceMinScore()

	retrieved := bank.Retrieve(experience.Query{
		SchemaType: p.SchemaType,
		Text:       p.ContextSummary + "\n" + p.Brief,
		TopK:       topK,
		MinScore:   minScore,
	})
	ids := make([]string, 0, len(retrieved))
	for _, r := range retrieved {
		ids = append(ids, r.ID)
	}
	bank.BumpUsage(ids)

	out := &experienceOutput{RetrievedCount: len(retrieved), RetrievedIDs: ids}

	if p.persistExperience() && analysis.Parsed && analysis.Score >= minScore && p.SchemaType != "" {
		texts := make([]string, 0, len(p.Features))
		for _, f := range p.Features {
			texts = append(texts, f.Text)
		}
		stored, err := bank.Append(core.ExperienceRecord{
			SchemaType:       p.SchemaType,
			ContextSummary:   p.ContextSummary,
			Brief:            p.Brief,
			ExpectedFeatures: texts,
			Score:            analysis.Score,
			Coverage:         analysis.Coverage,
			Parsed:           analysis.Parsed,
			Prompt:           p.Text,
		})
		if err != nil {
			slog.Warn("experience append failed", "err", err)
		} else {
			out.AppendedID = stored.ID
		}
	}

	out.Prune = bank.Prune(minScore, experienceMaxAge())
	return out
}

type evaluateAllOutput struct {
	Results []core.ScoreResult `json:"results"`
	Meta    dispatch.Meta      `json:"meta"`
	Best    *snapshot.Summary  `json:"best,omitempty"`
}

func evaluateAllCommand(c *cli.Context) error {
	p, err := decodePayload(os.Stdin)
	if err != nil {
		return err
	}
	if len(p.FeatureSets) == 0 && len(p.Features) > 0 {
		p.FeatureSets = [][]core.Feature{p.Features}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d, err := dispatch.New(ctx, dispatch.ConfigFromEnv())
	if err != nil {
		return fmt.Errorf("building dispatcher: %w", err)
	}

	tracker := snapshot.NewTracker(
		snapshot.BestFromEnv(nil),
		snapshot.EmergencyFromEnv(nil),
		snapshot.DebugFromEnv(nil),
	)
	stop := snapshot.InstallSignalHandler(tracker, nil, func() {
		// Kill any in-flight worker subprocesses and give the evaluation
		// a moment to reap them before the process exits.
		cancel()
		time.Sleep(shutdownGrace)
	}, nil)
	defer stop()

	doc := scoring.PrepareDocument(p.Text, p.StructuralBonus)
	results, meta := d.EvaluateAll(ctx, &dispatch.Plan{
		Doc:     doc,
		Sets:    p.FeatureSets,
		Weights: p.WeightOverrides,
	})

	var summary snapshot.Summary
	for _, r := range results {
		summary = tracker.OnSample(snapshot.Sample{
			RawScore:       r.Score,
			Coverage:       r.Coverage,
			Confidence:     p.confidence(),
			ContextSummary: p.ContextSummary,
			Prompt:         p.Text,
		})
	}
	tracker.Finalize()

	return printJSON(evaluateAllOutput{Results: results, Meta: meta, Best: &summary})
}

func pruneCommand(c *cli.Context) error {
	bank, err := experience.FromEnv()
	if err != nil {
		return fmt.Errorf("opening experience bank: %w", err)
	}

	maxAge := time.Duration(c.Int("max-age-days")) * 24 * time.Hour
	stats := bank.Prune(c.Float64("threshold"), maxAge)
	return printJSON(stats)
}

func workerCommand(c *cli.Context) error {
	if c.Bool("probe") {
		fmt.Println(dispatch.ProbeValue)
		return nil
	}
	return dispatch.RunWorker(os.Stdin, os.Stdout)
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
