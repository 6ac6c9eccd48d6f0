package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"

	"github.com/dillycone/ai-tutorial-gen/core"
)

func TestDecodePayload(t *testing.T) {
	t.Run("valid payload", func(t *testing.T) {
		p, err := decodePayload(strings.NewReader(`{
			"text": "{\"persona\":\"Editor\",\"requirements\":[\"x\"]}",
			"schemaType": "tutorial",
			"features": [{"text": "grounding", "category": "grounding"}]
		}`))
		require.NoError(t, err)
		assert.Equal(t, "tutorial", p.SchemaType)
		require.Len(t, p.Features, 1)
		assert.Equal(t, "grounding", p.Features[0].Text)
	})

	t.Run("missing text is rejected", func(t *testing.T) {
		_, err := decodePayload(strings.NewReader(`{"schemaType": "tutorial"}`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "text is required")
	})

	t.Run("malformed JSON is rejected", func(t *testing.T) {
		_, err := decodePayload(strings.NewReader(`{not json`))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decoding payload")
	})
}

func TestPayloadDefaults(t *testing.T) {
	p := &payload{}
	assert.Equal(t, 1.0, p.confidence())
	assert.True(t, p.persistExperience())

	conf := 0.25
	persist := false
	p = &payload{Confidence: &conf, PersistExperience: &persist}
	assert.Equal(t, 0.25, p.confidence())
	assert.False(t, p.persistExperience())
}

func TestPayloadExperienceMinScore(t *testing.T) {
	t.Run("env override", func(t *testing.T) {
		t.Setenv("TUTORGEN_EXPERIENCE_MIN_SCORE", "0.7")
		p := &payload{}
		assert.Equal(t, 0.7, p.experienceMinScore())
	})

	t.Run("payload beats env", func(t *testing.T) {
		t.Setenv("TUTORGEN_EXPERIENCE_MIN_SCORE", "0.7")
		floor := 0.3
		p := &payload{ExperienceMinScore: &floor}
		assert.Equal(t, 0.3, p.experienceMinScore())
	})
}

func TestCacheKeyMaterial(t *testing.T) {
	material := keyMaterial{
		SchemaType: "tutorial",
		Text:       "candidate",
		Features:   []core.Feature{{Text: "grounding"}},
		Weights:    map[string]float64{"grounding": 2, "titleHint": 0.5},
		Bonus:      0.05,
	}

	first, err := core.CacheKey(material)
	require.NoError(t, err)
	second, err := core.CacheKey(keyMaterial{
		SchemaType: "tutorial",
		Text:       "candidate",
		Features:   []core.Feature{{Text: "grounding"}},
		Weights:    map[string]float64{"titleHint": 0.5, "grounding": 2},
		Bonus:      0.05,
	})
	require.NoError(t, err)
	assert.Equal(t, first, second)

	changed := material
	changed.SchemaType = "meetingSummary"
	third, err := core.CacheKey(changed)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestWorkerProbeFlag(t *testing.T) {
	app := &cli.App{
		Name: "tutorgen",
		Commands: []*cli.Command{
			{
				Name:   "worker",
				Hidden: true,
				Action: workerCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "probe"},
				},
			},
		},
	}

	// The probe path must not read stdin.
	require.NoError(t, app.Run([]string{"tutorgen", "worker", "--probe"}))
}

func TestSetupLogger(t *testing.T) {
	t.Run("valid levels", func(t *testing.T) {
		for _, level := range []string{"debug", "info", "warn", "error"} {
			app := &cli.App{
				Name:   "tutorgen",
				Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
				Before: setupLogger,
				Action: func(c *cli.Context) error { return nil },
			}
			assert.NoError(t, app.Run([]string{"tutorgen", "--log-level", level}), level)
		}
	})

	t.Run("invalid level fails", func(t *testing.T) {
		app := &cli.App{
			Name:   "tutorgen",
			Flags:  []cli.Flag{&cli.StringFlag{Name: "log-level", Value: "info"}},
			Before: setupLogger,
			Action: func(c *cli.Context) error { return nil },
		}
		err := app.Run([]string{"tutorgen", "--log-level", "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log level")
	})
}
