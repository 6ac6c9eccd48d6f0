package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillycone/ai-tutorial-gen/core"
)

const parsedCandidate = `{
  "persona": "Senior tutorial author",
  "requirements": ["Explain each step clearly", "Emphasize grounding in the timeline"],
  "fallbackOutput": "Markdown with numbered sections"
}`

func TestPrepareDocument(t *testing.T) {
	t.Run("parsed candidate earns bonus and structured match text", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0.05)
		assert.True(t, doc.Parsed)
		assert.Equal(t, 0.05, doc.Bonus)
		assert.Contains(t, doc.Normalized, "explain each step clearly")
		require.NotNil(t, doc.Config)
	})

	t.Run("unparsed candidate matches raw text with no bonus", func(t *testing.T) {
		doc := PrepareDocument("A prose answer that mentions grounding.", 0.05)
		assert.False(t, doc.Parsed)
		assert.Zero(t, doc.Bonus)
		assert.NotEmpty(t, doc.ParseError)
		assert.Contains(t, doc.Normalized, "mentions grounding")
	})

	t.Run("negative bonus is ignored", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, -0.5)
		assert.Zero(t, doc.Bonus)
	})
}

func TestDocumentScore(t *testing.T) {
	features := []core.Feature{
		{Text: "Emphasize grounding in the timeline", Category: "grounding"},
		{Text: "Cite exact screenshot timecodes", Category: "screenshotCitation"},
	}

	t.Run("half coverage plus bonus", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0.05)
		result := doc.Score(features, nil)
		assert.Equal(t, 0.5, result.Coverage)
		assert.Equal(t, 0.55, result.Score)
		assert.Equal(t, []string{"Emphasize grounding in the timeline"}, result.Satisfied)
		assert.Equal(t, []string{"Cite exact screenshot timecodes"}, result.Missing)
		assert.Equal(t, 1, result.SatisfiedCount)
	})

	t.Run("score is capped at 1", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0.3)
		result := doc.Score(features[:1], nil)
		assert.Equal(t, 1.0, result.Coverage)
		assert.Equal(t, 1.0, result.Score)
	})

	t.Run("category override shifts weight", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0)
		result := doc.Score(features, map[string]float64{"grounding": 3.0})
		// hit weight 3 of total 4
		assert.Equal(t, 0.75, result.Coverage)
	})

	t.Run("exact text override beats category", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0)
		result := doc.Score(features, map[string]float64{
			"grounding":                           3.0,
			"emphasize grounding in the timeline": 1.0,
		})
		assert.Equal(t, 0.5, result.Coverage)
	})

	t.Run("negative override clamps to zero", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0)
		result := doc.Score(features, map[string]float64{"screenshotCitation": -2})
		// the miss carries no weight
		assert.Equal(t, 1.0, result.Coverage)
	})

	t.Run("weightless checklist has full coverage", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0.05)
		result := doc.Score(nil, nil)
		assert.Equal(t, 1.0, result.Coverage)
		assert.Equal(t, 1.0, result.Score)
	})

	t.Run("blank feature text is skipped", func(t *testing.T) {
		doc := PrepareDocument(parsedCandidate, 0)
		result := doc.Score([]core.Feature{{Text: "  "}, features[0]}, nil)
		assert.Equal(t, 1.0, result.Coverage)
		assert.Equal(t, 1, result.SatisfiedCount)
	})
}

func TestFromNormalized(t *testing.T) {
	src := PrepareDocument(parsedCandidate, 0.05)
	rebuilt := FromNormalized(src.Normalized, src.Bonus)

	features := []core.Feature{{Text: "Emphasize grounding in the timeline"}}
	assert.Equal(t, src.Score(features, nil), rebuilt.Score(features, nil))
}

func TestAnalyze(t *testing.T) {
	t.Run("satisfied checklist", func(t *testing.T) {
		analysis := Analyze(parsedCandidate, []core.Feature{{Text: "grounding"}}, nil, 0.05)
		assert.True(t, analysis.Parsed)
		assert.Equal(t, "Prompt satisfies the optimization brief.", analysis.Feedback)
		require.NotNil(t, analysis.Prompt)
		assert.Equal(t, "Senior tutorial author", analysis.Prompt.Persona)
	})

	t.Run("missing features are named, overflow summarized", func(t *testing.T) {
		features := []core.Feature{
			{Text: "alpha directive"}, {Text: "beta directive"}, {Text: "gamma directive"},
			{Text: "delta directive"}, {Text: "epsilon directive"},
		}
		analysis := Analyze(parsedCandidate, features, nil, 0)
		assert.Equal(t,
			"Add guidance about: alpha directive; beta directive; gamma directive (+2 more coverage goals)",
			analysis.Feedback)
	})

	t.Run("parse failure surfaces in feedback", func(t *testing.T) {
		analysis := Analyze("not json", []core.Feature{{Text: "grounding"}}, nil, 0.05)
		assert.False(t, analysis.Parsed)
		assert.Contains(t, analysis.Feedback, "Fix JSON formatting issues (")
		assert.Contains(t, analysis.Feedback, "Add guidance about: grounding")
	})
}
