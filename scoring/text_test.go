package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeForMatch(t *testing.T) {
	t.Run("lowercases and collapses whitespace", func(t *testing.T) {
		assert.Equal(t, "deliver a tutorial", NormalizeForMatch("  Deliver \n\ta   Tutorial "))
	})

	t.Run("step-by-step becomes step by step", func(t *testing.T) {
		assert.Equal(t, "a step by step guide", NormalizeForMatch("A Step-by-Step guide"))
	})

	t.Run("hyphens become spaces", func(t *testing.T) {
		assert.Equal(t, "executive ready summary", NormalizeForMatch("executive-ready summary"))
	})
}

func TestTokens(t *testing.T) {
	t.Run("drops stop words and short tokens", func(t *testing.T) {
		assert.Equal(t, []string{"grounding", "video", "timeline"},
			Tokens("the grounding of a video in its timeline"))
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokens("the of a"))
	})
}

func TestFeatureHit(t *testing.T) {
	doc := NormalizeForMatch("The prompt must emphasize grounding in both the video actions and any captured screenshots.")
	tokens := TokenSet(doc)

	t.Run("literal substring hit", func(t *testing.T) {
		assert.True(t, FeatureHit("grounding", doc, tokens))
	})

	t.Run("token coverage hit", func(t *testing.T) {
		// 2 of 3 content tokens present (emphasize, screenshots; not chronological)
		assert.True(t, FeatureHit("emphasize chronological screenshots", doc, tokens))
	})

	t.Run("below threshold misses", func(t *testing.T) {
		assert.False(t, FeatureHit("cite exact timecodes per section", doc, tokens))
	})

	t.Run("feature with no content tokens never hits fuzzily", func(t *testing.T) {
		assert.False(t, FeatureHit("to be or", doc, tokens))
	})

	t.Run("long features use the relaxed threshold", func(t *testing.T) {
		// 5 of 10 content tokens present: short of 0.6 but exactly 0.5.
		feature := "emphasize grounding video actions screenshots chronology narration pacing citations verbosity"
		assert.True(t, FeatureHit(feature, doc, tokens))
	})
}
