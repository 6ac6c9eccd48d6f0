package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFence(t *testing.T) {
	t.Run("fenced with language tag", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, StripCodeFence("```json\n{\"a\":1}\n```"))
	})

	t.Run("unfenced text unchanged", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, StripCodeFence(`  {"a":1}  `))
	})

	t.Run("unterminated fence", func(t *testing.T) {
		assert.Equal(t, `{"a":1}`, StripCodeFence("```\n{\"a\":1}"))
	})
}

func TestParsePrompt(t *testing.T) {
	t.Run("well-formed candidate", func(t *testing.T) {
		raw := "```json\n" + `{
  "persona": "Senior tutorial author",
  "requirements": ["Explain each step clearly", "Reference screenshot identifiers"],
  "fallbackOutput": "Markdown with numbered sections",
  "styleGuide": "Concise, active voice"
}` + "\n```"

		config, parsed, parseError := ParsePrompt(raw)
		require.NotNil(t, config)
		assert.True(t, parsed)
		assert.Empty(t, parseError)
		assert.Equal(t, "Senior tutorial author", config.Persona)
		assert.Equal(t, []string{"Explain each step clearly", "Reference screenshot identifiers"}, config.RequirementsList)
		assert.Equal(t, "- Explain each step clearly\n- Reference screenshot identifiers", config.Requirements)
		assert.Equal(t, "Markdown with numbered sections", config.FallbackOutput)
		assert.Equal(t, "Concise, active voice", config.StyleGuide)
	})

	t.Run("requirements as bullet text", func(t *testing.T) {
		raw := `{"persona":"Editor","requirements":"- First directive\n* Second directive\n\nThird directive"}`

		config, parsed, _ := ParsePrompt(raw)
		require.NotNil(t, config)
		assert.True(t, parsed)
		assert.Equal(t, []string{"First directive", "Second directive", "Third directive"}, config.RequirementsList)
	})

	t.Run("structured fallback output", func(t *testing.T) {
		raw := `{"persona":"Editor","requirements":["x"],"fallbackOutput":{"title":"","steps":[]}}`

		config, parsed, _ := ParsePrompt(raw)
		require.NotNil(t, config)
		assert.True(t, parsed)
		assert.NotNil(t, config.FallbackOutputJSON)
		assert.Contains(t, config.FallbackOutput, "\"title\"")
		assert.Contains(t, config.FallbackOutput, "\n")
	})

	t.Run("fallback alias key", func(t *testing.T) {
		config, _, _ := ParsePrompt(`{"persona":"Editor","requirements":["x"],"fallback":"plain text"}`)
		require.NotNil(t, config)
		assert.Equal(t, "plain text", config.FallbackOutput)
	})

	t.Run("style guide as list", func(t *testing.T) {
		config, _, _ := ParsePrompt(`{"persona":"Editor","requirements":["x"],"styleGuide":["Short sentences","No jargon"]}`)
		require.NotNil(t, config)
		assert.Equal(t, "Short sentences\nNo jargon", config.StyleGuide)
	})

	t.Run("repairs missing key quote", func(t *testing.T) {
		raw := `{"persona": "Editor", requirements": ["Cover the basics"]}`

		config, parsed, parseError := ParsePrompt(raw)
		require.NotNil(t, config)
		assert.True(t, parsed)
		assert.Empty(t, parseError)
		assert.Equal(t, []string{"Cover the basics"}, config.RequirementsList)
	})

	t.Run("repairs key with stray trailing space", func(t *testing.T) {
		raw := `{"persona": "Editor", requirements ": ["Cover the basics"]}`

		config, parsed, parseError := ParsePrompt(raw)
		require.NotNil(t, config)
		assert.True(t, parsed)
		assert.Empty(t, parseError)
		assert.Equal(t, []string{"Cover the basics"}, config.RequirementsList)
	})

	t.Run("repairs trailing comma", func(t *testing.T) {
		config, parsed, _ := ParsePrompt(`{"persona":"Editor","requirements":["x"],}`)
		require.NotNil(t, config)
		assert.True(t, parsed)
	})

	t.Run("empty response", func(t *testing.T) {
		config, parsed, parseError := ParsePrompt("   \n")
		assert.Nil(t, config)
		assert.False(t, parsed)
		assert.Equal(t, "Empty response", parseError)
	})

	t.Run("unparseable text", func(t *testing.T) {
		config, parsed, parseError := ParsePrompt("just prose, not JSON at all")
		assert.Nil(t, config)
		assert.False(t, parsed)
		assert.NotEmpty(t, parseError)
	})

	t.Run("missing persona fails shape check but still extracts", func(t *testing.T) {
		config, parsed, parseError := ParsePrompt(`{"requirements":["Cover the basics"]}`)
		require.NotNil(t, config)
		assert.False(t, parsed)
		assert.Contains(t, parseError, "Schema validation failed")
		assert.Equal(t, []string{"Cover the basics"}, config.RequirementsList)
	})
}
