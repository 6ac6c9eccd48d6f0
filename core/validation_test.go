package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidatePromptConfig(t *testing.T) {
	t.Run("valid config", func(t *testing.T) {
		config := &PromptConfig{
			Persona:          "Expert technical writer",
			RequirementsList: []string{"Cite screenshot IDs exactly as provided"},
		}
		assert.NoError(t, ValidatePromptConfig(config))
	})

	t.Run("nil config", func(t *testing.T) {
		err := ValidatePromptConfig(nil)
		assert.ErrorIs(t, err, ErrInvalidPromptConfig)
	})

	t.Run("empty persona", func(t *testing.T) {
		config := &PromptConfig{RequirementsList: []string{"anything"}}
		err := ValidatePromptConfig(config)
		assert.ErrorIs(t, err, ErrEmptyPersona)
	})

	t.Run("no requirements", func(t *testing.T) {
		config := &PromptConfig{Persona: "Expert"}
		err := ValidatePromptConfig(config)
		assert.ErrorIs(t, err, ErrNoRequirements)
	})
}

func TestValidateExperienceRecord(t *testing.T) {
	t.Run("valid record", func(t *testing.T) {
		rec := &ExperienceRecord{SchemaType: "tutorial", Score: 0.9}
		assert.NoError(t, ValidateExperienceRecord(rec))
	})

	t.Run("nil record", func(t *testing.T) {
		assert.ErrorIs(t, ValidateExperienceRecord(nil), ErrInvalidExperienceRecord)
	})

	t.Run("empty schema type", func(t *testing.T) {
		rec := &ExperienceRecord{Score: 0.9}
		assert.ErrorIs(t, ValidateExperienceRecord(rec), ErrEmptySchemaType)
	})

	t.Run("score out of range", func(t *testing.T) {
		rec := &ExperienceRecord{SchemaType: "tutorial", Score: 1.5}
		assert.ErrorIs(t, ValidateExperienceRecord(rec), ErrInvalidScore)
	})

	t.Run("negative usage count", func(t *testing.T) {
		rec := &ExperienceRecord{SchemaType: "tutorial", Score: 0.5, UsageCount: -1}
		assert.ErrorIs(t, ValidateExperienceRecord(rec), ErrInvalidExperienceRecord)
	})
}
