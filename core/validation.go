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


package core

import "fmt"

// ValidatePromptConfig validates a parsed prompt according to domain rules.
//
// Validation rules:
//   - Persona must not be empty
//   - At least one requirement must be present
//
// NOT validated:
//   - FallbackOutput and StyleGuide (both optional)
func ValidatePromptConfig(config *PromptConfig) error {
	if config == nil {
		return fmt.Errorf("%w: config is nil", ErrInvalidPromptConfig)
	}

	if config.Persona == "" {
		return fmt.Errorf("%w: %w", ErrInvalidPromptConfig, ErrEmptyPersona)
	}

	if len(config.RequirementsList) == 0 {
		return fmt.Errorf("%w: %w", ErrInvalidPromptConfig, ErrNoRequirements)
	}

	return nil
}

// ValidateExperienceRecord validates an ExperienceRecord according to domain rules.
//
// Validation rules:
//   - SchemaType must not be empty
//   - Score must be within [0, 1]
//   - UsageCount must not be negative
func ValidateExperienceRecord(record *ExperienceRecord) error {
	if record == nil {
		return fmt.Errorf("%w: record is nil", ErrInvalidExperienceRecord)
	}

	if record.SchemaType == "" {
		return fmt.Errorf("%w: %w", ErrInvalidExperienceRecord, ErrEmptySchemaType)
	}

	if record.Score < 0 || record.Score > 1 {
		return fmt.Errorf("%w: %w: value %v", ErrInvalidExperienceRecord, ErrInvalidScore, record.Score)
	}

	if record.UsageCount < 0 {
		return fmt.Errorf("%w: usage count cannot be negative", ErrInvalidExperienceRecord)
	}

	return nil
}
