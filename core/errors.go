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

import "errors"

// Domain validation errors
var (
	// ErrInvalidPromptConfig indicates a parsed prompt failed validation.
	ErrInvalidPromptConfig = errors.New("invalid prompt config")

	// ErrEmptyPersona indicates the persona field is empty.
	ErrEmptyPersona = errors.New("persona cannot be empty")

	// ErrNoRequirements indicates the requirements list is empty.
	ErrNoRequirements = errors.New("at least one requirement is required")

	// ErrInvalidExperienceRecord indicates an ExperienceRecord failed validation.
	ErrInvalidExperienceRecord = errors.New("invalid experience record")

	// ErrEmptySchemaType indicates the schema type field is empty.
	ErrEmptySchemaType = errors.New("schema type cannot be empty")

	// ErrInvalidScore indicates a score outside the [0,1] range.
	ErrInvalidScore = errors.New("score must be between 0 and 1")
)
