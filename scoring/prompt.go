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
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/dillycone/ai-tutorial-gen/core"
)

var (
	fenceOpen    = regexp.MustCompile("^```[a-zA-Z]*")
	bulletPrefix = regexp.MustCompile(`^[\-\*•]\s*`)
	lineBreaks   = regexp.MustCompile(`\n+`)
)

// StripCodeFence removes a surrounding Markdown code fence (with optional
// language tag) from generated text.
func StripCodeFence(text string) string {
	trimmed := strings.TrimSpace(text)
	if strings.HasPrefix(trimmed, "```") {
		trimmed = fenceOpen.ReplaceAllString(trimmed, "")
		if idx := strings.LastIndex(trimmed, "```"); idx >= 0 {
			trimmed = trimmed[:idx]
		}
	}
	return strings.TrimSpace(trimmed)
}

// ParsePrompt decodes candidate text into a structured prompt configuration.
// It never fails hard: the third return value carries a diagnostic message
// for feedback, and the second reports whether the candidate was fully
// parsed (well-formed JSON, valid shape, non-empty persona, at least one
// requirement). Partially valid candidates still yield a config so callers
// can inspect what was recovered.
func ParsePrompt(raw string) (*core.PromptConfig, bool, string) {
	cleaned := StripCodeFence(raw)
	if cleaned == "" {
		return nil, false, "Empty response"
	}

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		repaired := repairJSON(cleaned)
		if err := json.Unmarshal([]byte(repaired), &data); err != nil {
			return nil, false, err.Error()
		}
	}
	if data == nil {
		return nil, false, "Response is not a JSON object"
	}

	parseError := ""
	schemaValid := true
	if err := validateShape(data); err != nil {
		parseError = fmt.Sprintf("Schema validation failed: %v", err)
		schemaValid = false
	}

	// Fields are extracted and normalized whether or not the shape check
	// passed, so near-miss candidates still contribute match text.
	persona := strings.TrimSpace(stringify(data["persona"]))
	requirements := normalizeRequirements(data["requirements"])

	var reqLines []string
	for _, item := range requirements {
		reqLines = append(reqLines, "- "+item)
	}

	fallbackText, fallbackJSON := normalizeFallback(data)
	style := normalizeStyle(data["styleGuide"])

	config := &core.PromptConfig{
		Persona:            persona,
		Requirements:       strings.Join(reqLines, "\n"),
		RequirementsList:   requirements,
		FallbackOutput:     fallbackText,
		FallbackOutputJSON: fallbackJSON,
		StyleGuide:         style,
	}

	fullyParsed := schemaValid && persona != "" && len(requirements) > 0
	return config, fullyParsed, parseError
}

// validateShape enforces the prompt schema: persona is a non-empty string,
// requirements is a string or array, fallbackOutput (optional) is a string,
// object, or array.
func validateShape(data map[string]any) error {
	persona, ok := data["persona"].(string)
	if !ok {
		return fmt.Errorf("persona must be a string")
	}
	if strings.TrimSpace(persona) == "" {
		return fmt.Errorf("persona must not be empty")
	}

	reqs, ok := data["requirements"]
	if !ok {
		return fmt.Errorf("requirements field is required")
	}
	switch reqs.(type) {
	case string, []any:
	default:
		return fmt.Errorf("requirements must be a string or an array")
	}

	switch data["fallbackOutput"].(type) {
	case nil, string, map[string]any, []any:
	default:
		return fmt.Errorf("fallbackOutput must be a string, object, or array")
	}
	return nil
}

func normalizeRequirements(raw any) []string {
	var out []string
	switch v := raw.(type) {
	case []any:
		for _, item := range v {
			if text := strings.TrimSpace(stringify(item)); text != "" {
				out = append(out, text)
			}
		}
	default:
		block := strings.TrimSpace(stringify(raw))
		if block == "" {
			return nil
		}
		for _, line := range lineBreaks.Split(block, -1) {
			line = strings.TrimSpace(bulletPrefix.ReplaceAllString(strings.TrimSpace(line), ""))
			if line != "" {
				out = append(out, line)
			}
		}
	}
	return out
}

// normalizeFallback accepts "fallback" as an alias key. Object and array
// values are kept structurally and also re-encoded as indented text for
// matching.
func normalizeFallback(data map[string]any) (string, any) {
	raw, ok := data["fallbackOutput"]
	if !ok {
		raw = data["fallback"]
	}
	switch v := raw.(type) {
	case nil:
		return "", nil
	case map[string]any, []any:
		encoded, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", v
		}
		return string(encoded), v
	default:
		return strings.TrimSpace(stringify(v)), nil
	}
}

func normalizeStyle(raw any) string {
	if items, ok := raw.([]any); ok {
		var lines []string
		for _, item := range items {
			if text := strings.TrimSpace(stringify(item)); text != "" {
				lines = append(lines, text)
			}
		}
		return strings.Join(lines, "\n")
	}
	return strings.TrimSpace(stringify(raw))
}

// stringify renders any decoded JSON value the way it would read in text.
func stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		// Avoid "1e+06"-style rendering for integral values.
		if t == float64(int64(t)) {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprintf("%g", t)
	case bool:
		return fmt.Sprintf("%t", t)
	default:
		encoded, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprintf("%v", t)
		}
		return string(encoded)
	}
}
