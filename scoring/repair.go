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

import "regexp"

var trailingComma = regexp.MustCompile(`,\s*([}\]])`)

// repairJSON attempts to fix common JSON formatting issues in generated text
// before giving up on a candidate: missing opening quotes before object keys
// and trailing commas before a closing brace or bracket.
func repairJSON(s string) string {
	result := []rune(s)
	fixed := make([]rune, 0, len(result)+64)

	i := 0
	for i < len(result) {
		ch := result[i]

		// After { or , look for unquoted keys. Example: `, persona":` is
		// rewritten to `, "persona":`.
		if ch == '{' || ch == ',' {
			fixed = append(fixed, ch)
			i++

			for i < len(result) && (result[i] == ' ' || result[i] == '\n' || result[i] == '\t') {
				fixed = append(fixed, result[i])
				i++
			}

			if i < len(result) && result[i] != '"' && isKeyRune(result[i]) {
				keyStart := i
				for i < len(result) && (isKeyRune(result[i]) || result[i] == ' ') {
					i++
				}

				// A bare key followed by ": lost its opening quote. Edge
				// spaces around the bare key are stray, not part of it.
				if i+1 < len(result) && result[i] == '"' && result[i+1] == ':' {
					fixed = append(fixed, '"')
					for j := keyStart; j < i; j++ {
						if result[j] == ' ' && (j == keyStart || j == i-1) {
							continue
						}
						fixed = append(fixed, result[j])
					}
					continue
				}
				fixed = append(fixed, result[keyStart:i]...)
			}
			continue
		}

		fixed = append(fixed, ch)
		i++
	}

	return trailingComma.ReplaceAllString(string(fixed), "$1")
}

func isKeyRune(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || r == '_'
}
