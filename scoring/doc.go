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


// Package scoring grades candidate text against weighted feature checklists.
//
// A feature is satisfied when its normalized text occurs verbatim in the
// normalized document, or when enough of its content tokens appear in the
// document's token set (0.6 coverage, relaxed to 0.5 for long features).
//
// Before matching, the candidate is parsed as a structured prompt (persona,
// requirements, optional fallback output and style guide). When parsing and
// validation succeed, the parsed fields rather than the raw text form the
// evaluated document and a structural bonus is added to the score. A parse
// failure is never an error: the raw text is scored with zero bonus.
package scoring
