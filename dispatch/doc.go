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


// Package dispatch evaluates one prepared document against many feature
// checklists at once. Evaluation always yields one result per checklist.
// Strategies form a cascade (worker subprocesses, then an in-process
// goroutine pool, then a plain sequential loop) and a strategy that fails
// or times out hands the whole batch to the next one. The sequential tail
// cannot fail; a checklist that panics mid-evaluation gets a zero-score
// placeholder.
package dispatch
