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


// Package cache is the file-backed evaluation result cache: a JSONL
// collection keyed by a content hash of the request, bounded by a TTL and a
// maximum entry count with least-recently-used eviction.
//
// The cache is an accelerator, never a dependency: every operation is
// best-effort, and I/O failures degrade to a miss or a no-op with a logged
// warning.
package cache
