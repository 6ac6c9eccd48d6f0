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


// Package core contains the domain model for the prompt scoring system:
// features, score results, cache entries, experience records, and best
// snapshots, together with their validation rules and the canonical
// cache-key hash.
//
// All persisted rows use float Unix seconds for timestamps and round score
// components to four decimal places, matching the wire format consumed by
// the external optimizer.
package core
