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


// Package experience maintains the append-only corpus of past high-scoring
// evaluations and ranks it for retrieval. Records accumulate one JSONL line
// at a time; retrieval blends bag-of-words cosine similarity with stored
// score, recency, and usage frequency. Pruning and usage bumping are the
// only operations that rewrite the collection.
package experience
