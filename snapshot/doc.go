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


// Package snapshot persists the best artifact seen during an optimization
// run so that crashes, signals, and timeouts never lose it. A Tracker
// watches the sample stream and appends snapshots on three triggers: any
// raw-score improvement, strong coverage with a matching raw score, and a
// periodic autosave. A signal handler flushes the current best on
// interruption. All stores are append-only JSONL and every write is
// best-effort.
package snapshot
