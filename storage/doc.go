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


// Package storage provides the file primitives shared by every persistent
// store in this system: newline-delimited JSON collections mutated by
// multiple independent OS processes.
//
// # Consistency model
//
// There is no database. Cross-process coordination happens exclusively
// through advisory file locks (flock) and atomic file replacement:
//
//   - ReadAll tolerates malformed lines (each row is independently
//     parseable; a torn or corrupt line is skipped, never fatal).
//   - Append holds an exclusive lock for the duration of a single write,
//     so interleaved appends from racing processes stay line-atomic.
//   - RewriteAll serializes the whole collection to a uniquely named
//     temporary file under lock, then renames it over the target. Readers
//     observe either the old file or the new one, never a partial write.
//
// Rewrites are last-writer-wins at whole-file granularity: two processes
// racing a rewrite may lose one update, but no write is ever left
// half-applied.
//
// # Degraded mode
//
// When the locking primitive is unavailable (unsupported filesystem),
// operations proceed without the lock and log a warning. Best-effort
// durability is preferred over blocking or failing.
package storage
