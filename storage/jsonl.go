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


package storage

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"time"
)

// maxLineBytes bounds a single record line. Snapshot rows carry full prompt
// texts, so this is generous.
const maxLineBytes = 16 * 1024 * 1024

// ReadAll decodes every well-formed line of a JSONL file into a slice.
// Malformed lines are skipped, a missing file yields an empty slice; neither
// is an error.
func ReadAll[T any](path string) ([]T, error) {
	if path == "" {
		return nil, ErrPathRequired
	}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return []T{}, nil
		}
		return nil, err
	}
	defer f.Close()

	var records []T
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var record T
		if err := json.Unmarshal(line, &record); err != nil {
			slog.Debug("skipping malformed store line", "path", path, "err", err)
			continue
		}
		records = append(records, record)
	}
	if err := scanner.Err(); err != nil {
		// Partial reads are still usable; report what we have.
		slog.Warn("store read truncated", "path", path, "err", err)
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

// Append encodes one record and appends it as a single line under an
// exclusive lock. The store file is created on first use.
func Append[T any](path string, record T) error {
	line, err := json.Marshal(record)
	if err != nil {
		return err
	}

	lf, err := OpenLocked(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND)
	if err != nil {
		return err
	}
	defer lf.Close()

	_, err = lf.File.Write(append(line, '\n'))
	return err
}

// RewriteAll replaces the whole collection: records are serialized to a
// uniquely named temporary file while holding an exclusive lock, flushed,
// and atomically renamed over the target. If the replace path fails, it
// falls back to locking and truncating the target in place. On any failure
// the prior file is left intact.
func RewriteAll[T any](path string, records []T) error {
	if path == "" {
		return ErrPathRequired
	}

	tmp := fmt.Sprintf("%s.tmp.%d.%d", path, os.Getpid(), time.Now().UnixNano())
	if err := writeRecords(tmp, records); err == nil {
		if err := os.Rename(tmp, path); err == nil {
			return nil
		}
	}
	os.Remove(tmp) // stale temp file from the failed attempt

	if err := writeRecords(path, records); err != nil {
		return fmt.Errorf("%w: %w", ErrRewriteFailed, err)
	}
	return nil
}

// writeRecords serializes records line by line to path under lock,
// truncating any previous contents. Rows that fail to encode are dropped
// rather than aborting the write.
func writeRecords[T any](path string, records []T) error {
	lf, err := OpenLocked(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC)
	if err != nil {
		return err
	}
	defer lf.Close()

	w := bufio.NewWriter(lf.File)
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			slog.Debug("dropping unencodable store row", "path", path, "err", err)
			continue
		}
		if _, err := w.Write(append(line, '\n')); err != nil {
			return err
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	return lf.File.Sync()
}
