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


package core

import (
	"encoding/hex"
	"encoding/json"

	"github.com/go-crypt/x/blake2b"
)

// CacheKey generates a stable cache key from the given key material using
// BLAKE2b hashing over its canonical JSON encoding. Maps marshal with sorted
// keys and structs in declaration order, so two calls with equivalent
// material produce the same key regardless of how the caller assembled it.
func CacheKey(material any) (string, error) {
	raw, err := json.Marshal(material)
	if err != nil {
		return "", err
	}
	h, _ := blake2b.New(32, nil) // 32 bytes = 256 bits
	h.Write(raw)
	return hex.EncodeToString(h.Sum(nil)), nil
}
