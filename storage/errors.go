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

import "errors"

var (
	// ErrPathRequired indicates that an empty store path was provided.
	ErrPathRequired = errors.New("store path required")

	// ErrRewriteFailed indicates that both the atomic-replace and the
	// in-place rewrite of a store file failed. The prior file is intact.
	ErrRewriteFailed = errors.New("store rewrite failed")
)
