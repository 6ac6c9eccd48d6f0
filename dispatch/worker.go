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


package dispatch

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/dillycone/ai-tutorial-gen/core"
	"github.com/dillycone/ai-tutorial-gen/scoring"
)

// ProbeValue is what a healthy worker prints for a probe run.
const ProbeValue = 42

// The worker protocol is one JSON request on stdin and one JSON response on
// stdout per process. Each set carries its index so the parent can place
// results regardless of arrival order.

type workerRequest struct {
	Normalized string             `json:"normalized"`
	Bonus      float64            `json:"bonus"`
	Weights    map[string]float64 `json:"weights,omitempty"`
	Sets       []workerSet        `json:"sets"`
}

type workerSet struct {
	Index    int            `json:"index"`
	Features []core.Feature `json:"features"`
}

type workerResult struct {
	Index  int              `json:"index"`
	Result core.ScoreResult `json:"result"`
}

type workerResponse struct {
	Results []workerResult `json:"results"`
}

// RunWorker executes one worker exchange: decode a request, grade every
// set, encode the response. Used by the hidden worker subcommand.
func RunWorker(stdin io.Reader, stdout io.Writer) error {
	var req workerRequest
	if err := json.NewDecoder(stdin).Decode(&req); err != nil {
		return fmt.Errorf("decoding worker request: %w", err)
	}

	doc := scoring.FromNormalized(req.Normalized, req.Bonus)
	resp := workerResponse{Results: make([]workerResult, 0, len(req.Sets))}
	for _, set := range req.Sets {
		resp.Results = append(resp.Results, workerResult{
			Index:  set.Index,
			Result: scoreOne(doc, set.Features, req.Weights),
		})
	}
	return json.NewEncoder(stdout).Encode(resp)
}
