// Licensed to NASA JPL under one or more contributor
// license agreements. See the NOTICE file distributed with
// this work for additional information regarding copyright
// ownership. NASA JPL licenses this file to you under
// the Apache License, Version 2.0 (the "License"); you may
// not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing,
// software distributed under the License is distributed on an
// "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY
// KIND, either express or implied.  See the License for the
// specific language governing permissions and limitations
// under the License.

package batch

import (
	"fmt"
	"path"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// SummaryFileName - written into the scaled output dir
const SummaryFileName = "tiffscale-summary.json"

// Summary - counts over a run
type Summary struct {
	Total     int             `json:"total"`
	ByOutcome map[Outcome]int `json:"byOutcome"`
	ByEditor  map[string]int  `json:"byEditor"`
	Warnings  int             `json:"warnings"`
	Files     []FileResult    `json:"files"`
}

func Summarise(results []FileResult) Summary {
	s := Summary{
		Total:     len(results),
		ByOutcome: map[Outcome]int{},
		ByEditor:  map[string]int{},
		Files:     results,
	}

	for _, r := range results {
		s.ByOutcome[r.Outcome]++
		if r.Scaling.Matched() {
			s.ByEditor[r.Scaling.Editor]++
		}
		s.Warnings += len(r.Warnings)
	}

	return s
}

// Lines - printable summary, keys sorted
func (s Summary) Lines() []string {
	lines := []string{fmt.Sprintf("%v files", s.Total)}

	outcomes := maps.Keys(s.ByOutcome)
	slices.Sort(outcomes)
	for _, o := range outcomes {
		lines = append(lines, fmt.Sprintf("  %v: %v", o, s.ByOutcome[o]))
	}

	editors := maps.Keys(s.ByEditor)
	slices.Sort(editors)
	for _, e := range editors {
		lines = append(lines, fmt.Sprintf("  from %v: %v", e, s.ByEditor[e]))
	}

	if s.Warnings > 0 {
		lines = append(lines, fmt.Sprintf("  warnings: %v", s.Warnings))
	}
	return lines
}

// WriteSummary - saves the summary as JSON into the scaled output dir for dir, returns its path
func (p *Processor) WriteSummary(dir string, s Summary) (string, error) {
	summaryPath := path.Join(p.OutputDirsFor(dir).Scaled, SummaryFileName)
	return summaryPath, p.fs.WriteJSON(p.root, summaryPath, s)
}
