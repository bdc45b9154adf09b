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

	"golang.org/x/sync/errgroup"
)

// FileFunc - processes one file, ProcessFile for example
type FileFunc func(dir string, name string) FileResult

type indexedResult struct {
	idx    int
	result FileResult
}

// Run - calls fn for each name in dir on a bounded pool of workers. Results come back in the same
// order as names. A failing file never stops the others
func (p *Processor) Run(dir string, names []string, fn FileFunc) []FileResult {
	results := make([]FileResult, len(names))
	resultCh := make(chan indexedResult, len(names))

	var g errgroup.Group
	g.SetLimit(p.cfg.WorkerCount())

	for c, name := range names {
		idx := c
		fileName := name
		g.Go(func() error {
			resultCh <- indexedResult{idx, p.runOne(dir, fileName, fn)}
			return nil
		})
	}

	g.Wait()
	close(resultCh)

	for r := range resultCh {
		results[r.idx] = r.result
	}

	return results
}

func (p *Processor) runOne(dir string, name string, fn FileFunc) (result FileResult) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Errorf("Processing %v/%v panicked: %v", dir, name, r)
			result = FileResult{Name: name, Outcome: OutcomeFailed, Error: fmt.Sprintf("panic: %v", r)}
		}
	}()

	result = fn(dir, name)
	if result.Outcome == OutcomeFailed {
		p.log.Errorf("%v/%v: %v", dir, name, result.Error)
	}
	return result
}
