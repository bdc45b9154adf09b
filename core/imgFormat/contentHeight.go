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

package imgFormat

import (
	"bytes"
	"strconv"
	"strings"
)

const contentHeightKey = "ResolutionY="

// Longest value we'll consider after the key
const maxContentHeightLen = 32

// FindContentHeight - FEI SEMs append a data bar below the scanned area and record the height of the scan
// itself as ResolutionY= in their metadata block. This scans the raw file bytes for that line, so it works
// without parsing the TIFF structure. Returns false if there's no such line holding a positive integer
func FindContentHeight(data []byte) (int, bool) {
	key := []byte(contentHeightKey)

	for pos := 0; pos < len(data); {
		idx := bytes.Index(data[pos:], key)
		if idx < 0 {
			break
		}

		start := pos + idx + len(key)
		end := start
		for end < len(data) && end-start < maxContentHeightLen && data[end] != '\n' && data[end] != '\r' && data[end] != 0 {
			end++
		}

		height, err := strconv.Atoi(strings.TrimSpace(string(data[start:end])))
		if err == nil && height > 0 {
			return height, true
		}

		pos = start
	}

	return 0, false
}
