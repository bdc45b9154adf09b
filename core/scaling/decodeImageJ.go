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

package scaling

import (
	"strconv"
	"strings"

	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
	"github.com/fibtoolbox/tiffscale/core/units"
)

const aztecPixelWidthMarker = "PixelWidth_um>"

// ImageJDecoder - reads the resolution rationals and the ImageJ description (key=value lines).
// Also recognises Aztec EDS exports which put an XML-ish pixel width into the description
type ImageJDecoder struct {
}

func (d ImageJDecoder) Name() string {
	return "ImageJ"
}

func (d ImageJDecoder) Decode(meta tiffmeta.TagReader, log logger.ILogger) Record {
	result := EmptyRecord()

	// Resolution is pixels per unit, we want the pitch
	if meta.Has(tiffmeta.TagXResolution) && meta.Has(tiffmeta.TagYResolution) {
		if r, ok := meta.Rational(tiffmeta.TagXResolution); ok && r.Num != 0 {
			result.X = float64(r.Denom) / float64(r.Num)
		}
		if r, ok := meta.Rational(tiffmeta.TagYResolution); ok && r.Num != 0 {
			result.Y = float64(r.Denom) / float64(r.Num)
		}
	}

	desc, ok := meta.ASCII(tiffmeta.TagImageDescription)
	if !ok {
		return result
	}

	if strings.Contains(desc, aztecPixelWidthMarker) {
		if pitch, ok := readAztecPixelWidth(desc); ok {
			return Record{X: pitch, Y: pitch, Unit: units.Nanometre, Editor: EditorAztec}
		}
		log.Errorf("Failed to read Aztec pixel width from image description")
	}

	settings := readKeyValues(desc)

	if editor, ok := settings["ImageJ"]; ok {
		result.Editor = editorFromImageJ(editor)
	}

	if unitStr, ok := settings["unit"]; ok {
		result.Unit = units.Parse(unitStr)

		// Older toolbox versions failed to assign a unit to images with < 1 nm/px
		if !result.Unit.IsValid() && result.X > 0 && result.X < 1 {
			factor, unit := units.AutodetectUnit(result.X)
			log.Infof("Scale given but unit \"%v\" seems wrong, assuming %v", unitStr, unit)
			result.X *= factor
			result.Y *= factor
			result.Unit = unit
		}
	}

	return result
}

// Value between the marker and the next <, with a decimal comma allowed. Returned in nm
func readAztecPixelWidth(desc string) (float64, bool) {
	parts := strings.SplitN(desc, aztecPixelWidthMarker, 2)
	if len(parts) < 2 {
		return 0, false
	}

	value := parts[1]
	if end := strings.Index(value, "<"); end >= 0 {
		value = value[0:end]
	}

	value = strings.Replace(strings.TrimSpace(value), ",", ".", -1)
	um, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}

	return um * 1000, true
}

func readKeyValues(desc string) map[string]string {
	result := map[string]string{}
	for _, line := range strings.Split(desc, "\n") {
		line = strings.TrimRight(line, "\r")
		if len(line) <= 0 {
			continue
		}

		kv := strings.SplitN(line, "=", 2)
		if len(kv) < 2 {
			continue
		}

		result[kv[0]] = kv[1]
	}
	return result
}

func editorFromImageJ(value string) string {
	switch {
	case strings.Contains(value, EditorFEI):
		return EditorToolbox
	case strings.Contains(value, DefaultToolboxID) || strings.Contains(value, EditorToolbox):
		return EditorToolbox
	case value == "":
		return EditorImageJ
	}
	return value
}
