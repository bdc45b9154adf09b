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

// Turns the calibration metadata of a micrograph (ImageJ description tags, Aztec EDS
// exports, FEI/ThermoFisher SEM blocks) into one Record, and writes a Record back out
// as ImageJ-compatible tags.
package scaling

import (
	"fmt"

	"github.com/fibtoolbox/tiffscale/core/units"
)

// Editor names we recognise or write
const (
	EditorToolbox = "F.A. FIB Toolbox"
	EditorImageJ  = "ImageJ"
	EditorFEI     = "FEI-SEM"
	EditorAztec   = "EDS image by Aztec"

	// Written into ImageJ= when a calibrated record has no editor
	DefaultToolboxID = "FA.FIB.Toolbox"
	// Written into ImageJ= for the uncalibrated record
	UncalibratedEditor = "-"
)

// Record - pixel pitch of an image, X and Y in Unit per pixel. An empty Editor means no
// decoder recognised the metadata
type Record struct {
	X      float64    `json:"x"`
	Y      float64    `json:"y"`
	Unit   units.Unit `json:"unit"`
	Editor string     `json:"editor"`
}

// EmptyRecord - 1x1 px, no editor
func EmptyRecord() Record {
	return Record{X: 1, Y: 1, Unit: units.Pixel}
}

// Matched - true if a decoder produced this record
func (r Record) Matched() bool {
	return r.Editor != ""
}

// Calibrated - true if the record has a physical unit
func (r Record) Calibrated() bool {
	return r.Unit.IsValid()
}

// InUnit - returns the record with the pitch expressed in unit. Fails (returning the record unchanged) if either
// unit isn't a length unit
func (r Record) InUnit(unit units.Unit) (Record, bool) {
	x, okX := units.ConvertChecked(r.X, r.Unit, unit, false)
	y, okY := units.ConvertChecked(r.Y, r.Unit, unit, false)
	if !okX || !okY {
		return r, false
	}

	r.X = x
	r.Y = y
	r.Unit = unit
	return r, true
}

// PixelArea - area covered by one pixel, in a readable unit
func (r Record) PixelArea(decimals int) (float64, string) {
	if !r.Calibrated() {
		return r.X * r.Y, r.Unit.Area()
	}
	return units.HumanReadableArea(r.X*r.Y, r.Unit, decimals)
}

func (r Record) String() string {
	editor := r.Editor
	if editor == "" {
		editor = "none"
	}
	return fmt.Sprintf("%v x %v %v/px (%v)", r.X, r.Y, r.Unit, editor)
}
