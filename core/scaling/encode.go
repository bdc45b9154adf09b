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
	"math"
	"math/big"
	"strings"

	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
	"github.com/fibtoolbox/tiffscale/core/units"
	"github.com/pkg/errors"
)

// Resolution is written with 6 decimal places
const resolutionDenominator = 1000000

// Maximum relative deviation between a written and re-read pitch
const VerifyTolerance = 0.01

// Tags - what gets written into an image for a record
type Tags struct {
	XResolution    tiffmeta.Rational
	YResolution    tiffmeta.Rational
	ResolutionUnit uint16
	Description    string
}

// ImageDescription is ASCII, so µ goes in the way ImageJ escapes it
func descriptionUnit(unit units.Unit) string {
	return strings.ReplaceAll(string(unit), "µ", "\\u00B5")
}

// Encode - builds ImageJ-compatible tags for a record
func Encode(record Record) Tags {
	editor := record.Editor
	if editor == "" {
		if record.Calibrated() {
			editor = DefaultToolboxID
		} else {
			editor = UncalibratedEditor
		}
	}

	return Tags{
		XResolution:    resolutionFromPitch(record.X),
		YResolution:    resolutionFromPitch(record.Y),
		ResolutionUnit: tiffmeta.ResolutionUnitNone,
		Description:    "ImageJ=" + editor + "\nunit=" + descriptionUnit(record.Unit),
	}
}

// Update - the tag update to apply to a TIFF
func (t Tags) Update() tiffmeta.Update {
	return tiffmeta.Update{
		Rationals: map[tiffmeta.Tag]tiffmeta.Rational{
			tiffmeta.TagXResolution: t.XResolution,
			tiffmeta.TagYResolution: t.YResolution,
		},
		Shorts: map[tiffmeta.Tag]uint16{
			tiffmeta.TagResolutionUnit: t.ResolutionUnit,
		},
		Strings: map[tiffmeta.Tag]string{
			tiffmeta.TagImageDescription: t.Description,
		},
	}
}

// round(1/pitch, 6) as a reduced rational
func resolutionFromPitch(pitch float64) tiffmeta.Rational {
	if pitch <= 0 || math.IsNaN(pitch) || math.IsInf(pitch, 0) {
		return tiffmeta.Rational{Num: 1, Denom: 1}
	}

	resolution := 1 / pitch
	if resolution >= math.MaxUint32 {
		return tiffmeta.Rational{Num: math.MaxUint32, Denom: 1}
	}

	scaled := math.Round(resolution * resolutionDenominator)
	if scaled == 0 {
		// Pitch too big for 6 decimals, store 1/pitch instead
		denom := math.Min(math.Max(math.Round(pitch), 1), math.MaxUint32)
		return tiffmeta.Rational{Num: 1, Denom: uint32(denom)}
	}

	r := new(big.Rat).SetFrac64(int64(scaled), resolutionDenominator)
	num := r.Num().Int64()
	denom := r.Denom().Int64()

	if num > math.MaxUint32 {
		// Give up precision in the denominator until the numerator fits
		value := float64(num) / float64(denom)
		denom = int64(math.Max(1, math.Floor(math.MaxUint32/value)))
		num = int64(math.Min(math.Round(value*float64(denom)), math.MaxUint32))
		r.SetFrac64(num, denom)
		num = r.Num().Int64()
		denom = r.Denom().Int64()
	}

	return tiffmeta.Rational{Num: uint32(num), Denom: uint32(denom)}
}

// Verify - compares the record we wrote to what we read back from the written file
func Verify(written Record, reread Record) error {
	if reread.Unit != written.Unit {
		return errors.Errorf("unit read back as %v, expected %v", reread.Unit, written.Unit)
	}

	if dev := deviation(written.X, reread.X); dev > VerifyTolerance {
		return errors.Errorf("x scaling read back as %v, expected %v (%.2f%% off)", reread.X, written.X, dev*100)
	}
	if dev := deviation(written.Y, reread.Y); dev > VerifyTolerance {
		return errors.Errorf("y scaling read back as %v, expected %v (%.2f%% off)", reread.Y, written.Y, dev*100)
	}

	return nil
}

func deviation(expected float64, actual float64) float64 {
	if expected == 0 {
		return math.Abs(actual)
	}
	return math.Abs(actual-expected) / math.Abs(expected)
}

// Manual - record for a user-supplied square pitch, the "set scaling" use case. The unit string
// goes through the alias table, and an empty one means nm. Editor is left empty so Encode writes
// the default toolbox id
func Manual(pitch float64, unit string) (Record, error) {
	u := units.Nanometre
	if unit != "" {
		u = units.Parse(unit)
	}

	if !u.IsValid() {
		return EmptyRecord(), errors.Errorf("unknown unit: %v", unit)
	}
	if pitch <= 0 || math.IsNaN(pitch) || math.IsInf(pitch, 0) {
		return EmptyRecord(), errors.Errorf("invalid scaling: %v", pitch)
	}

	return Record{X: pitch, Y: pitch, Unit: u}, nil
}
