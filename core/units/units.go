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

// Metric length units used for micrograph calibration, ordered from the smallest
// (nm) to the largest (m), along with length/area conversions between them and
// helpers to pick a "human readable" unit for a given value.
package units

import (
	"math"
	"strings"
)

// Unit - name of a length unit, as written into ImageJ metadata
type Unit string

const (
	Nanometre  Unit = "nm"
	Micrometre Unit = "µm"
	Millimetre Unit = "mm"
	Centimetre Unit = "cm"
	Decimetre  Unit = "dm"
	Metre      Unit = "m"

	// Pixel - uncalibrated image, no physical unit known
	Pixel Unit = "px"
)

// AreaSuffix is appended to a length unit to mark it as an area unit
const AreaSuffix = "²"

type ladderStep struct {
	unit Unit
	// nm per unit
	factor float64
	// units per metre
	inverse float64
}

// Ordered smallest to largest. Never modified after init.
var ladder = []ladderStep{
	{Nanometre, 1, 1e9},
	{Micrometre, 1e3, 1e6},
	{Millimetre, 1e6, 1e3},
	{Centimetre, 1e7, 1e2},
	{Decimetre, 1e8, 10},
	{Metre, 1e9, 1},
}

// Spellings seen in the wild, mostly from ImageJ which writes µ escaped
var aliases = map[string]Unit{
	"um":       Micrometre,
	"u":        Micrometre,
	"micron":   Micrometre,
	"microns":  Micrometre,
	"\\u00B5m": Micrometre,
	"μm":       Micrometre, // greek mu, not the micro sign
	"pixel":    Pixel,
	"pixels":   Pixel,
}

// Units - returns the ladder, smallest unit first
func Units() []Unit {
	result := make([]Unit, len(ladder))
	for c, step := range ladder {
		result[c] = step.unit
	}
	return result
}

// Parse - maps a unit string onto a known unit if it's one of the spellings we recognise,
// otherwise returns it unchanged. Use IsValid to check the result.
func Parse(s string) Unit {
	s = strings.TrimSpace(s)
	if u, ok := aliases[s]; ok {
		return u
	}
	if u, ok := aliases[strings.ToLower(s)]; ok {
		return u
	}
	return Unit(s)
}

// IsValid - true if the unit is on the metric ladder (px is NOT valid here)
func (u Unit) IsValid() bool {
	return indexOf(u) >= 0
}

// Factor - nm per unit, 0 if unit is unknown
func (u Unit) Factor() float64 {
	idx := indexOf(u)
	if idx < 0 {
		return 0
	}
	return ladder[idx].factor
}

// Area - the unit string with the area suffix
func (u Unit) Area() string {
	return string(u) + AreaSuffix
}

func indexOf(u Unit) int {
	u = Unit(strings.TrimSuffix(string(u), AreaSuffix))
	for c, step := range ladder {
		if step.unit == u {
			return c
		}
	}
	return -1
}

// ConvertChecked - converts value between units, squared=true for areas. ok is false if either unit
// is not on the ladder, in which case value is returned unchanged
func ConvertChecked(value float64, from Unit, to Unit, squared bool) (float64, bool) {
	fromIdx := indexOf(from)
	toIdx := indexOf(to)
	if fromIdx < 0 || toIdx < 0 {
		return value, false
	}

	f := ladder[fromIdx].factor / ladder[toIdx].factor
	if squared {
		f *= f
	}
	return value * f, true
}

// Convert - see ConvertChecked, invalid units are treated as identity
func Convert(value float64, from Unit, to Unit, squared bool) float64 {
	result, _ := ConvertChecked(value, from, to, squared)
	return result
}

// ToBaseUnit - converts to nm (or nm² if squared)
func ToBaseUnit(value float64, unit Unit, squared bool) float64 {
	return Convert(value, unit, Nanometre, squared)
}

// HumanReadableLengthChecked - picks the largest unit in which value is still > 1. If decimals >= 0 the
// result is rounded to that many decimal places. ok is false for an unknown unit, where the value and
// unit are returned as given
func HumanReadableLengthChecked(value float64, unit Unit, decimals int) (float64, Unit, bool) {
	if !unit.IsValid() {
		return value, unit, false
	}

	base := ToBaseUnit(value, unit, false)
	pos := 0
	for c, step := range ladder {
		if base > step.factor {
			pos = c
		} else {
			break
		}
	}

	return round(base/ladder[pos].factor, decimals), ladder[pos].unit, true
}

// HumanReadableLength - see HumanReadableLengthChecked
func HumanReadableLength(value float64, unit Unit, decimals int) (float64, Unit) {
	v, u, _ := HumanReadableLengthChecked(value, unit, decimals)
	return v, u
}

// HumanReadableArea - same as HumanReadableLength but for areas. unit may or may not carry the area
// suffix, the returned unit always does
func HumanReadableArea(value float64, unit Unit, decimals int) (float64, string) {
	unit = Unit(strings.TrimSuffix(string(unit), AreaSuffix))
	if !unit.IsValid() {
		return value, unit.Area()
	}

	base := ToBaseUnit(value, unit, true)
	pos := -1
	f := 1.0
	for _, step := range ladder {
		sq := step.factor * step.factor
		if base > sq {
			f = sq
			pos++
		} else {
			break
		}
	}

	if pos < 0 {
		pos = 0
	}

	return round(base/f, decimals), ladder[pos].unit.Area()
}

// AreaInUnit - converts an area into the given (area) unit
func AreaInUnit(value float64, unit Unit, toUnit Unit) (float64, bool) {
	return ConvertChecked(value,
		Unit(strings.TrimSuffix(string(unit), AreaSuffix)),
		Unit(strings.TrimSuffix(string(toUnit), AreaSuffix)),
		true,
	)
}

// AutodetectUnit - for a raw pixel pitch with no trustworthy unit (as stored by FEI, in metres), walks the
// inverse factors from nm upwards and returns the factor/unit one step before the first one where the
// scaled value exceeds 1. Multiply the pitch by the returned factor to get it in the returned unit.
func AutodetectUnit(value float64) (float64, Unit) {
	pos := 0
	for c, step := range ladder {
		if value*step.inverse > 1 {
			if c > 0 {
				pos = c - 1
			}
			break
		}
	}

	return ladder[pos].inverse, ladder[pos].unit
}

func round(value float64, decimals int) float64 {
	if decimals < 0 {
		return value
	}
	p := math.Pow(10, float64(decimals))
	return math.Round(value*p) / p
}
