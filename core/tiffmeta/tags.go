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

// Reads and rewrites the handful of TIFF tags that carry calibration metadata:
// ImageDescription (270), X/YResolution (282/283) and the FEI private blocks
// (34680/34682). Everything else in the file is left to the TIFF libraries.
package tiffmeta

// Tag - TIFF tag number
type Tag uint16

const (
	TagImageDescription Tag = 270
	TagXResolution      Tag = 282
	TagYResolution      Tag = 283
	TagResolutionUnit   Tag = 296

	// FEI/ThermoFisher private tags holding an INI-style text block
	TagFEISFEG   Tag = 34680
	TagFEIHelios Tag = 34682
)

// ResolutionUnit values. ImageJ writes "none" for anything that isn't inches or cm and keeps the
// real unit in the description
const (
	ResolutionUnitNone uint16 = 1
	ResolutionUnitInch uint16 = 2
)

// Rational - TIFF RATIONAL value
type Rational struct {
	Num   uint32
	Denom uint32
}

// Float - value of the rational, 0 if the denominator is 0
func (r Rational) Float() float64 {
	if r.Denom == 0 {
		return 0
	}
	return float64(r.Num) / float64(r.Denom)
}

// TagReader - read access to the tags of one image, which is all the scaling decoders need
type TagReader interface {
	Has(tag Tag) bool
	Rational(tag Tag) (Rational, bool)
	ASCII(tag Tag) (string, bool)
}

// FEIMetadataReader - implemented by readers that can hand out the FEI metadata block already parsed
// into sections of key/values, eg FEIMetadata()["Scan"]["PixelWidth"]
type FEIMetadataReader interface {
	FEIMetadata() (map[string]map[string]string, bool)
}

// MapTags - TagReader over plain maps, for metadata that didn't come from a file
type MapTags struct {
	Rationals map[Tag]Rational
	Strings   map[Tag]string
	FEI       map[string]map[string]string
}

func (m MapTags) Has(tag Tag) bool {
	if _, ok := m.Rationals[tag]; ok {
		return true
	}
	_, ok := m.Strings[tag]
	return ok
}

func (m MapTags) Rational(tag Tag) (Rational, bool) {
	r, ok := m.Rationals[tag]
	return r, ok
}

func (m MapTags) ASCII(tag Tag) (string, bool) {
	s, ok := m.Strings[tag]
	return s, ok
}

func (m MapTags) FEIMetadata() (map[string]map[string]string, bool) {
	return m.FEI, m.FEI != nil
}
