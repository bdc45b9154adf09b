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

package units

import (
	"fmt"
	"math"
	"testing"
)

func TestLadderMonotonic(t *testing.T) {
	all := Units()
	for c := 1; c < len(all); c++ {
		if all[c-1].Factor() >= all[c].Factor() {
			t.Errorf("factor of %v (%v) not below factor of %v (%v)", all[c-1], all[c-1].Factor(), all[c], all[c].Factor())
		}
	}
}

func TestConvertRoundTrip(t *testing.T) {
	values := []float64{0.001, 1, 2.5, 1234.5678, 9e8}
	for _, a := range Units() {
		for _, b := range Units() {
			for _, v := range values {
				for _, squared := range []bool{false, true} {
					there := Convert(v, a, b, squared)
					back := Convert(there, b, a, squared)
					if math.Abs(back-v) > v*1e-12 {
						t.Errorf("%v %v->%v->%v (squared=%v) came back as %v", v, a, b, a, squared, back)
					}
				}
			}
		}
	}
}

func Example_convert() {
	fmt.Println(Convert(1, Millimetre, Micrometre, false))
	fmt.Println(Convert(1500, Nanometre, Micrometre, false))
	fmt.Println(Convert(2, Millimetre, Micrometre, true))
	fmt.Println(Convert(3, Centimetre, Nanometre, false))
	fmt.Println(ToBaseUnit(4, Micrometre, false))

	v, ok := ConvertChecked(7, "xyz", Nanometre, false)
	fmt.Println(v, ok)
	v, ok = ConvertChecked(7, Nanometre, Pixel, false)
	fmt.Println(v, ok)

	// Output:
	// 1000
	// 1.5
	// 2e+06
	// 3e+07
	// 4000
	// 7 false
	// 7 false
}

func Example_humanReadableLength() {
	fmt.Println(HumanReadableLength(2500000, Nanometre, -1))
	fmt.Println(HumanReadableLength(0.5, Micrometre, -1))
	fmt.Println(HumanReadableLength(1200, Micrometre, -1))
	fmt.Println(HumanReadableLength(12.3456, Centimetre, 2))
	fmt.Println(HumanReadableLength(3, Metre, -1))
	fmt.Println(HumanReadableLength(0.1, Nanometre, -1))

	v, u, ok := HumanReadableLengthChecked(5, "furlong", -1)
	fmt.Println(v, u, ok)

	// Output:
	// 2.5 mm
	// 500 nm
	// 1.2 mm
	// 1.23 dm
	// 3 m
	// 0.1 nm
	// 5 furlong false
}

func Example_humanReadableArea() {
	fmt.Println(HumanReadableArea(2500000, Nanometre, -1))
	fmt.Println(HumanReadableArea(3, "mm²", -1))
	fmt.Println(HumanReadableArea(0.25, Nanometre, -1))
	fmt.Println(HumanReadableArea(123.456, Micrometre, 0))

	// Output:
	// 2.5 µm²
	// 3 mm²
	// 0.25 nm²
	// 123 µm²
}

func Example_areaInUnit() {
	fmt.Println(AreaInUnit(1, "mm²", "µm²"))
	fmt.Println(AreaInUnit(1, "mm²", "px"))

	// Output:
	// 1e+06 true
	// 1 false
}

func Example_autodetectUnit() {
	// FEI stores pitch in metres
	fmt.Println(AutodetectUnit(2.5e-9))
	fmt.Println(AutodetectUnit(1.2e-6))
	// Legacy ImageJ files with a broken unit tag
	fmt.Println(AutodetectUnit(0.5))

	// Output:
	// 1e+09 nm
	// 1e+09 nm
	// 1e+09 nm
}

func Example_parse() {
	for _, s := range []string{"nm", "micron", "\\u00B5m", "um", " mm ", "pixel", "xyz"} {
		u := Parse(s)
		fmt.Printf("%v|%v\n", u, u.IsValid())
	}

	// Output:
	// nm|true
	// µm|true
	// µm|true
	// µm|true
	// mm|true
	// px|false
	// xyz|false
}
