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

package imageedit

import (
	"fmt"
	"image"
	"math"

	"github.com/fibtoolbox/tiffscale/core/scaling"
	"github.com/fibtoolbox/tiffscale/core/units"
	"github.com/pkg/errors"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

type barLength struct {
	// Image width (in the chosen unit) must exceed this...
	threshold float64
	// ...to use a bar of this length
	length float64
}

// Largest first
var barLengths = []barLength{
	{800, 500},
	{400, 250},
	{200, 100},
	{80, 50},
	{40, 25},
	{20, 10},
	{8, 5},
	{4, 2.5},
}

const defaultBarLength = 1

// Scalebar - where and how big a scalebar is drawn on an image
type Scalebar struct {
	Length float64
	Unit   units.Unit
	Label  string

	// Bar rectangle, label is centred below it
	Bar      image.Rectangle
	Stroke   int
	FontSize float64
}

// Layout - works out the scalebar for an image of the given size. The unit is chosen so a tenth of the
// image width is readable, and the returned record is the input record converted into that unit
func Layout(width int, height int, record scaling.Record) (Scalebar, scaling.Record, error) {
	if !record.Calibrated() {
		return Scalebar{}, record, errors.Errorf("can't draw scalebar for unit: %v", record.Unit)
	}
	if width <= 0 || height <= 0 || record.X <= 0 {
		return Scalebar{}, record, errors.Errorf("can't draw scalebar on %vx%v image with scaling %v", width, height, record.X)
	}

	physicalWidth := float64(width) * record.X
	_, unit := units.HumanReadableLength(physicalWidth/10, record.Unit, -1)

	working := record
	if unit != record.Unit {
		working, _ = record.InUnit(unit)
	}

	scaledWidth := float64(width) * working.X
	length := float64(defaultBarLength)
	for _, bl := range barLengths {
		if scaledWidth > bl.threshold {
			length = bl.length
			break
		}
	}

	stroke := int(math.Max(1, math.Round(float64(height)*0.004)))
	fontSize := math.Max(10, float64(height)*0.025)
	padRight := float64(width) * 0.015
	padBottom := float64(width)*0.01 + 2*float64(stroke) + fontSize

	barPx := int(math.Round(length / working.X))
	right := width - int(math.Round(padRight))
	top := height - int(math.Round(padBottom))

	bar := image.Rect(right-barPx, top, right, top+stroke).Intersect(image.Rect(0, 0, width, height))

	return Scalebar{
		Length:   length,
		Unit:     unit,
		Label:    fmt.Sprintf("%v %v", length, unit),
		Bar:      bar,
		Stroke:   stroke,
		FontSize: fontSize,
	}, working, nil
}

// Compose - returns an 8 bit copy of img with a white scalebar and its label drawn in the bottom right,
// along with the record in the unit the label uses
func Compose(img image.Image, record scaling.Record, faces FaceSource) (image.Image, scaling.Record, error) {
	bounds := img.Bounds()
	bar, working, err := Layout(bounds.Dx(), bounds.Dy(), record)
	if err != nil {
		return nil, record, err
	}

	face, err := faces.Face(bar.FontSize)
	if err != nil {
		return nil, record, errors.Wrap(err, "failed to create font face")
	}
	defer face.Close()

	out := ToEightBit(img)
	draw.Draw(out, bar.Bar, image.White, image.Point{}, draw.Src)

	d := font.Drawer{
		Dst:  out,
		Src:  image.White,
		Face: face,
	}

	labelWidth := d.MeasureString(bar.Label)
	centre := fixed.I(bar.Bar.Min.X + bar.Bar.Dx()/2)
	baseline := bar.Bar.Max.Y + bar.Stroke + face.Metrics().Ascent.Ceil()
	d.Dot = fixed.Point26_6{X: centre - labelWidth/2, Y: fixed.I(baseline)}
	d.DrawString(bar.Label)

	return out, working, nil
}
