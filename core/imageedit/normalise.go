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
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ToEightBit - returns an 8 bit per channel copy of img with its origin at 0,0. 16 bit greyscale is
// stretched so the brightest pixel becomes 255, other greyscale stays greyscale, anything else becomes RGBA
func ToEightBit(img image.Image) draw.Image {
	bounds := img.Bounds()
	outRect := image.Rect(0, 0, bounds.Dx(), bounds.Dy())

	switch src := img.(type) {
	case *image.Gray16:
		return stretchGray16(src)
	case *image.Gray:
		out := image.NewGray(outRect)
		draw.Draw(out, outRect, src, bounds.Min, draw.Src)
		return out
	}

	if img.ColorModel() == color.GrayModel || img.ColorModel() == color.Gray16Model {
		out := image.NewGray(outRect)
		draw.Draw(out, outRect, img, bounds.Min, draw.Src)
		return out
	}

	out := image.NewRGBA(outRect)
	draw.Draw(out, outRect, img, bounds.Min, draw.Src)
	return out
}

func stretchGray16(src *image.Gray16) *image.Gray {
	bounds := src.Bounds()
	out := image.NewGray(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))

	max := uint32(0)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			if v := uint32(src.Gray16At(x, y).Y); v > max {
				max = v
			}
		}
	}

	// All black stays all black
	if max == 0 {
		return out
	}

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			v := uint32(src.Gray16At(x, y).Y)
			out.SetGray(x-bounds.Min.X, y-bounds.Min.Y, color.Gray{Y: uint8(v * 255 / max)})
		}
	}

	return out
}
