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

	"golang.org/x/image/draw"
)

// CropToHeight - keeps the top height rows of img. Returns img itself if height is not within it
func CropToHeight(img image.Image, height int) image.Image {
	bounds := img.Bounds()
	if height <= 0 || height >= bounds.Dy() {
		return img
	}

	outRect := image.Rect(0, 0, bounds.Dx(), height)

	var out draw.Image
	switch img.(type) {
	case *image.Gray:
		out = image.NewGray(outRect)
	case *image.Gray16:
		out = image.NewGray16(outRect)
	case *image.RGBA64:
		out = image.NewRGBA64(outRect)
	default:
		out = image.NewRGBA(outRect)
	}

	draw.Draw(out, outRect, img, bounds.Min, draw.Src)
	return out
}
