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
	"github.com/fibtoolbox/tiffscale/core/fileaccess"
	"github.com/fibtoolbox/tiffscale/core/logger"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// FaceSource - makes font faces for a given pixel size
type FaceSource interface {
	Face(size float64) (font.Face, error)
}

// Fonts - a parsed font, from which faces of any size can be made. Safe to share between goroutines,
// the faces it returns are not
type Fonts struct {
	font *opentype.Font
	// Path of the font file, or "goregular" if we fell back to the built-in font
	Source string
}

const builtInFontName = "goregular"

// LoadFonts - tries each font file in order, falling back to the Go Regular font compiled into the binary
func LoadFonts(fs fileaccess.FileAccess, paths []string, log logger.ILogger) (*Fonts, error) {
	for _, path := range paths {
		if len(path) <= 0 {
			continue
		}

		data, err := fs.ReadObject("", path)
		if err != nil {
			log.Infof("Font %v not available: %v", path, err)
			continue
		}

		f, err := parseFont(data)
		if err != nil {
			log.Errorf("Failed to parse font %v: %v", path, err)
			continue
		}

		log.Debugf("Using font: %v", path)
		return &Fonts{font: f, Source: path}, nil
	}

	f, err := opentype.Parse(goregular.TTF)
	if err != nil {
		return nil, err
	}

	return &Fonts{font: f, Source: builtInFontName}, nil
}

// Font collections (.ttc) are accepted, we use the first font in them
func parseFont(data []byte) (*opentype.Font, error) {
	f, err := opentype.Parse(data)
	if err == nil {
		return f, nil
	}

	coll, collErr := opentype.ParseCollection(data)
	if collErr != nil || coll.NumFonts() <= 0 {
		return nil, err
	}

	return coll.Font(0)
}

// Face - size is in pixels
func (f *Fonts) Face(size float64) (font.Face, error) {
	return opentype.NewFace(f.font, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
}
