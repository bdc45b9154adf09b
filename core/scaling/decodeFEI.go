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
	"gopkg.in/ini.v1"
)

const (
	feiScanSection    = "Scan"
	feiPixelWidthKey  = "PixelWidth"
	feiPixelHeightKey = "PixelHeight"
)

// FEIDecoder - reads the [Scan] PixelWidth/PixelHeight (metres) of the INI-style block FEI/ThermoFisher
// SEMs store in a private tag
type FEIDecoder struct {
}

func (d FEIDecoder) Name() string {
	return "FEI"
}

func (d FEIDecoder) Decode(meta tiffmeta.TagReader, log logger.ILogger) Record {
	width, height, ok := readFEIPitch(meta, log)
	if !ok {
		return EmptyRecord()
	}

	factor, unit := units.AutodetectUnit(width)
	return Record{X: width * factor, Y: height * factor, Unit: unit, Editor: EditorFEI}
}

func readFEIPitch(meta tiffmeta.TagReader, log logger.ILogger) (float64, float64, bool) {
	if feiReader, ok := meta.(tiffmeta.FEIMetadataReader); ok {
		if sections, ok := feiReader.FEIMetadata(); ok {
			scan, ok := sections[feiScanSection]
			if !ok {
				return 0, 0, false
			}
			return parsePitchPair(scan[feiPixelWidthKey], scan[feiPixelHeightKey], log)
		}
	}

	for _, tag := range []tiffmeta.Tag{tiffmeta.TagFEIHelios, tiffmeta.TagFEISFEG} {
		text, ok := meta.ASCII(tag)
		if !ok {
			continue
		}

		cfg, err := ini.LoadSources(ini.LoadOptions{
			SkipUnrecognizableLines: true,
			IgnoreInlineComment:     true,
		}, []byte(text))
		if err != nil {
			log.Errorf("Failed to parse FEI metadata in tag %v: %v", tag, err)
			continue
		}

		if !cfg.HasSection(feiScanSection) {
			continue
		}

		scan := cfg.Section(feiScanSection)
		if !scan.HasKey(feiPixelWidthKey) || !scan.HasKey(feiPixelHeightKey) {
			continue
		}

		return parsePitchPair(scan.Key(feiPixelWidthKey).String(), scan.Key(feiPixelHeightKey).String(), log)
	}

	return 0, 0, false
}

func parsePitchPair(widthStr string, heightStr string, log logger.ILogger) (float64, float64, bool) {
	width, err := strconv.ParseFloat(strings.TrimSpace(widthStr), 64)
	if err != nil {
		log.Errorf("Invalid FEI pixel width \"%v\"", widthStr)
		return 0, 0, false
	}

	height, err := strconv.ParseFloat(strings.TrimSpace(heightStr), 64)
	if err != nil {
		log.Errorf("Invalid FEI pixel height \"%v\"", heightStr)
		return 0, 0, false
	}

	return width, height, true
}
