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

package batch

import (
	"fmt"
	"image"
	"path"
	"time"

	"github.com/fibtoolbox/tiffscale/core/imageedit"
	"github.com/fibtoolbox/tiffscale/core/imgFormat"
	"github.com/fibtoolbox/tiffscale/core/scaling"
	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
	"github.com/pkg/errors"
)

// Outcome - what happened to one file
type Outcome string

const (
	OutcomeScaled       Outcome = "scaled"
	OutcomeUncalibrated Outcome = "uncalibrated"
	OutcomeSkipped      Outcome = "skipped"
	OutcomeFailed       Outcome = "failed"
)

// FileResult - returned for every file processed, whatever happened to it
type FileResult struct {
	Name     string         `json:"name"`
	Outcome  Outcome        `json:"outcome"`
	Scaling  scaling.Record `json:"scaling"`
	Outputs  []string       `json:"outputs,omitempty"`
	Warnings []string       `json:"warnings,omitempty"`
	Error    string         `json:"error,omitempty"`
}

func (r *FileResult) fail(err error) FileResult {
	r.Outcome = OutcomeFailed
	r.Error = err.Error()
	return *r
}

func (r *FileResult) warn(format string, a ...interface{}) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, a...))
}

// ProcessFile - reads the scaling of dir/name and writes it back out as ImageJ tags into the scaled
// output dir. Depending on config, also writes a version cropped to the content height and a version
// with a scalebar drawn on it
func (p *Processor) ProcessFile(dir string, name string) FileResult {
	start := time.Now()
	result := p.processFile(dir, name)
	p.metrics.observe(result, time.Since(start))
	return result
}

func (p *Processor) processFile(dir string, name string) FileResult {
	result := FileResult{Name: name, Scaling: scaling.EmptyRecord()}
	inPath := path.Join(dir, name)
	outDirs := p.OutputDirsFor(dir)
	scaledPath := path.Join(outDirs.Scaled, name)

	if p.cfg.SkipExisting {
		exists, err := p.fs.ObjectExists(p.root, scaledPath)
		if err != nil {
			return result.fail(errors.Wrapf(err, "failed to check for %v", scaledPath))
		}
		if exists {
			p.log.Debugf("Skipping %v, %v already exists", inPath, scaledPath)
			result.Outcome = OutcomeSkipped
			return result
		}
	}

	data, err := p.fs.ReadObject(p.root, inPath)
	if err != nil {
		return result.fail(errors.Wrapf(err, "failed to read %v", inPath))
	}

	p.log.Debugf("Processing %v", inPath)
	record, err := p.chain.ResolveFile(data, p.log)
	if err != nil {
		return result.fail(errors.Wrapf(err, "failed to read tags of %v", inPath))
	}
	result.Scaling = record

	img, err := tiffmeta.DecodeImage(data)
	if err != nil {
		return result.fail(errors.Wrapf(err, "failed to decode %v", inPath))
	}

	err = p.writeImage(&result, img, record, scaledPath, true)
	if err != nil {
		return result.fail(err)
	}

	if record.Calibrated() {
		result.Outcome = OutcomeScaled
		p.log.Infof("%v: %v", inPath, record)
	} else {
		result.Outcome = OutcomeUncalibrated
		p.log.Infof("%v: no scaling information found", inPath)
	}

	if !p.cfg.WriteCropped && !p.cfg.WriteScalebar {
		return result
	}

	// Instrument info strips are not part of the picture
	content := img
	if height, ok := imgFormat.FindContentHeight(data); ok {
		content = imageedit.CropToHeight(img, height)
		p.log.Debugf("%v: content height %v of %v", inPath, content.Bounds().Dy(), img.Bounds().Dy())
	}

	if p.cfg.WriteCropped {
		if content.Bounds().Dy() < img.Bounds().Dy() {
			err = p.writeImage(&result, content, record, path.Join(outDirs.Cut, name), false)
			if err != nil {
				return result.fail(err)
			}
		} else {
			p.log.Debugf("%v: no content height found, not cropping", inPath)
		}
	}

	if p.cfg.WriteScalebar {
		if !record.Calibrated() {
			result.warn("no scalebar drawn, image is not calibrated")
			return result
		}

		withBar, barRecord, err := imageedit.Compose(content, record, p.faces)
		if err != nil {
			result.warn("no scalebar drawn: %v", err)
			return result
		}

		err = p.writeImage(&result, withBar, barRecord, path.Join(outDirs.Scalebar, name), false)
		if err != nil {
			return result.fail(err)
		}
	}

	return result
}

// SetScaling - writes the given scaling into dir/name. The output goes into a folder inside dir named
// by OutputDirName, or next to the input with a scaled_ prefix if that isn't set
func (p *Processor) SetScaling(dir string, name string, record scaling.Record) FileResult {
	start := time.Now()
	result := p.setScaling(dir, name, record)
	p.metrics.observe(result, time.Since(start))
	return result
}

func (p *Processor) setScaling(dir string, name string, record scaling.Record) FileResult {
	result := FileResult{Name: name, Scaling: record}
	inPath := path.Join(dir, name)

	outPath := path.Join(dir, p.cfg.ScaledDirPrefix+name)
	if len(p.cfg.OutputDirName) > 0 {
		outPath = path.Join(dir, p.cfg.OutputDirName, name)
	}

	data, err := p.fs.ReadObject(p.root, inPath)
	if err != nil {
		return result.fail(errors.Wrapf(err, "failed to read %v", inPath))
	}

	img, err := tiffmeta.DecodeImage(data)
	if err != nil {
		return result.fail(errors.Wrapf(err, "failed to decode %v", inPath))
	}

	err = p.writeImage(&result, img, record, outPath, true)
	if err != nil {
		return result.fail(err)
	}

	result.Outcome = OutcomeScaled
	p.log.Infof("%v: set to %v", inPath, record)
	return result
}

// Encodes the image with the record's tags and writes it. If verify is set, the written file is decoded
// again and any difference in scaling is added as a warning
func (p *Processor) writeImage(result *FileResult, img image.Image, record scaling.Record, outPath string, verify bool) error {
	tags := scaling.Encode(record)
	out, err := tiffmeta.EncodeImage(img, p.compression, tags.Update())
	if err != nil {
		return errors.Wrapf(err, "failed to encode %v", outPath)
	}

	err = p.fs.WriteObject(p.root, outPath, out)
	if err != nil {
		return errors.Wrapf(err, "failed to write %v", outPath)
	}
	result.Outputs = append(result.Outputs, outPath)

	if verify && record.Calibrated() {
		reread, err := p.chain.ResolveFile(out, p.log)
		if err == nil {
			err = scaling.Verify(record, reread)
		}
		if err != nil {
			result.warn("%v: %v", outPath, err)
			p.log.Errorf("Verification of %v failed: %v", outPath, err)
		}
	}

	return nil
}
