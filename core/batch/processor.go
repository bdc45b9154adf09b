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

// Runs the scaling pipeline over a directory of micrographs: resolve each image's calibration,
// write it back as ImageJ tags, and optionally write cropped and scalebar variants. Works the
// same on local directories and S3 prefixes, all access goes through fileaccess.FileAccess.
package batch

import (
	"path"
	"strings"

	"github.com/fibtoolbox/tiffscale/core/config"
	"github.com/fibtoolbox/tiffscale/core/fileaccess"
	"github.com/fibtoolbox/tiffscale/core/imageedit"
	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/fibtoolbox/tiffscale/core/scaling"
	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
	"github.com/fibtoolbox/tiffscale/core/utils"
)

// Extensions we treat as TIFF images
var tiffExtensions = []string{".tif", ".tiff"}

// Name used in output dir names if the input is the root of the bucket/directory
const rootDirName = "root"

// Processor - everything needed to process files in one bucket (or local root directory)
type Processor struct {
	fs          fileaccess.FileAccess
	root        string
	cfg         config.Config
	chain       scaling.Chain
	faces       imageedit.FaceSource
	log         logger.ILogger
	compression tiffmeta.Compression
	metrics     *Metrics
}

// NewProcessor - root is the S3 bucket or local root directory that paths are relative to. If faces
// is nil and the config asks for scalebars, fonts are loaded from the local file system
func NewProcessor(fs fileaccess.FileAccess, root string, cfg config.Config, faces imageedit.FaceSource, log logger.ILogger) (*Processor, error) {
	err := cfg.Validate()
	if err != nil {
		return nil, err
	}

	compression, err := tiffmeta.ParseCompression(cfg.Compression)
	if err != nil {
		return nil, err
	}

	if faces == nil && cfg.WriteScalebar {
		fonts, err := imageedit.LoadFonts(&fileaccess.FSAccess{}, cfg.FontPaths, log)
		if err != nil {
			return nil, err
		}
		log.Infof("Scalebar font: %v", fonts.Source)
		faces = fonts
	}

	return &Processor{
		fs:          fs,
		root:        root,
		cfg:         cfg,
		chain:       scaling.DefaultChain(),
		faces:       faces,
		log:         log,
		compression: compression,
		metrics:     NewMetrics(),
	}, nil
}

// Metrics - counters for everything this processor has done so far
func (p *Processor) Metrics() *Metrics {
	return p.metrics
}

// ListTIFFs - names (not paths) of the TIFF files directly inside dir, sorted
func (p *Processor) ListTIFFs(dir string) ([]string, error) {
	prefix := ""
	if len(dir) > 0 {
		prefix = strings.TrimSuffix(dir, "/") + "/"
	}

	paths, err := p.fs.ListObjects(p.root, prefix)
	if err != nil {
		return []string{}, err
	}

	names := []string{}
	for _, item := range paths {
		name := strings.TrimPrefix(item, prefix)
		if strings.Contains(name, "/") || !IsTIFFName(name) {
			continue
		}
		names = append(names, name)
	}

	// Listings come back sorted already
	return names, nil
}

// IsTIFFName - checks the file extension, any case
func IsTIFFName(name string) bool {
	return utils.ItemInSlice(strings.ToLower(path.Ext(name)), tiffExtensions)
}

// OutputDirs - where output variants for files in dir go. All are siblings of dir
type OutputDirs struct {
	Scaled   string
	Cut      string
	Scalebar string
}

// OutputDirsFor - output dirs for an input dir
func (p *Processor) OutputDirsFor(dir string) OutputDirs {
	base := dirBase(dir)

	scaled := p.cfg.OutputDirName
	if len(scaled) <= 0 {
		scaled = p.cfg.ScaledDirPrefix + base
	}

	return OutputDirs{
		Scaled:   siblingDir(dir, scaled),
		Cut:      siblingDir(dir, p.cfg.CutDirPrefix+base),
		Scalebar: siblingDir(dir, p.cfg.ScalebarDirPrefix+base),
	}
}

// IsOutputPath - true if the file path is one we could have written. Used by the lambda so it doesn't
// reprocess its own output
func (p *Processor) IsOutputPath(filePath string) bool {
	// SetScaling without an output dir name writes prefixed files
	if len(p.cfg.ScaledDirPrefix) > 0 && strings.HasPrefix(path.Base(filePath), p.cfg.ScaledDirPrefix) {
		return true
	}

	dir := path.Dir(filePath)
	if dir == "." {
		return false
	}

	base := path.Base(dir)
	if len(p.cfg.OutputDirName) > 0 && base == p.cfg.OutputDirName {
		return true
	}

	for _, prefix := range []string{p.cfg.ScaledDirPrefix, p.cfg.CutDirPrefix, p.cfg.ScalebarDirPrefix} {
		if len(prefix) > 0 && strings.HasPrefix(base, prefix) {
			return true
		}
	}
	return false
}

func dirBase(dir string) string {
	base := path.Base(strings.TrimSuffix(dir, "/"))
	if base == "." || base == "/" || len(base) <= 0 {
		return rootDirName
	}
	return base
}

func siblingDir(dir string, name string) string {
	return path.Join(path.Dir(strings.TrimSuffix(dir, "/")), name)
}
