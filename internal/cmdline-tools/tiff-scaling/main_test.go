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

package main

import (
	"fmt"
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/fibtoolbox/tiffscale/core/awsutil"
	"github.com/fibtoolbox/tiffscale/core/config"
	"github.com/fibtoolbox/tiffscale/core/fileaccess"
	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
	"github.com/google/go-cmp/cmp"
)

func Example_s3Target() {
	fs := fileaccess.MakeS3Access(awsutil.NewMemS3())
	for _, key := range []string{"run12/a.tif", "run12", "a.TIF", ""} {
		t := s3Target(fs, "bucket", key)
		fmt.Printf("%q|%q|%v\n", t.root, t.dir, t.names)
	}

	// Output:
	// "bucket"|"run12"|[a.tif]
	// "bucket"|"run12"|[]
	// "bucket"|""|[a.TIF]
	// "bucket"|""|[]
}

func TestLocalTarget(t *testing.T) {
	root := t.TempDir()
	scans := filepath.Join(root, "scans")
	if err := os.MkdirAll(scans, 0777); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scans, "a.tif"), []byte("x"), 0666); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(scans, "a.txt"), []byte("x"), 0666); err != nil {
		t.Fatal(err)
	}

	dirTarget, err := localTarget(scans)
	if err != nil {
		t.Fatal(err)
	}
	if dirTarget.root != root || dirTarget.dir != "scans" || len(dirTarget.names) != 0 {
		t.Errorf("dir target: %+v", dirTarget)
	}

	fileTarget, err := localTarget(filepath.Join(scans, "a.tif"))
	if err != nil {
		t.Fatal(err)
	}
	if fileTarget.root != root || fileTarget.dir != "scans" || cmp.Diff([]string{"a.tif"}, fileTarget.names) != "" {
		t.Errorf("file target: %+v", fileTarget)
	}

	if _, err := localTarget(filepath.Join(scans, "a.txt")); err == nil {
		t.Errorf("expected error for non-TIFF file")
	}
	if _, err := localTarget(filepath.Join(root, "missing")); err == nil {
		t.Errorf("expected error for missing path")
	}
}

func TestApplyFlags(t *testing.T) {
	cfg := config.Defaults()
	cfg.OutputDirName = "from-config"
	cfg.Workers = 4

	f := cmdFlags{outDir: "flagged", scalebar: true, crop: true, workers: 9, compression: "none", verbose: true}
	applyFlags(&cfg, f, map[string]bool{"outdir": true, "scalebar": true, "compression": true})

	want := config.Defaults()
	want.OutputDirName = "flagged"
	want.WriteScalebar = true
	want.Workers = 4
	want.Compression = "none"
	want.LogLevel = "DEBUG"

	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestRunLocalDirectory(t *testing.T) {
	root := t.TempDir()
	data, err := tiffmeta.EncodeImage(image.NewGray(image.Rect(0, 0, 20, 10)), tiffmeta.CompressionNone, tiffmeta.Update{
		Strings: map[tiffmeta.Tag]string{tiffmeta.TagImageDescription: "ImageJ=FA.FIB.Toolbox\nunit=nm"},
		Rationals: map[tiffmeta.Tag]tiffmeta.Rational{
			tiffmeta.TagXResolution: {Num: 2, Denom: 5},
			tiffmeta.TagYResolution: {Num: 2, Denom: 5},
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	fs := &fileaccess.FSAccess{}
	if err := fs.WriteObject(root, "scans/a.tif", data); err != nil {
		t.Fatal(err)
	}

	cfg := config.Defaults()
	cfg.MetricsFile = filepath.Join(root, "metrics.prom")
	f := cmdFlags{path: filepath.Join(root, "scans"), summary: true}

	failed, err := run(f, cfg, &logger.NullLogger{})
	if err != nil || failed != 0 {
		t.Fatalf("run: %v failed, %v", failed, err)
	}

	for _, p := range []string{"scaled_scans/a.tif", "scaled_scans/tiffscale-summary.json", "metrics.prom"} {
		exists, err := fs.ObjectExists(root, p)
		if err != nil || !exists {
			t.Errorf("expected %v to exist: %v", p, err)
		}
	}

	// Setting the scaling of one file
	f = cmdFlags{path: filepath.Join(root, "scans", "a.tif"), set: 0.5, unit: "um"}
	failed, err = run(f, config.Defaults(), &logger.NullLogger{})
	if err != nil || failed != 0 {
		t.Fatalf("set: %v failed, %v", failed, err)
	}

	exists, _ := fs.ObjectExists(root, "scans/scaled_a.tif")
	if !exists {
		t.Errorf("set scaling output missing")
	}

	f = cmdFlags{path: filepath.Join(root, "scans"), set: 1, unit: "furlong"}
	_, err = run(f, config.Defaults(), &logger.NullLogger{})
	if err == nil || err.Error() != "unknown unit: furlong" {
		t.Errorf("expected unknown unit error, got %v", err)
	}
}
