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
	"os"
	"path"
	"path/filepath"

	"github.com/fibtoolbox/tiffscale/core/awsutil"
	"github.com/fibtoolbox/tiffscale/core/batch"
	"github.com/fibtoolbox/tiffscale/core/fileaccess"
	"github.com/pkg/errors"
)

// What to process: the directory (relative to root) and optionally the single file in it
type target struct {
	fs    fileaccess.FileAccess
	root  string
	dir   string
	names []string
}

func openTarget(inPath string, region string) (target, error) {
	if fileaccess.IsS3Url(inPath) {
		bucket, key, err := fileaccess.SplitS3Url(inPath)
		if err != nil {
			return target{}, err
		}

		sess, err := awsutil.GetSessionWithRegion(region)
		if err != nil {
			return target{}, errors.Wrap(err, "failed to create AWS session")
		}

		return s3Target(fileaccess.MakeS3Access(awsutil.GetS3(sess)), bucket, key), nil
	}

	return localTarget(inPath)
}

// A key that names a TIFF is taken to be a file, anything else a directory
func s3Target(fs fileaccess.FileAccess, bucket string, key string) target {
	t := target{fs: fs, root: bucket, dir: key}
	if batch.IsTIFFName(key) {
		t.dir = path.Dir(key)
		if t.dir == "." {
			t.dir = ""
		}
		t.names = []string{path.Base(key)}
	}
	return t
}

// Local paths are split so the root is the parent of the input directory, which is where outputs go
func localTarget(inPath string) (target, error) {
	absPath, err := filepath.Abs(inPath)
	if err != nil {
		return target{}, err
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return target{}, errors.Wrapf(err, "failed to open %v", inPath)
	}

	t := target{fs: &fileaccess.FSAccess{}}
	dirPath := absPath
	if !info.IsDir() {
		if !batch.IsTIFFName(absPath) {
			return target{}, errors.Errorf("not a TIFF file: %v", inPath)
		}
		dirPath = filepath.Dir(absPath)
		t.names = []string{filepath.Base(absPath)}
	}

	t.root = filepath.Dir(dirPath)
	t.dir = filepath.Base(dirPath)
	return t, nil
}
