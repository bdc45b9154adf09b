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

package fileaccess

import (
	"fmt"
	"strings"
)

// Generic interface for reading/writing files. Images may sit on local disk or in an S3 bucket,
// so everything is addressed as a bucket (or root directory for local files) plus a path within it.
type FileAccess interface {
	// ListObjects - every file whose path (relative to bucket) starts with prefix, recursively
	ListObjects(bucket string, prefix string) ([]string, error)
	ObjectExists(bucket string, path string) (bool, error)

	ReadObject(bucket string, path string) ([]byte, error)
	WriteObject(bucket string, path string, data []byte) error

	ReadJSON(bucket string, path string, itemsPtr interface{}, emptyIfNotFound bool) error
	WriteJSON(bucket string, path string, itemsPtr interface{}) error

	IsNotFoundError(err error) bool
}

// IsS3Url - does this look like s3://bucket/path
func IsS3Url(url string) bool {
	return strings.HasPrefix(url, "s3://")
}

// SplitS3Url - returns bucket and path of an s3://bucket/path url. The path may be empty
func SplitS3Url(url string) (string, string, error) {
	trimmedUrl := strings.TrimPrefix(url, "s3://")
	if trimmedUrl == url {
		return "", "", fmt.Errorf("not a valid S3 url: %v", url)
	}

	// Bucket is the bit before the first slash
	bucket, path, _ := strings.Cut(trimmedUrl, "/")
	if len(bucket) <= 0 {
		return "", "", fmt.Errorf("failed to get bucket from S3 url: %v", url)
	}

	return bucket, strings.TrimSuffix(path, "/"), nil
}
