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

package tiffmeta

import (
	"bytes"
	"fmt"
	"image"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/image/tiff"
)

// Compression - pixel data compression used when writing TIFFs
type Compression string

const (
	CompressionNone    Compression = "none"
	CompressionDeflate Compression = "deflate"
)

// ParseCompression - case insensitive, empty string means deflate. The x/image TIFF encoder can't write
// LZW, so that's rejected here rather than failing every file later
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(CompressionDeflate), "zip":
		return CompressionDeflate, nil
	case string(CompressionNone), "raw":
		return CompressionNone, nil
	case "lzw":
		return "", fmt.Errorf("lzw compression is not supported for writing, use deflate or none")
	}
	return "", fmt.Errorf("unknown compression: %v", s)
}

func (c Compression) options() *tiff.Options {
	switch c {
	case CompressionNone:
		return &tiff.Options{Compression: tiff.Uncompressed}
	}
	return &tiff.Options{Compression: tiff.Deflate}
}

// DecodeImage - decodes the pixels of the first image in a TIFF
func DecodeImage(data []byte) (image.Image, error) {
	img, err := tiff.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode TIFF image")
	}
	return img, nil
}

// EncodeImage - writes img as a TIFF, then applies upd to its tags
func EncodeImage(img image.Image, compression Compression, upd Update) ([]byte, error) {
	var buf bytes.Buffer
	err := tiff.Encode(&buf, img, compression.options())
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode TIFF image")
	}

	return Rewrite(buf.Bytes(), upd)
}
