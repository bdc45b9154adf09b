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
	"encoding/binary"
	"strings"

	tiff "github.com/garyhouston/tiff66"
	"github.com/pkg/errors"
)

// FileTags - the fields of the first IFD of a TIFF file
type FileTags struct {
	order  binary.ByteOrder
	fields map[Tag]tiff.Field
}

// Read - parses the TIFF header and first IFD of data. Only the tag table is interpreted,
// pixel data is not decoded
func Read(data []byte) (*FileTags, error) {
	valid, order, ifdPos := tiff.GetHeader(data)
	if !valid {
		return nil, errors.New("not a valid TIFF file")
	}

	root, err := tiff.GetIFDTree(data, order, ifdPos, tiff.TIFFSpace)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read TIFF IFD")
	}

	result := &FileTags{order: order, fields: map[Tag]tiff.Field{}}
	for _, f := range root.Fields {
		result.fields[Tag(f.Tag)] = f
	}

	return result, nil
}

func (t *FileTags) Has(tag Tag) bool {
	_, ok := t.fields[tag]
	return ok
}

func (t *FileTags) Rational(tag Tag) (Rational, bool) {
	f, ok := t.fields[tag]
	if !ok || f.Type != tiff.RATIONAL || len(f.Data) < 8 {
		return Rational{}, false
	}

	return Rational{
		Num:   t.order.Uint32(f.Data[0:4]),
		Denom: t.order.Uint32(f.Data[4:8]),
	}, true
}

// Short - value of a single SHORT field
func (t *FileTags) Short(tag Tag) (uint16, bool) {
	f, ok := t.fields[tag]
	if !ok || f.Type != tiff.SHORT || len(f.Data) < 2 {
		return 0, false
	}
	return t.order.Uint16(f.Data[0:2]), true
}

func (t *FileTags) ASCII(tag Tag) (string, bool) {
	f, ok := t.fields[tag]
	if !ok {
		return "", false
	}

	// Some vendors write their text blocks as UNDEFINED/BYTE rather than ASCII, we don't mind
	if f.Type != tiff.ASCII && f.Type != tiff.UNDEFINED && f.Type != tiff.BYTE {
		return "", false
	}

	return strings.TrimRight(string(f.Data), "\x00"), true
}
