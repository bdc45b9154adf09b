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
	"sort"

	tiff "github.com/garyhouston/tiff66"
	"github.com/pkg/errors"
)

// Update - fields to set or remove in the first IFD of a TIFF
type Update struct {
	Rationals map[Tag]Rational
	Shorts    map[Tag]uint16
	Strings   map[Tag]string
	Remove    []Tag
}

func (u Update) touches(tag Tag) bool {
	if _, ok := u.Rationals[tag]; ok {
		return true
	}
	if _, ok := u.Shorts[tag]; ok {
		return true
	}
	if _, ok := u.Strings[tag]; ok {
		return true
	}
	for _, r := range u.Remove {
		if r == tag {
			return true
		}
	}
	return false
}

// Rewrite - returns a copy of the TIFF in data with the update applied to its first IFD. The IFD tree
// is re-serialised, pixel data is copied through untouched
func Rewrite(data []byte, upd Update) ([]byte, error) {
	valid, order, ifdPos := tiff.GetHeader(data)
	if !valid {
		return nil, errors.New("not a valid TIFF file")
	}

	root, err := tiff.GetIFDTree(data, order, ifdPos, tiff.TIFFSpace)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read TIFF IFD")
	}

	fields := []tiff.Field{}
	for _, f := range root.Fields {
		if !upd.touches(Tag(f.Tag)) {
			fields = append(fields, f)
		}
	}

	for tag, r := range upd.Rationals {
		fields = append(fields, makeRationalField(tag, r, order))
	}
	for tag, v := range upd.Shorts {
		fields = append(fields, makeShortField(tag, v, order))
	}
	for tag, s := range upd.Strings {
		fields = append(fields, makeASCIIField(tag, s))
	}

	sort.Slice(fields, func(i, j int) bool { return fields[i].Tag < fields[j].Tag })
	root.Fields = fields

	// The node carries the byte order it was read with
	root.Fix()
	out := make([]byte, tiff.HeaderSize+root.TreeSize())
	tiff.PutHeader(out, order, tiff.HeaderSize)
	next, err := root.PutIFDTree(out, tiff.HeaderSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to write TIFF IFD")
	}

	return out[:next], nil
}

func makeRationalField(tag Tag, r Rational, order binary.ByteOrder) tiff.Field {
	data := make([]byte, 8)
	order.PutUint32(data[0:4], r.Num)
	order.PutUint32(data[4:8], r.Denom)
	return tiff.Field{Tag: tiff.Tag(tag), Type: tiff.RATIONAL, Count: 1, Data: data}
}

func makeShortField(tag Tag, v uint16, order binary.ByteOrder) tiff.Field {
	data := make([]byte, 2)
	order.PutUint16(data, v)
	return tiff.Field{Tag: tiff.Tag(tag), Type: tiff.SHORT, Count: 1, Data: data}
}

func makeASCIIField(tag Tag, s string) tiff.Field {
	data := append([]byte(s), 0)
	return tiff.Field{Tag: tiff.Tag(tag), Type: tiff.ASCII, Count: uint32(len(data)), Data: data}
}
