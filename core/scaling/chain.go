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
	"github.com/fibtoolbox/tiffscale/core/logger"
	"github.com/fibtoolbox/tiffscale/core/tiffmeta"
)

// Decoder - interprets one vendor's metadata. Returns a record with an empty Editor if the
// metadata is not in its format. Must not modify meta
type Decoder interface {
	Name() string
	Decode(meta tiffmeta.TagReader, log logger.ILogger) Record
}

// Chain - decoders in priority order
type Chain struct {
	Decoders []Decoder
}

// DefaultChain - ImageJ (including Aztec EDS) first, then FEI
func DefaultChain() Chain {
	return Chain{
		Decoders: []Decoder{ImageJDecoder{}, FEIDecoder{}},
	}
}

// Resolve - returns the record of the first decoder that matches, or the empty record
func (c Chain) Resolve(meta tiffmeta.TagReader, log logger.ILogger) Record {
	for _, d := range c.Decoders {
		rec := d.Decode(meta, log)
		if rec.Matched() {
			log.Debugf("Scaling decoded by %v: %v", d.Name(), rec)
			return rec
		}
		log.Debugf("No %v scaling found", d.Name())
	}

	log.Infof("No scaling information found")
	return EmptyRecord()
}

// ResolveFile - reads the tags of a TIFF file and resolves them
func (c Chain) ResolveFile(data []byte, log logger.ILogger) (Record, error) {
	tags, err := tiffmeta.Read(data)
	if err != nil {
		return EmptyRecord(), err
	}
	return c.Resolve(tags, log), nil
}
