/**
 * Copyright 2025 Confluent Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 * http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package avrostream

import (
	"bytes"
	"sort"

	"github.com/hamba/avro/v2"
)

const (
	syncLength = 16

	// SchemaKey is the metadata key holding the schema JSON.
	SchemaKey = "avro.schema"
	// CodecKey is the metadata key naming the block compression codec.
	CodecKey = "avro.codec"
)

var magicBytes = []byte{'O', 'b', 'j', 1}

// metadataSchema describes the header metadata map.
var metadataSchema = avro.MustParse(`{"type":"map","values":"bytes"}`)

// ContainerState is the header metadata captured once at stream start and
// held for the life of the stream. The sync marker is compared against
// each block's trailing marker for corruption detection.
type ContainerState struct {
	// SchemaText is the writer schema JSON from the avro.schema entry.
	SchemaText string
	// Codec is the block compression codec name, "null" if absent.
	Codec string
	// Sync is the 16-byte sync marker repeated after every data block.
	Sync [syncLength]byte
	// Meta holds every metadata entry, including avro.schema and
	// avro.codec, so a rewritten stream can carry unknown keys through.
	Meta map[string][]byte
}

// readHeader decodes the container header as a single retriable unit:
// magic, metadata map, sync marker.
func readHeader(b *chunkBuffer) (*ContainerState, error) {
	p, err := b.next(len(magicBytes))
	if err != nil {
		return nil, err
	}
	if !bytes.Equal(p, magicBytes) {
		return nil, newError(ErrCorruptStream, "invalid header magic % x", p)
	}
	v, err := readValue(b, metadataSchema)
	if err != nil {
		return nil, err
	}
	raw := v.(map[string]interface{})
	meta := make(map[string][]byte, len(raw))
	for k, mv := range raw {
		meta[k] = mv.([]byte)
	}
	schemaText, ok := meta[SchemaKey]
	if !ok {
		return nil, newError(ErrCorruptStream, "header metadata is missing %s", SchemaKey)
	}
	state := &ContainerState{
		SchemaText: string(schemaText),
		Codec:      "null",
		Meta:       meta,
	}
	if name, ok := meta[CodecKey]; ok {
		state.Codec = string(name)
	}
	marker, err := b.next(syncLength)
	if err != nil {
		return nil, err
	}
	copy(state.Sync[:], marker)
	return state, nil
}

// appendHeader writes magic, the metadata map as one block with keys in
// sorted order, and the sync marker.
func appendHeader(dst []byte, meta map[string][]byte, sync [syncLength]byte) []byte {
	dst = append(dst, magicBytes...)
	if len(meta) > 0 {
		keys := make([]string, 0, len(meta))
		for k := range meta {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dst = appendLong(dst, int64(len(meta)))
		for _, k := range keys {
			dst = appendString(dst, k)
			dst = appendBytes(dst, meta[k])
		}
	}
	dst = appendLong(dst, 0)
	return append(dst, sync[:]...)
}
