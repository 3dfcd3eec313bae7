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
	"io"

	"github.com/google/uuid"
	"github.com/hamba/avro/v2"

	"github.com/confluentinc/avro-stream-go/avrostream/codec"
)

// WriterConfig is used to pass multiple configuration options to the writer.
type WriterConfig struct {
	// Codec names the block compression codec.
	Codec string
	// BlockLength is the number of records buffered into one block.
	BlockLength int
	// Meta holds additional header metadata entries. The avro.schema and
	// avro.codec entries are always written and cannot be overridden.
	Meta map[string][]byte
}

// NewWriterConfig returns a new configuration instance with sane defaults.
func NewWriterConfig() *WriterConfig {
	c := &WriterConfig{}

	c.Codec = codec.Null
	c.BlockLength = 100

	return c
}

// ContainerWriter writes an Avro object container: header, then records
// batched into compressed blocks bounded by sync markers. The sync marker
// is freshly generated per container.
type ContainerWriter struct {
	w           io.Writer
	schema      avro.Schema
	compression codec.Codec
	sync        [syncLength]byte
	blockLength int

	pending []byte
	count   int64
	err     error
}

// NewContainerWriter creates a writer emitting records of the given schema
// to w. The header is written immediately. A nil conf is equivalent to
// NewWriterConfig().
func NewContainerWriter(w io.Writer, schema avro.Schema, conf *WriterConfig) (*ContainerWriter, error) {
	if conf == nil {
		conf = NewWriterConfig()
	}
	compression, err := codec.Get(conf.Codec)
	if err != nil {
		return nil, err
	}
	blockLength := conf.BlockLength
	if blockLength <= 0 {
		blockLength = 100
	}
	cw := &ContainerWriter{
		w:           w,
		schema:      schema,
		compression: compression,
		blockLength: blockLength,
	}
	marker := uuid.New()
	copy(cw.sync[:], marker[:])

	meta := make(map[string][]byte, len(conf.Meta)+2)
	for k, v := range conf.Meta {
		meta[k] = v
	}
	meta[SchemaKey] = []byte(schema.String())
	meta[CodecKey] = []byte(compression.Name())
	if _, err := w.Write(appendHeader(nil, meta, cw.sync)); err != nil {
		return nil, err
	}
	return cw, nil
}

// Append encodes one record (a *Record or a map[string]interface{}) into
// the current block, flushing it once BlockLength records are buffered.
func (cw *ContainerWriter) Append(v interface{}) error {
	if cw.err != nil {
		return cw.err
	}
	encoded, err := appendValue(cw.pending, cw.schema, v)
	if err != nil {
		return err
	}
	cw.pending = encoded
	cw.count++
	if cw.count >= int64(cw.blockLength) {
		return cw.Flush()
	}
	return nil
}

// Flush writes the buffered records as one block. It is a no-op when no
// records are pending.
func (cw *ContainerWriter) Flush() error {
	if cw.err != nil {
		return cw.err
	}
	if cw.count == 0 {
		return nil
	}
	compressed, err := cw.compression.Compress(cw.pending)
	if err != nil {
		return cw.fail(err)
	}
	frame := appendLong(nil, cw.count)
	frame = appendLong(frame, int64(len(compressed)))
	frame = append(frame, compressed...)
	frame = append(frame, cw.sync[:]...)
	if _, err := cw.w.Write(frame); err != nil {
		return cw.fail(err)
	}
	cw.pending = cw.pending[:0]
	cw.count = 0
	return nil
}

// Close flushes any pending block. It does not close the underlying
// writer.
func (cw *ContainerWriter) Close() error {
	return cw.Flush()
}

func (cw *ContainerWriter) fail(err error) error {
	cw.err = err
	return err
}
