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
	"errors"
	"io"

	"github.com/hamba/avro/v2"

	"github.com/confluentinc/avro-stream-go/avrostream/codec"
)

type parserState int

const (
	stateHeader parserState = iota
	stateBlock
	stateRecords
	stateEnd
)

// StreamParserConfig is used to pass multiple configuration options to the parser.
type StreamParserConfig struct {
	// StripFields names the direct fields of the root record to remove
	// from every record and from the output schema.
	StripFields []string
	// Transformer overrides the StripFields-derived transformer. When
	// set, StripFields is ignored.
	Transformer Transformer
	// ChunkSize is the read size hint for pulling from the byte source.
	ChunkSize int
}

// NewStreamParserConfig returns a new configuration instance with sane defaults.
func NewStreamParserConfig() *StreamParserConfig {
	c := &StreamParserConfig{}

	c.ChunkSize = defaultChunkSize

	return c
}

// StreamParser incrementally decodes an Avro object container from a byte
// source that delivers data in arbitrary, possibly tiny, chunks. Each call
// to Next produces exactly one transformed record, no matter how the
// underlying reads are sliced; a decode attempt that runs out of bytes is
// retried from its checkpoint once more data arrives.
//
// A StreamParser is a single-goroutine pull pipeline: Next must not be
// called concurrently.
type StreamParser struct {
	buf         *chunkBuffer
	transformer Transformer

	state       parserState
	container   *ContainerState
	schema      avro.Schema
	rootRecord  *avro.RecordSchema
	outSchema   avro.Schema
	compression codec.Codec

	blockRemaining int64
	blockLen       int64
	blockRead      int64
	blockBuf       *chunkBuffer

	err error
}

// NewStreamParser creates a parser reading the container from source.
// A nil conf is equivalent to NewStreamParserConfig().
func NewStreamParser(source io.Reader, conf *StreamParserConfig) (*StreamParser, error) {
	if source == nil {
		return nil, newError(ErrSourceExhausted, "nil byte source")
	}
	if conf == nil {
		conf = NewStreamParserConfig()
	}
	t := conf.Transformer
	if t == nil {
		if len(conf.StripFields) > 0 {
			t = NewFieldStripper(conf.StripFields...)
		} else {
			t = nopTransformer{}
		}
	}
	return &StreamParser{
		buf:         newChunkBuffer(source, conf.ChunkSize),
		transformer: t,
	}, nil
}

// Next returns the next transformed record. It returns io.EOF at a clean
// end of stream; any other error is fatal and the stream is unusable
// thereafter. A record is only returned once it is fully decoded,
// transformed and re-encoded -- no partial output is ever emitted.
func (p *StreamParser) Next() (*Record, error) {
	if p.err != nil {
		return nil, p.err
	}
	if err := p.advance(); err != nil {
		return nil, p.fail(err)
	}
	if p.state == stateEnd {
		return nil, io.EOF
	}
	rec, err := p.decodeRecord()
	if err != nil {
		return nil, p.fail(err)
	}
	return rec, nil
}

// NextBlock consumes the remaining records of the current block (the whole
// block when called at a boundary) and returns the record count consumed
// and their concatenated encodings. It returns io.EOF at a clean end.
func (p *StreamParser) NextBlock() (int64, []byte, error) {
	if p.err != nil {
		return 0, nil, p.err
	}
	if err := p.advance(); err != nil {
		return 0, nil, p.fail(err)
	}
	if p.state == stateEnd {
		return 0, nil, io.EOF
	}
	count := p.blockRemaining
	var out []byte
	for p.state == stateRecords {
		rec, err := p.decodeRecord()
		if err != nil {
			return 0, nil, p.fail(err)
		}
		out = append(out, rec.Bytes...)
	}
	return count, out, nil
}

// Schema returns the writer schema, nil before the header has been read.
func (p *StreamParser) Schema() avro.Schema {
	return p.schema
}

// OutputSchema returns the transformed (reduced) schema records are
// re-encoded against, nil before the header has been read.
func (p *StreamParser) OutputSchema() avro.Schema {
	return p.outSchema
}

// Container returns the captured header state, nil before the header has
// been read.
func (p *StreamParser) Container() *ContainerState {
	return p.container
}

func (p *StreamParser) fail(err error) error {
	p.err = err
	return err
}

// advance drives the state machine until a record can be decoded or the
// stream has cleanly ended.
func (p *StreamParser) advance() error {
	for {
		switch p.state {
		case stateHeader:
			if err := p.decodeHeader(); err != nil {
				return err
			}
		case stateBlock:
			if err := p.decodeBlockHeader(); err != nil {
				return err
			}
		default:
			return nil
		}
	}
}

// ensureHeader reads the container header if it has not been read yet.
func (p *StreamParser) ensureHeader() error {
	if p.err != nil {
		return p.err
	}
	if p.state != stateHeader {
		return nil
	}
	if err := p.decodeHeader(); err != nil {
		return p.fail(err)
	}
	return nil
}

func (p *StreamParser) decodeHeader() error {
	var state *ContainerState
	_, err := p.buf.decodeUnit(func() error {
		var err error
		state, err = readHeader(p.buf)
		return err
	})
	if err != nil {
		return err
	}
	schema, err := ParseSchema(state.SchemaText)
	if err != nil {
		return err
	}
	rootRecord, ok := schema.(*avro.RecordSchema)
	if !ok {
		return newError(ErrSchema, "container schema must be a record, have %s", schema.Type())
	}
	outSchema, err := p.transformer.TransformSchema(schema)
	if err != nil {
		return err
	}
	compression, err := codec.Get(state.Codec)
	if err != nil {
		return newError(ErrCorruptStream, "unsupported codec %q", state.Codec)
	}
	p.container = state
	p.schema = schema
	p.rootRecord = rootRecord
	p.outSchema = outSchema
	p.compression = compression
	p.state = stateBlock
	return nil
}

func (p *StreamParser) decodeBlockHeader() error {
	var count, size int64
	_, err := p.buf.decodeUnit(func() error {
		var err error
		count, err = readLong(p.buf)
		if err != nil || count == 0 {
			return err
		}
		size, err = readLong(p.buf)
		return err
	})
	if err != nil {
		// Exhaustion exactly at a block boundary is the normal end of
		// a container file.
		if errCode(err) == ErrSourceExhausted && p.buf.buffered() == 0 {
			p.state = stateEnd
			return nil
		}
		return err
	}
	if count == 0 {
		p.state = stateEnd
		return nil
	}
	if count < 0 {
		return newError(ErrCorruptStream, "negative block record count %d", count)
	}
	if size < 0 {
		return newError(ErrCorruptStream, "negative block byte length %d", size)
	}
	p.blockRemaining = count
	p.blockLen = size
	p.blockRead = 0
	p.blockBuf = nil
	if p.compression.Name() != codec.Null {
		var data []byte
		_, err := p.buf.decodeUnit(func() error {
			raw, err := p.buf.next(int(size))
			if err != nil {
				return err
			}
			data = make([]byte, len(raw))
			copy(data, raw)
			return nil
		})
		if err != nil {
			return err
		}
		inflated, err := p.compression.Decompress(data)
		if err != nil {
			return newError(ErrCorruptStream, "decompressing %s block: %v", p.compression.Name(), err)
		}
		p.blockBuf = newBlockBuffer(inflated)
	}
	p.state = stateRecords
	return nil
}

// decodeRecord decodes, transforms and encodes one record, and closes out
// the block (byte length validation plus sync marker) after its last one.
func (p *StreamParser) decodeRecord() (*Record, error) {
	var rec *Record
	if p.blockBuf != nil {
		_, err := p.blockBuf.decodeUnit(func() error {
			var err error
			rec, err = readRecord(p.blockBuf, p.rootRecord)
			return err
		})
		if err != nil {
			if errCode(err) == ErrSourceExhausted {
				return nil, newError(ErrCorruptStream, "record data overruns block boundary")
			}
			return nil, err
		}
	} else {
		n, err := p.buf.decodeUnit(func() error {
			var err error
			rec, err = readRecord(p.buf, p.rootRecord)
			return err
		})
		if err != nil {
			return nil, err
		}
		p.blockRead += int64(n)
		if p.blockRead > p.blockLen {
			return nil, newError(ErrCorruptStream, "records overrun block byte length %d", p.blockLen)
		}
	}
	p.blockRemaining--
	if p.blockRemaining == 0 {
		if err := p.finishBlock(); err != nil {
			return nil, err
		}
	}
	out, err := p.transformer.Transform(rec)
	if err != nil {
		return nil, err
	}
	encoded, err := appendValue(nil, p.outSchema, out)
	if err != nil {
		return nil, err
	}
	out.Bytes = encoded
	return out, nil
}

func (p *StreamParser) finishBlock() error {
	if p.blockBuf != nil {
		if leftover := p.blockBuf.buffered(); leftover != 0 {
			return newError(ErrCorruptStream, "%d trailing bytes in block", leftover)
		}
		p.blockBuf = nil
	} else if p.blockRead != p.blockLen {
		return newError(ErrCorruptStream, "block declared %d bytes, records consumed %d",
			p.blockLen, p.blockRead)
	}
	_, err := p.buf.decodeUnit(func() error {
		marker, err := p.buf.next(syncLength)
		if err != nil {
			return err
		}
		if !bytes.Equal(marker, p.container.Sync[:]) {
			return newError(ErrCorruptStream, "sync marker does not match marker in header")
		}
		return nil
	})
	if err != nil {
		return err
	}
	p.state = stateBlock
	return nil
}

func errCode(err error) ErrorCode {
	var e Error
	if errors.As(err, &e) {
		return e.Code()
	}
	return 0
}
