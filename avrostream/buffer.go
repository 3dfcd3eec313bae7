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
	"errors"
	"io"
)

// chunkBuffer accumulates bytes pulled from an io.Reader and exposes a
// checkpoint/rewind mechanism: the checkpoint is always offset zero, the
// read cursor advances as a decode attempt consumes bytes, and a failed
// attempt rewinds the cursor so the same unit can be retried once more
// bytes arrive. Bytes before the checkpoint are discarded on commit, so
// memory stays bounded by the largest single logical unit.
//
// A chunkBuffer is not safe for concurrent use; the whole parser is a
// single-goroutine pull pipeline.
type chunkBuffer struct {
	src   io.Reader
	chunk []byte
	data  []byte
	pos   int
	eof   bool
}

const defaultChunkSize = 4096

func newChunkBuffer(src io.Reader, chunkSize int) *chunkBuffer {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	return &chunkBuffer{src: src, chunk: make([]byte, chunkSize)}
}

// newBlockBuffer wraps an already-materialized byte slice (a decompressed
// block) in a buffer whose source is exhausted from the start.
func newBlockBuffer(data []byte) *chunkBuffer {
	return &chunkBuffer{data: data, eof: true}
}

// readByte consumes one byte, or reports errIncomplete.
func (b *chunkBuffer) readByte() (byte, error) {
	if b.pos >= len(b.data) {
		return 0, errIncomplete
	}
	c := b.data[b.pos]
	b.pos++
	return c, nil
}

// next consumes n bytes and returns them as a slice into the buffer. The
// slice is only valid until the next commit.
func (b *chunkBuffer) next(n int) ([]byte, error) {
	if len(b.data)-b.pos < n {
		return nil, errIncomplete
	}
	p := b.data[b.pos : b.pos+n]
	b.pos += n
	return p, nil
}

// buffered reports the bytes available beyond the checkpoint.
func (b *chunkBuffer) buffered() int {
	return len(b.data)
}

// pull requests one more chunk from the source. It fails with a fatal
// ErrSourceExhausted once the source reports no more data.
func (b *chunkBuffer) pull() error {
	if b.eof {
		return newError(ErrSourceExhausted, "no more data from byte source")
	}
	for {
		n, err := b.src.Read(b.chunk)
		if n > 0 {
			b.data = append(b.data, b.chunk[:n]...)
			if err == io.EOF {
				b.eof = true
			}
			return nil
		}
		if err == io.EOF {
			b.eof = true
			return newError(ErrSourceExhausted, "no more data from byte source")
		}
		if err != nil {
			return err
		}
	}
}

// rewind moves the read cursor back to the checkpoint.
func (b *chunkBuffer) rewind() {
	b.pos = 0
}

// commit advances the checkpoint past everything consumed so far and
// discards those bytes.
func (b *chunkBuffer) commit() {
	if b.pos == 0 {
		return
	}
	n := copy(b.data, b.data[b.pos:])
	b.data = b.data[:n]
	b.pos = 0
}

// decodeUnit runs f from the checkpoint, pulling more data and retrying
// from the checkpoint as long as f reports errIncomplete. On success the
// consumed bytes are committed and their count returned. Any other error
// from f, and source exhaustion while f is still incomplete, propagate to
// the caller; errIncomplete itself never escapes.
func (b *chunkBuffer) decodeUnit(f func() error) (int, error) {
	for {
		err := f()
		if err == nil {
			n := b.pos
			b.commit()
			return n, nil
		}
		b.rewind()
		if !errors.Is(err, errIncomplete) {
			return 0, err
		}
		if err := b.pull(); err != nil {
			return 0, err
		}
	}
}
