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
)

// StreamRewriter re-emits a byte-valid container stream reflecting the
// transformed schema: the header carries the transformed schema JSON (all
// other metadata entries and the sync marker pass through unchanged), and
// each input block becomes one output block with the same record count and
// compression codec and a recomputed byte length. A downstream consumer of
// the Avro container format can read the output directly.
type StreamRewriter struct {
	parser     *StreamParser
	headerSent bool
	done       bool
}

// NewStreamRewriter creates a rewriter reading the container from source.
// A nil conf is equivalent to NewStreamParserConfig().
func NewStreamRewriter(source io.Reader, conf *StreamParserConfig) (*StreamRewriter, error) {
	parser, err := NewStreamParser(source, conf)
	if err != nil {
		return nil, err
	}
	return &StreamRewriter{parser: parser}, nil
}

// Parser returns the underlying StreamParser, e.g. to inspect schemas
// after the first frame has been produced.
func (rw *StreamRewriter) Parser() *StreamParser {
	return rw.parser
}

// NextFrame returns the next chunk of the rewritten stream: first the
// header, then one frame per input block. It returns io.EOF once the
// input has cleanly ended; errors from the underlying parser propagate
// unmodified.
func (rw *StreamRewriter) NextFrame() ([]byte, error) {
	if rw.done {
		return nil, io.EOF
	}
	if !rw.headerSent {
		if err := rw.parser.ensureHeader(); err != nil {
			return nil, err
		}
		rw.headerSent = true
		return rw.headerFrame(), nil
	}
	count, payload, err := rw.parser.NextBlock()
	if err != nil {
		if err == io.EOF {
			rw.done = true
		}
		return nil, err
	}
	compressed, err := rw.parser.compression.Compress(payload)
	if err != nil {
		return nil, err
	}
	frame := appendLong(nil, count)
	frame = appendLong(frame, int64(len(compressed)))
	frame = append(frame, compressed...)
	frame = append(frame, rw.parser.container.Sync[:]...)
	return frame, nil
}

func (rw *StreamRewriter) headerFrame() []byte {
	container := rw.parser.container
	meta := make(map[string][]byte, len(container.Meta))
	for k, v := range container.Meta {
		meta[k] = v
	}
	meta[SchemaKey] = []byte(rw.parser.outSchema.String())
	return appendHeader(nil, meta, container.Sync)
}

// WriteTo drains the input stream, writing the rewritten container to w.
func (rw *StreamRewriter) WriteTo(w io.Writer) (int64, error) {
	var written int64
	for {
		frame, err := rw.NextFrame()
		if err == io.EOF {
			return written, nil
		}
		if err != nil {
			return written, err
		}
		n, err := w.Write(frame)
		written += int64(n)
		if err != nil {
			return written, err
		}
	}
}
