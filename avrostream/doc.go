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

// Package avrostream incrementally decodes, transforms and re-encodes
// Avro object container streams.
//
// The byte source is any io.Reader -- an in-progress HTTP download, a
// socket, a file -- and may deliver data in arbitrarily small chunks. The
// parser never assumes the bytes of a logical unit are present: a decode
// attempt that runs out of data is rewound to its checkpoint and retried
// once more bytes arrive, so a varint, a string or a whole record may
// straddle any number of chunk boundaries.
//
// StreamParser pulls one transformed record at a time:
//
//	conf := avrostream.NewStreamParserConfig()
//	conf.StripFields = []string{"age"}
//	parser, err := avrostream.NewStreamParser(resp.Body, conf)
//	for {
//		rec, err := parser.Next()
//		if err == io.EOF {
//			break
//		}
//		// rec.Fields is the decoded record, rec.Bytes its encoding
//		// against parser.OutputSchema().
//	}
//
// StreamRewriter re-emits a byte-valid container reflecting the
// transformed schema, preserving the input's framing, metadata and sync
// markers. Record transformations beyond field stripping plug in through
// the Transformer interface.
package avrostream
