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

// Package codec provides the block compression codecs of the Avro object
// container format behind a unified interface wrapping third-party
// compression libraries. Codecs are invoked only at block boundaries; the
// rest of the library never sees compressed bytes.
package codec

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"io"
	"sync"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zstd"
)

// Codec names understood out of the box.
const (
	Null      = "null"
	Deflate   = "deflate"
	Snappy    = "snappy"
	Zstandard = "zstandard"
)

// Codec compresses and decompresses the payload of one container block.
type Codec interface {
	// Name is the codec identifier as it appears in the avro.codec
	// header metadata entry.
	Name() string
	// Compress returns the block payload as it is framed on the wire,
	// including any codec-specific trailer (the snappy CRC).
	Compress(src []byte) ([]byte, error)
	// Decompress reverses Compress, validating any trailer.
	Decompress(src []byte) ([]byte, error)
}

var (
	registryLock sync.RWMutex
	registry     = map[string]Codec{}
)

// Register makes a codec available to Get under its Name. Built-in codecs
// are pre-registered; registering the same name again replaces the codec.
func Register(c Codec) {
	registryLock.Lock()
	registry[c.Name()] = c
	registryLock.Unlock()
}

// Get selects a codec by name, or errors if the name is unknown.
func Get(name string) (Codec, error) {
	registryLock.RLock()
	c, ok := registry[name]
	registryLock.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown codec %q", name)
	}
	return c, nil
}

func init() {
	Register(nullCodec{})
	Register(deflateCodec{})
	Register(snappyCodec{})
	Register(newZstdCodec())
}

type nullCodec struct{}

func (nullCodec) Name() string { return Null }

func (nullCodec) Compress(src []byte) ([]byte, error) { return src, nil }

func (nullCodec) Decompress(src []byte) ([]byte, error) { return src, nil }

type deflateCodec struct{}

func (deflateCodec) Name() string { return Deflate }

func (deflateCodec) Compress(src []byte) ([]byte, error) {
	var buf bytes.Buffer
	w, err := flate.NewWriter(&buf, flate.DefaultCompression)
	if err != nil {
		return nil, err
	}
	if _, err := w.Write(src); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (deflateCodec) Decompress(src []byte) ([]byte, error) {
	r := flate.NewReader(bytes.NewReader(src))
	defer r.Close()
	return io.ReadAll(r)
}

// snappyCodec implements the Avro snappy codec: a snappy block followed by
// a 4-byte big-endian CRC-32 (IEEE) of the uncompressed data.
type snappyCodec struct{}

func (snappyCodec) Name() string { return Snappy }

func (snappyCodec) Compress(src []byte) ([]byte, error) {
	dst := snappy.Encode(nil, src)
	dst = binary.BigEndian.AppendUint32(dst, crc32.ChecksumIEEE(src))
	return dst, nil
}

func (snappyCodec) Decompress(src []byte) ([]byte, error) {
	if len(src) < 4 {
		return nil, fmt.Errorf("snappy block too short: %d bytes", len(src))
	}
	want := binary.BigEndian.Uint32(src[len(src)-4:])
	dst, err := snappy.Decode(nil, src[:len(src)-4])
	if err != nil {
		return nil, err
	}
	if got := crc32.ChecksumIEEE(dst); got != want {
		return nil, fmt.Errorf("snappy block crc mismatch: %08x != %08x", got, want)
	}
	return dst, nil
}

type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newZstdCodec() *zstdCodec {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderConcurrency(1))
	if err != nil {
		panic(err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		panic(err)
	}
	return &zstdCodec{enc: enc, dec: dec}
}

func (z *zstdCodec) Name() string { return Zstandard }

func (z *zstdCodec) Compress(src []byte) ([]byte, error) {
	return z.enc.EncodeAll(src, nil), nil
}

func (z *zstdCodec) Decompress(src []byte) ([]byte, error) {
	return z.dec.DecodeAll(src, nil)
}
