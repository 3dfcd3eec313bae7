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
	"encoding/binary"
	"math"
)

// maxVarintLen is the longest legal zig-zag varint (a 64-bit long).
const maxVarintLen = 10

// readLong reads a zig-zag varint long. Multi-byte integers are the unit
// most likely to straddle a chunk boundary, so this is the most common
// suspension point; it returns errIncomplete whenever the buffer runs out
// before a byte with the continuation bit clear is seen.
func readLong(b *chunkBuffer) (int64, error) {
	var u uint64
	var shift uint
	for i := 0; ; i++ {
		if i == maxVarintLen {
			return 0, newError(ErrCorruptStream, "varint exceeds %d bytes", maxVarintLen)
		}
		c, err := b.readByte()
		if err != nil {
			return 0, err
		}
		u |= uint64(c&0x7f) << shift
		if c&0x80 == 0 {
			break
		}
		shift += 7
	}
	return int64(u>>1) ^ -int64(u&1), nil
}

// readInt reads a zig-zag varint int, rejecting values outside 32 bits.
func readInt(b *chunkBuffer) (int32, error) {
	v, err := readLong(b)
	if err != nil {
		return 0, err
	}
	if v < math.MinInt32 || v > math.MaxInt32 {
		return 0, newError(ErrCorruptStream, "int value %d out of range", v)
	}
	return int32(v), nil
}

func readBool(b *chunkBuffer) (bool, error) {
	c, err := b.readByte()
	if err != nil {
		return false, err
	}
	switch c {
	case 0:
		return false, nil
	case 1:
		return true, nil
	default:
		return false, newError(ErrCorruptStream, "invalid boolean byte 0x%02x", c)
	}
}

func readFloat(b *chunkBuffer) (float32, error) {
	p, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(binary.LittleEndian.Uint32(p)), nil
}

func readDouble(b *chunkBuffer) (float64, error) {
	p, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(binary.LittleEndian.Uint64(p)), nil
}

// readBytes reads a length-prefixed byte sequence. The returned slice is a
// copy; buffer contents are only stable until the next commit.
func readBytes(b *chunkBuffer) ([]byte, error) {
	n, err := readLong(b)
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, newError(ErrCorruptStream, "negative byte length %d", n)
	}
	p, err := b.next(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, n)
	copy(out, p)
	return out, nil
}

func readString(b *chunkBuffer) (string, error) {
	n, err := readLong(b)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", newError(ErrCorruptStream, "negative string length %d", n)
	}
	p, err := b.next(int(n))
	if err != nil {
		return "", err
	}
	return string(p), nil
}

func readFixed(b *chunkBuffer, size int) ([]byte, error) {
	p, err := b.next(size)
	if err != nil {
		return nil, err
	}
	out := make([]byte, size)
	copy(out, p)
	return out, nil
}

// appendLong appends the zig-zag varint encoding of v.
func appendLong(dst []byte, v int64) []byte {
	u := uint64(v)<<1 ^ uint64(v>>63)
	for u&^0x7f != 0 {
		dst = append(dst, byte(u&0x7f)|0x80)
		u >>= 7
	}
	return append(dst, byte(u))
}

func appendInt(dst []byte, v int32) []byte {
	return appendLong(dst, int64(v))
}

func appendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

func appendFloat(dst []byte, v float32) []byte {
	return binary.LittleEndian.AppendUint32(dst, math.Float32bits(v))
}

func appendDouble(dst []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint64(dst, math.Float64bits(v))
}

func appendBytes(dst []byte, p []byte) []byte {
	dst = appendLong(dst, int64(len(p)))
	return append(dst, p...)
}

func appendString(dst []byte, s string) []byte {
	dst = appendLong(dst, int64(len(s)))
	return append(dst, s...)
}
