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
	"math"
	"testing"
	"testing/iotest"
)

func TestVarintBoundaryRoundTrip(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	for _, v := range []int64{
		0, -1, 1, 2, -2, 63, -63, 64, -64, 12345, -12345,
		math.MaxInt32, math.MinInt32, math.MaxInt64, math.MinInt64,
	} {
		encoded := appendLong(nil, v)
		got, err := readLong(newBlockBuffer(encoded))
		MaybeFail("readLong", err, Expect(got, v))
	}
}

func TestVarintOneByteChunks(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	encoded := appendLong(nil, math.MaxInt64)
	buf := newChunkBuffer(iotest.OneByteReader(bytes.NewReader(encoded)), 1)

	var got int64
	n, err := buf.decodeUnit(func() error {
		var err error
		got, err = readLong(buf)
		return err
	})
	MaybeFail("decodeUnit", err, Expect(got, int64(math.MaxInt64)), Expect(n, len(encoded)))
}

func TestVarintIncomplete(t *testing.T) {
	encoded := appendLong(nil, math.MaxInt64)
	_, err := readLong(newBlockBuffer(encoded[:len(encoded)-1]))
	if !errors.Is(err, errIncomplete) {
		t.Fatalf("expected errIncomplete, got %v", err)
	}
}

func TestVarintTooLong(t *testing.T) {
	_, err := readLong(newBlockBuffer(bytes.Repeat([]byte{0x80}, 11)))
	if errCode(err) != ErrCorruptStream {
		t.Fatalf("expected CorruptStream, got %v", err)
	}
}

func TestIntRoundTrip(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	for _, v := range []int32{0, -1, 1, math.MaxInt32, math.MinInt32} {
		got, err := readInt(newBlockBuffer(appendInt(nil, v)))
		MaybeFail("readInt", err, Expect(got, v))
	}
}

func TestIntOutOfRange(t *testing.T) {
	_, err := readInt(newBlockBuffer(appendLong(nil, math.MaxInt32+1)))
	if errCode(err) != ErrCorruptStream {
		t.Fatalf("expected CorruptStream, got %v", err)
	}
}

func TestFloatDoubleRoundTrip(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	for _, v := range []float32{0, -1.5, math.MaxFloat32, math.SmallestNonzeroFloat32} {
		got, err := readFloat(newBlockBuffer(appendFloat(nil, v)))
		MaybeFail("readFloat", err, Expect(got, v))
	}
	for _, v := range []float64{0, -1.5, math.MaxFloat64, math.SmallestNonzeroFloat64} {
		got, err := readDouble(newBlockBuffer(appendDouble(nil, v)))
		MaybeFail("readDouble", err, Expect(got, v))
	}
}

func TestBytesStringRoundTrip(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	gotBytes, err := readBytes(newBlockBuffer(appendBytes(nil, []byte{1, 2, 3})))
	MaybeFail("readBytes", err, Expect(gotBytes, []byte{1, 2, 3}))

	gotString, err := readString(newBlockBuffer(appendString(nil, "straddle")))
	MaybeFail("readString", err, Expect(gotString, "straddle"))
}

func TestNegativeLength(t *testing.T) {
	_, err := readBytes(newBlockBuffer(appendLong(nil, -1)))
	if errCode(err) != ErrCorruptStream {
		t.Fatalf("expected CorruptStream, got %v", err)
	}
	_, err = readString(newBlockBuffer(appendLong(nil, -5)))
	if errCode(err) != ErrCorruptStream {
		t.Fatalf("expected CorruptStream, got %v", err)
	}
}

func TestInvalidBool(t *testing.T) {
	_, err := readBool(newBlockBuffer([]byte{2}))
	if errCode(err) != ErrCorruptStream {
		t.Fatalf("expected CorruptStream, got %v", err)
	}
}
