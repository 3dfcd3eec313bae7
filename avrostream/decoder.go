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
	"github.com/hamba/avro/v2"
)

// readValue decodes one value of the given schema from the buffer. Reads
// that run out of data report errIncomplete, which propagates unchanged so
// the buffer's retry loop can replay the whole unit; no partial progress
// is ever credited.
func readValue(b *chunkBuffer, schema avro.Schema) (interface{}, error) {
	switch s := schema.(type) {
	case *avro.PrimitiveSchema:
		return readPrimitive(b, s.Type())
	case *avro.FixedSchema:
		return readFixed(b, s.Size())
	case *avro.EnumSchema:
		idx, err := readLong(b)
		if err != nil {
			return nil, err
		}
		symbols := s.Symbols()
		if idx < 0 || idx >= int64(len(symbols)) {
			return nil, newError(ErrSchema, "enum %s index %d out of range [0,%d)",
				s.FullName(), idx, len(symbols))
		}
		return symbols[idx], nil
	case *avro.ArraySchema:
		return readArray(b, s.Items())
	case *avro.MapSchema:
		return readMap(b, s.Values())
	case *avro.UnionSchema:
		idx, err := readLong(b)
		if err != nil {
			return nil, err
		}
		branches := s.Types()
		if idx < 0 || idx >= int64(len(branches)) {
			return nil, newError(ErrSchema, "union index %d out of range [0,%d)",
				idx, len(branches))
		}
		return readValue(b, branches[idx])
	case *avro.RecordSchema:
		return readRecord(b, s)
	case *avro.RefSchema:
		return readValue(b, s.Schema())
	default:
		return nil, newError(ErrSchema, "unsupported schema type %s", schema.Type())
	}
}

func readPrimitive(b *chunkBuffer, typ avro.Type) (interface{}, error) {
	switch typ {
	case avro.Null:
		return nil, nil
	case avro.Boolean:
		return readBool(b)
	case avro.Int:
		return readInt(b)
	case avro.Long:
		return readLong(b)
	case avro.Float:
		return readFloat(b)
	case avro.Double:
		return readDouble(b)
	case avro.Bytes:
		return readBytes(b)
	case avro.String:
		return readString(b)
	default:
		return nil, newError(ErrSchema, "unsupported primitive type %s", typ)
	}
}

// readRecord decodes each field in declared order into an ordered field
// sequence; this is the unit handed to the Transformer.
func readRecord(b *chunkBuffer, s *avro.RecordSchema) (*Record, error) {
	schemaFields := s.Fields()
	rec := &Record{Schema: s, Fields: make([]Field, 0, len(schemaFields))}
	for _, f := range schemaFields {
		v, err := readValue(b, f.Type())
		if err != nil {
			return nil, err
		}
		rec.Fields = append(rec.Fields, Field{Name: f.Name(), Value: v})
	}
	return rec, nil
}

// readBlockCount reads an array/map block count. A negative count encodes
// its absolute value followed by the block's size in bytes, which is only
// useful for skipping and is discarded here.
func readBlockCount(b *chunkBuffer) (int64, error) {
	n, err := readLong(b)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		size, err := readLong(b)
		if err != nil {
			return 0, err
		}
		if size < 0 {
			return 0, newError(ErrCorruptStream, "negative block byte size %d", size)
		}
		n = -n
	}
	return n, nil
}

func readArray(b *chunkBuffer, items avro.Schema) ([]interface{}, error) {
	arr := []interface{}{}
	for {
		n, err := readBlockCount(b)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return arr, nil
		}
		for i := int64(0); i < n; i++ {
			v, err := readValue(b, items)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
	}
}

func readMap(b *chunkBuffer, values avro.Schema) (map[string]interface{}, error) {
	m := map[string]interface{}{}
	for {
		n, err := readBlockCount(b)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return m, nil
		}
		for i := int64(0); i < n; i++ {
			k, err := readString(b)
			if err != nil {
				return nil, err
			}
			v, err := readValue(b, values)
			if err != nil {
				return nil, err
			}
			m[k] = v
		}
	}
}
