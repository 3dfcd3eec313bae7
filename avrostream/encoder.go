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
	"math"
	"sort"

	"github.com/hamba/avro/v2"
)

// appendValue encodes v against the given schema, mirroring readValue's
// traversal. A value whose shape does not match the schema fails with
// ErrSchemaMismatch; a correctly configured Transformer never triggers it.
func appendValue(dst []byte, schema avro.Schema, v interface{}) ([]byte, error) {
	switch s := schema.(type) {
	case *avro.PrimitiveSchema:
		return appendPrimitive(dst, s.Type(), v)
	case *avro.FixedSchema:
		p, ok := v.([]byte)
		if !ok || len(p) != s.Size() {
			return nil, newError(ErrSchemaMismatch, "fixed %s requires %d bytes, have %T(%v)",
				s.FullName(), s.Size(), v, v)
		}
		return append(dst, p...), nil
	case *avro.EnumSchema:
		sym, ok := v.(string)
		if !ok {
			return nil, newError(ErrSchemaMismatch, "enum %s requires a string symbol, have %T", s.FullName(), v)
		}
		for i, candidate := range s.Symbols() {
			if candidate == sym {
				return appendLong(dst, int64(i)), nil
			}
		}
		return nil, newError(ErrSchemaMismatch, "symbol %q not in enum %s", sym, s.FullName())
	case *avro.ArraySchema:
		arr, ok := v.([]interface{})
		if !ok {
			return nil, newError(ErrSchemaMismatch, "array requires []interface{}, have %T", v)
		}
		return appendArray(dst, s.Items(), arr)
	case *avro.MapSchema:
		m, ok := v.(map[string]interface{})
		if !ok {
			return nil, newError(ErrSchemaMismatch, "map requires map[string]interface{}, have %T", v)
		}
		return appendMap(dst, s.Values(), m)
	case *avro.UnionSchema:
		idx, branch, err := unionBranch(s, v)
		if err != nil {
			return nil, err
		}
		dst = appendLong(dst, int64(idx))
		return appendValue(dst, branch, v)
	case *avro.RecordSchema:
		return appendRecord(dst, s, v)
	case *avro.RefSchema:
		return appendValue(dst, s.Schema(), v)
	default:
		return nil, newError(ErrSchema, "unsupported schema type %s", schema.Type())
	}
}

func appendPrimitive(dst []byte, typ avro.Type, v interface{}) ([]byte, error) {
	switch typ {
	case avro.Null:
		if v != nil {
			return nil, newError(ErrSchemaMismatch, "null requires nil, have %T", v)
		}
		return dst, nil
	case avro.Boolean:
		b, ok := v.(bool)
		if !ok {
			return nil, newError(ErrSchemaMismatch, "boolean requires bool, have %T", v)
		}
		return appendBool(dst, b), nil
	case avro.Int:
		switch n := v.(type) {
		case int32:
			return appendInt(dst, n), nil
		case int:
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, newError(ErrSchemaMismatch, "int value %d out of range", n)
			}
			return appendInt(dst, int32(n)), nil
		case int64:
			if n < math.MinInt32 || n > math.MaxInt32 {
				return nil, newError(ErrSchemaMismatch, "int value %d out of range", n)
			}
			return appendInt(dst, int32(n)), nil
		}
		return nil, newError(ErrSchemaMismatch, "int requires int32, have %T", v)
	case avro.Long:
		switch n := v.(type) {
		case int64:
			return appendLong(dst, n), nil
		case int:
			return appendLong(dst, int64(n)), nil
		case int32:
			return appendLong(dst, int64(n)), nil
		}
		return nil, newError(ErrSchemaMismatch, "long requires int64, have %T", v)
	case avro.Float:
		switch f := v.(type) {
		case float32:
			return appendFloat(dst, f), nil
		case float64:
			return appendFloat(dst, float32(f)), nil
		}
		return nil, newError(ErrSchemaMismatch, "float requires float32, have %T", v)
	case avro.Double:
		switch f := v.(type) {
		case float64:
			return appendDouble(dst, f), nil
		case float32:
			return appendDouble(dst, float64(f)), nil
		}
		return nil, newError(ErrSchemaMismatch, "double requires float64, have %T", v)
	case avro.Bytes:
		p, ok := v.([]byte)
		if !ok {
			return nil, newError(ErrSchemaMismatch, "bytes requires []byte, have %T", v)
		}
		return appendBytes(dst, p), nil
	case avro.String:
		str, ok := v.(string)
		if !ok {
			return nil, newError(ErrSchemaMismatch, "string requires string, have %T", v)
		}
		return appendString(dst, str), nil
	default:
		return nil, newError(ErrSchema, "unsupported primitive type %s", typ)
	}
}

// appendArray writes the whole array as a single block: positive count,
// the items, then the terminating zero count.
func appendArray(dst []byte, items avro.Schema, arr []interface{}) ([]byte, error) {
	if len(arr) > 0 {
		dst = appendLong(dst, int64(len(arr)))
		for _, v := range arr {
			var err error
			dst, err = appendValue(dst, items, v)
			if err != nil {
				return nil, err
			}
		}
	}
	return appendLong(dst, 0), nil
}

// appendMap writes the whole map as a single block, keys in sorted order
// so the encoding is deterministic.
func appendMap(dst []byte, values avro.Schema, m map[string]interface{}) ([]byte, error) {
	if len(m) > 0 {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		dst = appendLong(dst, int64(len(m)))
		for _, k := range keys {
			dst = appendString(dst, k)
			var err error
			dst, err = appendValue(dst, values, m[k])
			if err != nil {
				return nil, err
			}
		}
	}
	return appendLong(dst, 0), nil
}

// appendRecord writes the fields in the schema's declared order, looking
// each up by name in the value. A missing field indicates Transformer
// output that does not match the schema it claims.
func appendRecord(dst []byte, s *avro.RecordSchema, v interface{}) ([]byte, error) {
	lookup := func(name string) (interface{}, bool) { return nil, false }
	switch rec := v.(type) {
	case *Record:
		lookup = rec.Get
	case map[string]interface{}:
		lookup = func(name string) (interface{}, bool) {
			fv, ok := rec[name]
			return fv, ok
		}
	default:
		return nil, newError(ErrSchemaMismatch, "record %s requires *Record or map, have %T", s.FullName(), v)
	}
	for _, f := range s.Fields() {
		fv, ok := lookup(f.Name())
		if !ok {
			return nil, newError(ErrSchemaMismatch, "record %s is missing field %q", s.FullName(), f.Name())
		}
		var err error
		dst, err = appendValue(dst, f.Type(), fv)
		if err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// unionBranch selects the union branch matching the value's runtime type,
// in branch declaration order.
func unionBranch(s *avro.UnionSchema, v interface{}) (int, avro.Schema, error) {
	branches := s.Types()
	for i, branch := range branches {
		if branchAccepts(branch, v) {
			return i, branch, nil
		}
	}
	return 0, nil, newError(ErrSchemaMismatch, "no union branch for value of type %T", v)
}

func branchAccepts(branch avro.Schema, v interface{}) bool {
	if ref, ok := branch.(*avro.RefSchema); ok {
		branch = ref.Schema()
	}
	switch b := branch.(type) {
	case *avro.RecordSchema:
		rec, ok := v.(*Record)
		if ok {
			return rec.Schema == nil || rec.Schema.FullName() == b.FullName()
		}
		_, ok = v.(map[string]interface{})
		return ok
	case *avro.FixedSchema:
		p, ok := v.([]byte)
		return ok && len(p) == b.Size()
	case *avro.EnumSchema:
		sym, ok := v.(string)
		if !ok {
			return false
		}
		for _, candidate := range b.Symbols() {
			if candidate == sym {
				return true
			}
		}
		return false
	case *avro.ArraySchema:
		_, ok := v.([]interface{})
		return ok
	case *avro.MapSchema:
		_, ok := v.(map[string]interface{})
		return ok
	case *avro.PrimitiveSchema:
		switch b.Type() {
		case avro.Null:
			return v == nil
		case avro.Boolean:
			_, ok := v.(bool)
			return ok
		case avro.Int:
			switch n := v.(type) {
			case int32:
				return true
			case int:
				return n >= math.MinInt32 && n <= math.MaxInt32
			}
			return false
		case avro.Long:
			switch v.(type) {
			case int64, int:
				return true
			}
			return false
		case avro.Float:
			_, ok := v.(float32)
			return ok
		case avro.Double:
			_, ok := v.(float64)
			return ok
		case avro.Bytes:
			_, ok := v.([]byte)
			return ok
		case avro.String:
			_, ok := v.(string)
			return ok
		}
	}
	return false
}
