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
	"testing"

	"github.com/hamba/avro/v2"
	"github.com/linkedin/goavro/v2"
)

const everythingSchema = `
{
  "name": "Everything",
  "type": "record",
  "fields": [
    {"name": "BoolField", "type": "boolean"},
    {"name": "IntField", "type": "int"},
    {"name": "LongField", "type": "long"},
    {"name": "FloatField", "type": "float"},
    {"name": "DoubleField", "type": "double"},
    {"name": "BytesField", "type": "bytes"},
    {"name": "StringField", "type": "string"},
    {"name": "FixedField", "type": {"name": "Four", "type": "fixed", "size": 4}},
    {"name": "EnumField", "type": {"name": "Color", "type": "enum", "symbols": ["RED", "GREEN", "BLUE"]}},
    {"name": "ArrayField", "type": {"type": "array", "items": "int"}},
    {"name": "MapField", "type": {"type": "map", "values": "string"}},
    {"name": "UnionField", "type": ["null", "string"]},
    {"name": "NestedField", "type": {"name": "Nested", "type": "record", "fields": [{"name": "x", "type": "long"}]}}
  ]
}
`

func everythingRecord(t *testing.T) *Record {
	t.Helper()
	schema, err := ParseSchema(everythingSchema)
	if err != nil {
		t.Fatal(err)
	}
	rec := schema.(*avro.RecordSchema)
	nested := rec.Fields()[12].Type().(*avro.RecordSchema)
	return &Record{
		Schema: rec,
		Fields: []Field{
			{Name: "BoolField", Value: true},
			{Name: "IntField", Value: int32(-123)},
			{Name: "LongField", Value: int64(1) << 40},
			{Name: "FloatField", Value: float32(1.5)},
			{Name: "DoubleField", Value: float64(-2.25)},
			{Name: "BytesField", Value: []byte{0xde, 0xad}},
			{Name: "StringField", Value: "hi"},
			{Name: "FixedField", Value: []byte{1, 2, 3, 4}},
			{Name: "EnumField", Value: "GREEN"},
			{Name: "ArrayField", Value: []interface{}{int32(1), int32(2), int32(3)}},
			{Name: "MapField", Value: map[string]interface{}{"a": "x", "b": "y"}},
			{Name: "UnionField", Value: "maybe"},
			{Name: "NestedField", Value: &Record{
				Schema: nested,
				Fields: []Field{{Name: "x", Value: int64(7)}},
			}},
		},
	}
}

func TestReadValueRoundTrip(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	rec := everythingRecord(t)
	encoded, err := appendValue(nil, rec.Schema, rec)
	MaybeFail("encode", err)

	v, err := readValue(newBlockBuffer(encoded), rec.Schema)
	MaybeFail("decode", err)

	got := v.(*Record)
	MaybeFail("fields", Expect(len(got.Fields), len(rec.Fields)))
	for i, f := range got.Fields {
		MaybeFail("field "+f.Name, Expect(f, rec.Fields[i]))
	}
}

func TestReadValueNullUnionBranch(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	schema := avro.MustParse(`["null","string"]`)
	encoded, err := appendValue(nil, schema, nil)
	MaybeFail("encode", err, Expect(encoded, []byte{0}))

	v, err := readValue(newBlockBuffer(encoded), schema)
	MaybeFail("decode", err, Expect(v == nil, true))
}

// Data produced by an independent Avro implementation decodes to the same
// values.
func TestReadValueGoavroEncoded(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	codec, err := goavro.NewCodec(everythingSchema)
	MaybeFail("goavro codec", err)

	native := map[string]interface{}{
		"BoolField":   true,
		"IntField":    int32(-123),
		"LongField":   int64(1) << 40,
		"FloatField":  float32(1.5),
		"DoubleField": float64(-2.25),
		"BytesField":  []byte{0xde, 0xad},
		"StringField": "hi",
		"FixedField":  []byte{1, 2, 3, 4},
		"EnumField":   "GREEN",
		"ArrayField":  []interface{}{int32(1), int32(2), int32(3)},
		"MapField":    map[string]interface{}{"a": "x"},
		"UnionField":  goavro.Union("string", "maybe"),
		"NestedField": map[string]interface{}{"x": int64(7)},
	}
	encoded, err := codec.BinaryFromNative(nil, native)
	MaybeFail("goavro encode", err)

	schema, err := ParseSchema(everythingSchema)
	MaybeFail("parse", err)
	v, err := readValue(newBlockBuffer(encoded), schema)
	MaybeFail("decode", err)

	rec := v.(*Record)
	MaybeFail("scalars",
		Expect(rec.Fields[0], Field{Name: "BoolField", Value: true}),
		Expect(rec.Fields[1], Field{Name: "IntField", Value: int32(-123)}),
		Expect(rec.Fields[2], Field{Name: "LongField", Value: int64(1) << 40}),
		Expect(rec.Fields[6], Field{Name: "StringField", Value: "hi"}),
		Expect(rec.Fields[8], Field{Name: "EnumField", Value: "GREEN"}),
		Expect(rec.Fields[11], Field{Name: "UnionField", Value: "maybe"}),
	)
	nested := rec.Fields[12].Value.(*Record)
	MaybeFail("nested", Expect(nested.Fields, []Field{{Name: "x", Value: int64(7)}}))
}

func TestReadValueNegativeCountBlocks(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	// two items in a negative-count block: -2, byte size, items, terminator
	items := appendInt(appendInt(nil, 10), 20)
	encoded := appendLong(nil, -2)
	encoded = appendLong(encoded, int64(len(items)))
	encoded = append(encoded, items...)
	encoded = appendLong(encoded, 0)

	schema := avro.MustParse(`{"type":"array","items":"int"}`)
	v, err := readValue(newBlockBuffer(encoded), schema)
	MaybeFail("decode", err, Expect(v, []interface{}{int32(10), int32(20)}))
}

func TestReadValueUnionIndexOutOfRange(t *testing.T) {
	schema := avro.MustParse(`["null","string"]`)
	_, err := readValue(newBlockBuffer(appendLong(nil, 5)), schema)
	if errCode(err) != ErrSchema {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}

func TestReadValueEnumIndexOutOfRange(t *testing.T) {
	schema := avro.MustParse(`{"name":"Color","type":"enum","symbols":["RED","GREEN"]}`)
	_, err := readValue(newBlockBuffer(appendLong(nil, 2)), schema)
	if errCode(err) != ErrSchema {
		t.Fatalf("expected SchemaError, got %v", err)
	}
}
