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

	"github.com/confluentinc/avro-stream-go/avrostream/cache"
)

// Transformer maps each decoded record to a possibly-modified record
// before re-encoding. TransformSchema is applied once per stream to derive
// the output schema; Transform is applied to every record and must emit a
// value whose shape matches that schema exactly, or encoding fails with
// ErrSchemaMismatch. Implementations may remove, rename or inject fields
// as long as the two methods stay consistent.
type Transformer interface {
	TransformSchema(schema avro.Schema) (avro.Schema, error)
	Transform(rec *Record) (*Record, error)
}

// FieldStripper is the shipped Transformer: it removes the named direct
// fields from the root record, preserving the relative order of the rest.
// Names that do not occur in the schema are ignored.
type FieldStripper struct {
	names   []string
	drop    map[string]bool
	reduced *cache.MapCache[*avro.RecordSchema, *avro.RecordSchema]
}

// NewFieldStripper creates a FieldStripper removing the given field names.
func NewFieldStripper(names ...string) *FieldStripper {
	drop := make(map[string]bool, len(names))
	for _, name := range names {
		drop[name] = true
	}
	return &FieldStripper{
		names:   names,
		drop:    drop,
		reduced: cache.NewMapCache[*avro.RecordSchema, *avro.RecordSchema](),
	}
}

// TransformSchema returns the schema minus the stripped fields.
func (t *FieldStripper) TransformSchema(schema avro.Schema) (avro.Schema, error) {
	return ReduceSchema(schema, t.names)
}

// Transform removes the stripped fields from rec. The record's schema is
// rewritten to the reduced form so nested consumers see a consistent view.
func (t *FieldStripper) Transform(rec *Record) (*Record, error) {
	if len(t.drop) == 0 {
		return rec, nil
	}
	out := &Record{Schema: rec.Schema, Fields: make([]Field, 0, len(rec.Fields))}
	for _, f := range rec.Fields {
		if t.drop[f.Name] {
			continue
		}
		out.Fields = append(out.Fields, f)
	}
	if len(out.Fields) == len(rec.Fields) {
		return rec, nil
	}
	if rec.Schema != nil {
		reduced, ok := t.reduced.Get(rec.Schema)
		if !ok {
			s, err := ReduceSchema(rec.Schema, t.names)
			if err != nil {
				return nil, err
			}
			reduced = s.(*avro.RecordSchema)
			t.reduced.Put(rec.Schema, reduced)
		}
		out.Schema = reduced
	}
	return out, nil
}

// nopTransformer passes records and schemas through untouched.
type nopTransformer struct{}

func (nopTransformer) TransformSchema(schema avro.Schema) (avro.Schema, error) {
	return schema, nil
}

func (nopTransformer) Transform(rec *Record) (*Record, error) {
	return rec, nil
}
