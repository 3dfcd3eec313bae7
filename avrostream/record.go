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

// Field is one decoded record field. Field order within a Record is
// semantically significant; it mirrors the binary layout.
type Field struct {
	Name  string
	Value interface{}
}

// Record is a decoded Avro record. Values use the following Go forms:
// nil (null), bool, int32, int64, float32, float64, []byte (bytes and
// fixed), string (string and enum symbols), []interface{} (array),
// map[string]interface{} (map) and *Record (nested records). Union values
// carry the decoded branch directly.
type Record struct {
	// Schema is the record schema the fields were decoded against.
	Schema *avro.RecordSchema
	// Fields holds the field values in schema order.
	Fields []Field
	// Bytes is the record encoded against the parser's output schema.
	// It is populated by StreamParser.Next and left nil elsewhere.
	Bytes []byte
}

// Get returns the value of the named field and whether it is present.
func (r *Record) Get(name string) (interface{}, bool) {
	for _, f := range r.Fields {
		if f.Name == name {
			return f.Value, true
		}
	}
	return nil, false
}

// Map returns the fields copied into a name-keyed map. Field order is
// lost; use Fields where order matters.
func (r *Record) Map() map[string]interface{} {
	m := make(map[string]interface{}, len(r.Fields))
	for _, f := range r.Fields {
		m[f.Name] = f.Value
	}
	return m
}
