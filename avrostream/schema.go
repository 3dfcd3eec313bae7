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

// schemaCacheCapacity bounds the process-wide cache of parsed schemas.
// Streams routinely share one schema across many container files, so the
// parse is memoized on the schema text.
const schemaCacheCapacity = 1000

var schemaCache *cache.LRUCache[string, avro.Schema]

func init() {
	c, err := cache.NewLRUCache[string, avro.Schema](schemaCacheCapacity)
	if err != nil {
		panic(err)
	}
	schemaCache = c
}

// ParseSchema parses Avro schema JSON into its type-node tree, memoizing
// on the schema text.
func ParseSchema(text string) (avro.Schema, error) {
	if s, ok := schemaCache.Get(text); ok {
		return s, nil
	}
	s, err := avro.Parse(text)
	if err != nil {
		return nil, newError(ErrSchema, "parsing schema: %v", err)
	}
	schemaCache.Put(text, s)
	return s, nil
}

// ReduceSchema derives the output-side schema by removing the named direct
// fields from a root record schema, preserving the relative order of the
// remaining fields. Names absent from the schema are ignored (stripping is
// best effort) and a non-record root passes through unchanged.
func ReduceSchema(schema avro.Schema, strip []string) (avro.Schema, error) {
	rec, ok := schema.(*avro.RecordSchema)
	if !ok || len(strip) == 0 {
		return schema, nil
	}
	drop := make(map[string]bool, len(strip))
	for _, name := range strip {
		drop[name] = true
	}
	var fields []*avro.Field
	changed := false
	for _, f := range rec.Fields() {
		if drop[f.Name()] {
			changed = true
			continue
		}
		fields = append(fields, f)
	}
	if !changed {
		return schema, nil
	}
	reduced, err := avro.NewRecordSchema(rec.Name(), rec.Namespace(), fields)
	if err != nil {
		return nil, newError(ErrSchema, "building reduced schema: %v", err)
	}
	return reduced, nil
}
