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
	"io"
	"strings"
	"testing"

	"github.com/linkedin/goavro/v2"
)

// readBackOCF decodes a rewritten container with an independent Avro
// implementation, proving the output is a byte-valid container file.
func readBackOCF(t *testing.T, data []byte) (string, []interface{}) {
	t.Helper()
	r, err := goavro.NewOCFReader(bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	var out []interface{}
	for r.Scan() {
		v, err := r.Read()
		if err != nil {
			t.Fatal(err)
		}
		out = append(out, v)
	}
	if err := r.Err(); err != nil {
		t.Fatal(err)
	}
	return r.Codec().Schema(), out
}

func TestStreamRewriterStripField(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	conf := NewStreamParserConfig()
	conf.StripFields = []string{"age"}
	rw, err := NewStreamRewriter(bytes.NewReader(personContainer(t, "null")), conf)
	MaybeFail("new rewriter", err)

	var out bytes.Buffer
	n, err := rw.WriteTo(&out)
	MaybeFail("write", err, Expect(int(n), out.Len()))

	schemaText, records := readBackOCF(t, out.Bytes())
	MaybeFail("schema has no age field", Expect(strings.Contains(schemaText, "age"), false))
	MaybeFail("records", Expect(records, []interface{}{
		map[string]interface{}{"name": "Alice", "email": "alice@example.com"},
		map[string]interface{}{"name": "Bob", "email": "bob@example.com"},
	}))
}

func TestStreamRewriterNoTransformer(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	rw, err := NewStreamRewriter(bytes.NewReader(personContainer(t, "null")), nil)
	MaybeFail("new rewriter", err)

	var out bytes.Buffer
	_, err = rw.WriteTo(&out)
	MaybeFail("write", err)

	_, records := readBackOCF(t, out.Bytes())
	MaybeFail("records", Expect(records, []interface{}{
		map[string]interface{}{"name": "Alice", "age": int32(30), "email": "alice@example.com"},
		map[string]interface{}{"name": "Bob", "age": int32(25), "email": "bob@example.com"},
	}))
}

func TestStreamRewriterPreservesCodecAndSync(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	input := personContainer(t, "deflate")

	inParser, err := NewStreamParser(bytes.NewReader(input), nil)
	MaybeFail("input parser", err)
	_, err = inParser.Next()
	MaybeFail("prime input parser", err)

	conf := NewStreamParserConfig()
	conf.StripFields = []string{"age"}
	rw, err := NewStreamRewriter(bytes.NewReader(input), conf)
	MaybeFail("new rewriter", err)

	var out bytes.Buffer
	_, err = rw.WriteTo(&out)
	MaybeFail("write", err)

	outParser, err := NewStreamParser(bytes.NewReader(out.Bytes()), nil)
	MaybeFail("output parser", err)
	rec, err := outParser.Next()
	MaybeFail("output record", err,
		Expect(len(rec.Fields), 2),
		Expect(outParser.Container().Codec, "deflate"),
		Expect(outParser.Container().Sync, inParser.Container().Sync))
}

func TestStreamRewriterMetadataPassthrough(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	var buf bytes.Buffer
	w, err := goavro.NewOCFWriter(goavro.OCFConfig{
		W:        &buf,
		Schema:   personSchema,
		MetaData: map[string][]byte{"app.origin": []byte("ingest-7")},
	})
	MaybeFail("fixture writer", err)
	MaybeFail("fixture append", w.Append([]interface{}{personRecords[0]}))

	conf := NewStreamParserConfig()
	conf.StripFields = []string{"age"}
	rw, err := NewStreamRewriter(bytes.NewReader(buf.Bytes()), conf)
	MaybeFail("new rewriter", err)

	var out bytes.Buffer
	_, err = rw.WriteTo(&out)
	MaybeFail("write", err)

	p, err := NewStreamParser(bytes.NewReader(out.Bytes()), nil)
	MaybeFail("output parser", err)
	_, err = p.Next()
	MaybeFail("output record", err,
		Expect(p.Container().Meta["app.origin"], []byte("ingest-7")))
}

func TestStreamRewriterHeaderFrameFirst(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	rw, err := NewStreamRewriter(bytes.NewReader(personContainer(t, "null")), nil)
	MaybeFail("new rewriter", err)

	frame, err := rw.NextFrame()
	MaybeFail("header frame", err,
		Expect(bytes.HasPrefix(frame, magicBytes), true))

	_, err = rw.NextFrame()
	MaybeFail("block frame", err)
	_, err = rw.NextFrame()
	MaybeFail("clean end", Expect(err, io.EOF))
	_, err = rw.NextFrame()
	MaybeFail("end is sticky", Expect(err, io.EOF))
}

func TestStreamRewriterTruncatedInput(t *testing.T) {
	data := personContainer(t, "null")
	rw, err := NewStreamRewriter(bytes.NewReader(data[:len(data)-4]), nil)
	if err != nil {
		t.Fatal(err)
	}
	var out bytes.Buffer
	if _, err := rw.WriteTo(&out); errCode(err) != ErrSourceExhausted {
		t.Fatalf("expected SourceExhaustedError, got %v", err)
	}
}
