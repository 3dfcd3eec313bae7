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

import "fmt"

// ErrorCode classifies errors raised while parsing or rewriting a stream.
type ErrorCode int

const (
	// ErrIncomplete signals that the buffered data does not yet contain a
	// complete logical unit. It never escapes the retry loop; callers of
	// StreamParser.Next will not observe it.
	ErrIncomplete ErrorCode = iota + 1
	// ErrSourceExhausted signals that the byte source ran dry while a
	// logical unit or block framing was still incomplete.
	ErrSourceExhausted
	// ErrCorruptStream signals a structural violation: bad magic, sync
	// marker mismatch, negative block byte length, or malformed varints.
	ErrCorruptStream
	// ErrSchema signals an out-of-range union or enum index, or a schema
	// that this library cannot walk.
	ErrSchema
	// ErrSchemaMismatch signals that a value handed to the encoder does not
	// conform to the schema it is being encoded against.
	ErrSchemaMismatch
)

// String returns the name of an ErrorCode.
func (c ErrorCode) String() string {
	switch c {
	case ErrIncomplete:
		return "Incomplete"
	case ErrSourceExhausted:
		return "SourceExhausted"
	case ErrCorruptStream:
		return "CorruptStream"
	case ErrSchema:
		return "SchemaError"
	case ErrSchemaMismatch:
		return "SchemaMismatch"
	default:
		return fmt.Sprintf("ErrorCode(%d)", int(c))
	}
}

// Error provides an avro-stream-specific error container.
type Error struct {
	code  ErrorCode
	str   string
	fatal bool
}

// NewError creates a new Error.
func NewError(code ErrorCode, str string, fatal bool) (err Error) {
	return Error{code, str, fatal}
}

func newError(code ErrorCode, format string, args ...interface{}) Error {
	return Error{code, fmt.Sprintf(format, args...), code != ErrIncomplete}
}

// Error returns a human readable representation of an Error.
// Same as Error.String()
func (e Error) Error() string {
	return e.String()
}

// String returns a human readable representation of an Error.
func (e Error) String() string {
	if len(e.str) > 0 {
		return fmt.Sprintf("%s: %s", e.code.String(), e.str)
	}
	return e.code.String()
}

// Code returns the ErrorCode of an Error.
func (e Error) Code() ErrorCode {
	return e.code
}

// IsFatal returns true if the error leaves the stream unusable.
func (e Error) IsFatal() bool {
	return e.fatal
}

// Is supports errors.Is matching on the error code, so callers can compare
// against e.g. NewError(ErrCorruptStream, "", false) or another Error value
// carrying the same code.
func (e Error) Is(target error) bool {
	t, ok := target.(Error)
	return ok && t.code == e.code
}

// errIncomplete is the internal "need more bytes" signal consumed by the
// chunk buffer's retry loop.
var errIncomplete = Error{code: ErrIncomplete}
