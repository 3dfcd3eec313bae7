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
	"errors"
	"fmt"
	"testing"
)

func TestErrorCodesAndFatality(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	err := newError(ErrCorruptStream, "bad block at %d", 42)
	MaybeFail("corrupt",
		Expect(err.Code(), ErrCorruptStream),
		Expect(err.IsFatal(), true),
		Expect(err.Error(), "CorruptStream: bad block at 42"))

	MaybeFail("incomplete is not fatal", Expect(errIncomplete.IsFatal(), false))
}

func TestErrorsIsMatchesOnCode(t *testing.T) {
	MaybeFail = InitFailFunc(t)

	err := newError(ErrSchema, "unparsable")
	wrapped := fmt.Errorf("reading header: %w", err)

	MaybeFail("match",
		Expect(errors.Is(wrapped, newError(ErrSchema, "other text")), true),
		Expect(errors.Is(wrapped, newError(ErrCorruptStream, "other code")), false),
		Expect(errCode(wrapped), ErrSchema))
}
