//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package planerr

import (
	"errors"
	"testing"
)

func TestIsKind(t *testing.T) {
	err := NewUnsatisfiableSortError("name,age")
	if !IsKind(err, UnsatisfiableSort) {
		t.Fatal("expected IsKind to recognize the error's own kind")
	}
	if IsKind(err, PlanTooComplex) {
		t.Fatal("IsKind should not match an unrelated kind")
	}
}

func TestIsKindRejectsNonPlanError(t *testing.T) {
	if IsKind(errors.New("boom"), MetadataError) {
		t.Fatal("a plain error should never satisfy IsKind")
	}
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	err := NewUnexpectedStateError("something broke", cause)
	if errors.Unwrap(err) != cause {
		t.Fatal("expected Unwrap to return the wrapped cause")
	}
}

func TestPlanTooComplexMessageIncludesCounts(t *testing.T) {
	err := NewPlanTooComplexError("plan", 5000, 3000)
	if err.Kind != PlanTooComplex {
		t.Fatal("expected PlanTooComplex kind")
	}
	if err.Error() == "" {
		t.Fatal("expected a non-empty error message")
	}
}
