//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package planner

import (
	"testing"

	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/predicate"
	"github.com/recordlayer/recordplan/value"
)

func TestEqualityValueOfResolvesAnOrdinaryEquality(t *testing.T) {
	c := predicate.Equality(value.NewString("bob"))
	got := equalityValueOf(c)
	if !got.Equals(value.NewString("bob")) {
		t.Fatalf("expected the bound equality value back, got %v", got)
	}
}

func TestEqualityValueOfResolvesParameterToOpaquePlaceholder(t *testing.T) {
	c := predicate.Parameter("status")
	got := equalityValueOf(c)
	want := value.NewString("$status")
	if !got.Equals(want) {
		t.Fatalf("expected a $-prefixed placeholder for an unresolved parameter, got %v", got)
	}
}

func TestInequalityBoundsOfGreaterThanIsALowBound(t *testing.T) {
	c := predicate.Inequality(key.GT, value.NewNumber(5))
	low, high := inequalityBoundsOf(c)
	if low == nil || high != nil {
		t.Fatal("a GT comparison should produce only a low bound")
	}
	if low.Op != key.GT {
		t.Fatalf("expected the low bound to keep the GT operator, got %v", low.Op)
	}
}

func TestInequalityBoundsOfLessThanIsAHighBound(t *testing.T) {
	c := predicate.Inequality(key.LT, value.NewNumber(5))
	low, high := inequalityBoundsOf(c)
	if high == nil || low != nil {
		t.Fatal("an LT comparison should produce only a high bound")
	}
	if high.Op != key.LT {
		t.Fatalf("expected the high bound to keep the LT operator, got %v", high.Op)
	}
}

func TestEqualityBindableAcceptsEqualityAndParameterOnly(t *testing.T) {
	cases := []struct {
		c    predicate.Comparison
		want bool
	}{
		{predicate.Equality(value.NewString("a")), true},
		{predicate.Parameter("p"), true},
		{predicate.Inequality(key.GT, value.NewNumber(1)), false},
		{predicate.InList([]value.Value{value.NewString("a"), value.NewString("b")}), false},
		{predicate.Null(predicate.IsNull), false},
	}
	for _, tc := range cases {
		if got := equalityBindable(tc.c); got != tc.want {
			t.Fatalf("equalityBindable(%v) = %v, want %v", tc.c.Kind, got, tc.want)
		}
	}
}
