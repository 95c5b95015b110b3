//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

package predicate

import (
	"testing"

	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/value"
)

func TestAndFlattensNestedAnd(t *testing.T) {
	a := FieldWithComparison("a", Equality(value.NewString("1")))
	b := FieldWithComparison("b", Equality(value.NewString("2")))
	inner := And(a, b)
	c := FieldWithComparison("c", Equality(value.NewString("3")))
	outer := And(inner, c)
	if len(outer.Children) != 3 {
		t.Fatalf("expected 3 flattened children, got %d", len(outer.Children))
	}
}

func TestAndSingleChildCollapses(t *testing.T) {
	a := FieldWithComparison("a", Equality(value.NewString("1")))
	out := And(a)
	if out != a {
		t.Fatal("a single-child And should collapse to the child itself")
	}
}

func TestComponentEqualsStructural(t *testing.T) {
	a := FieldWithComparison("name", Equality(value.NewString("bob")))
	b := FieldWithComparison("name", Equality(value.NewString("bob")))
	c := FieldWithComparison("name", Equality(value.NewString("alice")))
	if !a.Equals(b) {
		t.Fatal("structurally identical leaves should be equal")
	}
	if a.Equals(c) {
		t.Fatal("leaves with different comparison values should not be equal")
	}
}

func TestComponentCloneIsIndependent(t *testing.T) {
	a := And(FieldWithComparison("a", Equality(value.NewString("1"))), FieldWithComparison("b", Equality(value.NewString("2"))))
	clone := a.Clone()
	clone.Children[0] = FieldWithComparison("z", Equality(value.NewString("9")))
	if a.Children[0].FieldName != "a" {
		t.Fatal("mutating the clone's children slice should not affect the original")
	}
}

func TestWalkVisitsEveryNode(t *testing.T) {
	leaf1 := FieldWithComparison("a", Equality(value.NewString("1")))
	leaf2 := FieldWithComparison("b", Equality(value.NewString("2")))
	tree := Not(And(leaf1, leaf2))
	count := 0
	tree.Walk(func(*Component) { count++ })
	if count != 4 { // Not, And, leaf1, leaf2
		t.Fatalf("expected 4 visited nodes, got %d", count)
	}
}

func TestComparisonComplement(t *testing.T) {
	c := Inequality(key.GT, value.NewNumber(5))
	comp, ok := c.Complement()
	if !ok {
		t.Fatal("an inequality should always have a complement")
	}
	if comp.InequalityOp != key.LTE {
		t.Fatalf("expected the complement of GT to be LTE, got %v", comp.InequalityOp)
	}
	if comp.InequalityV.Actual() != 5.0 {
		t.Fatal("complement should preserve the bound value")
	}

	inList := InList([]value.Value{value.NewNumber(1)})
	if _, ok := inList.Complement(); ok {
		t.Fatal("InList has no direct complement")
	}
}
