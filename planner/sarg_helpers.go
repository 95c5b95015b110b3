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
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/predicate"
	"github.com/recordlayer/recordplan/value"
)

// equalityValueOf resolves a single-valued equality comparison to the value
// bound into a ScanComparisons equality slot. Parameter comparisons (the
// per-outer-binding placeholder an IN-join leaves behind once its IN list is
// extracted) resolve to an opaque placeholder: the real value is supplied at
// execution time, not at plan time.
func equalityValueOf(c predicate.Comparison) value.Value {
	if c.Kind == predicate.CompParameter {
		return value.NewString("$" + c.ParameterName)
	}
	return c.Equality
}

// inequalityBoundsOf converts a single-operator comparison into the
// low/high halves of a compound range.
func inequalityBoundsOf(c predicate.Comparison) (*key.Inequality, *key.Inequality) {
	b := &key.Inequality{Op: c.InequalityOp, Value: c.InequalityV}
	switch c.InequalityOp {
	case key.GT, key.GTE:
		return b, nil
	default:
		return nil, b
	}
}

// equalityBindable reports whether a comparison can bind a single column as
// an equality in the AndWithThen matcher. An un-extracted InList cannot: it
// names a set of values, not one, and is only sargable once IN extraction
// has replaced it with a Parameter per outer binding.
func equalityBindable(c predicate.Comparison) bool {
	return c.Kind == predicate.CompEquality || c.Kind == predicate.CompParameter
}
