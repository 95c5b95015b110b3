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

func TestRankComparisonsBindFirstAlwaysSucceeds(t *testing.T) {
	r := NewRankComparisons()
	sc := (&key.ScanComparisons{}).AddEquality(value.NewString("group1"))
	leaf := predicate.QueryRecordFunctionWithComparison(predicate.FunctionRank, nil, predicate.Equality(value.NewNumber(1)))
	if !r.Bind("by_score_rank", sc, leaf) {
		t.Fatal("the first binding for an index should always succeed")
	}
	if r.ScanComparisons("by_score_rank") != sc {
		t.Fatal("expected the bound ScanComparisons to be retrievable")
	}
}

func TestRankComparisonsMergesCompatibleBindings(t *testing.T) {
	r := NewRankComparisons()
	sc1 := (&key.ScanComparisons{}).AddEquality(value.NewString("group1"))
	sc1 = sc1.AddInequality(&key.Inequality{Op: key.GT, Value: value.NewNumber(5)}, nil)
	sc2 := (&key.ScanComparisons{}).AddEquality(value.NewString("group1"))
	sc2 = sc2.AddInequality(nil, &key.Inequality{Op: key.LT, Value: value.NewNumber(10)})

	leaf1 := predicate.QueryRecordFunctionWithComparison(predicate.FunctionRank, nil, predicate.Inequality(key.GT, value.NewNumber(5)))
	leaf2 := predicate.QueryRecordFunctionWithComparison(predicate.FunctionRank, nil, predicate.Inequality(key.LT, value.NewNumber(10)))

	if !r.Bind("by_score_rank", sc1, leaf1) {
		t.Fatal("expected the first rank bound to succeed")
	}
	if !r.Bind("by_score_rank", sc2, leaf2) {
		t.Fatal("expected a second rank bound sharing the same grouping prefix to merge")
	}
	merged := r.ScanComparisons("by_score_rank")
	if !merged.HasInequality() {
		t.Fatal("expected the merged comparisons to carry both inequality bounds")
	}
}

func TestRankComparisonsRejectsIncompatibleEqualityPrefix(t *testing.T) {
	r := NewRankComparisons()
	sc1 := (&key.ScanComparisons{}).AddEquality(value.NewString("group1"))
	sc2 := (&key.ScanComparisons{}).AddEquality(value.NewString("group2"))
	leaf1 := predicate.QueryRecordFunctionWithComparison(predicate.FunctionRank, nil, predicate.Equality(value.NewNumber(1)))
	leaf2 := predicate.QueryRecordFunctionWithComparison(predicate.FunctionRank, nil, predicate.Equality(value.NewNumber(2)))

	r.Bind("by_score_rank", sc1, leaf1)
	if r.Bind("by_score_rank", sc2, leaf2) {
		t.Fatal("expected a mismatched equality prefix to be rejected, not silently merged")
	}
}

func TestRankComparisonsScanComparisonsNilWhenUnbound(t *testing.T) {
	r := NewRankComparisons()
	if r.ScanComparisons("nope") != nil {
		t.Fatal("expected nil ScanComparisons for an index with no binding")
	}
	if r.Leaves("nope") != nil {
		t.Fatal("expected nil Leaves for an index with no binding")
	}
}
