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
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
	"github.com/recordlayer/recordplan/value"
)

func TestExtractInListsReplacesWithParameter(t *testing.T) {
	pool := []*predicate.Component{
		predicate.FieldWithComparison("name", predicate.InList([]value.Value{value.NewString("a"), value.NewString("b")})),
		predicate.FieldWithComparison("age", predicate.Equality(value.NewNumber(30))),
	}
	newPool, extractions := extractInLists(pool)
	if len(extractions) != 1 {
		t.Fatalf("expected exactly one extraction, got %d", len(extractions))
	}
	if newPool[0].Comparison.Kind != predicate.CompParameter {
		t.Fatal("expected the IN-list leaf to be replaced by a Parameter placeholder")
	}
	if newPool[1].Comparison.Kind != predicate.CompEquality {
		t.Fatal("a non-IN leaf should pass through unchanged")
	}
}

func TestExtractInListsLeavesNonInListUntouched(t *testing.T) {
	pool := []*predicate.Component{
		predicate.FieldWithComparison("age", predicate.Equality(value.NewNumber(30))),
	}
	newPool, extractions := extractInLists(pool)
	if len(extractions) != 0 {
		t.Fatal("expected no extractions when no IN-list leaf is present")
	}
	if len(newPool) != 1 {
		t.Fatal("expected the pool to pass through unchanged in length")
	}
}

func TestResolveInExtractionWrapsInJoinWithNoSort(t *testing.T) {
	pool := []*predicate.Component{
		predicate.FieldWithComparison("name", predicate.InList([]value.Value{value.NewString("a"), value.NewString("b")})),
	}
	newPool, extractions := extractInLists(pool)
	sc := &key.ScanComparisons{}
	for _, leaf := range newPool {
		sc = sc.AddEquality(equalityValueOf(leaf.Comparison))
	}
	scan := plan.NewIndexScan("by_name", key.Field("name", key.FanNone), sc, false, false, nil)
	sp := ScoredPlan{Plan: scan}
	out := resolveInExtraction(sp, extractions, nil, DefaultConfiguration())
	if _, ok := out.Plan.(*plan.InJoin); !ok {
		t.Fatalf("expected the plan to be wrapped in an InJoin, got %T", out.Plan)
	}
}

func TestResolveInExtractionWrapsInUnionWhenSortRequestedAndUnionAllowed(t *testing.T) {
	pool := []*predicate.Component{
		predicate.FieldWithComparison("name", predicate.InList([]value.Value{value.NewString("a"), value.NewString("b")})),
	}
	newPool, extractions := extractInLists(pool)
	sc := &key.ScanComparisons{}
	for _, leaf := range newPool {
		sc = sc.AddEquality(equalityValueOf(leaf.Comparison))
	}
	ke := key.Field("name", key.FanNone)
	scan := plan.NewIndexScan("by_name", ke, sc, false, false, nil)
	sp := ScoredPlan{Plan: scan, PlanOrderingKey: ke}
	cfg := DefaultConfiguration()
	cfg.AttemptFailedInJoinAsUnion = true
	out := resolveInExtraction(sp, extractions, []*key.Expression{ke}, cfg)
	if _, ok := out.Plan.(*plan.InUnion); !ok {
		t.Fatalf("expected the plan to be wrapped in an InUnion, got %T", out.Plan)
	}
}

func TestWrapInExtractionFallsBackToExplicitOrWhenUnionUnavailable(t *testing.T) {
	ke := key.Field("name", key.FanNone)
	paramLeaf := predicate.FieldWithComparison("name", predicate.Parameter("name"))
	values := []value.Value{value.NewString("a"), value.NewString("b")}
	sc := (&key.ScanComparisons{}).AddEquality(equalityValueOf(paramLeaf.Comparison))
	scan := plan.NewIndexScan("by_name", ke, sc, false, false, nil)
	sp := ScoredPlan{Plan: scan, PlanOrderingKey: ke}
	cfg := DefaultConfiguration()
	cfg.AttemptFailedInJoinAsUnion = false
	cfg.AttemptFailedInJoinAsOr = true
	consumed := []inExtraction{{paramLeaf: paramLeaf, values: values}}

	out := wrapInExtraction(sp, consumed, []*key.Expression{ke}, cfg)

	u, ok := out.Plan.(*plan.Union)
	if !ok {
		t.Fatalf("expected an explicit Union over one scan per IN value, got %T", out.Plan)
	}
	if len(u.Children) != len(values) {
		t.Fatalf("expected one branch per IN value, got %d", len(u.Children))
	}
	for i, child := range u.Children {
		cs, ok := child.(*plan.IndexScan)
		if !ok {
			t.Fatalf("expected branch %d to be an IndexScan, got %T", i, child)
		}
		if !cs.Comparisons.Equalities[0].Equals(values[i]) {
			t.Fatalf("expected branch %d's placeholder substituted with %v, got %v", i, values[i], cs.Comparisons.Equalities[0])
		}
	}
}

func TestWrapInExtractionRespectsUnionWidthCap(t *testing.T) {
	ke := key.Field("name", key.FanNone)
	paramLeaf := predicate.FieldWithComparison("name", predicate.Parameter("name"))
	values := []value.Value{value.NewString("a"), value.NewString("b"), value.NewString("c")}
	sc := (&key.ScanComparisons{}).AddEquality(equalityValueOf(paramLeaf.Comparison))
	scan := plan.NewIndexScan("by_name", ke, sc, false, false, nil)
	sp := ScoredPlan{Plan: scan, PlanOrderingKey: ke}
	cfg := DefaultConfiguration()
	cfg.AttemptFailedInJoinAsUnion = true
	cfg.AttemptFailedInJoinAsUnionMaxSize = 2 // narrower than len(values)
	consumed := []inExtraction{{paramLeaf: paramLeaf, values: values}}

	out := wrapInExtraction(sp, consumed, []*key.Expression{ke}, cfg)

	if _, ok := out.Plan.(*plan.InUnion); ok {
		t.Fatal("an extraction wider than the configured cap should not use InUnion")
	}
	if _, ok := out.Plan.(*plan.InJoin); !ok {
		t.Fatalf("expected the plan to fall back to a plain InJoin, got %T", out.Plan)
	}
}

func TestResolveInExtractionRestoresOriginalLeafWhenUnsarged(t *testing.T) {
	pool := []*predicate.Component{
		predicate.FieldWithComparison("name", predicate.InList([]value.Value{value.NewString("a"), value.NewString("b")})),
	}
	newPool, extractions := extractInLists(pool)
	scan := plan.NewRecordScan(key.Field("pk", key.FanNone), &key.ScanComparisons{}, false, nil)
	sp := ScoredPlan{Plan: scan, UnsatisfiedFilters: newPool}
	out := resolveInExtraction(sp, extractions, nil, DefaultConfiguration())
	if len(out.UnsatisfiedFilters) != 1 || out.UnsatisfiedFilters[0].Comparison.Kind != predicate.CompInList {
		t.Fatal("an unsarged placeholder should fall back to its original IN-list leaf as residual")
	}
	if _, ok := out.Plan.(*plan.InJoin); ok {
		t.Fatal("an extraction that never got sarged should not drive any join at all")
	}
}
