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
	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/predicate"
)

func TestScoredPlanNumNonSargablesSumsBothLists(t *testing.T) {
	sp := ScoredPlan{
		UnsatisfiedFilters: []*predicate.Component{{}, {}},
		IndexFilters:       []*predicate.Component{{}},
	}
	if sp.NumNonSargables() != 3 {
		t.Fatalf("expected 2 unsatisfied + 1 index filter = 3, got %d", sp.NumNonSargables())
	}
	if sp.NumIndexFilters() != 1 {
		t.Fatalf("expected 1 index filter, got %d", sp.NumIndexFilters())
	}
}

func TestScoredPlanWithMethodsReturnIndependentCopies(t *testing.T) {
	orig := ScoredPlan{Score: 5}
	withResidual := orig.WithResidual([]*predicate.Component{{}})
	if len(orig.UnsatisfiedFilters) != 0 {
		t.Fatal("WithResidual must not mutate the receiver")
	}
	if len(withResidual.UnsatisfiedFilters) != 1 {
		t.Fatal("expected the copy to carry the new residual")
	}

	withFilters := orig.WithIndexFilters([]*predicate.Component{{}, {}})
	if len(orig.IndexFilters) != 0 {
		t.Fatal("WithIndexFilters must not mutate the receiver")
	}
	if len(withFilters.IndexFilters) != 2 {
		t.Fatal("expected the copy to carry the new index filters")
	}

	withPlan := orig.WithPlan(nil)
	if withPlan.Score != 5 {
		t.Fatal("WithPlan must preserve unrelated fields")
	}
}

func TestScoredPlanIndexSizeOverheadNoIndexIsNegativeOne(t *testing.T) {
	sp := ScoredPlan{Index: nil}
	if sp.indexSizeOverhead() != -1 {
		t.Fatal("a no-index candidate's overhead is resolved by scan-preference policy, not size")
	}
}

func TestScoredPlanIndexSizeOverheadValueIndexUsesStoredColumnCount(t *testing.T) {
	sp := ScoredPlan{Index: &metadata.Index{
		Type:    metadata.IndexValue,
		KeyExpr: key.Then(key.Field("a", key.FanNone), key.Field("b", key.FanNone)),
	}}
	if got := sp.indexSizeOverhead(); got != sp.Index.StoredColumnCount() {
		t.Fatalf("expected value-index overhead to be its stored column count, got %d", got)
	}
}

func TestScoredPlanIndexSizeOverheadOtherTypeUsesFullKeyWidth(t *testing.T) {
	whole := key.Then(key.Field("region", key.FanNone), key.Field("score", key.FanNone))
	sp := ScoredPlan{Index: &metadata.Index{
		Type:    metadata.IndexRank,
		KeyExpr: key.Grouping(whole, 1),
	}}
	if got := sp.indexSizeOverhead(); got != sp.Index.KeyExpr.ColumnWidth() {
		t.Fatalf("expected a non-value index's overhead to be its full key width, got %d", got)
	}
}
