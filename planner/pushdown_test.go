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

func residualPred() *predicate.Component {
	return predicate.FieldWithComparison("city", predicate.Equality(value.NewString("nyc")))
}

func leafScan(name string) *plan.IndexScan {
	ke := key.Field(name, key.FanNone)
	return plan.NewIndexScan(name, ke, &key.ScanComparisons{}, false, false, nil)
}

func TestPushDownResidualReplicatesAcrossUnionBranches(t *testing.T) {
	ke := key.Field("pk", key.FanNone)
	u := plan.NewUnion([]plan.Operator{leafScan("a"), leafScan("b")}, ke, false)

	out := pushDownResidual(u, residualPred())

	pushed, ok := out.(*plan.Union)
	if !ok {
		t.Fatalf("expected pushdown to preserve the Union shape, got %T", out)
	}
	if len(pushed.Children) != 2 {
		t.Fatalf("expected both branches to survive, got %d", len(pushed.Children))
	}
	for i, c := range pushed.Children {
		if _, ok := c.(*plan.ResidualFilter); !ok {
			t.Fatalf("expected branch %d wrapped in its own ResidualFilter, got %T", i, c)
		}
	}
}

func TestPushDownResidualReplicatesAcrossIntersectionBranches(t *testing.T) {
	ke := key.Field("pk", key.FanNone)
	inter := plan.NewIntersection([]plan.Operator{leafScan("a"), leafScan("b")}, ke, false)

	out := pushDownResidual(inter, residualPred())

	pushed, ok := out.(*plan.Intersection)
	if !ok {
		t.Fatalf("expected pushdown to preserve the Intersection shape, got %T", out)
	}
	for i, c := range pushed.Children {
		if _, ok := c.(*plan.ResidualFilter); !ok {
			t.Fatalf("expected branch %d wrapped in its own ResidualFilter, got %T", i, c)
		}
	}
}

func TestPushDownResidualPassesThroughTypeFilter(t *testing.T) {
	tf := plan.NewTypeFilter(leafScan("a"), []string{"Customer"})

	out := pushDownResidual(tf, residualPred())

	pushed, ok := out.(*plan.TypeFilter)
	if !ok {
		t.Fatalf("expected the TypeFilter wrapper to survive above the pushed-down residual, got %T", out)
	}
	if _, ok := pushed.Source.(*plan.ResidualFilter); !ok {
		t.Fatalf("expected the residual pushed below the TypeFilter, got %T", pushed.Source)
	}
}

func TestPushDownResidualPassesThroughInJoin(t *testing.T) {
	sources := []plan.InSource{{ParameterName: "name", Values: []interface{}{"a", "b"}}}
	j := plan.NewInJoin(sources, leafScan("a"))

	out := pushDownResidual(j, residualPred())

	pushed, ok := out.(*plan.InJoin)
	if !ok {
		t.Fatalf("expected the InJoin wrapper to survive above the pushed-down residual, got %T", out)
	}
	if _, ok := pushed.Inner.(*plan.ResidualFilter); !ok {
		t.Fatalf("expected the residual pushed below the InJoin's inner plan, got %T", pushed.Inner)
	}
}

func TestPushDownResidualWrapsBareScanInResidualFilter(t *testing.T) {
	scan := leafScan("a")

	out := pushDownResidual(scan, residualPred())

	rf, ok := out.(*plan.ResidualFilter)
	if !ok {
		t.Fatalf("expected a bare scan to be wrapped directly in a ResidualFilter, got %T", out)
	}
	if rf.Source != scan {
		t.Fatal("expected the ResidualFilter to wrap the original scan unchanged")
	}
}
