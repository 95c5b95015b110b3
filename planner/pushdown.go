//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Residual filter pushdown: rather than wrapping the whole top-level plan
// in one ResidualFilter, the filter is pushed below every combinator whose
// branches it can be replicated across without changing which records
// survive — a Union, Intersection, IN-join/IN-union, or TypeFilter. Each
// branch then discards its own non-matching rows before the merge, instead
// of every row from every branch flowing through the merge only to be
// discarded afterward.
package planner

import (
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
)

// pushDownResidual attaches pred as low in op's tree as it legally can.
// Combinators with more than one branch get pred replicated onto every
// branch; a single-child wrapper gets pred pushed through to its source;
// anything else (a bare scan, or an operator pushdown doesn't know how to
// see through) gets a ResidualFilter placed directly above it.
func pushDownResidual(op plan.Operator, pred *predicate.Component) plan.Operator {
	switch o := op.(type) {
	case *plan.Union:
		return plan.NewUnion(pushDownResidualAll(o.Children, pred), o.ComparisonKey, o.Reverse())
	case *plan.UnorderedUnion:
		return plan.NewUnorderedUnion(pushDownResidualAll(o.Children, pred))
	case *plan.Intersection:
		return plan.NewIntersection(pushDownResidualAll(o.Children, pred), o.ComparisonKey, o.Reverse())
	case *plan.InJoin:
		return plan.NewInJoin(o.Sources, pushDownResidual(o.Inner, pred))
	case *plan.InUnion:
		return plan.NewInUnion(o.Sources, pushDownResidual(o.Inner, pred), o.ComparisonKey, o.Reverse())
	case *plan.TypeFilter:
		return plan.NewTypeFilter(pushDownResidual(o.Source, pred), o.Types)
	default:
		return plan.NewResidualFilter(op, pred)
	}
}

func pushDownResidualAll(children []plan.Operator, pred *predicate.Component) []plan.Operator {
	out := make([]plan.Operator, len(children))
	for i, c := range children {
		out[i] = pushDownResidual(c, pred)
	}
	return out
}
