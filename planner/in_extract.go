//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// IN extraction: every InList leaf in an AND pool is replaced, before
// matching, by a Parameter placeholder naming one outer binding; the
// matcher then sargs that placeholder exactly like an equality. Once a
// candidate has been chosen, resolveInExtraction decides, per extraction,
// whether the placeholder actually got sarged: if so the plan is wrapped in
// an InJoin, or — when a requested sort needs the branches merged rather
// than concatenated — an InUnion within the configured per-source width, or
// an explicit Union over one concretely-bound scan per value combination
// when AttemptFailedInJoinAsOr is set and the union path is unavailable; if
// the placeholder wasn't sarged, the original InList leaf is restored as
// residual and no join is built at all.
package planner

import (
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
	"github.com/recordlayer/recordplan/value"
)

type inExtraction struct {
	leaf      *predicate.Component
	paramLeaf *predicate.Component
	values    []value.Value
}

// extractInLists replaces every IN-list comparison in pool with a Parameter
// placeholder of the same leaf shape, returning the rewritten pool and the
// set of extractions performed.
func extractInLists(pool []*predicate.Component) ([]*predicate.Component, []inExtraction) {
	var newPool []*predicate.Component
	var extractions []inExtraction
	for i, leaf := range pool {
		if leaf.Comparison.Kind != predicate.CompInList {
			newPool = append(newPool, leaf)
			continue
		}
		paramName := leaf.FieldName
		if paramName == "" {
			paramName = "in"
		}
		var repl *predicate.Component
		switch leaf.Kind {
		case predicate.KindFieldWithComparison:
			repl = predicate.FieldWithComparison(leaf.FieldName, predicate.Parameter(paramNameFor(paramName, i)))
		case predicate.KindOneOfThemWithComparison:
			repl = predicate.OneOfThemWithComparison(leaf.FieldName, predicate.Parameter(paramNameFor(paramName, i)))
		default:
			newPool = append(newPool, leaf)
			continue
		}
		extractions = append(extractions, inExtraction{leaf: leaf, paramLeaf: repl, values: leaf.Comparison.InList})
		newPool = append(newPool, repl)
	}
	return newPool, extractions
}

func paramNameFor(field string, idx int) string {
	if idx == 0 {
		return field
	}
	return field + "#" + string(rune('0'+idx))
}

// resolveInExtraction inspects the winning candidate's residual list: any
// extraction whose placeholder was left unsarged falls back to its
// original InList leaf; every extraction whose placeholder was consumed
// drives one InJoin/InUnion source.
func resolveInExtraction(sp ScoredPlan, extractions []inExtraction, sortCols []*key.Expression, cfg Configuration) ScoredPlan {
	if len(extractions) == 0 {
		return sp
	}

	var residual []*predicate.Component
	for _, r := range sp.UnsatisfiedFilters {
		if e := extractionFor(extractions, r); e != nil {
			residual = append(residual, e.leaf)
			continue
		}
		residual = append(residual, r)
	}

	var consumed []inExtraction
	for _, e := range extractions {
		if !containsLeaf(sp.UnsatisfiedFilters, e.paramLeaf) {
			consumed = append(consumed, e)
		}
	}

	sp.UnsatisfiedFilters = residual
	return wrapInExtraction(sp, consumed, sortCols, cfg)
}

func extractionFor(extractions []inExtraction, leaf *predicate.Component) *inExtraction {
	for i := range extractions {
		if extractions[i].paramLeaf == leaf {
			return &extractions[i]
		}
	}
	return nil
}

func containsLeaf(list []*predicate.Component, target *predicate.Component) bool {
	for _, l := range list {
		if l == target {
			return true
		}
	}
	return false
}

func wrapInExtraction(sp ScoredPlan, consumed []inExtraction, sortCols []*key.Expression, cfg Configuration) ScoredPlan {
	if len(consumed) == 0 {
		return sp
	}
	sources := inSourcesOf(consumed)

	if len(sortCols) == 0 {
		sp.Plan = plan.NewInJoin(sources, sp.Plan)
		return sp
	}
	if cfg.AttemptFailedInJoinAsUnion && fitsUnionWidth(consumed, cfg.AttemptFailedInJoinAsUnionMaxSize) {
		sp.Plan = plan.NewInUnion(sources, sp.Plan, sp.PlanOrderingKey, false)
		return sp
	}
	if cfg.AttemptFailedInJoinAsOr {
		sp.Plan = explicitOrForExtraction(sp.Plan, consumed, sp.PlanOrderingKey)
		return sp
	}
	sp.Plan = plan.NewInJoin(sources, sp.Plan)
	return sp
}

func inSourcesOf(consumed []inExtraction) []plan.InSource {
	sources := make([]plan.InSource, 0, len(consumed))
	for _, e := range consumed {
		vals := make([]interface{}, len(e.values))
		for i, v := range e.values {
			vals[i] = v.Actual()
		}
		sources = append(sources, plan.InSource{ParameterName: e.paramLeaf.Comparison.ParameterName, Values: vals})
	}
	return sources
}

// fitsUnionWidth reports whether every extraction's value count is within
// the configured per-source IN-union width; a non-positive max means no
// limit was configured.
func fitsUnionWidth(consumed []inExtraction, max int) bool {
	if max <= 0 {
		return true
	}
	for _, e := range consumed {
		if len(e.values) > max {
			return false
		}
	}
	return true
}

// explicitOrForExtraction is the sort-incompatible IN fallback: rather than
// the symbolic InUnion operator, it builds one concretely-bound scan per
// combination of the consumed IN lists' values and merges them with an
// ordered Union over the same ordering key, the way an explicit chain of OR
// branches over literal values would plan.
func explicitOrForExtraction(inner plan.Operator, consumed []inExtraction, orderingKey *key.Expression) plan.Operator {
	branches := []plan.Operator{inner}
	for _, e := range consumed {
		paramName := e.paramLeaf.Comparison.ParameterName
		next := make([]plan.Operator, 0, len(branches)*len(e.values))
		for _, b := range branches {
			for _, v := range e.values {
				next = append(next, substituteParameter(b, paramName, v))
			}
		}
		branches = next
	}
	if len(branches) == 1 {
		return branches[0]
	}
	return plan.NewUnion(branches, orderingKey, false)
}

// substituteParameter replaces a scan's placeholder equality for paramName
// with v's concrete value, cloning the scan so every branch of the OR
// rewrite gets its own ScanComparisons.
func substituteParameter(op plan.Operator, paramName string, v value.Value) plan.Operator {
	placeholder := value.NewString("$" + paramName)
	switch s := op.(type) {
	case *plan.IndexScan:
		return plan.NewIndexScan(s.IndexName, s.OrderingKey(), withEqualitySubstituted(s.Comparisons, placeholder, v), s.Reverse(), s.CreatesDuplicates(), s.ResultTypes())
	case *plan.RecordScan:
		return plan.NewRecordScan(s.OrderingKey(), withEqualitySubstituted(s.Comparisons, placeholder, v), s.Reverse(), s.ResultTypes())
	default:
		return op
	}
}

func withEqualitySubstituted(sc *key.ScanComparisons, placeholder, v value.Value) *key.ScanComparisons {
	out := &key.ScanComparisons{Equalities: append([]value.Value{}, sc.Equalities...), Low: sc.Low, High: sc.High}
	for i, eq := range out.Equalities {
		if eq.Equals(placeholder) {
			out.Equalities[i] = v
		}
	}
	return out
}
