//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// The AndWithThen matcher — the heart of the planner. It walks a
// Then-shaped index key left to right, binding one filter leaf per column
// into a key.ScanComparisons and tracking how much of the requested sort
// that binding satisfies. It covers Nesting groups and the
// Field/RecordTypeKey/Version/QueryKeyExpression leaf-compatibility rules
// below, one comparison kind at a time.
package planner

import (
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/predicate"
)

// matchOutcome is the result of walking one (sub-)key's columns against
// one predicate pool. It is a single matcher value confined to the
// duration of one matching attempt and freshly constructed between
// candidates.
type matchOutcome struct {
	sc            *key.ScanComparisons
	outerConsumed int // outer columns for which a comparison fully bound that column
	outerTotal    int
	hadInequality bool
	sortConsumed  int
	used          map[*predicate.Component]bool
}

// matchKeyAgainstFilter runs the per-column loop. pool is the
// (flattened) AND children available to sarg; sortCols is the flattened,
// possibly-empty requested sort. It never fails outright — "candidate did
// not match" is represented by a zero-value outcome, which the caller
// scores at 0 and ranks accordingly.
func matchKeyAgainstFilter(columns []*key.Expression, pool []*predicate.Component, sortCols []*key.Expression) matchOutcome {
	out := matchOutcome{sc: &key.ScanComparisons{}, outerTotal: len(columns), used: map[*predicate.Component]bool{}}
	equalityOpen := true
	sortIdx := 0

	for _, col := range columns {
		matchedFull := false
		category := predicate.CategoryEquality

		if col.Kind() == key.KindNesting {
			ok, consumed := matchNestedGroup(col, pool, out.used, equalityOpen, out.sc)
			if ok {
				matchedFull = true
				category = predicate.CategoryEquality
				_ = consumed
			}
		} else {
			if leaf, comp, found := findLeafForColumn(pool, out.used, col); found && equalityOpen {
				switch {
				case comp.Category() == predicate.CategoryEquality && equalityBindable(comp):
					out.sc = out.sc.AddEquality(equalityValueOf(comp))
					out.used[leaf] = true
					matchedFull = true
					category = predicate.CategoryEquality
				case comp.Category() == predicate.CategoryInequality:
					lo, hi := inequalityBoundsOf(comp)
					out.sc = out.sc.AddInequality(lo, hi)
					out.used[leaf] = true
					matchedFull = true
					category = predicate.CategoryInequality
				}
			}
		}

		committedSort := false
		if sortIdx < len(sortCols) && sortCols[sortIdx].Equals(col) {
			sortIdx++
			committedSort = true
		}

		if !matchedFull && !committedSort {
			// No comparison and no pending sort match on this column — stop.
			break
		}

		if matchedFull {
			out.outerConsumed++
			if category == predicate.CategoryInequality {
				equalityOpen = false
				out.hadInequality = true
			}
		} else {
			// committedSort only: the column's value is unconstrained, so
			// no further column can be sarged (its relative position in
			// the index is undefined without constraining this one).
			equalityOpen = false
		}
	}

	out.sortConsumed = sortIdx
	return out
}

// matchNestedGroup implements AND-with-nested-Nesting-key matching: every
// remaining AND child that descends into col's parent field is gathered
// and matched collectively against the nested sub-key, so more than one
// leaf may bind to different nested columns in one pass. Only a
// fully-consumed nested group (every nested column bound by equality)
// folds into the outer ScanComparisons.
func matchNestedGroup(col *key.Expression, pool []*predicate.Component, used map[*predicate.Component]bool, equalityOpen bool, sc *key.ScanComparisons) (bool, []*predicate.Component) {
	if !equalityOpen {
		return false, nil
	}
	parentName := col.NestingParent().FieldName()

	var nestedPool []*predicate.Component
	var gathered []*predicate.Component
	for _, leaf := range pool {
		if used[leaf] || leaf.Kind != predicate.KindNested || leaf.Nest != parentName {
			continue
		}
		gathered = append(gathered, leaf)
		if leaf.Child.Kind == predicate.KindAnd {
			nestedPool = append(nestedPool, leaf.Child.Children...)
		} else {
			nestedPool = append(nestedPool, leaf.Child)
		}
	}
	if len(gathered) == 0 {
		return false, nil
	}

	childColumns := col.NestingChild().Columns()
	inner := matchKeyAgainstFilter(childColumns, nestedPool, nil)
	if inner.outerConsumed != len(childColumns) || inner.hadInequality {
		// Only a full equality match on every nested column counts as
		// "fully consuming" the outer Nesting column.
		return false, nil
	}

	sc.Equalities = append(sc.Equalities, inner.sc.Equalities...)
	for _, g := range gathered {
		used[g] = true
	}
	return true, gathered
}

// findLeafForColumn applies the leaf/column compatibility table, scanning
// pool in order and returning the first unused match.
func findLeafForColumn(pool []*predicate.Component, used map[*predicate.Component]bool, col *key.Expression) (*predicate.Component, predicate.Comparison, bool) {
	for _, leaf := range pool {
		if used[leaf] {
			continue
		}
		switch leaf.Kind {
		case predicate.KindFieldWithComparison:
			if col.Kind() == key.KindField && col.FieldFan() == key.FanNone && leaf.FieldName == col.FieldName() {
				return leaf, leaf.Comparison, true
			}
		case predicate.KindOneOfThemWithComparison:
			if col.Kind() == key.KindField && col.FieldFan() == key.FanOut && leaf.FieldName == col.FieldName() {
				return leaf, leaf.Comparison, true
			}
		case predicate.KindRecordTypeKeyComparison:
			if col.Kind() == key.KindRecordTypeKey {
				return leaf, leaf.Comparison, true
			}
		case predicate.KindQueryRecordFunctionWithComparison:
			if leaf.Function == predicate.FunctionVersion && col.Kind() == key.KindVersion {
				return leaf, leaf.Comparison, true
			}
		case predicate.KindQueryKeyExpressionWithComparison:
			if leaf.KeyExpr.Equals(col) {
				return leaf, leaf.Comparison, true
			}
		}
	}
	return nil, predicate.Comparison{}, false
}
