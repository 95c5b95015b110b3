//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Candidate construction wraps the column matcher with the bookkeeping a
// ScoredPlan needs: which AND children were consumed, which remain as
// residual, and whether the bound columns also satisfy the requested
// sort.
package planner

import (
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
	"github.com/recordlayer/recordplan/value"
)

// flattenAnd returns filter's top-level AND children, or a single-element
// pool if filter is a leaf or an Or; nil if filter is nil.
func flattenAnd(filter *predicate.Component) []*predicate.Component {
	if filter == nil {
		return nil
	}
	if filter.Kind == predicate.KindAnd {
		return append([]*predicate.Component{}, filter.Children...)
	}
	return []*predicate.Component{filter}
}

// sortColumnsOf flattens a requested sort key, or returns nil for "no sort
// requested".
func sortColumnsOf(sort *key.Expression) []*key.Expression {
	if sort == nil {
		return nil
	}
	return sort.Columns()
}

// strictlySorted reports whether the bound columns, beyond merely
// realizing the requested sort, guarantee no two output rows tie on it.
// With no requested sort there is nothing to be strict about, so the flag
// is always false; with a requested sort it holds once every sort column
// has been consumed and, in addition, either the index's unique key is
// fully covered, the whole index key is consumed, or the matched prefix
// ends in a bound inequality (a strict total order on that column
// already, so any unconsumed trailing columns only break ties the
// requested sort doesn't care about).
func strictlySorted(sortCols []*key.Expression, m matchOutcome, unique bool) bool {
	if len(sortCols) == 0 {
		return false
	}
	if m.sortConsumed < len(sortCols) {
		return false
	}
	return m.outerConsumed >= m.outerTotal || m.hadInequality || unique
}

// recordTypeKeyEqualityFor builds the RecordTypeKeyComparison leaf that pins
// a scan to the sole named record type, or nil when the query spans zero or
// more than one type — an equality only disambiguates a single type.
func recordTypeKeyEqualityFor(types []string) *predicate.Component {
	if len(types) != 1 {
		return nil
	}
	return predicate.RecordTypeKeyComparison(predicate.Equality(value.NewString(types[0])))
}

// withRecordTypeKeyLeaf injects the record-type equality into pool when
// columns leads with the record-type column; without it a scan over a
// primary key shared by several record types would bind nothing on that
// column and silently return rows of every type sharing the shape, not just
// the one the query named.
func withRecordTypeKeyLeaf(columns []*key.Expression, pool []*predicate.Component, types []string) []*predicate.Component {
	if len(columns) == 0 || columns[0].Kind() != key.KindRecordTypeKey {
		return pool
	}
	leaf := recordTypeKeyEqualityFor(types)
	if leaf == nil {
		return pool
	}
	return append(append([]*predicate.Component{}, pool...), leaf)
}

// fieldNameOf reports the single field a leaf comparison is about, for the
// leaf kinds that name exactly one field; other kinds (nested groups,
// record-type key, version, raw key-expression comparisons) have no single
// field to test against an index's stored columns. A Parameter comparison
// is excluded even when it names a field: it is an IN-extraction
// placeholder, and resolveInExtraction's bookkeeping only looks for an
// unsarged one in UnsatisfiedFilters, never in IndexFilters.
func fieldNameOf(leaf *predicate.Component) (string, bool) {
	if leaf.Comparison.Kind == predicate.CompParameter {
		return "", false
	}
	switch leaf.Kind {
	case predicate.KindFieldWithComparison, predicate.KindOneOfThemWithComparison:
		return leaf.FieldName, true
	default:
		return "", false
	}
}

// valueIndexScanKey is the key.Expression a value index is actually scanned
// against: the index's own key, extended with the common primary key as a
// trailing tie-breaker when Configuration.UseFullKeyForValueIndex asks the
// matcher to sarg (or at least sort by) the columns FDB always appends to a
// value index's stored entry.
func valueIndexScanKey(ix *metadata.Index, ctx *PlanContext, cfg Configuration) *key.Expression {
	if !cfg.UseFullKeyForValueIndex || ctx.CommonPrimaryKey == nil {
		return ix.KeyExpr
	}
	return key.Then(ix.KeyExpr, ctx.CommonPrimaryKey)
}

// partitionResidual splits a candidate's unmatched leaves into index
// filters — predicates the index's own stored columns can still evaluate
// without fetching the record — and true residual, which needs a fetch.
// Disabled by Configuration.OptimizeForIndexFilters, every unmatched leaf
// is treated as needing a fetch.
func partitionResidual(pool []*predicate.Component, used map[*predicate.Component]bool, columns []*key.Expression, optimize bool) (residual, indexFilters []*predicate.Component) {
	stored := map[string]bool{}
	if optimize {
		for _, col := range columns {
			if col.Kind() == key.KindField {
				stored[col.FieldName()] = true
			}
		}
	}
	for _, leaf := range pool {
		if used[leaf] {
			continue
		}
		if optimize {
			if fn, ok := fieldNameOf(leaf); ok && stored[fn] {
				indexFilters = append(indexFilters, leaf)
				continue
			}
		}
		residual = append(residual, leaf)
	}
	return residual, indexFilters
}

// matchValueIndex builds the ScoredPlan for a value-type index against one
// record type's scan.
func matchValueIndex(ctx *PlanContext, ix *metadata.Index, pool []*predicate.Component, sortCols []*key.Expression, cfg Configuration) (ScoredPlan, matchOutcome) {
	scanKey := valueIndexScanKey(ix, ctx, cfg)
	columns := scanKey.Columns()
	m := matchKeyAgainstFilter(columns, pool, sortCols)

	residual, indexFilters := partitionResidual(pool, m.used, ix.KeyExpr.Columns(), cfg.OptimizeForIndexFilters)

	scan := plan.NewIndexScan(ix.Name, scanKey, m.sc, false, ix.KeyExpr.CreatesDuplicates(), ctx.Query.RecordTypes)
	sp := ScoredPlan{
		Plan:               scan,
		Score:              m.sc.Size(),
		Index:              ix,
		UnsatisfiedFilters: residual,
		IndexFilters:       indexFilters,
		CreatesDuplicates:  ix.KeyExpr.CreatesDuplicates(),
		PlanOrderingKey:    scanKey,
		StrictlySorted:     strictlySorted(sortCols, m, ix.Unique),
		FullyEqualityBound: m.outerConsumed == m.outerTotal && !m.hadInequality,
	}
	return sp, m
}

// matchRecordScan builds the no-index fallback candidate: a RecordScan over
// the common primary key, bound by an equality on the record-type column
// when exactly one type was named and that column leads the key.
func matchRecordScan(ctx *PlanContext, pool []*predicate.Component, sortCols []*key.Expression) (ScoredPlan, matchOutcome) {
	columns := ctx.CommonPrimaryKey.Columns()
	pool = withRecordTypeKeyLeaf(columns, pool, ctx.Query.RecordTypes)
	m := matchKeyAgainstFilter(columns, pool, sortCols)

	var residual []*predicate.Component
	for _, leaf := range pool {
		if !m.used[leaf] {
			residual = append(residual, leaf)
		}
	}

	scan := plan.NewRecordScan(ctx.CommonPrimaryKey, m.sc, false, ctx.Query.RecordTypes)
	sp := ScoredPlan{
		Plan:               scan,
		Score:              m.sc.Size(),
		Index:              nil,
		UnsatisfiedFilters: residual,
		CreatesDuplicates:  false,
		PlanOrderingKey:    ctx.CommonPrimaryKey,
		StrictlySorted:     strictlySorted(sortCols, m, true),
		FullyEqualityBound: m.outerConsumed == m.outerTotal && !m.hadInequality,
	}
	return sp, m
}
