//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Rank- and text-index matching. Both are narrower than the value-index
// column walk in match.go: a rank index matches exactly one rank() leaf
// once its grouping prefix is fully equality-bound, and a text index
// matches exactly one CONTAINS-style leaf on its indexed field. Sort
// satisfaction through either is deferred: a rank scan is already ordered
// by rank within its grouping key, and a text scan's relevance order has
// no key-expression shape to compare against a requested sort, so neither
// ever reports StrictlySorted — a caller that requires further ordering
// gets an explicit in-memory sort or UnsatisfiableSort like any other
// partially-ordered candidate.
package planner

import (
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
	"github.com/recordlayer/recordplan/value"
)

// matchWholeFilterFirst gives every rank- and text-type candidate index
// first refusal on the whole AND pool before the value-index matcher
// walks it column by column: these index types match one leaf (or one
// grouping-bound rank leaf) at a time rather than a left-to-right column
// sequence, so there is no ordering dependency on when they run relative
// to the value-index candidates.
func matchWholeFilterFirst(ctx *PlanContext, pool []*predicate.Component, sortCols []*key.Expression, cfg Configuration) []ScoredPlan {
	var out []ScoredPlan
	for _, ix := range ctx.CandidateIndexes {
		switch ix.Type {
		case metadata.IndexRank:
			if sp, ok := matchRankIndex(ctx, ix, pool, sortCols, ctx.Query.RecordTypes); ok {
				out = append(out, sp)
			}
		case metadata.IndexText:
			if sp, ok := matchTextIndex(ix, pool, ctx.Query.RecordTypes, cfg); ok {
				out = append(out, sp)
			}
		}
	}
	return out
}

func matchRankIndex(ctx *PlanContext, ix *metadata.Index, pool []*predicate.Component, sortCols []*key.Expression, resultTypes []string) (ScoredPlan, bool) {
	if ix.KeyExpr.Kind() != key.KindGrouping {
		return ScoredPlan{}, false
	}
	whole := ix.KeyExpr.GroupingWhole()
	wholeCols := whole.Columns()
	groupCount := ix.KeyExpr.GroupingCount()
	if groupCount > len(wholeCols) {
		groupCount = len(wholeCols)
	}
	groupCols := wholeCols[:groupCount]

	gm := matchKeyAgainstFilter(groupCols, pool, nil)
	if gm.outerConsumed != len(groupCols) {
		return ScoredPlan{}, false
	}

	var rankLeaf *predicate.Component
	for _, leaf := range pool {
		if gm.used[leaf] {
			continue
		}
		if leaf.Kind == predicate.KindQueryRecordFunctionWithComparison && leaf.Function == predicate.FunctionRank && leaf.KeyExpr.Equals(whole) {
			rankLeaf = leaf
			break
		}
	}
	if rankLeaf == nil {
		return ScoredPlan{}, false
	}

	rankSC := &key.ScanComparisons{}
	if rankLeaf.Comparison.Category() == predicate.CategoryInequality {
		lo, hi := inequalityBoundsOf(rankLeaf.Comparison)
		rankSC = rankSC.AddInequality(lo, hi)
	} else {
		rankSC = rankSC.AddEquality(equalityValueOf(rankLeaf.Comparison))
	}
	if !ctx.RankComparisons.Bind(ix.Name, rankSC, rankLeaf) {
		return ScoredPlan{}, false
	}
	merged := ctx.RankComparisons.ScanComparisons(ix.Name)

	finalSC := &key.ScanComparisons{
		Equalities: append(append([]value.Value{}, gm.sc.Equalities...), merged.Equalities...),
		Low:        merged.Low,
		High:       merged.High,
	}

	var residual []*predicate.Component
	for _, leaf := range pool {
		if leaf == rankLeaf || gm.used[leaf] {
			continue
		}
		residual = append(residual, leaf)
	}

	scan := plan.NewIndexScan(ix.Name, ix.KeyExpr, finalSC, false, false, resultTypes)
	return ScoredPlan{
		Plan:                    scan,
		Score:                   finalSC.Size(),
		Index:                   ix,
		UnsatisfiedFilters:      residual,
		CreatesDuplicates:       false,
		IncludedRankComparisons: []*predicate.Component{rankLeaf},
		PlanOrderingKey:         ix.KeyExpr,
		StrictlySorted:          false,
	}, true
}

func matchTextIndex(ix *metadata.Index, pool []*predicate.Component, resultTypes []string, cfg Configuration) (ScoredPlan, bool) {
	col := ix.KeyExpr
	if col.Kind() != key.KindField {
		return ScoredPlan{}, false
	}
	for _, leaf := range pool {
		if leaf.Kind != predicate.KindFieldWithComparison || leaf.Comparison.Kind != predicate.CompTextMatch {
			continue
		}
		if leaf.FieldName != col.FieldName() {
			continue
		}
		scan := plan.NewIndexScan(ix.Name, ix.KeyExpr, &key.ScanComparisons{}, false, false, resultTypes)
		scan.TextQuery = leaf.Comparison.TextQuery
		return ScoredPlan{
			Plan:               scan,
			Score:              cfg.TextIndexScore,
			Index:              ix,
			UnsatisfiedFilters: residualExcluding(pool, leaf),
			PlanOrderingKey:    nil,
			StrictlySorted:     false,
		}, true
	}
	return ScoredPlan{}, false
}

func residualExcluding(pool []*predicate.Component, exclude *predicate.Component) []*predicate.Component {
	var out []*predicate.Component
	for _, leaf := range pool {
		if leaf != exclude {
			out = append(out, leaf)
		}
	}
	return out
}
