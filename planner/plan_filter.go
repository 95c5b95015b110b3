//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// planFilterCandidates ties the column matcher, IN extraction, and
// intersection/OR combination together into the single entry point the
// driver calls for a (sub-)filter: every candidate — the no-index scan,
// each matching value/rank/text index, and any intersection built from
// several of them — is built, scored, and the best one returned. OR
// filters recurse into planOr instead of the single-filter path.
package planner

import (
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
)

func planFilterCandidates(ctx *PlanContext, filter *predicate.Component, sortCols []*key.Expression, cfg Configuration) (ScoredPlan, error) {
	if filter != nil && filter.Kind == predicate.KindOr {
		return planOr(ctx, filter, sortCols, cfg)
	}

	pool := flattenAnd(filter)
	extractedPool, extractions := extractInLists(pool)

	var candidates []ScoredPlan
	recordSP, _ := matchRecordScan(ctx, extractedPool, sortCols)
	candidates = append(candidates, recordSP)

	if cfg.PlanOtherAttemptWholeFilter {
		candidates = append(candidates, matchWholeFilterFirst(ctx, extractedPool, sortCols, cfg)...)
	}

	for _, ix := range ctx.CandidateIndexes {
		if ix.Type != metadata.IndexValue {
			continue
		}
		sp, _ := matchValueIndex(ctx, ix, extractedPool, sortCols, cfg)
		candidates = append(candidates, sp)
	}

	if !cfg.PlanOtherAttemptWholeFilter {
		candidates = append(candidates, matchWholeFilterFirst(ctx, extractedPool, sortCols, cfg)...)
	}

	if inter, ok := tryIntersectionPlan(candidates, ctx, cfg); ok {
		candidates = append(candidates, inter)
	}

	best := selectBest(candidates, cfg)
	best = resolveInExtraction(best, extractions, sortCols, cfg)
	return best, nil
}

// planOr implements OR planning: every branch is planned independently;
// branches landing on the same base scan (the same index or no-index scan
// with the same bindings) collapse into one scan whose residual is the OR of each branch's
// leftover; order-compatible branches merge into an ordered Union;
// otherwise the branches are concatenated into an UnorderedUnion and
// (unless the caller tolerates duplicates) wrapped in a
// PrimaryKeyDistinct.
func planOr(ctx *PlanContext, orFilter *predicate.Component, sortCols []*key.Expression, cfg Configuration) (ScoredPlan, error) {
	branchPlans := make([]ScoredPlan, 0, len(orFilter.Children))
	for _, branch := range orFilter.Children {
		sp, err := planFilterCandidates(ctx, branch, sortCols, cfg)
		if err != nil {
			return ScoredPlan{}, err
		}
		branchPlans = append(branchPlans, sp)
	}

	if sameBase(branchPlans) {
		return collapseSameBase(branchPlans), nil
	}

	if mergeKey, reverse, ok := mergeOrderingKey(branchPlans); ok {
		ops := make([]plan.Operator, len(branchPlans))
		for i, bp := range branchPlans {
			ops[i] = bp.Plan
		}
		u := plan.NewUnion(ops, mergeKey, reverse)
		return ScoredPlan{
			Plan:            wrapDistinctIfNeeded(u, ctx),
			Score:           sumScore(branchPlans),
			Index:           nil,
			PlanOrderingKey: mergeKey,
		}, nil
	}

	ops := make([]plan.Operator, len(branchPlans))
	for i, bp := range branchPlans {
		ops[i] = bp.Plan
	}
	uu := plan.NewUnorderedUnion(ops)
	return ScoredPlan{
		Plan:              wrapDistinctIfNeeded(uu, ctx),
		Score:             sumScore(branchPlans),
		Index:             nil,
		CreatesDuplicates: ctx.AllowDuplicates,
		PlanOrderingKey:   nil,
	}, nil
}

// mergeOrderingKey reports whether every branch's ordering key can be
// merge-aligned into a single ordered Union regardless of whether a sort
// was requested — an ordered union is a legitimate plan on its own, sort
// or no sort — and if so returns the shortest key that every branch's own
// ordering key has as a prefix, plus the shared scan direction. Branches
// scanning in opposite directions, or whose ordering keys aren't nested in
// a single prefix chain, are not mergeable.
func mergeOrderingKey(branchPlans []ScoredPlan) (*key.Expression, bool, bool) {
	if len(branchPlans) == 0 || branchPlans[0].PlanOrderingKey == nil {
		return nil, false, false
	}
	reverse := branchPlans[0].Plan.Reverse()
	candidate := branchPlans[0].PlanOrderingKey
	for _, bp := range branchPlans[1:] {
		if bp.PlanOrderingKey == nil || bp.Plan.Reverse() != reverse {
			return nil, false, false
		}
		switch {
		case candidate.IsPrefixKey(bp.PlanOrderingKey):
			// candidate is already a prefix of this branch's key; it
			// stays the shared ground every branch so far agrees on.
		case bp.PlanOrderingKey.IsPrefixKey(candidate):
			// this branch's key is shorter and still a prefix of every
			// branch considered so far's key, so it narrows the shared
			// prefix going forward.
			candidate = bp.PlanOrderingKey
		default:
			return nil, false, false
		}
	}
	return candidate, reverse, true
}

func sameBase(sps []ScoredPlan) bool {
	if len(sps) == 0 {
		return false
	}
	first := sps[0]
	for _, sp := range sps[1:] {
		if sp.Index != first.Index || sp.Plan.ID() != first.Plan.ID() {
			return false
		}
	}
	return true
}

// collapseSameBase implements the same-base residual collapse: if any
// branch is fully satisfied by the shared base (no residual), the OR of
// all branches is vacuously true on that base and no residual remains;
// otherwise the residual is the OR of each branch's own conjunction of
// leftover predicates.
func collapseSameBase(sps []ScoredPlan) ScoredPlan {
	base := sps[0]
	residualBranches := make([]*predicate.Component, 0, len(sps))
	for _, sp := range sps {
		branch := sp.AllNonSargables()
		if len(branch) == 0 {
			return base.WithResidual(nil).WithIndexFilters(nil)
		}
		residualBranches = append(residualBranches, predicate.And(branch...))
	}
	return base.WithResidual([]*predicate.Component{predicate.Or(residualBranches...)}).WithIndexFilters(nil)
}

func sumScore(sps []ScoredPlan) int {
	n := 0
	for _, sp := range sps {
		n += sp.Score
	}
	return n
}

func wrapDistinctIfNeeded(op plan.Operator, ctx *PlanContext) plan.Operator {
	if ctx.AllowDuplicates || !op.CreatesDuplicates() {
		return op
	}
	return plan.NewPrimaryKeyDistinct(op)
}
