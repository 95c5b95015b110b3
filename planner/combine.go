//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// Selection and combination: the deterministic comparator that ranks
// single-index candidates against each other and against the no-index
// fallback (lowest cost first, ties broken by selectivity, then by index
// name for determinism), and the ordered-intersection attempt that
// combines several partially-sarging candidates into one plan when no
// single index covers the whole filter.
package planner

import (
	"sort"

	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
)

// selectBest applies the comparator chain: score descending,
// NumNonSargables ascending, NumIndexFilters ascending, then index-size
// overhead (or the scan-preference policy, when either side is the
// no-index candidate).
func selectBest(cands []ScoredPlan, cfg Configuration) ScoredPlan {
	best := cands[0]
	for _, c := range cands[1:] {
		if better(c, best, cfg) {
			best = c
		}
	}
	return best
}

func better(a, b ScoredPlan, cfg Configuration) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	if a.NumNonSargables() != b.NumNonSargables() {
		return a.NumNonSargables() < b.NumNonSargables()
	}
	if a.NumIndexFilters() != b.NumIndexFilters() {
		return a.NumIndexFilters() < b.NumIndexFilters()
	}
	if a.Index == nil || b.Index == nil {
		return preferScanOverIndex(a, b, cfg)
	}
	ao, bo := a.indexSizeOverhead(), b.indexSizeOverhead()
	if ao != bo {
		return ao < bo
	}
	return a.Index.Name < b.Index.Name
}

func preferScanOverIndex(a, b ScoredPlan, cfg Configuration) bool {
	switch cfg.IndexScanPreference {
	case PreferScan:
		return a.Index == nil
	case PreferPKIndex:
		return a.Index == nil && a.Score >= b.Score
	default: // PreferIndex
		return a.Index != nil
	}
}

// tryIntersectionPlan combines several partially-sarging value-index
// candidates into a single ordered Intersection over the common primary
// key. It picks the best usable candidate as a pivot, keeps only the
// candidates whose scan direction and equality-boundedness are compatible
// with it (a branch with an unconsumed trailing range doesn't iterate in
// primary-key order and can't be merged this way), sorts what remains by
// (NumNonSargables ascending, NumIndexFilters descending), and walks that
// order greedily: a candidate is admitted only when it still has something
// to contribute, i.e. the set of leaves left unsarged by every admitted
// branch so far strictly shrinks when it joins. Candidates that create
// duplicates are excluded outright: an intersection branch must itself be
// duplicate-free for the merge-by-primary-key strategy to be sound.
func tryIntersectionPlan(cands []ScoredPlan, ctx *PlanContext, cfg Configuration) (ScoredPlan, bool) {
	var usable []ScoredPlan
	for _, c := range cands {
		if c.Index != nil && c.Index.Type == metadata.IndexValue && c.Score > 0 && !c.CreatesDuplicates {
			usable = append(usable, c)
		}
	}
	if len(usable) < 2 {
		return ScoredPlan{}, false
	}

	pivot := usable[0]
	for _, c := range usable[1:] {
		if better(c, pivot, cfg) {
			pivot = c
		}
	}
	if !pivot.FullyEqualityBound {
		return ScoredPlan{}, false
	}

	var ordered []ScoredPlan
	for _, c := range usable {
		if c.FullyEqualityBound && c.Plan.Reverse() == pivot.Plan.Reverse() {
			ordered = append(ordered, c)
		}
	}
	if len(ordered) < 2 {
		return ScoredPlan{}, false
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].NumNonSargables() != ordered[j].NumNonSargables() {
			return ordered[i].NumNonSargables() < ordered[j].NumNonSargables()
		}
		return ordered[i].NumIndexFilters() > ordered[j].NumIndexFilters()
	})

	admitted := []ScoredPlan{ordered[0]}
	residual := residualSetOf(ordered[0])
	for _, c := range ordered[1:] {
		next := intersectResidualSets(residual, residualSetOf(c))
		if len(next) >= len(residual) {
			continue // c has nothing left to contribute once the admitted branches are accounted for
		}
		residual = next
		admitted = append(admitted, c)
	}
	if len(admitted) < 2 {
		return ScoredPlan{}, false
	}

	ops := make([]plan.Operator, 0, len(admitted))
	score := 0
	for _, c := range admitted {
		ops = append(ops, c.Plan)
		score += c.Score
	}

	inter := plan.NewIntersection(ops, ctx.CommonPrimaryKey, pivot.Plan.Reverse())
	if inter.Complexity() > cfg.ComplexityThreshold {
		return ScoredPlan{}, false
	}
	return ScoredPlan{
		Plan:               inter,
		Score:              score,
		Index:              nil,
		UnsatisfiedFilters: residualSliceOf(residual),
		CreatesDuplicates:  false,
		PlanOrderingKey:    ctx.CommonPrimaryKey,
		StrictlySorted:     false,
	}, true
}

// residualSetOf is a candidate's unsarged leaves as a set keyed by the
// leaf's own identity — the same *predicate.Component pointer is shared
// across every candidate's pool, so identity is a sound test for "the same
// leaf".
func residualSetOf(c ScoredPlan) map[*predicate.Component]bool {
	set := map[*predicate.Component]bool{}
	for _, r := range c.AllNonSargables() {
		set[r] = true
	}
	return set
}

// intersectResidualSets keeps only the leaves present in both sets: a leaf
// stops being part of the intersection's overall residual the moment any
// admitted branch already enforces it through its own scan.
func intersectResidualSets(a, b map[*predicate.Component]bool) map[*predicate.Component]bool {
	out := map[*predicate.Component]bool{}
	for r := range a {
		if b[r] {
			out[r] = true
		}
	}
	return out
}

func residualSliceOf(set map[*predicate.Component]bool) []*predicate.Component {
	out := make([]*predicate.Component, 0, len(set))
	for r := range set {
		out = append(out, r)
	}
	return out
}
