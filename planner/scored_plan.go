//  Copyright (c) 2014 Couchbase, Inc.
//  Licensed under the Apache License, Version 2.0 (the "License"); you may not use this file
//  except in compliance with the License. You may obtain a copy of the License at
//    http://www.apache.org/licenses/LICENSE-2.0
//  Unless required by applicable law or agreed to in writing, software distributed under the
//  License is distributed on an "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND,
//  either express or implied. See the License for the specific language governing permissions
//  and limitations under the License.

// ScoredPlan threads a scored candidate through the matcher as a value,
// copied rather than mutated in place.
package planner

import (
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/metadata"
	"github.com/recordlayer/recordplan/plan"
	"github.com/recordlayer/recordplan/predicate"
)

// ScoredPlan is the intermediate tuple the matcher returns per candidate.
// It is always held by value and re-owned on each transformation step,
// never pointer-shared.
type ScoredPlan struct {
	Plan    plan.Operator
	Score   int
	Index   *metadata.Index // nil for the no-index candidate

	UnsatisfiedFilters []*predicate.Component
	IndexFilters        []*predicate.Component

	CreatesDuplicates bool

	IncludedRankComparisons []*predicate.Component

	PlanOrderingKey *key.Expression // nil if unordered
	StrictlySorted  bool

	// FullyEqualityBound reports whether every column of the scan's own key
	// was consumed by an equality comparison with no trailing open range.
	// A scan in that state has nothing left varying but the primary key it
	// implicitly carries, so its iteration order can be trusted to be
	// primary-key order — the property an intersection branch needs before
	// it can be merged with other branches by primary key.
	FullyEqualityBound bool
}

// NumNonSargables is len(unsatisfied) + len(indexFilters).
func (s ScoredPlan) NumNonSargables() int {
	return len(s.UnsatisfiedFilters) + len(s.IndexFilters)
}

func (s ScoredPlan) NumIndexFilters() int { return len(s.IndexFilters) }

// AllNonSargables concatenates the true residual with the index filters.
// The two are scored separately so NumIndexFilters can tie-break the
// comparator, but both still need to be evaluated somewhere once a
// candidate is chosen — there is no separate index-entry-filter plan node,
// so they end up in the same post-scan predicate.
func (s ScoredPlan) AllNonSargables() []*predicate.Component {
	if len(s.IndexFilters) == 0 {
		return s.UnsatisfiedFilters
	}
	return append(append([]*predicate.Component{}, s.UnsatisfiedFilters...), s.IndexFilters...)
}

// WithResidual returns a copy whose unsatisfied-filter list is replaced.
func (s ScoredPlan) WithResidual(residual []*predicate.Component) ScoredPlan {
	s.UnsatisfiedFilters = residual
	return s
}

// WithIndexFilters returns a copy whose index-filter list is replaced.
func (s ScoredPlan) WithIndexFilters(indexFilters []*predicate.Component) ScoredPlan {
	s.IndexFilters = indexFilters
	return s
}

// WithPlan returns a copy wrapping a different physical plan node (e.g.
// after wrapping with a ResidualFilter or a PrimaryKeyDistinct).
func (s ScoredPlan) WithPlan(p plan.Operator) ScoredPlan {
	s.Plan = p
	return s
}

// indexSizeOverhead approximates the per-entry storage cost used for the
// final tie-break in the selection comparator: value indexes are sized by
// stored-column count, everything else (rank, text, no-index) by its full
// key width.
func (s ScoredPlan) indexSizeOverhead() int {
	if s.Index == nil {
		return -1 // no-index: overhead resolved by the scan-vs-index preference policy, not size
	}
	if s.Index.Type == metadata.IndexValue {
		return s.Index.StoredColumnCount()
	}
	return s.Index.KeyExpr.ColumnWidth()
}
