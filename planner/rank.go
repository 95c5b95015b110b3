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
	"github.com/recordlayer/recordplan/key"
	"github.com/recordlayer/recordplan/predicate"
)

// rankBinding pairs a rank-type index name with the ScanComparisons a
// rank() predicate bound against its grouping key.
type rankBinding struct {
	indexName string
	sc        *key.ScanComparisons
	leaves    []*predicate.Component
}

// RankComparisons accumulates every rank()-over-comparison leaf matched
// against a rank index while the matcher walks the AND children, so that
// two rank predicates over the same grouping key (e.g. rank BETWEEN two
// bounds, expressed as two leaves) merge into one scan instead of
// colliding. A rank index can carry at most one merged ScanComparisons per
// plan; a second, incompatible binding against the same index is rejected
// rather than silently dropped.
type RankComparisons struct {
	byIndex map[string]*rankBinding
}

func NewRankComparisons() *RankComparisons {
	return &RankComparisons{byIndex: map[string]*rankBinding{}}
}

// Bind merges sc into the rank index's existing binding (if any),
// returning ok=false when the new binding's equality prefix is incompatible
// with one already recorded for the same index.
func (r *RankComparisons) Bind(indexName string, sc *key.ScanComparisons, leaf *predicate.Component) bool {
	existing, ok := r.byIndex[indexName]
	if !ok {
		r.byIndex[indexName] = &rankBinding{indexName: indexName, sc: sc, leaves: []*predicate.Component{leaf}}
		return true
	}
	merged, ok2 := key.MergeGroupingScans(existing.sc, sc)
	if !ok2 {
		return false
	}
	existing.sc = merged
	existing.leaves = append(existing.leaves, leaf)
	return true
}

// ScanComparisons returns the merged ScanComparisons bound for indexName, or
// nil if none has been bound yet.
func (r *RankComparisons) ScanComparisons(indexName string) *key.ScanComparisons {
	b, ok := r.byIndex[indexName]
	if !ok {
		return nil
	}
	return b.sc
}

// Leaves returns every leaf component consumed while building indexName's
// rank binding, for removal from the residual filter.
func (r *RankComparisons) Leaves(indexName string) []*predicate.Component {
	b, ok := r.byIndex[indexName]
	if !ok {
		return nil
	}
	return b.leaves
}
